package platform

import (
	"context"
	"log/slog"
	"time"
)

// LogClient is a dry-run client used when no platform token is configured.
// It logs every side effect instead of performing it, which keeps the
// trigger engine and schedulers runnable without credentials.
type LogClient struct {
	log    *slog.Logger
	guilds []Guild
}

// NewLogClient creates a dry-run client announcing to the given guilds.
func NewLogClient(log *slog.Logger, guilds []Guild) *LogClient {
	return &LogClient{log: log, guilds: guilds}
}

func (c *LogClient) Guilds(ctx context.Context) ([]Guild, error) {
	return c.guilds, nil
}

func (c *LogClient) SendMessage(ctx context.Context, channelID, content string) error {
	c.log.Info("dry-run message", "channel_id", channelID, "content", content)
	return nil
}

func (c *LogClient) JoinVoice(ctx context.Context, guildID, channelID string) (VoiceSession, error) {
	c.log.Info("dry-run voice join", "guild_id", guildID, "channel_id", channelID)
	return &logSession{log: c.log, guildID: guildID}, nil
}

func (c *LogClient) NewPlayer() Player {
	return &logPlayer{log: c.log}
}

type logSession struct {
	log     *slog.Logger
	guildID string
}

func (s *logSession) WaitReady(ctx context.Context, timeout time.Duration) error { return nil }
func (s *logSession) Subscribe(p Player) error                                   { return nil }
func (s *logSession) Destroy() {
	s.log.Info("dry-run voice disconnect", "guild_id", s.guildID)
}

type logPlayer struct {
	log *slog.Logger
}

func (p *logPlayer) Play(filePath string, volume float64) error {
	p.log.Info("dry-run playback", "file", filePath, "volume", volume)
	return nil
}

func (p *logPlayer) WaitPlaying(ctx context.Context, timeout time.Duration) error { return nil }
func (p *logPlayer) WaitIdle(ctx context.Context, timeout time.Duration) error    { return nil }
