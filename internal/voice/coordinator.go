package voice

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hazyhour/blazebot/internal/audio"
	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/errors"
	"github.com/hazyhour/blazebot/internal/logging"
	"github.com/hazyhour/blazebot/internal/observability/metrics"
	"github.com/hazyhour/blazebot/internal/platform"
)

// Guild settings change rarely; a short cache keeps the fan-out path from
// hammering the database once per guild per minute.
const settingsCacheTTL = time.Minute

// Coordinator owns connect, select, validate, play and teardown of one
// playback session per guild. At most one playback is in flight per guild;
// a concurrent call for a busy guild is a silent no-op.
type Coordinator struct {
	ds       datastore.Interface
	client   platform.Client
	catalog  *audio.Catalog
	metrics  *metrics.VoiceMetrics
	settings *gocache.Cache
	cfg      conf.VoiceSettings
	log      *slog.Logger
	rng      func() float64

	mu       sync.Mutex
	inFlight map[string]bool
	players  map[string]platform.Player
}

// NewCoordinator creates a playback coordinator. metrics may be nil.
func NewCoordinator(ds datastore.Interface, client platform.Client, catalog *audio.Catalog,
	m *metrics.VoiceMetrics, cfg conf.VoiceSettings) *Coordinator {
	log := logging.ForService("voice")
	if log == nil {
		log = slog.Default().With("service", "voice")
	}
	return &Coordinator{
		ds:       ds,
		client:   client,
		catalog:  catalog,
		metrics:  m,
		settings: gocache.New(settingsCacheTTL, 5*time.Minute),
		cfg:      cfg,
		log:      log,
		rng:      rand.Float64,
		inFlight: make(map[string]bool),
		players:  make(map[string]platform.Player),
	}
}

// ListCandidateClips returns the weighted candidate set for a guild and
// category, broadened to all categories when the requested one is empty.
func (c *Coordinator) ListCandidateClips(guildID, category string) ([]datastore.CheerClip, error) {
	return c.catalog.ListCandidates(guildID, category)
}

// PlayCheer selects a clip for the guild and streams it into the voice
// channel. It returns nil both on success and when the guild already has a
// playback in flight. Terminal failures are normalized into the playback
// taxonomy before being returned.
func (c *Coordinator) PlayCheer(ctx context.Context, guildID, channelID, category string) error {
	if !c.tryAcquire(guildID) {
		c.log.Debug("playback already in flight, skipping", "guild_id", guildID)
		return nil
	}
	defer c.release(guildID)

	started := time.Now()
	err := c.playCheer(ctx, guildID, channelID, category)
	if c.metrics != nil {
		c.metrics.PlaybackDuration.Observe(time.Since(started).Seconds())
		if err != nil {
			c.metrics.PlaybackFailures.WithLabelValues(failureKind(err)).Inc()
		}
	}
	if err != nil {
		severity := c.log.Error
		if errors.Is(err, errors.ErrPathBlocked) {
			// Path escapes are a security violation, not an operational blip.
			severity = func(msg string, args ...any) {
				c.log.Error(msg, append(args, "security", true)...)
			}
		}
		severity("voice playback failed", "guild_id", guildID, "error", err)
	}
	return err
}

func (c *Coordinator) playCheer(ctx context.Context, guildID, channelID, category string) error {
	settings, err := c.guildSettings(guildID)
	if err != nil {
		return err
	}

	candidates, err := c.catalog.ListCandidates(guildID, category)
	if err != nil {
		return err
	}

	clip := PickWeighted(candidates, c.rng)
	if clip == nil {
		return errors.New(errors.ErrNoAudioConfigured).
			Component("voice").
			Category(errors.CategoryVoicePlayback).
			Context("guild_id", guildID).
			Context("category", category).
			Build()
	}

	// Validate the stored path and heal the file/backup pair before any
	// connection work.
	filePath, err := c.catalog.EnsureLocal(clip)
	if err != nil {
		return err
	}

	volume := settings.VoiceVolume
	if volume <= 0 {
		volume = c.cfg.DefaultVolume
	}

	session, err := c.client.JoinVoice(ctx, guildID, channelID)
	if err != nil {
		return normalizePlatformError(guildID, err)
	}

	var lastErr error
	played := false
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		lastErr = c.playOnce(ctx, session, guildID, filePath, volume)
		if lastErr == nil {
			played = true
			break
		}
		c.log.Warn("voice playback attempt failed",
			"guild_id", guildID, "attempt", attempt, "error", lastErr)
		if attempt == c.cfg.MaxAttempts {
			break
		}
		// Environment faults are not retried; reconnecting won't help.
		lastErr = normalizePlatformError(guildID, lastErr)
		if errors.Is(lastErr, errors.ErrEncryptionNegotiation) ||
			errors.Is(lastErr, errors.ErrTranscoderUnavailable) {
			break
		}

		// Destroy the stale connection and re-establish before the retry.
		if c.metrics != nil {
			c.metrics.RetryAttempts.Inc()
		}
		session.Destroy()
		session, err = c.client.JoinVoice(ctx, guildID, channelID)
		if err != nil {
			lastErr = err
			session = nil
			break
		}
	}

	if session != nil {
		session.Destroy()
	}
	if !played {
		return normalizePlatformError(guildID, lastErr)
	}

	if err := c.ds.IncrementMetric(guildID, "cheers_voice_played", 1); err != nil {
		c.log.Warn("failed to record playback metric", "guild_id", guildID, "error", err)
	}
	if c.metrics != nil {
		c.metrics.CheersPlayed.Inc()
	}
	return nil
}

// playOnce runs one full ready-subscribe-play-confirm cycle on a session.
func (c *Coordinator) playOnce(ctx context.Context, session platform.VoiceSession,
	guildID, filePath string, volume float64) error {
	if err := session.WaitReady(ctx, c.cfg.ConnectTimeout); err != nil {
		return err
	}
	player := c.player(guildID)
	if err := session.Subscribe(player); err != nil {
		return err
	}
	if err := player.Play(filePath, volume); err != nil {
		return err
	}
	if err := player.WaitPlaying(ctx, c.cfg.PlayStartTimeout); err != nil {
		return err
	}
	return player.WaitIdle(ctx, c.cfg.PlayIdleTimeout)
}

// player returns the guild's player, creating it on first use.
func (c *Coordinator) player(guildID string) platform.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.players[guildID]; ok {
		return p
	}
	p := c.client.NewPlayer()
	c.players[guildID] = p
	return p
}

// guildSettings loads settings through a short TTL cache.
func (c *Coordinator) guildSettings(guildID string) (datastore.GuildSettings, error) {
	if cached, ok := c.settings.Get(guildID); ok {
		return cached.(datastore.GuildSettings), nil
	}
	settings, err := c.ds.GetGuildSettings(guildID)
	if err != nil {
		return datastore.GuildSettings{}, err
	}
	c.settings.SetDefault(guildID, settings)
	return settings, nil
}

// tryAcquire sets the guild's in-flight flag; false means a playback is
// already running. The flag is set before any suspension point and cleared
// on every exit path so a failed playback cannot wedge the guild busy.
func (c *Coordinator) tryAcquire(guildID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[guildID] {
		return false
	}
	c.inFlight[guildID] = true
	return true
}

func (c *Coordinator) release(guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, guildID)
}
