// Package platform defines the boundary to the chat/voice platform client.
// Connection establishment, permissions and message delivery belong to the
// platform; the rest of the application only sees these interfaces.
package platform

import (
	"context"
	"time"
)

// Guild is one independently configured community known to the client.
type Guild struct {
	ID   string
	Name string
}

// Client is the chat platform collaborator.
type Client interface {
	// Guilds enumerates the guilds the client is a member of.
	Guilds(ctx context.Context) ([]Guild, error)
	// SendMessage posts text to a channel.
	SendMessage(ctx context.Context, channelID, content string) error
	// JoinVoice establishes a streaming connection to a voice channel.
	JoinVoice(ctx context.Context, guildID, channelID string) (VoiceSession, error)
	// NewPlayer creates an audio player that can be subscribed to a session.
	NewPlayer() Player
}

// VoiceSession is one live streaming connection to a voice channel.
type VoiceSession interface {
	// WaitReady blocks until the connection reaches its ready state or the
	// timeout elapses.
	WaitReady(ctx context.Context, timeout time.Duration) error
	// Subscribe routes a player's audio into this session.
	Subscribe(p Player) error
	// Destroy tears the connection down. Safe to call more than once.
	Destroy()
}

// Player streams one audio file into its subscribed session.
type Player interface {
	// Play starts playback of the file at the given volume.
	Play(filePath string, volume float64) error
	// WaitPlaying blocks until the player reports active playback.
	WaitPlaying(ctx context.Context, timeout time.Duration) error
	// WaitIdle blocks until the player reports end of clip.
	WaitIdle(ctx context.Context, timeout time.Duration) error
}
