package voice

import (
	"context"
	"strings"

	"github.com/hazyhour/blazebot/internal/errors"
)

// failureKind labels a normalized playback failure for metrics.
func failureKind(err error) string {
	switch {
	case errors.Is(err, errors.ErrNoAudioConfigured):
		return "no_audio"
	case errors.Is(err, errors.ErrPathBlocked):
		return "path_blocked"
	case errors.Is(err, errors.ErrFileMissing):
		return "file_missing"
	case errors.Is(err, errors.ErrConnectionTimeout):
		return "connection_timeout"
	case errors.Is(err, errors.ErrEncryptionNegotiation):
		return "encryption"
	case errors.Is(err, errors.ErrTranscoderUnavailable):
		return "transcoder"
	default:
		return "other"
	}
}

// normalizePlatformError maps raw platform client failures onto the playback
// taxonomy so callers get a specific, actionable error. The platform client
// is an external dependency, so matching is by message content, the same way
// its own error surface distinguishes these cases.
func normalizePlatformError(guildID string, err error) error {
	if err == nil {
		return nil
	}

	// Already normalized errors pass through untouched.
	for _, sentinel := range []error{
		errors.ErrNoAudioConfigured, errors.ErrPathBlocked, errors.ErrFileMissing,
		errors.ErrConnectionTimeout, errors.ErrEncryptionNegotiation, errors.ErrTranscoderUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "no compatible encryption modes"):
		return errors.Newf("%w: update the voice transport library and restart: %v",
			errors.ErrEncryptionNegotiation, err).
			Component("voice").
			Category(errors.CategoryVoicePlayback).
			Context("guild_id", guildID).
			Build()
	case strings.Contains(msg, "ffmpeg") && strings.Contains(msg, "not found"):
		return errors.Newf("%w: install ffmpeg or set its path in the environment: %v",
			errors.ErrTranscoderUnavailable, err).
			Component("voice").
			Category(errors.CategoryVoicePlayback).
			Context("guild_id", guildID).
			Build()
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return errors.Newf("%w: rejoin the channel and try again; check Connect/Speak permissions if it persists: %v",
			errors.ErrConnectionTimeout, err).
			Component("voice").
			Category(errors.CategoryTimeout).
			Context("guild_id", guildID).
			Build()
	default:
		return errors.New(err).
			Component("voice").
			Category(errors.CategoryVoicePlayback).
			Context("guild_id", guildID).
			Build()
	}
}
