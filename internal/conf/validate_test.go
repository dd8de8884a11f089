package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Voice = VoiceSettings{
		AudioRoot:        "audio",
		ConnectTimeout:   15 * time.Second,
		PlayStartTimeout: 10 * time.Second,
		PlayIdleTimeout:  3 * time.Minute,
		MaxAttempts:      2,
		DefaultVolume:    0.8,
	}
	s.Scheduler.PepperDrop = PepperDropSettings{Enabled: true, IntervalMinutes: 45, Chance: 0.25}
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "blazebot.db"
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejectsEmptyAudioRoot(t *testing.T) {
	s := validSettings()
	s.Voice.AudioRoot = ""
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRejectsZeroAttempts(t *testing.T) {
	s := validSettings()
	s.Voice.MaxAttempts = 0
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRejectsChanceOutOfRange(t *testing.T) {
	s := validSettings()
	s.Scheduler.PepperDrop.Chance = 1.5
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRequiresDatabaseOutput(t *testing.T) {
	s := validSettings()
	s.Output.SQLite.Enabled = false
	assert.Error(t, ValidateSettings(s))
}
