// validate.go: settings validation run after loading.
package conf

import (
	"errors"
	"fmt"
)

// ValidateSettings checks settings for values that would misbehave at runtime.
func ValidateSettings(settings *Settings) error {
	var errs []error

	if err := validateVoiceSettings(&settings.Voice); err != nil {
		errs = append(errs, err)
	}
	if err := validateSchedulerSettings(&settings.Scheduler); err != nil {
		errs = append(errs, err)
	}
	if err := validateOutputSettings(&settings.Output); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateVoiceSettings(voice *VoiceSettings) error {
	if voice.AudioRoot == "" {
		return fmt.Errorf("voice.audioroot must not be empty")
	}
	if voice.MaxAttempts < 1 {
		return fmt.Errorf("voice.maxattempts must be at least 1, got %d", voice.MaxAttempts)
	}
	if voice.ConnectTimeout <= 0 || voice.PlayStartTimeout <= 0 || voice.PlayIdleTimeout <= 0 {
		return fmt.Errorf("voice timeouts must be positive")
	}
	if voice.DefaultVolume <= 0 || voice.DefaultVolume > 2 {
		return fmt.Errorf("voice.defaultvolume must be in (0, 2], got %v", voice.DefaultVolume)
	}
	return nil
}

func validateSchedulerSettings(scheduler *SchedulerSettings) error {
	pd := &scheduler.PepperDrop
	if pd.Enabled {
		if pd.IntervalMinutes < 1 {
			return fmt.Errorf("scheduler.pepperdrop.intervalminutes must be at least 1, got %d", pd.IntervalMinutes)
		}
		if pd.Chance < 0 || pd.Chance > 1 {
			return fmt.Errorf("scheduler.pepperdrop.chance must be in [0, 1], got %v", pd.Chance)
		}
	}
	return nil
}

func validateOutputSettings(output *OutputSettings) error {
	if !output.SQLite.Enabled && !output.MySQL.Enabled {
		return fmt.Errorf("no database output enabled, enable output.sqlite or output.mysql")
	}
	if output.SQLite.Enabled && output.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must not be empty")
	}
	return nil
}
