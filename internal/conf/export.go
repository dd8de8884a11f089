package conf

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// redacted replaces secret values in exported configuration.
const redacted = "[redacted]"

// DumpSettings renders the effective settings as YAML with credentials
// masked, for support bundles and configuration review.
func DumpSettings(settings *Settings) ([]byte, error) {
	masked := *settings
	if masked.Platform.Token != "" {
		masked.Platform.Token = redacted
	}
	if masked.MQTT.Password != "" {
		masked.MQTT.Password = redacted
	}
	if masked.Output.MySQL.Password != "" {
		masked.Output.MySQL.Password = redacted
	}
	if masked.Sentry.DSN != "" {
		masked.Sentry.DSN = redacted
	}

	out, err := yaml.Marshal(&masked)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to yaml: %w", err)
	}
	return out, nil
}
