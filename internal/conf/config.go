// config.go: settings struct and loading for the blazebot application.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig contains settings for a rotated log file.
type LogConfig struct {
	Enabled  bool   // true to enable this log
	Path     string // path to the log file
	Rotation string // rotation type: daily, weekly or size
	MaxSize  int64  // max size in bytes for size rotation
}

// Rotation types for LogConfig.
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)

// GlobalTriggerSettings controls the worldwide 4:20 scanner.
type GlobalTriggerSettings struct {
	Enabled bool     // true to enable the global 4:20 trigger
	Zones   []string // explicit zone scan list, empty means full catalog
}

// PepperDropSettings controls the random flavor-line scheduler.
type PepperDropSettings struct {
	Enabled         bool    // true to enable pepper drops
	IntervalMinutes int     // minutes between drop rolls
	Chance          float64 // probability of a drop per roll, 0..1
}

// SchedulerSettings groups all periodic task settings.
type SchedulerSettings struct {
	GlobalTrigger GlobalTriggerSettings
	PepperDrop    PepperDropSettings
}

// VoiceSettings contains playback coordinator tuning.
type VoiceSettings struct {
	AudioRoot        string        // root directory all clip paths must resolve under
	ConnectTimeout   time.Duration // bound for the connection ready wait
	PlayStartTimeout time.Duration // bound for the player active-playing wait
	PlayIdleTimeout  time.Duration // bound for the end-of-clip idle wait
	MaxAttempts      int           // total playback attempts per invocation
	DefaultVolume    float64       // fallback volume when guild settings lack one
}

// OutputSettings selects and configures the persistent store.
type OutputSettings struct {
	SQLite struct {
		Enabled bool   // true to enable SQLite output
		Path    string // path to the SQLite database
	}
	MySQL struct {
		Enabled  bool   // true to enable MySQL output
		Username string // MySQL username
		Password string // MySQL password
		Database string // MySQL database name
		Host     string // MySQL host
		Port     string // MySQL port
	}
}

// MQTTSettings configures optional fire-event publication.
type MQTTSettings struct {
	Enabled  bool   // true to publish trigger events to MQTT
	Broker   string // broker URL, e.g. tcp://localhost:1883
	Topic    string // topic for trigger events
	Username string // broker username
	Password string // broker password
}

// SentrySettings configures optional error telemetry.
type SentrySettings struct {
	Enabled bool   // true to report built errors to Sentry
	DSN     string // Sentry DSN
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   // true to serve /metrics
	Listen  string // listen address, e.g. 0.0.0.0:8090
}

// PlatformSettings holds the chat platform client configuration. The client
// itself is an external collaborator; only its credentials live here.
type PlatformSettings struct {
	Token string // bot token, empty runs the logging dry-run client
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug level logging

	Main struct {
		Name string    // client id used for MQTT and logging
		Log  LogConfig // main log file settings
	}

	Scheduler SchedulerSettings
	Voice     VoiceSettings
	Output    OutputSettings
	MQTT      MQTTSettings
	Sentry    SentrySettings
	Metrics   MetricsSettings
	Platform  PlatformSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Setting returns the global settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		settingsMutex.Lock()
		defer settingsMutex.Unlock()
		var err error
		settingsInstance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("error loading settings: %v", err))
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Load reads the configuration file and returns the populated settings.
func Load() (*Settings, error) {
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

func initViper() error {
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}
	viper.SetConfigName("config")

	viper.SetEnvPrefix("BLAZEBOT")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		return createDefaultConfig(configPaths[0])
	}
	return nil
}

// createDefaultConfig writes the embedded default config to the first config path.
func createDefaultConfig(configPath string) error {
	defaultConfig, err := configFiles.ReadFile("config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded default config: %w", err)
	}

	if err := os.MkdirAll(configPath, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	target := filepath.Join(configPath, "config.yaml")
	if err := os.WriteFile(target, defaultConfig, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the ordered list of directories searched for
// the config file: current directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return paths, nil //nolint:nilerr // fall back to cwd only when HOME is unset
	}
	return append(paths, filepath.Join(configDir, "blazebot")), nil
}
