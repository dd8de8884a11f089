// defaults.go: viper default values for all settings.
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers the default value for every setting so a partial
// config file still yields a fully populated Settings struct.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main
	viper.SetDefault("main.name", "blazebot")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "blazebot.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 10*1024*1024)

	// Scheduler
	viper.SetDefault("scheduler.globaltrigger.enabled", true)
	viper.SetDefault("scheduler.globaltrigger.zones", []string{})
	viper.SetDefault("scheduler.pepperdrop.enabled", true)
	viper.SetDefault("scheduler.pepperdrop.intervalminutes", 45)
	viper.SetDefault("scheduler.pepperdrop.chance", 0.25)

	// Voice
	viper.SetDefault("voice.audioroot", "audio")
	viper.SetDefault("voice.connecttimeout", 15*time.Second)
	viper.SetDefault("voice.playstarttimeout", 10*time.Second)
	viper.SetDefault("voice.playidletimeout", 3*time.Minute)
	viper.SetDefault("voice.maxattempts", 2)
	viper.SetDefault("voice.defaultvolume", 0.8)

	// Output
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "blazebot.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "blazebot")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.database", "blazebot")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	// MQTT
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "blazebot/trigger")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")

	// Sentry
	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")

	// Metrics
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "0.0.0.0:8090")

	// Platform
	viper.SetDefault("platform.token", "")
}
