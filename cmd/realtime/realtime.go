package realtime

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/engine"
)

// Command creates the realtime command that runs the trigger engine.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Run the trigger engine in realtime mode",
		Long:  "Start the minute scanner, guild fan-out and voice coordinator and run until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return engine.RunRealtime(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}
	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Voice.AudioRoot, "audioroot", viper.GetString("voice.audioroot"), "Root directory for cheer audio clips")
	cmd.Flags().BoolVar(&settings.Metrics.Enabled, "metrics", viper.GetBool("metrics.enabled"), "Enable Prometheus metrics endpoint")
	cmd.Flags().StringVar(&settings.Metrics.Listen, "listen", viper.GetString("metrics.listen"), "Listen address and port of metrics endpoint")
	cmd.Flags().StringSliceVar(&settings.Scheduler.GlobalTrigger.Zones, "zones", viper.GetStringSlice("scheduler.globaltrigger.zones"), "Explicit timezone scan list, empty scans the full catalog")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
