package occurrences

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/timezone"
)

// Command creates the occurrences command that prints upcoming 4:20 instants.
func Command(settings *conf.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "occurrences",
		Short: "List upcoming 4:20 occurrences per zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := timezone.NewCatalog(settings.Scheduler.GlobalTrigger.Zones)
			now := time.Now()
			for _, occurrence := range catalog.NextOccurrences(limit, now) {
				fmt.Printf("%-32s %s (in %s)\n",
					occurrence.Zone,
					occurrence.At.Format("2006-01-02 15:04 MST"),
					occurrence.At.Sub(now).Round(time.Minute))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of occurrences to list")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
	return cmd
}
