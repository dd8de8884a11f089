package support

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhour/blazebot/internal/conf"
)

// Command creates the support command that prints the effective
// configuration with credentials masked.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "support",
		Short: "Print the effective configuration for support requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := conf.DumpSettings(settings)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}
