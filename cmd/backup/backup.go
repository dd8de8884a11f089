package backup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhour/blazebot/internal/audio"
	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/securefs"
)

// Command creates the backup command that captures clip backups into the
// database.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Capture database backups for all clip files",
		Long:  "Read every registered clip file under the audio root and store a restore payload in the database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no database output is enabled")
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sfs, err := securefs.New(settings.Voice.AudioRoot)
			if err != nil {
				return err
			}
			defer func() { _ = sfs.Close() }()

			captured, err := audio.NewCatalog(store, sfs, nil).BackupAll()
			if err != nil {
				return err
			}
			fmt.Printf("captured %d clip backups\n", captured)
			return nil
		},
	}
}
