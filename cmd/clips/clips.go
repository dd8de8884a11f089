package clips

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazyhour/blazebot/internal/audio"
	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/platform"
	"github.com/hazyhour/blazebot/internal/securefs"
	"github.com/hazyhour/blazebot/internal/voice"
)

// Command creates the clips command group for managing the cheer catalog.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips",
		Short: "Manage the cheer clip catalog",
	}
	cmd.AddCommand(listCommand(settings), addCommand(settings), seedCommand(settings))
	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var guildID, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the candidate clips for a guild",
		Long:  "List the clips the playback coordinator would choose from, including the broadened set when the requested category has none.",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, store, closeAll, err := openCatalog(settings)
			if err != nil {
				return err
			}
			defer closeAll()

			coordinator := voice.NewCoordinator(store,
				platform.NewLogClient(slog.Default(), nil), catalog, nil, settings.Voice)
			clips, err := coordinator.ListCandidateClips(guildID, category)
			if err != nil {
				return err
			}
			for _, clip := range clips {
				owner := "shared"
				if clip.GuildID != nil {
					owner = *clip.GuildID
				}
				backup := " "
				if len(clip.BackupData) > 0 {
					backup = "B"
				}
				fmt.Printf("%-12s %-10s %-8s %6.2f %s %s\n",
					owner, clip.Category, clip.Source, clip.Weight, backup, clip.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "Guild id to list for")
	cmd.Flags().StringVar(&category, "category", "", "Category to select from, empty lists all")
	return cmd
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var guildID, category, name string
	var weight float64

	cmd := &cobra.Command{
		Use:   "add [path]",
		Short: "Register an audio file under the audio root as a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, closeAll, err := openCatalog(settings)
			if err != nil {
				return err
			}
			defer closeAll()

			var owner *string
			if guildID != "" {
				owner = &guildID
			}
			clip, err := catalog.AddClip(owner, category, name, args[0], weight, datastore.SourceUpload)
			if err != nil {
				return err
			}
			fmt.Printf("added clip %s (%s, weight %.2f)\n", clip.Path, clip.Category, clip.Weight)
			return nil
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "Owning guild id, empty makes the clip shared")
	cmd.Flags().StringVar(&category, "category", datastore.CategoryDefault, "Clip category")
	cmd.Flags().StringVar(&name, "name", "", "Display name, defaults to the path")
	cmd.Flags().Float64Var(&weight, "weight", 1, "Selection weight")
	return cmd
}

func seedCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Register the prebuilt clips under the audio root",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, closeAll, err := openCatalog(settings)
			if err != nil {
				return err
			}
			defer closeAll()
			seeded, err := catalog.SeedBuiltin()
			if err != nil {
				return err
			}
			fmt.Printf("seeded %d prebuilt clips\n", seeded)
			return nil
		},
	}
}

func openStore(settings *conf.Settings) (datastore.Interface, error) {
	store := datastore.New(settings)
	if store == nil {
		return nil, fmt.Errorf("no database output is enabled")
	}
	if err := store.Open(); err != nil {
		return nil, err
	}
	return store, nil
}

func openCatalog(settings *conf.Settings) (*audio.Catalog, datastore.Interface, func(), error) {
	store, err := openStore(settings)
	if err != nil {
		return nil, nil, nil, err
	}
	sfs, err := securefs.New(settings.Voice.AudioRoot)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}
	closeAll := func() {
		_ = sfs.Close()
		_ = store.Close()
	}
	return audio.NewCatalog(store, sfs, nil), store, closeAll, nil
}
