package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nconklindev/timetable/internal/app"
	"github.com/nconklindev/timetable/internal/config"
)

// env is what every subcommand gets after the root pre-run.
type env struct {
	cfg *config.Config
	log *slog.Logger
}

// NewRootCommand builds the timetable command tree.
func NewRootCommand() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "timetable",
		Short:         "School timetable bot and extraction tools",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = app.NewLogger(cfg.Log)
			return nil
		},
	}
	root.SetVersionTemplate("timetable {{.Version}}\n")

	root.AddCommand(
		newBotCommand(e),
		newWatchCommand(e),
		newShowCommand(e),
		newFileCommand(e),
		newTUICommand(e),
		newMigrateCommand(e),
	)
	return root
}
