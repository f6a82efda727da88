package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nconklindev/timetable/internal/store"
)

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.cfg.ValidateDatabase(); err != nil {
				return err
			}
			n, err := store.Migrate(cmd.Context(), e.cfg.Database.DSN)
			if err != nil {
				return err
			}
			e.log.Info("migrations applied", "count", n)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return err
		},
	}
}
