package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nconklindev/timetable/internal/ui"
)

func newTUICommand(e *env) *cobra.Command {
	var (
		path string
		pick bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse timetables in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var m ui.Model
			switch {
			case pick:
				m = ui.NewWithFilePicker(ctx, func(p string) (ui.Browser, error) {
					_, svc, err := newOffline(p, e.cfg, e.log)
					if err != nil {
						return nil, err
					}
					return svc, nil
				})
			case path != "":
				_, svc, err := newOffline(path, e.cfg, e.log)
				if err != nil {
					return err
				}
				m = ui.New(ctx, svc)
			default:
				l, err := newLive(ctx, e.cfg, e.log)
				if err != nil {
					return err
				}
				m = ui.New(ctx, l.service)
			}

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "Open a local CSV or XLSX file")
	cmd.Flags().BoolVar(&pick, "pick", false, "Choose a local file with a file picker")
	cmd.MarkFlagsMutuallyExclusive("file", "pick")
	return cmd
}
