package cli

import (
	"github.com/spf13/cobra"
)

func newShowCommand(e *env) *cobra.Command {
	var (
		date string
		f    reportFlags
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a class timetable from the published documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l, err := newLive(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			if date == "" {
				links, err := l.service.Links(ctx)
				if err != nil {
					return err
				}
				if len(links) == 0 {
					return errNoDates
				}
				date = links[0].Date
			}
			return printReport(ctx, cmd.OutOrStdout(), l.service, date, f)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date as dd.mm (default: newest)")
	cmd.Flags().StringVarP(&f.class, "class", "c", "", "Class label, e.g. 7А")
	cmd.Flags().BoolVar(&f.html, "html", false, "Print Telegram HTML instead of plain text")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Also export to a .csv or .xlsx file")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}
