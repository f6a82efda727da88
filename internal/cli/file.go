package cli

import (
	"github.com/spf13/cobra"
)

func newFileCommand(e *env) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "file PATH",
		Short: "Print a class timetable from a local CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, svc, err := newOffline(args[0], e.cfg, e.log)
			if err != nil {
				return err
			}
			return printReport(cmd.Context(), cmd.OutOrStdout(), svc, wb.Date, f)
		},
	}

	cmd.Flags().StringVarP(&f.class, "class", "c", "", "Class label, e.g. 7А")
	cmd.Flags().BoolVar(&f.html, "html", false, "Print Telegram HTML instead of plain text")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Also export to a .csv or .xlsx file")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}
