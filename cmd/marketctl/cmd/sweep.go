package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/usedgoods/marketplace/internal/service"
)

func SweepCmd() *cobra.Command {
	var apply bool

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Report stored files and image rows that no longer match",
		Long: "Compares the attachment store with the database. Orphan files have no image row or avatar\n" +
			"referencing them; orphan rows point at files missing from the store. With --apply the\n" +
			"orphan files are deleted. Orphan rows are only reported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			report, err := a.SweepService.Sweep(cmd.Context(), apply)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report, apply)
			return nil
		},
	}

	sweepCmd.Flags().BoolVar(&apply, "apply", false, "delete orphan files instead of only listing them")
	return sweepCmd
}

func printReport(w io.Writer, report *service.SweepReport, apply bool) {
	fmt.Fprintf(w, "orphan files: %d\n", len(report.OrphanFiles))
	for _, id := range report.OrphanFiles {
		fmt.Fprintf(w, "  %s\n", id)
	}
	fmt.Fprintf(w, "orphan rows: %d\n", len(report.OrphanRows))
	for _, path := range report.OrphanRows {
		fmt.Fprintf(w, "  %s\n", path)
	}
	if apply {
		fmt.Fprintf(w, "deleted files: %d\n", len(report.Deleted))
	} else if len(report.OrphanFiles) > 0 {
		fmt.Fprintln(w, "dry run, pass --apply to delete orphan files")
	}
}
