package main

import (
	"fmt"

	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			report, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case report.Detached:
				fmt.Fprintln(out, "HEAD detached")
			case report.Unborn:
				fmt.Fprintf(out, "on %s (no commits yet)\n", report.Branch)
			default:
				fmt.Fprintf(out, "on %s\n", report.Branch)
			}

			if len(report.Staged) > 0 {
				fmt.Fprintln(out, "\nchanges to be committed:")
				for _, c := range report.Staged {
					fmt.Fprintf(out, "  %s %s\n", statusMarker(c.Status), c.Path)
				}
			}
			if len(report.Unstaged) > 0 {
				fmt.Fprintln(out, "\nchanges not staged for commit:")
				for _, c := range report.Unstaged {
					fmt.Fprintf(out, "  %s %s\n", statusMarker(c.Status), c.Path)
				}
			}
			if len(report.Untracked) > 0 {
				fmt.Fprintln(out, "\nuntracked files:")
				for _, p := range report.Untracked {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}
			if len(report.Staged) == 0 && len(report.Unstaged) == 0 && len(report.Untracked) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
			}
			return nil
		},
	}
}

func statusMarker(s repo.ChangeStatus) string {
	switch s {
	case repo.ChangeAdded:
		return "+"
	case repo.ChangeModified:
		return "~"
	case repo.ChangeDeleted:
		return "-"
	}
	return " "
}
