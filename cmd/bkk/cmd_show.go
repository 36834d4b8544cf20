package main

import (
	"fmt"
	"time"

	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [revision]",
		Short: "Show a commit and its change set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			expr := "HEAD"
			if len(args) == 1 {
				expr = args[0]
			}
			h, err := r.ResolveCommit(expr)
			if err != nil {
				return err
			}

			c, err := r.Store.ReadCommit(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "commit %s\n", h)
			fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
			fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Author.When, 0).Format("2006-01-02 15:04:05"))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "    %s\n", c.Message)
			fmt.Fprintln(out)

			// Change set against the first parent, or everything for a root
			// commit.
			var changes []repo.Change
			if len(c.Parents) > 0 {
				changes, err = r.DiffCommits(c.Parents[0], h)
			} else {
				newState, terr := r.CommitTree(h)
				if terr != nil {
					return terr
				}
				changes = repo.DiffStates(map[string]repo.TreeState{}, newState)
			}
			if err != nil {
				return err
			}

			for _, ch := range changes {
				fmt.Fprintf(out, "%-9s %s\n", ch.Status, ch.Path)
			}
			if len(changes) > 0 {
				fmt.Fprintln(out)
			}
			return printUnified(out, r, changes, false)
		},
	}
}
