package main

import (
	"fmt"
	"time"

	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:   "log [revision-range]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			expr := "HEAD"
			if all {
				expr = "--all"
			} else if len(args) == 1 {
				expr = args[0]
			}

			entries, err := r.Log(expr, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}

			for _, entry := range entries {
				c := entry.Commit
				if oneline {
					fmt.Fprintf(out, "%s %s\n", shortHash(string(entry.Hash)), firstLine(c.Message))
					continue
				}
				fmt.Fprintf(out, "commit %s\n", entry.Hash)
				if len(c.Parents) > 1 {
					fmt.Fprint(out, "merge:")
					for _, p := range c.Parents {
						fmt.Fprintf(out, " %s", shortHash(string(p)))
					}
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Author.When, 0).Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits")
	cmd.Flags().BoolVar(&all, "all", false, "show commits reachable from any ref")
	return cmd
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
