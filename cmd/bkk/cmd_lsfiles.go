package main

import (
	"fmt"

	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/spf13/cobra"
)

func newLsFilesCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "List staged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			stg, err := r.ReadStaging()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range stg.SortedEntries() {
				if verbose {
					fmt.Fprintf(out, "%s %s %s\n", e.Mode, shortHash(string(e.BlobHash)), e.Path)
				} else {
					fmt.Fprintln(out, e.Path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show mode and blob hash")
	return cmd
}
