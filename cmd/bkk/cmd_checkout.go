package main

import (
	"fmt"

	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch|revision>",
		Short: "Switch the working tree to another branch or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if err := r.Checkout(args[0]); err != nil {
				return err
			}

			branch, err := r.CurrentBranch()
			if err == nil && branch != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "switched to branch %q\n", branch)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now detached at %s\n", args[0])
			}
			return nil
		},
	}
}
