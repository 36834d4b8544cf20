package main

import (
	"fmt"

	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-ignore <path>...",
		Short: "Show which paths the ignore rules exclude",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			ic := repo.NewIgnoreChecker(r.RootDir)
			out := cmd.OutOrStdout()
			for _, p := range args {
				isDir := false
				if st, err := r.Workdir().Stat(p); err == nil {
					isDir = st.IsDir()
				}
				if ic.IsIgnored(p, isDir) {
					fmt.Fprintln(out, p)
				}
			}
			return nil
		},
	}
}
