package main

import (
	"fmt"

	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var annotate bool
	var message string
	var force bool
	var deleteName string

	cmd := &cobra.Command{
		Use:   "tag [name [object]]",
		Short: "List, create, or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if deleteName != "" {
				if err := r.DeleteTag(deleteName); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted tag %q\n", deleteName)
				return nil
			}

			if len(args) == 0 {
				names, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			targetExpr := "HEAD"
			if len(args) == 2 {
				targetExpr = args[1]
			}
			target, err := r.Resolve(targetExpr)
			if err != nil {
				return err
			}

			if annotate || message != "" {
				tagger, err := r.NowSignature()
				if err != nil {
					return err
				}
				_, err = r.CreateAnnotatedTag(args[0], target, tagger, message, force)
				return err
			}
			return r.CreateTag(args[0], target, force)
		},
	}

	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "create an annotated tag object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "tag message (implies -a)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().StringVarP(&deleteName, "delete", "d", "", "delete the named tag")
	return cmd
}
