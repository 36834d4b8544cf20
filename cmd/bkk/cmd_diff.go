package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/bkk/pkg/object"
	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/odvcencio/bkk/pkg/textdiff"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var staged bool
	var stat bool

	cmd := &cobra.Command{
		Use:   "diff [rev [rev]]",
		Short: "Show changes between snapshots",
		Long: `With no arguments, compares the staging area to the working tree.
With --staged, compares HEAD to the staging area.
With two revisions, compares their trees.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var changes []repo.Change
			worktreeNew := false
			switch {
			case len(args) == 2:
				a, err := r.Resolve(args[0])
				if err != nil {
					return err
				}
				b, err := r.Resolve(args[1])
				if err != nil {
					return err
				}
				changes, err = r.DiffCommits(a, b)
				if err != nil {
					return err
				}
			case staged:
				changes, err = r.DiffHeadIndex()
				if err != nil {
					return err
				}
			default:
				changes, err = r.DiffIndexWorktree()
				if err != nil {
					return err
				}
				worktreeNew = true
			}

			out := cmd.OutOrStdout()
			if stat {
				printChangeStat(out, changes)
				return nil
			}
			return printUnified(out, r, changes, worktreeNew)
		},
	}

	cmd.Flags().BoolVar(&staged, "staged", false, "compare HEAD to the staging area")
	cmd.Flags().BoolVar(&stat, "stat", false, "show a change summary instead of content")
	return cmd
}

// printChangeStat prints the one-line-per-path summary form.
func printChangeStat(out io.Writer, changes []repo.Change) {
	for _, c := range changes {
		switch c.Status {
		case repo.ChangeAdded:
			fmt.Fprintf(out, "added     %s (%s)\n", c.Path, shortHash(string(c.NewBlob)))
		case repo.ChangeDeleted:
			fmt.Fprintf(out, "deleted   %s (%s)\n", c.Path, shortHash(string(c.OldBlob)))
		case repo.ChangeModified:
			fmt.Fprintf(out, "modified  %s (%s -> %s)\n", c.Path,
				shortHash(string(c.OldBlob)), shortHash(string(c.NewBlob)))
		}
	}
}

// printUnified prints line-level unified diffs for each change. When
// worktreeNew is set the new side of a change may not exist in the object
// store yet, so it is read from the working tree instead.
func printUnified(out io.Writer, r *repo.Repo, changes []repo.Change, worktreeNew bool) error {
	for _, c := range changes {
		oldContent, err := changeSide(r, c.OldBlob, "", false)
		if err != nil {
			return err
		}
		newContent, err := changeSide(r, c.NewBlob, c.Path, worktreeNew)
		if err != nil {
			return err
		}

		if textdiff.IsBinary(oldContent) || textdiff.IsBinary(newContent) {
			fmt.Fprintf(out, "Binary files a/%s and b/%s differ\n", c.Path, c.Path)
			continue
		}
		fmt.Fprint(out, textdiff.Unified(c.Path, string(oldContent), string(newContent), textdiff.DefaultContext))
	}
	return nil
}

// changeSide fetches one side of a change. An empty hash means the side does
// not exist (added or deleted path). fromWorktree falls back to the file on
// disk when the blob is absent from the store.
func changeSide(r *repo.Repo, h object.Hash, path string, fromWorktree bool) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	blob, err := r.Store.ReadBlob(h)
	if err == nil {
		return blob.Data, nil
	}
	if fromWorktree && path != "" {
		return r.Workdir().ReadFile(path)
	}
	return nil, err
}
