package main

import (
	"fmt"

	"github.com/odvcencio/bkk/pkg/object"
	"github.com/odvcencio/bkk/pkg/repo"
	"github.com/spf13/cobra"
)

func newLsTreeCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree <tree-ish>",
		Short: "Print a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			h, err := r.Resolve(args[0])
			if err != nil {
				return err
			}
			treeHash, err := treeishToTree(r, h)
			if err != nil {
				return err
			}
			return printTree(cmd, r, treeHash, "", recursive)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into sub-trees")
	return cmd
}

// treeishToTree maps a commit, tag, or tree hash to a tree hash.
func treeishToTree(r *repo.Repo, h object.Hash) (object.Hash, error) {
	objType, data, err := r.Store.Read(h)
	if err != nil {
		return "", err
	}
	switch objType {
	case object.TypeTree:
		return h, nil
	case object.TypeCommit:
		c, err := object.UnmarshalCommit(data)
		if err != nil {
			return "", err
		}
		return c.TreeHash, nil
	case object.TypeTag:
		t, err := object.UnmarshalTag(data)
		if err != nil {
			return "", err
		}
		return treeishToTree(r, t.Target)
	}
	return "", fmt.Errorf("object %s is a %s, not a tree-ish", h, objType)
}

func printTree(cmd *cobra.Command, r *repo.Repo, h object.Hash, prefix string, recursive bool) error {
	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range tree.Entries {
		full := e.Name
		if prefix != "" {
			full = prefix + "/" + e.Name
		}
		if e.IsDir() && recursive {
			if err := printTree(cmd, r, e.Target, full, recursive); err != nil {
				return err
			}
			continue
		}
		kind := "blob"
		if e.IsDir() {
			kind = "tree"
		}
		fmt.Fprintf(out, "%6s %s %s\t%s\n", e.Mode, kind, e.Target, full)
	}
	return nil
}
