package repo

import (
	"fmt"
)

// StatusReport is the two-baseline classification of the repository state:
// Staged compares the HEAD tree to the index, Unstaged compares the index
// to the working tree. A path modified in both places appears in both
// lists, each against its own baseline.
type StatusReport struct {
	Branch    string // current branch name, "" when detached
	Detached  bool
	Unborn    bool // no commits yet
	Staged    []Change
	Unstaged  []Change
	Untracked []string
}

// Status computes the working tree status: one snapshot each of the HEAD
// tree, the index, and the working directory, then two merge-join diffs
// over them.
func (r *Repo) Status() (*StatusReport, error) {
	report := &StatusReport{}

	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if head.IsSymbolic() {
		report.Branch = branchFromRefName(head.Symbolic)
	} else {
		report.Detached = true
	}
	if _, born, err := r.HeadCommit(); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	} else if !born {
		report.Unborn = true
	}

	headTree, err := r.HeadTree()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	indexTree := r.IndexTree(stg)
	workTree, err := r.WorktreeTree(stg)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	report.Staged = DiffStates(headTree, indexTree)

	for _, c := range DiffStates(indexTree, workTree) {
		if c.Status == ChangeAdded {
			// On disk but never staged.
			report.Untracked = append(report.Untracked, c.Path)
			continue
		}
		report.Unstaged = append(report.Unstaged, c)
	}

	return report, nil
}

func branchFromRefName(name string) string {
	const prefix = "refs/heads/"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):]
	}
	return name
}
