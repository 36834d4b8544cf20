package repo

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/odvcencio/bkk/pkg/object"
)

// ChangeStatus classifies one path in a change set.
type ChangeStatus int

const (
	ChangeUnchanged ChangeStatus = iota
	ChangeAdded
	ChangeModified
	ChangeDeleted
)

func (s ChangeStatus) String() string {
	switch s {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	}
	return "unchanged"
}

// Change records the difference for one path between two snapshots. OldBlob
// is empty for additions, NewBlob for deletions.
type Change struct {
	Path    string
	Status  ChangeStatus
	OldBlob object.Hash
	NewBlob object.Hash
}

// DiffStates compares two path → state snapshots with a merge-join over
// their sorted key sequences. Paths only on the left are deletions, only on
// the right are additions, on both with differing blob or mode are
// modifications. Unchanged paths are omitted. Output is ordered by path.
func DiffStates(old, new map[string]TreeState) []Change {
	oldKeys := sortedKeys(old)
	newKeys := sortedKeys(new)

	var out []Change
	i, j := 0, 0
	for i < len(oldKeys) || j < len(newKeys) {
		switch {
		case j >= len(newKeys) || (i < len(oldKeys) && oldKeys[i] < newKeys[j]):
			p := oldKeys[i]
			out = append(out, Change{Path: p, Status: ChangeDeleted, OldBlob: old[p].Blob})
			i++
		case i >= len(oldKeys) || newKeys[j] < oldKeys[i]:
			p := newKeys[j]
			out = append(out, Change{Path: p, Status: ChangeAdded, NewBlob: new[p].Blob})
			j++
		default:
			p := oldKeys[i]
			if old[p] != new[p] {
				out = append(out, Change{
					Path:    p,
					Status:  ChangeModified,
					OldBlob: old[p].Blob,
					NewBlob: new[p].Blob,
				})
			}
			i++
			j++
		}
	}
	return out
}

func sortedKeys(m map[string]TreeState) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HeadTree flattens the HEAD commit's tree. An unborn HEAD yields an empty
// snapshot.
func (r *Repo) HeadTree() (map[string]TreeState, error) {
	h, born, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}
	if !born {
		return map[string]TreeState{}, nil
	}
	return r.CommitTree(h)
}

// IndexTree converts the staging area into a path → state snapshot.
func (r *Repo) IndexTree(stg *Staging) map[string]TreeState {
	out := make(map[string]TreeState, len(stg.Entries))
	for p, e := range stg.Entries {
		out[p] = TreeState{Blob: e.BlobHash, Mode: normalizeFileMode(e.Mode)}
	}
	return out
}

// WorktreeTree snapshots the working directory as a path → state map,
// hashing current file bytes. A staged entry whose cached stat data still
// matches the file short-circuits the re-hash. Ignored paths are skipped.
func (r *Repo) WorktreeTree(stg *Staging) (map[string]TreeState, error) {
	ic := NewIgnoreChecker(r.RootDir)
	out := make(map[string]TreeState)

	err := r.ws.Walk(func(path string, d fs.DirEntry) error {
		if ic.IsIgnored(path, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := r.ws.Stat(path)
		if err != nil {
			return err
		}
		mode := modeFromFileInfo(info)

		if se, ok := stg.Entries[path]; ok &&
			se.Size == info.Size() &&
			se.ModTime == info.ModTime().UnixNano() &&
			normalizeFileMode(se.Mode) == mode {
			out[path] = TreeState{Blob: se.BlobHash, Mode: mode}
			return nil
		}

		content, err := r.ws.ReadFile(path)
		if err != nil {
			return err
		}
		out[path] = TreeState{
			Blob: object.HashObject(object.TypeBlob, content),
			Mode: mode,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("worktree snapshot: %w", err)
	}
	return out, nil
}

// DiffCommits compares the trees of two commits.
func (r *Repo) DiffCommits(a, b object.Hash) ([]Change, error) {
	oldState, err := r.CommitTree(a)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	newState, err := r.CommitTree(b)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return DiffStates(oldState, newState), nil
}

// DiffHeadIndex compares the HEAD tree against the staging area: the
// "staged" half of status.
func (r *Repo) DiffHeadIndex() ([]Change, error) {
	head, err := r.HeadTree()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return DiffStates(head, r.IndexTree(stg)), nil
}

// DiffIndexWorktree compares the staging area against the working tree: the
// "unstaged" half of status. Untracked files appear as additions.
func (r *Repo) DiffIndexWorktree() ([]Change, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	work, err := r.WorktreeTree(stg)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return DiffStates(r.IndexTree(stg), work), nil
}
