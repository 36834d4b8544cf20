package repo

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/odvcencio/bkk/pkg/object"
)

// Checkout switches the working directory to the state of the target. The
// target can be a branch name or any revision expression.
//
// Algorithm:
//  1. Refuse if the working tree has uncommitted changes.
//  2. Resolve the target: branch name first, then revision expression.
//  3. Flatten the target commit's tree.
//  4. Under the index lock, remove tracked files absent from the target,
//     write the target's files, and reset the index to match the new tree.
//  5. Update HEAD: symbolic for a branch, detached hash otherwise.
func (r *Repo) Checkout(target string) error {
	if err := r.ensureClean(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	isBranch := false
	var targetHash object.Hash

	branchHash, err := r.ReadRef("refs/heads/" + target)
	if err == nil {
		targetHash = branchHash
		isBranch = true
	} else if !errors.Is(err, ErrRefNotFound) {
		return fmt.Errorf("checkout: %w", err)
	} else {
		targetHash, err = r.Resolve(target)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	}

	targetTree, err := r.CommitTree(targetHash)
	if err != nil {
		return fmt.Errorf("checkout: flatten target tree: %w", err)
	}

	lock, err := r.lockIndex()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	defer lock.release()

	// Remove tracked files that the target does not have.
	for p := range r.trackedFiles() {
		if _, keep := targetTree[p]; keep {
			continue
		}
		if err := r.ws.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checkout: remove %q: %w", p, err)
		}
		r.removeEmptyParents(path.Dir(p))
	}

	// Write the target tree's files.
	for p, st := range targetTree {
		if dir := path.Dir(p); dir != "." {
			if err := r.ws.MkdirAll(dir); err != nil {
				return fmt.Errorf("checkout: mkdir %q: %w", dir, err)
			}
		}
		blob, err := r.Store.ReadBlob(st.Blob)
		if err != nil {
			return fmt.Errorf("checkout: read blob for %q: %w", p, err)
		}
		if err := r.ws.WriteFile(p, blob.Data, filePermFromMode(st.Mode)); err != nil {
			return fmt.Errorf("checkout: write %q: %w", p, err)
		}
	}

	// Reset the index to match the new tree.
	stg := &Staging{Entries: make(map[string]*StagingEntry, len(targetTree))}
	for p, st := range targetTree {
		info, err := r.ws.Stat(p)
		if err != nil {
			return fmt.Errorf("checkout: stat %q: %w", p, err)
		}
		stg.Stage(&StagingEntry{
			Path:     p,
			BlobHash: st.Blob,
			Mode:     st.Mode,
			Size:     info.Size(),
			ModTime:  info.ModTime().UnixNano(),
		})
	}
	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	// Update HEAD.
	if isBranch {
		if err := r.SetHeadBranch(target); err != nil {
			return fmt.Errorf("checkout: update HEAD: %w", err)
		}
	} else {
		if err := r.SetHeadDetached(targetHash); err != nil {
			return fmt.Errorf("checkout: update HEAD: %w", err)
		}
	}

	return nil
}

// ensureClean verifies the working tree has no uncommitted changes, staged
// or unstaged. Untracked files are left alone and do not block checkout.
func (r *Repo) ensureClean() error {
	report, err := r.Status()
	if err != nil {
		return fmt.Errorf("check status: %w", err)
	}
	if len(report.Staged) > 0 || len(report.Unstaged) > 0 {
		return fmt.Errorf("%d change(s) would be overwritten: %w",
			len(report.Staged)+len(report.Unstaged), ErrDirtyWorkingTree)
	}
	return nil
}

// trackedFiles returns the set of all currently tracked paths: the union of
// the HEAD tree and the staging index.
func (r *Repo) trackedFiles() map[string]bool {
	files := make(map[string]bool)

	if headTree, err := r.HeadTree(); err == nil {
		for p := range headTree {
			files[p] = true
		}
	}
	if stg, err := r.ReadStaging(); err == nil {
		for p := range stg.Entries {
			files[p] = true
		}
	}
	return files
}

// removeEmptyParents removes empty directories up to (but not including)
// the repository root. dir is repo-relative.
func (r *Repo) removeEmptyParents(dir string) {
	for dir != "." && dir != "/" {
		entries, err := r.ws.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := r.ws.Remove(dir); err != nil {
			return
		}
		dir = path.Dir(dir)
	}
}
