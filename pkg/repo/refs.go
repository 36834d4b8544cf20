package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/bkk/pkg/object"
)

const symrefPrefix = "ref: "

// maxSymrefDepth bounds symbolic ref indirection. Normal repositories never
// chain more than one level; the bound exists to turn a misconfigured cycle
// into ErrRefCycle instead of an infinite loop.
const maxSymrefDepth = 16

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// Ref is a named pointer: either direct (Hash set) or symbolic (Symbolic
// names another ref). Exactly one of the two fields is populated.
type Ref struct {
	Name     string
	Hash     object.Hash
	Symbolic string
}

// IsSymbolic reports whether the ref points at another ref rather than an
// object.
func (ref Ref) IsSymbolic() bool {
	return ref.Symbolic != ""
}

// refPath maps a ref name ("HEAD", "refs/heads/main") to its file path.
func (r *Repo) refPath(name string) string {
	return filepath.Join(r.BkkDir, filepath.FromSlash(name))
}

// ReadRefFile reads a single ref file without following symbolic
// indirection. Returns ErrRefNotFound if the file does not exist.
func (r *Repo) ReadRefFile(name string) (Ref, error) {
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Ref{}, fmt.Errorf("ref %q: %w", name, ErrRefNotFound)
		}
		return Ref{}, fmt.Errorf("ref %q: %w", name, err)
	}

	content := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(content, symrefPrefix); ok {
		return Ref{Name: name, Symbolic: strings.TrimSpace(target)}, nil
	}
	return Ref{Name: name, Hash: object.Hash(content)}, nil
}

// ReadRef resolves a ref name to an object hash, following symbolic refs up
// to maxSymrefDepth levels. A chain that exceeds the bound is reported as
// ErrRefCycle.
func (r *Repo) ReadRef(name string) (object.Hash, error) {
	cur := name
	for depth := 0; depth < maxSymrefDepth; depth++ {
		ref, err := r.ReadRefFile(cur)
		if err != nil {
			return "", err
		}
		if !ref.IsSymbolic() {
			return ref.Hash, nil
		}
		cur = ref.Symbolic
	}
	return "", fmt.Errorf("ref %q: %w", name, ErrRefCycle)
}

// WriteRef atomically creates or overwrites a direct ref.
func (r *Repo) WriteRef(name string, h object.Hash) error {
	return r.writeRefValue(name, string(h))
}

// WriteSymbolicRef atomically creates or overwrites a symbolic ref pointing
// at target (another ref name).
func (r *Repo) WriteSymbolicRef(name, target string) error {
	return r.writeRefValue(name, symrefPrefix+target)
}

// writeRefValue writes a ref file using lockfile + rename semantics so a
// concurrent reader never observes a partially written value.
func (r *Repo) writeRefValue(name, value string) error {
	refPath := r.refPath(name)

	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("write ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireLock(lockPath)
	if err != nil {
		return fmt.Errorf("write ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	if _, err := lockFile.WriteString(value + "\n"); err != nil {
		return fmt.Errorf("write ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("write ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("write ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("write ref %q: rename: %w", name, err)
	}
	cleanupLock = false
	return nil
}

// DeleteRef removes a ref file. Returns ErrRefNotFound if it does not exist.
func (r *Repo) DeleteRef(name string) error {
	if err := os.Remove(r.refPath(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete ref %q: %w", name, ErrRefNotFound)
		}
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

// ListRefs lists references under .bkk/refs. Names are returned relative to
// the refs root, e.g. "heads/main", "tags/v1". A missing namespace yields an
// empty map.
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.BkkDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(path, ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		h, err := r.ReadRef("refs/" + name)
		if err != nil {
			return err
		}
		refs[name] = h
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// Head reads .bkk/HEAD. The result is symbolic when HEAD points at a branch
// and direct when HEAD is detached.
func (r *Repo) Head() (Ref, error) {
	return r.ReadRefFile("HEAD")
}

// SetHeadBranch points HEAD at the given branch symbolically.
func (r *Repo) SetHeadBranch(branch string) error {
	return r.WriteSymbolicRef("HEAD", "refs/heads/"+branch)
}

// SetHeadDetached points HEAD directly at a commit hash.
func (r *Repo) SetHeadDetached(h object.Hash) error {
	return r.WriteRef("HEAD", h)
}

// CurrentBranch returns the branch name HEAD points at, or "" when HEAD is
// detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	const prefix = "refs/heads/"
	if strings.HasPrefix(head.Symbolic, prefix) {
		return strings.TrimPrefix(head.Symbolic, prefix), nil
	}
	return "", nil
}

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. "HEAD" resolves through the symbolic chain.
//  2. Names starting with "refs/" are read directly.
//  3. Bare names are tried as "refs/heads/<name>", then "refs/tags/<name>".
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" || strings.HasPrefix(name, "refs/") {
		return r.ReadRef(name)
	}

	h, err := r.ReadRef("refs/heads/" + name)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrRefNotFound) {
		return "", err
	}
	return r.ReadRef("refs/tags/" + name)
}

// HeadCommit resolves HEAD to a commit hash. The second return value is
// false when HEAD is unborn (the pointed-at branch has no commits yet),
// which is a valid state for a fresh repository, not an error.
func (r *Repo) HeadCommit() (object.Hash, bool, error) {
	h, err := r.ReadRef("HEAD")
	if err != nil {
		if errors.Is(err, ErrRefNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return h, true, nil
}

// acquireLock creates lockPath exclusively, retrying briefly if another
// process holds it, and failing rather than blocking indefinitely.
func acquireLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}
