package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/bkk/pkg/object"
)

// Repo represents an opened bkk repository.
type Repo struct {
	RootDir string        // working directory root
	BkkDir  string        // .bkk/ directory
	Store   *object.Store // content-addressed object store

	ws Workspace // working-tree collaborator, OS-backed by default
}

// Workdir returns the working-tree collaborator for this repository.
func (r *Repo) Workdir() Workspace {
	return r.ws
}

// SetWorkdir replaces the working-tree collaborator. Intended for callers
// that supply their own filesystem implementation.
func (r *Repo) SetWorkdir(ws Workspace) {
	r.ws = ws
}

// Init creates a new bkk repository at path. It creates the .bkk/ directory
// structure (objects/, refs/heads/, refs/tags/), a HEAD pointing at the
// default branch, and a default config. Returns an error if a .bkk/
// directory already exists.
func Init(path string) (*Repo, error) {
	bkkDir := filepath.Join(path, ".bkk")

	if _, err := os.Stat(bkkDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", bkkDir)
	}

	dirs := []string{
		filepath.Join(bkkDir, "objects"),
		filepath.Join(bkkDir, "refs", "heads"),
		filepath.Join(bkkDir, "refs", "tags"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(bkkDir, "HEAD")
	if err := os.WriteFile(headPath, []byte(symrefPrefix+"refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	descPath := filepath.Join(bkkDir, "description")
	desc := "Unnamed repository; edit this file 'description' to name the repository.\n"
	if err := os.WriteFile(descPath, []byte(desc), 0o644); err != nil {
		return nil, fmt.Errorf("init: write description: %w", err)
	}

	r := &Repo{
		RootDir: path,
		BkkDir:  bkkDir,
		Store:   object.NewStore(bkkDir),
		ws:      newOSWorkspace(path),
	}
	if err := r.WriteConfig(DefaultConfig()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// Open searches upward from path for a .bkk/ directory and opens the
// repository. Returns ErrNotARepository if no .bkk/ directory is found, and
// an error if the repository's format version is unsupported.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		bkkDir := filepath.Join(cur, ".bkk")
		info, err := os.Stat(bkkDir)
		if err == nil && info.IsDir() {
			r := &Repo{
				RootDir: cur,
				BkkDir:  bkkDir,
				Store:   object.NewStore(bkkDir),
				ws:      newOSWorkspace(cur),
			}
			cfg, err := r.ReadConfig()
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			if cfg.Core.RepositoryFormatVersion != 0 {
				return nil, fmt.Errorf("open: unsupported repository format version %d",
					cfg.Core.RepositoryFormatVersion)
			}
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w", path, ErrNotARepository)
		}
		cur = parent
	}
}

// repoRelPath converts a path (absolute, or relative to CWD) into a
// slash-separated path relative to the repository root. Paths that resolve
// outside the repository are treated as already repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
		return filepath.ToSlash(rel), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	abs := filepath.Join(cwd, p)
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}
	if len(rel) >= 2 && rel[:2] == ".." {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}
	return filepath.ToSlash(rel), nil
}
