package repo

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Workspace is the filesystem collaborator the core goes through for every
// working-tree access. Paths are repo-relative with forward slashes. The
// default implementation is OS-backed; tests or embedders may substitute
// their own via SetWorkdir.
type Workspace interface {
	// Walk visits every entry under the working-tree root except the
	// metadata directory itself. fn may return fs.SkipDir for directories.
	Walk(fn func(path string, d fs.DirEntry) error) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Stat(path string) (fs.FileInfo, error)
	Remove(path string) error
	MkdirAll(path string) error
	ReadDir(path string) ([]fs.DirEntry, error)
}

// osWorkspace is the OS-backed Workspace rooted at the repository root.
type osWorkspace struct {
	root string
}

func newOSWorkspace(root string) *osWorkspace {
	return &osWorkspace{root: root}
}

func (w *osWorkspace) abs(path string) string {
	return filepath.Join(w.root, filepath.FromSlash(path))
}

func (w *osWorkspace) Walk(fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if rel == ".bkk" {
			return fs.SkipDir
		}
		return fn(rel, d)
	})
}

func (w *osWorkspace) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(w.abs(path))
}

func (w *osWorkspace) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(w.abs(path), data, perm)
}

func (w *osWorkspace) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(w.abs(path))
}

func (w *osWorkspace) Remove(path string) error {
	return os.Remove(w.abs(path))
}

func (w *osWorkspace) MkdirAll(path string) error {
	return os.MkdirAll(w.abs(path), 0o755)
}

func (w *osWorkspace) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(w.abs(path))
}
