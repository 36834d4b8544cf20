package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/bkk/pkg/object"
)

// StagingEntry records the staged state of a single file. Size and ModTime
// cache stat data so unchanged files can be detected without re-hashing.
type StagingEntry struct {
	Path     string      `json:"path"`
	BlobHash object.Hash `json:"blob_hash"`
	Mode     string      `json:"mode"`
	Size     int64       `json:"size"`
	ModTime  int64       `json:"mod_time"`
}

// Staging holds the full staging area (index): the set of paths slated for
// the next commit. It is the single source of truth for commit's tree —
// commit never reads the working directory.
type Staging struct {
	Entries map[string]*StagingEntry
}

// Stage inserts or replaces the entry for path.
func (s *Staging) Stage(e *StagingEntry) {
	s.Entries[e.Path] = e
}

// Unstage removes the entry for path. Returns false if path was not staged.
func (s *Staging) Unstage(path string) bool {
	if _, ok := s.Entries[path]; !ok {
		return false
	}
	delete(s.Entries, path)
	return true
}

// SortedEntries returns the entries ordered by path.
func (s *Staging) SortedEntries() []*StagingEntry {
	out := make([]*StagingEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// stagingFile is the on-disk shape: a sorted entry list, so serialization
// is deterministic for identical contents.
type stagingFile struct {
	Entries []*StagingEntry `json:"entries"`
}

// indexPath returns the filesystem path to the staging index file.
func (r *Repo) indexPath() string {
	return filepath.Join(r.BkkDir, "index")
}

// ReadStaging loads the staging area from .bkk/index. If the file does not
// exist, an empty Staging is returned (no error).
func (r *Repo) ReadStaging() (*Staging, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Staging{Entries: make(map[string]*StagingEntry)}, nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}

	var sf stagingFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("read staging: unmarshal: %w", err)
	}
	stg := &Staging{Entries: make(map[string]*StagingEntry, len(sf.Entries))}
	for _, e := range sf.Entries {
		stg.Entries[e.Path] = e
	}
	return stg, nil
}

// WriteStaging atomically writes the staging area to .bkk/index.
func (r *Repo) WriteStaging(s *Staging) error {
	data, err := json.MarshalIndent(&stagingFile{Entries: s.SortedEntries()}, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}

	// Atomic write via temp file + rename.
	tmp, err := os.CreateTemp(r.BkkDir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("write staging: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write staging: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write staging: close: %w", err)
	}

	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write staging: rename: %w", err)
	}
	return nil
}

// Add stages the given paths. Directories are walked recursively, honoring
// ignore patterns. For each file the content is written to the object store
// as a blob and a staging entry is recorded with the file's stat data. The
// whole read-modify-write cycle runs under the index lock.
func (r *Repo) Add(paths []string) error {
	lock, err := r.lockIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer lock.release()

	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	ic := NewIgnoreChecker(r.RootDir)

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add: resolve path %q: %w", p, err)
		}

		info, err := r.ws.Stat(relPath)
		if err != nil {
			return fmt.Errorf("add: stat %q: %w", relPath, err)
		}

		if !info.IsDir() {
			if err := r.stageFile(stg, relPath); err != nil {
				return fmt.Errorf("add: %w", err)
			}
			continue
		}

		// Directory: stage everything under it that isn't ignored.
		err = r.ws.Walk(func(path string, d fs.DirEntry) error {
			if relPath != "." && path != relPath && !within(path, relPath) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if ic.IsIgnored(path, d.IsDir()) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			return r.stageFile(stg, path)
		})
		if err != nil {
			return fmt.Errorf("add: walk %q: %w", relPath, err)
		}
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// within reports whether path lies under dir (both repo-relative).
func within(path, dir string) bool {
	return len(path) > len(dir) && path[:len(dir)] == dir && path[len(dir)] == '/'
}

// stageFile hashes one file into the store and records its staging entry.
func (r *Repo) stageFile(stg *Staging, relPath string) error {
	content, err := r.ws.ReadFile(relPath)
	if err != nil {
		return fmt.Errorf("read %q: %w", relPath, err)
	}
	info, err := r.ws.Stat(relPath)
	if err != nil {
		return fmt.Errorf("stat %q: %w", relPath, err)
	}

	blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
	if err != nil {
		return fmt.Errorf("write blob %q: %w", relPath, err)
	}

	stg.Stage(&StagingEntry{
		Path:     relPath,
		BlobHash: blobHash,
		Mode:     modeFromFileInfo(info),
		Size:     info.Size(),
		ModTime:  info.ModTime().UnixNano(),
	})
	return nil
}

// Remove unstages the given paths. Unless cached is true, the files are
// also deleted from the working tree. Paths that are not staged are an
// error; nothing is written until all paths validate.
func (r *Repo) Remove(paths []string, cached bool) error {
	lock, err := r.lockIndex()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	defer lock.release()

	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("rm: resolve path %q: %w", p, err)
		}
		if _, ok := stg.Entries[relPath]; !ok {
			return fmt.Errorf("rm: %q is not staged", relPath)
		}
		rels = append(rels, relPath)
	}

	for _, relPath := range rels {
		stg.Unstage(relPath)
		if !cached {
			if err := r.ws.Remove(relPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("rm: remove %q: %w", relPath, err)
			}
		}
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	return nil
}
