package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/bkk/pkg/object"
)

// TreeState is the blob hash and mode recorded for one path in a flattened
// tree snapshot.
type TreeState struct {
	Blob object.Hash
	Mode string
}

// BuildTree converts the flat staging entries into a hierarchical tree
// structure, writing TreeObj objects to the store and returning the root
// hash. Staging entries use forward-slash paths; BuildTree groups them by
// directory and recursively creates subtrees.
func (r *Repo) BuildTree(s *Staging) (object.Hash, error) {
	return r.buildTreeDir(s, "")
}

// buildTreeDir builds a TreeObj for the given directory prefix and writes it
// to the store. It returns the tree's hash.
func (r *Repo) buildTreeDir(s *Staging, prefix string) (object.Hash, error) {
	files := make(map[string]*StagingEntry) // name -> entry
	subdirs := make(map[string]struct{})    // immediate child dir names

	for p, entry := range s.Entries {
		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			files[rel] = entry
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		// A name cannot be both a file and a directory.
		if _, isFile := files[name]; !isFile {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if entry, isFile := files[name]; isFile {
			entries = append(entries, object.TreeEntry{
				Mode:   normalizeFileMode(entry.Mode),
				Name:   name,
				Target: entry.BlobHash,
			})
		} else {
			childPrefix := name
			if prefix != "" {
				childPrefix = prefix + "/" + name
			}
			subHash, err := r.buildTreeDir(s, childPrefix)
			if err != nil {
				return "", fmt.Errorf("build tree %q: %w", childPrefix, err)
			}
			entries = append(entries, object.TreeEntry{
				Mode:   object.TreeModeDir,
				Name:   name,
				Target: subHash,
			})
		}
	}

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning a path → state map
// with full forward-slash paths.
func (r *Repo) FlattenTree(h object.Hash) (map[string]TreeState, error) {
	out := make(map[string]TreeState)
	if err := r.flattenTreeRec(h, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string, out map[string]TreeState) error {
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	for _, entry := range treeObj.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = prefix + "/" + entry.Name
		}

		if entry.IsDir() {
			if err := r.flattenTreeRec(entry.Target, fullPath, out); err != nil {
				return err
			}
			continue
		}
		out[fullPath] = TreeState{Blob: entry.Target, Mode: normalizeFileMode(entry.Mode)}
	}
	return nil
}

// CommitTree flattens the tree of the given commit (or annotated tag
// pointing at a commit).
func (r *Repo) CommitTree(h object.Hash) (map[string]TreeState, error) {
	ch, err := r.peelToCommit(h)
	if err != nil {
		return nil, err
	}
	c, err := r.Store.ReadCommit(ch)
	if err != nil {
		return nil, err
	}
	return r.FlattenTree(c.TreeHash)
}
