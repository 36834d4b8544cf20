package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/bkk/pkg/object"
)

// testRepo initializes a fresh repository in a temp directory.
func testRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func testSig(when int64) object.Signature {
	return object.Signature{Name: "Test", Email: "test@example.com", When: when, TZ: "+0000"}
}

// plumbCommit writes a commit straight into the object store, bypassing the
// working tree. files maps repo-relative paths to content. The timestamp is
// explicit so traversal order is deterministic.
func plumbCommit(t *testing.T, r *Repo, parents []object.Hash, when int64, files map[string]string, msg string) object.Hash {
	t.Helper()

	stg := &Staging{Entries: make(map[string]*StagingEntry)}
	for p, content := range files {
		blobHash, err := r.Store.WriteBlob(&object.Blob{Data: []byte(content)})
		if err != nil {
			t.Fatalf("WriteBlob %q: %v", p, err)
		}
		stg.Stage(&StagingEntry{Path: p, BlobHash: blobHash, Mode: object.TreeModeFile})
	}
	treeHash, err := r.BuildTree(stg)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	h, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    testSig(when),
		Committer: testSig(when),
		Message:   msg,
	})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	return h
}

// writeWorkFile creates or overwrites a file in the working tree.
func writeWorkFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	p := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir for %q: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %q: %v", rel, err)
	}
}

// readWorkFile reads a working-tree file.
func readWorkFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %q: %v", rel, err)
	}
	return string(data)
}

// hashesEqual compares a commit sequence against the expected order.
func hashesEqual(got []object.Hash, want []object.Hash) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
