package repo

import (
	"errors"
	"testing"

	"github.com/odvcencio/bkk/pkg/object"
)

func TestWriteReadDirectRef(t *testing.T) {
	r := testRepo(t)

	h := object.HashBytes([]byte("commit-ish"))
	if err := r.WriteRef("refs/heads/main", h); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}

	got, err := r.ReadRef("refs/heads/main")
	if err != nil {
		t.Fatalf("ReadRef: %v", err)
	}
	if got != h {
		t.Errorf("got %s, want %s", got, h)
	}

	// No leftover lock file.
	if _, err := r.ReadRefFile("refs/heads/main.lock"); !errors.Is(err, ErrRefNotFound) {
		t.Error("lock file left behind after write")
	}
}

func TestSymbolicRefChain(t *testing.T) {
	r := testRepo(t)

	h := object.HashBytes([]byte("tip"))
	if err := r.WriteRef("refs/heads/main", h); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}
	if err := r.WriteSymbolicRef("refs/alias", "refs/heads/main"); err != nil {
		t.Fatalf("WriteSymbolicRef: %v", err)
	}

	// HEAD -> refs/alias -> refs/heads/main -> h
	if err := r.WriteSymbolicRef("HEAD", "refs/alias"); err != nil {
		t.Fatalf("WriteSymbolicRef HEAD: %v", err)
	}
	got, err := r.ReadRef("HEAD")
	if err != nil {
		t.Fatalf("ReadRef HEAD: %v", err)
	}
	if got != h {
		t.Errorf("got %s, want %s", got, h)
	}

	ref, err := r.ReadRefFile("refs/alias")
	if err != nil {
		t.Fatalf("ReadRefFile: %v", err)
	}
	if !ref.IsSymbolic() || ref.Symbolic != "refs/heads/main" {
		t.Errorf("alias: got %+v", ref)
	}
}

func TestRefCycle(t *testing.T) {
	r := testRepo(t)

	if err := r.WriteSymbolicRef("refs/loop-a", "refs/loop-b"); err != nil {
		t.Fatalf("WriteSymbolicRef: %v", err)
	}
	if err := r.WriteSymbolicRef("refs/loop-b", "refs/loop-a"); err != nil {
		t.Fatalf("WriteSymbolicRef: %v", err)
	}

	if _, err := r.ReadRef("refs/loop-a"); !errors.Is(err, ErrRefCycle) {
		t.Errorf("expected ErrRefCycle, got: %v", err)
	}
}

func TestRefNotFound(t *testing.T) {
	r := testRepo(t)

	if _, err := r.ReadRef("refs/heads/nope"); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("ReadRef: expected ErrRefNotFound, got: %v", err)
	}
	if err := r.DeleteRef("refs/heads/nope"); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("DeleteRef: expected ErrRefNotFound, got: %v", err)
	}
}

func TestDeleteRef(t *testing.T) {
	r := testRepo(t)

	h := object.HashBytes([]byte("x"))
	if err := r.WriteRef("refs/heads/gone", h); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}
	if err := r.DeleteRef("refs/heads/gone"); err != nil {
		t.Fatalf("DeleteRef: %v", err)
	}
	if _, err := r.ReadRef("refs/heads/gone"); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound after delete, got: %v", err)
	}
}

func TestListRefs(t *testing.T) {
	r := testRepo(t)

	h1 := object.HashBytes([]byte("one"))
	h2 := object.HashBytes([]byte("two"))
	if err := r.WriteRef("refs/heads/main", h1); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}
	if err := r.WriteRef("refs/tags/v1", h2); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}

	all, err := r.ListRefs("")
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if all["heads/main"] != h1 || all["tags/v1"] != h2 {
		t.Errorf("ListRefs: got %v", all)
	}

	heads, err := r.ListRefs("heads")
	if err != nil {
		t.Fatalf("ListRefs heads: %v", err)
	}
	if len(heads) != 1 || heads["heads/main"] != h1 {
		t.Errorf("ListRefs heads: got %v", heads)
	}
}

func TestHeadStates(t *testing.T) {
	r := testRepo(t)

	// Fresh repository: HEAD points at an unborn branch.
	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Errorf("branch: got %q, want main", branch)
	}
	if _, born, err := r.HeadCommit(); err != nil {
		t.Fatalf("HeadCommit: %v", err)
	} else if born {
		t.Error("fresh repository should report unborn HEAD")
	}

	h := plumbCommit(t, r, nil, 100, map[string]string{"f": "x"}, "root")
	if err := r.WriteRef("refs/heads/main", h); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}
	got, born, err := r.HeadCommit()
	if err != nil || !born || got != h {
		t.Errorf("HeadCommit: got (%s, %v, %v), want (%s, true, nil)", got, born, err, h)
	}

	// Detach HEAD.
	if err := r.SetHeadDetached(h); err != nil {
		t.Fatalf("SetHeadDetached: %v", err)
	}
	branch, err = r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "" {
		t.Errorf("detached HEAD: branch should be empty, got %q", branch)
	}
}

func TestResolveRefPrecedence(t *testing.T) {
	r := testRepo(t)

	headHash := object.HashBytes([]byte("h"))
	tagHash := object.HashBytes([]byte("t"))
	if err := r.WriteRef("refs/heads/dual", headHash); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}
	if err := r.WriteRef("refs/tags/dual", tagHash); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}

	// A bare name resolves to the branch before the tag.
	got, err := r.ResolveRef("dual")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != headHash {
		t.Errorf("got %s, want branch hash %s", got, headHash)
	}

	// Fully qualified names hit their exact namespace.
	got, err = r.ResolveRef("refs/tags/dual")
	if err != nil {
		t.Fatalf("ResolveRef qualified: %v", err)
	}
	if got != tagHash {
		t.Errorf("got %s, want tag hash %s", got, tagHash)
	}
}
