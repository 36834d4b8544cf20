package repo

import (
	"strings"
	"testing"

	"github.com/odvcencio/bkk/pkg/object"
)

func TestCommitAdvancesBranch(t *testing.T) {
	r := testRepo(t)
	writeWorkFile(t, r, "a.txt", "one")

	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	first, err := r.Commit(CommitOptions{Message: "first", Author: testSig(100)})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tip, err := r.ReadRef("refs/heads/main")
	if err != nil {
		t.Fatalf("ReadRef: %v", err)
	}
	if tip != first {
		t.Errorf("branch tip: got %s, want %s", tip, first)
	}

	c, err := r.Store.ReadCommit(first)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 0 {
		t.Errorf("root commit should have no parents, got %v", c.Parents)
	}
	if c.Message != "first" {
		t.Errorf("message: got %q", c.Message)
	}

	// Second commit links to the first.
	writeWorkFile(t, r, "a.txt", "two two")
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := r.Commit(CommitOptions{Message: "second", Author: testSig(200)})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	c2, err := r.Store.ReadCommit(second)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c2.Parents) != 1 || c2.Parents[0] != first {
		t.Errorf("parents: got %v, want [%s]", c2.Parents, first)
	}
}

func TestCommitNothingStaged(t *testing.T) {
	r := testRepo(t)

	if _, err := r.Commit(CommitOptions{Message: "empty", Author: testSig(100)}); err == nil {
		t.Error("commit with an empty staging area should fail")
	} else if !strings.Contains(err.Error(), "nothing staged") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCommitIgnoresWorktreeEdits(t *testing.T) {
	r := testRepo(t)
	writeWorkFile(t, r, "f.txt", "staged content")

	if err := r.Add([]string{"f.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Edit after staging; the commit must capture the staged blob, not the
	// file on disk.
	writeWorkFile(t, r, "f.txt", "later edit that was never staged")

	h, err := r.Commit(CommitOptions{Message: "snapshot", Author: testSig(100)})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	flat, err := r.CommitTree(h)
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	blob, err := r.Store.ReadBlob(flat["f.txt"].Blob)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(blob.Data) != "staged content" {
		t.Errorf("committed content: got %q", blob.Data)
	}
}

func TestCommitDetachedHead(t *testing.T) {
	r := testRepo(t)

	base := plumbCommit(t, r, nil, 100, map[string]string{"f": "x"}, "base")
	if err := r.SetHeadDetached(base); err != nil {
		t.Fatalf("SetHeadDetached: %v", err)
	}

	writeWorkFile(t, r, "g.txt", "g")
	if err := r.Add([]string{"g.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	h, err := r.Commit(CommitOptions{Message: "on detached", Author: testSig(200)})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// HEAD itself moved; no branch was touched.
	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.IsSymbolic() || head.Hash != h {
		t.Errorf("HEAD: got %+v, want detached at %s", head, h)
	}

	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 1 || c.Parents[0] != base {
		t.Errorf("parents: got %v, want [%s]", c.Parents, base)
	}
}

func TestCommitSigned(t *testing.T) {
	r := testRepo(t)
	writeWorkFile(t, r, "f.txt", "signed")

	if err := r.Add([]string{"f.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var signedPayload []byte
	signer := func(payload []byte) (string, error) {
		signedPayload = payload
		return "test-signature", nil
	}
	h, err := r.Commit(CommitOptions{Message: "signed", Author: testSig(100), Signer: signer})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.Signature != "test-signature" {
		t.Errorf("signature: got %q", c.Signature)
	}

	// The payload is the commit without its signature header.
	stripped := *c
	stripped.Signature = ""
	if string(object.CommitSigningPayload(&stripped)) != string(signedPayload) {
		t.Error("signing payload does not match canonical unsigned commit bytes")
	}
}
