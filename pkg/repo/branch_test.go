package repo

import (
	"errors"
	"testing"
)

func TestBranchLifecycle(t *testing.T) {
	r := testRepo(t)

	c := plumbCommit(t, r, nil, 100, map[string]string{"f": "x"}, "root")
	if err := r.WriteRef("refs/heads/main", c); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}

	if err := r.CreateBranch("topic", c); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.CreateBranch("topic", c); err == nil {
		t.Error("creating an existing branch should fail")
	}

	branches, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 2 || branches[0] != "main" || branches[1] != "topic" {
		t.Errorf("branches: got %v", branches)
	}

	if err := r.DeleteBranch("topic"); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	if err := r.DeleteBranch("topic"); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound, got: %v", err)
	}
}

func TestDeleteCurrentBranchRefused(t *testing.T) {
	r := testRepo(t)

	c := plumbCommit(t, r, nil, 100, map[string]string{"f": "x"}, "root")
	if err := r.WriteRef("refs/heads/main", c); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}

	if err := r.DeleteBranch("main"); err == nil {
		t.Error("deleting the current branch should fail")
	}
}
