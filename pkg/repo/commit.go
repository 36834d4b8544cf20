package repo

import (
	"fmt"
	"time"

	"github.com/odvcencio/bkk/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// CommitOptions carries everything Commit needs besides the staging area.
// A zero Author is filled in from the repository config and the current
// time.
type CommitOptions struct {
	Message string
	Author  object.Signature
	Signer  CommitSigner
}

// NowSignature builds a Signature for the configured user at the current
// local time.
func (r *Repo) NowSignature() (object.Signature, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return object.Signature{}, err
	}
	name := cfg.User.Name
	if name == "" {
		name = "unknown"
	}
	now := time.Now()
	return object.Signature{
		Name:  name,
		Email: cfg.User.Email,
		When:  now.Unix(),
		TZ:    now.Format("-0700"),
	}, nil
}

// Commit creates a new commit from the current staging area.
//
//  1. Acquire the index lock (the commit reads and depends on the index).
//  2. Read staging; refuse if nothing is staged.
//  3. Build the tree purely from index contents — the working directory is
//     never consulted.
//  4. Resolve HEAD for the parent commit hash (absent for the first commit).
//  5. Write the commit object, signing it when a signer is provided.
//  6. Advance the current branch ref, or HEAD itself when detached.
func (r *Repo) Commit(opts CommitOptions) (object.Hash, error) {
	lock, err := r.lockIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	defer lock.release()

	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if len(stg.Entries) == 0 {
		return "", fmt.Errorf("commit: nothing staged")
	}

	treeHash, err := r.BuildTree(stg)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parents []object.Hash
	parentHash, born, err := r.HeadCommit()
	if err != nil {
		return "", fmt.Errorf("commit: resolve HEAD: %w", err)
	}
	if born {
		parents = append(parents, parentHash)
	}

	author := opts.Author
	if author == (object.Signature{}) {
		author, err = r.NowSignature()
		if err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	}

	commitObj := &object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    author,
		Committer: author,
		Message:   opts.Message,
	}
	if opts.Signer != nil {
		payload := object.CommitSigningPayload(commitObj)
		signature, err := opts.Signer(payload)
		if err != nil {
			return "", fmt.Errorf("commit: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: read HEAD: %w", err)
	}
	if head.IsSymbolic() {
		if err := r.WriteRef(head.Symbolic, commitHash); err != nil {
			return "", fmt.Errorf("commit: update ref %q: %w", head.Symbolic, err)
		}
	} else {
		if err := r.SetHeadDetached(commitHash); err != nil {
			return "", fmt.Errorf("commit: update detached HEAD: %w", err)
		}
	}

	return commitHash, nil
}
