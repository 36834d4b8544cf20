package repo

import "errors"

var (
	// ErrNotARepository indicates an operation was attempted outside an
	// initialized repository.
	ErrNotARepository = errors.New("not a bkk repository")

	// ErrRefNotFound indicates a named ref does not exist.
	ErrRefNotFound = errors.New("ref not found")

	// ErrRefCycle indicates symbolic ref resolution exceeded the indirection
	// bound, which only happens when refs form a cycle.
	ErrRefCycle = errors.New("symbolic ref cycle")

	// ErrNoSuchParent indicates a ^N revision suffix asked for a parent a
	// commit does not have.
	ErrNoSuchParent = errors.New("no such parent")

	// ErrAmbiguousRevision indicates a revision expression matches more than
	// one object.
	ErrAmbiguousRevision = errors.New("ambiguous revision")

	// ErrIndexLocked indicates another mutating operation holds the index
	// lock.
	ErrIndexLocked = errors.New("index is locked")

	// ErrDirtyWorkingTree indicates checkout refused to overwrite
	// uncommitted changes.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
)
