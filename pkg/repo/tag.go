package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/bkk/pkg/object"
)

// CreateTag creates a lightweight tag ref under refs/tags/ pointing
// directly at target. Returns an error if the tag exists and force is off.
func (r *Repo) CreateTag(name string, target object.Hash, force bool) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if strings.TrimSpace(string(target)) == "" {
		return fmt.Errorf("create tag: target hash is required")
	}

	refName := "refs/tags/" + name
	if !force {
		if _, err := r.ReadRefFile(refName); err == nil {
			return fmt.Errorf("create tag: tag %q already exists", name)
		} else if !errors.Is(err, ErrRefNotFound) {
			return fmt.Errorf("create tag: %w", err)
		}
	}
	if err := r.WriteRef(refName, target); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// CreateAnnotatedTag creates an annotated tag: a TagObj in the object store
// carrying tagger and message, with a refs/tags/ ref pointing at it.
func (r *Repo) CreateAnnotatedTag(name string, target object.Hash, tagger object.Signature, message string, force bool) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("create annotated tag: message is required")
	}

	targetType, _, err := r.Store.Read(target)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: read target: %w", err)
	}

	tagObj := &object.TagObj{
		Target:     target,
		TargetType: targetType,
		Name:       name,
		Tagger:     tagger,
		Message:    message,
	}
	tagHash, err := r.Store.WriteTag(tagObj)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: write tag object: %w", err)
	}

	if err := r.CreateTag(name, tagHash, force); err != nil {
		return "", err
	}
	return tagHash, nil
}

// DeleteTag removes the tag ref. The tag object, if any, stays in the
// store.
func (r *Repo) DeleteTag(name string) error {
	if err := r.DeleteRef("refs/tags/" + name); err != nil {
		if errors.Is(err, ErrRefNotFound) {
			return fmt.Errorf("delete tag: tag %q does not exist: %w", name, ErrRefNotFound)
		}
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	return nil
}

// ListTags returns the tag names sorted alphabetically.
func (r *Repo) ListTags() ([]string, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, strings.TrimPrefix(name, "tags/"))
	}
	sort.Strings(names)
	return names, nil
}

func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if strings.ContainsAny(name, " \t\n") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	return nil
}
