package repo

import (
	"container/heap"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/odvcencio/bkk/pkg/object"
)

// RangeKind classifies a revision range expression.
type RangeKind int

const (
	RangeSingle   RangeKind = iota // "rev": everything reachable from rev
	RangeTwoDot                    // "A..B": reachable from B but not A
	RangeThreeDot                  // "A...B": reachable from exactly one of A, B
	RangeAll                       // "--all": reachable from every ref
)

// Range is the parsed form of a revision range expression. It is transient:
// produced by ParseRange, consumed by ResolveRange, never persisted.
type Range struct {
	Kind RangeKind
	From string
	To   string
}

// ParseRange parses a range expression. "A...B" is checked before "A.."
// since the two-dot form is a prefix of the three-dot form.
func ParseRange(expr string) Range {
	expr = strings.TrimSpace(expr)
	if expr == "--all" {
		return Range{Kind: RangeAll}
	}
	if from, to, ok := strings.Cut(expr, "..."); ok {
		return Range{Kind: RangeThreeDot, From: from, To: to}
	}
	if from, to, ok := strings.Cut(expr, ".."); ok {
		return Range{Kind: RangeTwoDot, From: from, To: to}
	}
	return Range{Kind: RangeSingle, To: expr}
}

// Resolve maps a single-revision expression to a commit hash. The grammar:
// a base name (hash, unambiguous prefix, ref name, or HEAD) followed by any
// number of "^", "^N", and "~N" suffixes.
func (r *Repo) Resolve(expr string) (object.Hash, error) {
	expr = strings.TrimSpace(expr)
	base := expr
	ops := ""
	if i := strings.IndexAny(expr, "^~"); i >= 0 {
		base, ops = expr[:i], expr[i:]
	}

	h, err := r.resolveBase(base)
	if err != nil {
		return "", err
	}

	for len(ops) > 0 {
		op := ops[0]
		ops = ops[1:]

		digits := 0
		for digits < len(ops) && ops[digits] >= '0' && ops[digits] <= '9' {
			digits++
		}
		n := -1
		if digits > 0 {
			n, err = strconv.Atoi(ops[:digits])
			if err != nil {
				return "", fmt.Errorf("resolve %q: bad suffix count: %w", expr, err)
			}
			ops = ops[digits:]
		}

		switch op {
		case '^':
			if n < 0 {
				n = 1
			}
			h, err = r.commitParent(h, n)
		case '~':
			if n < 0 {
				n = 1
			}
			for i := 0; i < n && err == nil; i++ {
				h, err = r.commitParent(h, 1)
			}
		default:
			return "", fmt.Errorf("resolve %q: unexpected suffix %q", expr, string(op))
		}
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", expr, err)
		}
	}

	return h, nil
}

// resolveBase resolves a bare revision name: HEAD, a full hash, a ref name,
// or a hash prefix, in that order. Ref names shadow hash prefixes, matching
// the usual expectation that a branch called "beef" wins over object beef...
func (r *Repo) resolveBase(name string) (object.Hash, error) {
	if name == "" {
		return "", fmt.Errorf("resolve: empty revision")
	}
	if name == "HEAD" || strings.HasPrefix(name, "refs/") {
		return r.ReadRef(name)
	}

	if object.IsFullHash(name) && r.Store.Has(object.Hash(name)) {
		return object.Hash(name), nil
	}

	h, err := r.ResolveRef(name)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrRefNotFound) {
		return "", err
	}

	h, err = r.Store.ResolvePrefix(name)
	if err != nil {
		if errors.Is(err, object.ErrAmbiguousPrefix) {
			return "", fmt.Errorf("revision %q: %w", name, ErrAmbiguousRevision)
		}
		return "", fmt.Errorf("revision %q: %w", name, err)
	}
	return h, nil
}

// ResolveCommit resolves a revision expression like Resolve and then peels
// annotated tags, so the result is always a commit hash.
func (r *Repo) ResolveCommit(expr string) (object.Hash, error) {
	h, err := r.Resolve(expr)
	if err != nil {
		return "", err
	}
	return r.peelToCommit(h)
}

// peelToCommit follows annotated tag objects until it reaches a commit.
func (r *Repo) peelToCommit(h object.Hash) (object.Hash, error) {
	for depth := 0; depth < maxSymrefDepth; depth++ {
		objType, data, err := r.Store.Read(h)
		if err != nil {
			return "", err
		}
		switch objType {
		case object.TypeCommit:
			return h, nil
		case object.TypeTag:
			tag, err := object.UnmarshalTag(data)
			if err != nil {
				return "", err
			}
			h = tag.Target
		default:
			return "", fmt.Errorf("object %s is a %s, not a commit", h, objType)
		}
	}
	return "", fmt.Errorf("object %s: tag chain too deep", h)
}

// commitParent returns the nth parent (1-indexed) of the commit h resolves
// to. n == 0 returns the commit itself, peeled.
func (r *Repo) commitParent(h object.Hash, n int) (object.Hash, error) {
	ch, err := r.peelToCommit(h)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return ch, nil
	}
	c, err := r.Store.ReadCommit(ch)
	if err != nil {
		return "", err
	}
	if n > len(c.Parents) {
		return "", fmt.Errorf("commit %s has %d parent(s), wanted %d: %w",
			ch, len(c.Parents), n, ErrNoSuchParent)
	}
	return c.Parents[n-1], nil
}

// ---------------------------------------------------------------------------
// Ancestor walk
// ---------------------------------------------------------------------------

type queuedCommit struct {
	hash object.Hash
	when int64
}

// commitQueue is a max-heap ordered by commit timestamp, ties broken by
// hash for deterministic output.
type commitQueue []queuedCommit

func (q commitQueue) Len() int { return len(q) }
func (q commitQueue) Less(i, j int) bool {
	if q[i].when != q[j].when {
		return q[i].when > q[j].when
	}
	return q[i].hash < q[j].hash
}
func (q commitQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *commitQueue) Push(x any)   { *q = append(*q, x.(queuedCommit)) }
func (q *commitQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// walkCommits visits every commit reachable from starts, skipping commits in
// excluded, in reverse-chronological order (committer timestamp descending,
// ties broken by hash). The traversal uses an explicit frontier rather than
// recursion; a visited set keyed by hash ensures merge-join points are
// processed once.
func (r *Repo) walkCommits(starts []object.Hash, excluded map[object.Hash]struct{}) ([]object.Hash, error) {
	var pq commitQueue
	heap.Init(&pq)

	visited := make(map[object.Hash]struct{})
	enqueue := func(h object.Hash) error {
		ch, err := r.peelToCommit(h)
		if err != nil {
			return err
		}
		if _, seen := visited[ch]; seen {
			return nil
		}
		if _, skip := excluded[ch]; skip {
			return nil
		}
		visited[ch] = struct{}{}
		c, err := r.Store.ReadCommit(ch)
		if err != nil {
			return err
		}
		heap.Push(&pq, queuedCommit{hash: ch, when: c.Committer.When})
		return nil
	}

	for _, h := range starts {
		if err := enqueue(h); err != nil {
			return nil, err
		}
	}

	var out []object.Hash
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(queuedCommit)
		out = append(out, item.hash)

		c, err := r.Store.ReadCommit(item.hash)
		if err != nil {
			return nil, err
		}
		for _, p := range c.Parents {
			if err := enqueue(p); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// reachableCommits returns the full ancestor closure of starts.
func (r *Repo) reachableCommits(starts []object.Hash) (map[object.Hash]struct{}, error) {
	out := make(map[object.Hash]struct{})
	stack := make([]object.Hash, 0, len(starts))
	for _, h := range starts {
		ch, err := r.peelToCommit(h)
		if err != nil {
			return nil, err
		}
		stack = append(stack, ch)
	}

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[h]; seen {
			continue
		}
		out[h] = struct{}{}

		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, err
		}
		for _, p := range c.Parents {
			stack = append(stack, p)
		}
	}
	return out, nil
}

// ResolveRange resolves a range expression to an ordered commit sequence:
//
//	"rev"    — ancestors of rev, rev included
//	"A..B"   — reachable from B but not from A
//	"A...B"  — reachable from exactly one of A and B
//	"--all"  — reachable from any ref
//
// Resolving HEAD in a repository with no commits yet yields an empty
// sequence, not an error.
func (r *Repo) ResolveRange(expr string) ([]object.Hash, error) {
	rng := ParseRange(expr)

	switch rng.Kind {
	case RangeSingle:
		h, err := r.Resolve(rng.To)
		if err != nil {
			if rng.To == "HEAD" && errors.Is(err, ErrRefNotFound) {
				return nil, nil // unborn HEAD
			}
			return nil, err
		}
		return r.walkCommits([]object.Hash{h}, nil)

	case RangeTwoDot:
		from, err := r.Resolve(rng.From)
		if err != nil {
			return nil, err
		}
		to, err := r.Resolve(rng.To)
		if err != nil {
			return nil, err
		}
		excluded, err := r.reachableCommits([]object.Hash{from})
		if err != nil {
			return nil, err
		}
		return r.walkCommits([]object.Hash{to}, excluded)

	case RangeThreeDot:
		from, err := r.Resolve(rng.From)
		if err != nil {
			return nil, err
		}
		to, err := r.Resolve(rng.To)
		if err != nil {
			return nil, err
		}
		ra, err := r.reachableCommits([]object.Hash{from})
		if err != nil {
			return nil, err
		}
		rb, err := r.reachableCommits([]object.Hash{to})
		if err != nil {
			return nil, err
		}
		both := make(map[object.Hash]struct{})
		for h := range ra {
			if _, ok := rb[h]; ok {
				both[h] = struct{}{}
			}
		}
		return r.walkCommits([]object.Hash{from, to}, both)

	case RangeAll:
		refs, err := r.ListRefs("")
		if err != nil {
			return nil, err
		}
		var tips []object.Hash
		for _, h := range refs {
			tips = append(tips, h)
		}
		if h, born, err := r.HeadCommit(); err != nil {
			return nil, err
		} else if born {
			tips = append(tips, h)
		}
		return r.walkCommits(tips, nil)
	}

	return nil, fmt.Errorf("resolve range %q: unknown range kind", expr)
}

// LogEntry pairs a commit hash with its decoded object.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log resolves a range expression and returns up to limit commits in
// reverse-chronological order. limit <= 0 means no limit.
func (r *Repo) Log(expr string, limit int) ([]LogEntry, error) {
	hashes, err := r.ResolveRange(expr)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	if limit > 0 && len(hashes) > limit {
		hashes = hashes[:limit]
	}

	entries := make([]LogEntry, 0, len(hashes))
	for _, h := range hashes {
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", h, err)
		}
		entries = append(entries, LogEntry{Hash: h, Commit: c})
	}
	return entries, nil
}
