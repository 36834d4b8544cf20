package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Objects are zlib-compressed at
// rest; the hash always covers the uncompressed envelope bytes.
//
// The store is append-only: Write never replaces an existing object, and
// nothing is ever deleted.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if len(h) != hexLen {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. The envelope format
// is "type len\0content"; the envelope is zlib-compressed on disk. Writing
// an object that already exists is a no-op (content deduplication). Writes
// are atomic: data goes to a temp file which is then renamed into place, so
// a crash mid-write never leaves a partial object visible under its hash.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)

	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write compress close: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	dest := s.objectPath(h)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
// The decompressed envelope is re-hashed and checked against h; a mismatch
// (or a damaged envelope) is reported as ErrCorruptObject and never masked.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if len(h) != hexLen {
		return "", nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
	}

	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: decompress: %w", h, ErrCorruptObject)
	}
	raw, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: decompress: %w", h, ErrCorruptObject)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: no NUL in envelope: %w", h, ErrCorruptObject)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: envelope header %q: %w", h, header, ErrCorruptObject)
	}
	objType := ObjectType(parts[0])
	switch objType {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
	default:
		return "", nil, fmt.Errorf("object read %s: unknown type %q: %w", h, objType, ErrMalformedObject)
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: envelope length %q: %w", h, parts[1], ErrCorruptObject)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d): %w",
			h, length, len(content), ErrCorruptObject)
	}

	if got := HashObject(objType, content); got != h {
		return "", nil, fmt.Errorf("object read %s: hash mismatch (computed %s): %w", h, got, ErrCorruptObject)
	}

	return objType, content, nil
}

// minPrefixLen is the shortest hash prefix ResolvePrefix accepts; the
// fan-out layout needs at least the first directory level to scan.
const minPrefixLen = 2

// ResolvePrefix expands a hash prefix to the unique full hash it denotes.
// It returns ErrAmbiguousPrefix when two or more objects match and
// ErrObjectNotFound when none do.
func (s *Store) ResolvePrefix(prefix string) (Hash, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) < minPrefixLen || len(prefix) > hexLen || !isHex(prefix) {
		return "", fmt.Errorf("resolve prefix %q: %w", prefix, ErrObjectNotFound)
	}
	if len(prefix) == hexLen {
		h := Hash(prefix)
		if !s.Has(h) {
			return "", fmt.Errorf("resolve prefix %q: %w", prefix, ErrObjectNotFound)
		}
		return h, nil
	}

	fanout := filepath.Join(s.root, "objects", prefix[:2])
	entries, err := os.ReadDir(fanout)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("resolve prefix %q: %w", prefix, ErrObjectNotFound)
		}
		return "", fmt.Errorf("resolve prefix %q: %w", prefix, err)
	}

	rest := prefix[2:]
	var found Hash
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, rest) {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("resolve prefix %q: %w", prefix, ErrAmbiguousPrefix)
		}
		found = Hash(prefix[:2] + name)
	}
	if found == "" {
		return "", fmt.Errorf("resolve prefix %q: %w", prefix, ErrObjectNotFound)
	}
	return found, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", h, objType, TypeBlob, ErrMalformedObject)
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", h, objType, TypeTree, ErrMalformedObject)
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", h, objType, TypeCommit, ErrMalformedObject)
	}
	return UnmarshalCommit(data)
}

// WriteTag serializes and stores a TagObj.
func (s *Store) WriteTag(t *TagObj) (Hash, error) {
	return s.Write(TypeTag, MarshalTag(t))
}

// ReadTag reads and deserializes a TagObj.
func (s *Store) ReadTag(h Hash) (*TagObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTag {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", h, objType, TypeTag, ErrMalformedObject)
	}
	return UnmarshalTag(data)
}
