package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by Name so that
// encoding is canonical: two trees with the same entries always produce
// byte-identical output. Each entry is one line:
//
//	mode target name
//
// The name goes last because it is the only field that may contain spaces;
// mode and target are fixed-alphabet tokens that split off the front
// unambiguously. Names cannot contain newlines.
func MarshalTree(tr *TreeObj) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		mode := e.Mode
		if mode == "" {
			mode = TreeModeFile
		}
		fmt.Fprintf(&buf, "%s %s %s\n", mode, string(e.Target), e.Name)
	}
	return buf.Bytes()
}

// UnmarshalTree parses a TreeObj from its serialized form. Entries with an
// unrecognized mode, a target that is not a full hash, or an empty name are
// rejected.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return tr, nil
	}
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unmarshal tree: entry %q: %w", line, ErrMalformedObject)
		}
		if !ValidTreeMode(parts[0]) {
			return nil, fmt.Errorf("unmarshal tree: unknown mode %q: %w", parts[0], ErrMalformedObject)
		}
		if !IsFullHash(parts[1]) {
			return nil, fmt.Errorf("unmarshal tree: bad target %q: %w", parts[1], ErrMalformedObject)
		}
		if parts[2] == "" {
			return nil, fmt.Errorf("unmarshal tree: empty entry name: %w", ErrMalformedObject)
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Mode:   parts[0],
			Target: Hash(parts[1]),
			Name:   parts[2],
		})
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// Signature
// ---------------------------------------------------------------------------

// ParseSignature parses "Name <email> 1234567890 +0000".
func ParseSignature(s string) (Signature, error) {
	open := strings.Index(s, " <")
	close := strings.Index(s, "> ")
	if open < 0 || close < open {
		return Signature{}, fmt.Errorf("parse signature %q: %w", s, ErrMalformedObject)
	}

	sig := Signature{
		Name:  s[:open],
		Email: s[open+2 : close],
	}

	rest := strings.Fields(s[close+2:])
	if len(rest) != 2 {
		return Signature{}, fmt.Errorf("parse signature %q: %w", s, ErrMalformedObject)
	}
	when, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: bad timestamp: %w", s, ErrMalformedObject)
	}
	sig.When = when
	sig.TZ = rest[1]
	return sig, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H      (zero or more)
//	author Name <email> T TZ
//	committer Name <email> T TZ
//	signature S   (optional)
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "signature %s\n", c.Signature)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator: %w", ErrMalformedObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: header line %q: %w", line, ErrMalformedObject)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: author: %w", err)
			}
			c.Author = sig
		case "committer":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: committer: %w", err)
			}
			c.Committer = sig
		case "signature":
			c.Signature = val
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q: %w", key, ErrMalformedObject)
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("unmarshal commit: missing tree header: %w", ErrMalformedObject)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// TagObj
// ---------------------------------------------------------------------------

// MarshalTag serializes a TagObj:
//
//	object H
//	type commit
//	tag name
//	tagger Name <email> T TZ
//
//	message
func MarshalTag(t *TagObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", string(t.Target))
	fmt.Fprintf(&buf, "type %s\n", t.TargetType)
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	fmt.Fprintf(&buf, "tagger %s\n", t.Tagger)
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// UnmarshalTag parses a TagObj from its serialized form.
func UnmarshalTag(data []byte) (*TagObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal tag: missing header/message separator: %w", ErrMalformedObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	t := &TagObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal tag: header line %q: %w", line, ErrMalformedObject)
		}
		switch key {
		case "object":
			t.Target = Hash(val)
		case "type":
			t.TargetType = ObjectType(val)
		case "tag":
			t.Name = val
		case "tagger":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal tag: tagger: %w", err)
			}
			t.Tagger = sig
		default:
			return nil, fmt.Errorf("unmarshal tag: unknown header key %q: %w", key, ErrMalformedObject)
		}
	}
	if t.Target == "" {
		return nil, fmt.Errorf("unmarshal tag: missing object header: %w", ErrMalformedObject)
	}
	return t, nil
}
