package object

import (
	"bytes"
	"errors"
	"testing"
)

func TestBlobRoundTrip(t *testing.T) {
	b := &Blob{Data: []byte("hello\x00world")}
	data := MarshalBlob(b)
	got, err := UnmarshalBlob(data)
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if !bytes.Equal(got.Data, b.Data) {
		t.Errorf("Data: got %q, want %q", got.Data, b.Data)
	}
}

func TestTreeRoundTrip(t *testing.T) {
	tr := &TreeObj{Entries: []TreeEntry{
		{Mode: TreeModeFile, Name: "b.txt", Target: HashBytes([]byte("b"))},
		{Mode: TreeModeDir, Name: "sub", Target: HashBytes([]byte("sub"))},
		{Mode: TreeModeExecutable, Name: "a.sh", Target: HashBytes([]byte("a"))},
	}}

	data := MarshalTree(tr)
	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}

	// Entries come back sorted by name regardless of input order.
	wantNames := []string{"a.sh", "b.txt", "sub"}
	if len(got.Entries) != len(wantNames) {
		t.Fatalf("entries: got %d, want %d", len(got.Entries), len(wantNames))
	}
	for i, name := range wantNames {
		if got.Entries[i].Name != name {
			t.Errorf("entry %d: got %q, want %q", i, got.Entries[i].Name, name)
		}
	}

	// Re-encoding the decoded value must reproduce byte-identical output.
	if !bytes.Equal(MarshalTree(got), data) {
		t.Error("re-encoding decoded tree is not byte-identical")
	}
}

func TestTreeCanonicalOrder(t *testing.T) {
	h1 := HashBytes([]byte("1"))
	h2 := HashBytes([]byte("2"))
	a := &TreeObj{Entries: []TreeEntry{
		{Mode: TreeModeFile, Name: "x", Target: h1},
		{Mode: TreeModeFile, Name: "a", Target: h2},
	}}
	b := &TreeObj{Entries: []TreeEntry{
		{Mode: TreeModeFile, Name: "a", Target: h2},
		{Mode: TreeModeFile, Name: "x", Target: h1},
	}}
	if !bytes.Equal(MarshalTree(a), MarshalTree(b)) {
		t.Error("same entries in different order should encode identically")
	}
}

func TestTreeEntryNameWithSpaces(t *testing.T) {
	tr := &TreeObj{Entries: []TreeEntry{
		{Mode: TreeModeFile, Name: "my file.txt", Target: HashBytes([]byte("content"))},
	}}

	got, err := UnmarshalTree(MarshalTree(tr))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(got.Entries))
	}
	if got.Entries[0].Name != "my file.txt" {
		t.Errorf("Name: got %q, want %q", got.Entries[0].Name, "my file.txt")
	}
	if got.Entries[0].Target != tr.Entries[0].Target {
		t.Errorf("Target: got %q, want %q", got.Entries[0].Target, tr.Entries[0].Target)
	}
}

func TestTreeMalformedEntries(t *testing.T) {
	h := string(HashBytes([]byte("x")))
	cases := []struct {
		name string
		line string
	}{
		{"unknown mode", "777777 " + h + " evil\n"},
		{"short target", "100644 cafe f.txt\n"},
		{"non-hex target", "100644 " + h[:63] + "z f.txt\n"},
		{"empty name", "100644 " + h + " \n"},
		{"missing fields", "100644 " + h + "\n"},
	}
	for _, tc := range cases {
		if _, err := UnmarshalTree([]byte(tc.line)); !errors.Is(err, ErrMalformedObject) {
			t.Errorf("%s: expected ErrMalformedObject, got: %v", tc.name, err)
		}
	}
}

func TestCommitRoundTrip(t *testing.T) {
	c := &CommitObj{
		TreeHash: "abc123",
		Parents:  []Hash{"p1", "p2"},
		Author: Signature{
			Name: "Ada Lovelace", Email: "ada@example.com", When: 1700000000, TZ: "+0100",
		},
		Committer: Signature{
			Name: "Ada Lovelace", Email: "ada@example.com", When: 1700000100, TZ: "+0100",
		},
		Signature: "sshsig-v1:ssh-ed25519:pub:sig",
		Message:   "merge feature\n\nwith a body",
	}

	data := MarshalCommit(c)
	got, err := UnmarshalCommit(data)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}

	if got.TreeHash != c.TreeHash {
		t.Errorf("TreeHash: got %q, want %q", got.TreeHash, c.TreeHash)
	}
	if len(got.Parents) != 2 || got.Parents[0] != "p1" || got.Parents[1] != "p2" {
		t.Errorf("Parents: got %v", got.Parents)
	}
	if got.Author != c.Author {
		t.Errorf("Author: got %+v, want %+v", got.Author, c.Author)
	}
	if got.Committer != c.Committer {
		t.Errorf("Committer: got %+v, want %+v", got.Committer, c.Committer)
	}
	if got.Signature != c.Signature {
		t.Errorf("Signature: got %q, want %q", got.Signature, c.Signature)
	}
	if got.Message != c.Message {
		t.Errorf("Message: got %q, want %q", got.Message, c.Message)
	}

	if !bytes.Equal(MarshalCommit(got), data) {
		t.Error("re-encoding decoded commit is not byte-identical")
	}
}

func TestCommitMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no separator", "tree abc\nauthor A <a@x> 1 +0000"},
		{"unknown key", "tree abc\nauthor A <a@x> 1 +0000\ncommitter A <a@x> 1 +0000\nbogus v\n\nmsg"},
		{"missing tree", "author A <a@x> 1 +0000\ncommitter A <a@x> 1 +0000\n\nmsg"},
		{"bad author", "tree abc\nauthor nonsense\ncommitter A <a@x> 1 +0000\n\nmsg"},
	}
	for _, tc := range cases {
		if _, err := UnmarshalCommit([]byte(tc.data)); !errors.Is(err, ErrMalformedObject) {
			t.Errorf("%s: expected ErrMalformedObject, got: %v", tc.name, err)
		}
	}
}

func TestTagRoundTrip(t *testing.T) {
	tag := &TagObj{
		Target:     "deadbeef",
		TargetType: TypeCommit,
		Name:       "v1.0.0",
		Tagger:     Signature{Name: "Rel Eng", Email: "rel@example.com", When: 1700000000, TZ: "-0500"},
		Message:    "first release",
	}

	data := MarshalTag(tag)
	got, err := UnmarshalTag(data)
	if err != nil {
		t.Fatalf("UnmarshalTag: %v", err)
	}
	if got.Target != tag.Target || got.TargetType != tag.TargetType || got.Name != tag.Name {
		t.Errorf("tag fields: got %+v", got)
	}
	if got.Tagger != tag.Tagger {
		t.Errorf("Tagger: got %+v, want %+v", got.Tagger, tag.Tagger)
	}
	if got.Message != tag.Message {
		t.Errorf("Message: got %q, want %q", got.Message, tag.Message)
	}
	if !bytes.Equal(MarshalTag(got), data) {
		t.Error("re-encoding decoded tag is not byte-identical")
	}
}

func TestParseSignature(t *testing.T) {
	sig, err := ParseSignature("Grace Hopper <grace@navy.mil> 123456789 +0000")
	if err != nil {
		t.Fatalf("ParseSignature: %v", err)
	}
	want := Signature{Name: "Grace Hopper", Email: "grace@navy.mil", When: 123456789, TZ: "+0000"}
	if sig != want {
		t.Errorf("got %+v, want %+v", sig, want)
	}

	if _, err := ParseSignature("no brackets here"); !errors.Is(err, ErrMalformedObject) {
		t.Errorf("expected ErrMalformedObject, got: %v", err)
	}
}
