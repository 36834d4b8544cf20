package object

import "fmt"

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeGitlink    = "160000"
)

// ValidTreeMode reports whether mode is one of the recognized entry kinds.
func ValidTreeMode(mode string) bool {
	switch mode {
	case TreeModeDir, TreeModeFile, TreeModeExecutable, TreeModeSymlink, TreeModeGitlink:
		return true
	}
	return false
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// Signature identifies the author or committer of a commit, or the tagger
// of an annotated tag. When is a Unix timestamp; TZ is a UTC offset in the
// form "+0100" / "-0500".
type Signature struct {
	Name  string
	Email string
	When  int64
	TZ    string
}

// String renders the signature in its canonical serialized form:
// "Name <email> 1234567890 +0000".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When, s.TZ)
}

// TreeEntry is one entry in a tree object. Target points at a Blob for file
// kinds and at another TreeObj for TreeModeDir.
type TreeEntry struct {
	Mode   string
	Name   string
	Target Hash
}

// IsDir reports whether the entry references a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// TreeObj holds a list of tree entries, sorted by Name in canonical form.
type TreeObj struct {
	Entries []TreeEntry
}

// CommitObj represents a commit pointing to a tree with metadata. Parents
// holds zero hashes for a root commit, one for a normal commit, and two or
// more for a merge.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Signature string
	Message   string
}

// TagObj is an annotated tag: a stored object pointing at another object
// with tagger metadata and a message.
type TagObj struct {
	Target     Hash
	TargetType ObjectType
	Name       string
	Tagger     Signature
	Message    string
}
