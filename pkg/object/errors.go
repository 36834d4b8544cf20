package object

import "errors"

var (
	// ErrObjectNotFound indicates no stored object matches the requested
	// hash or prefix.
	ErrObjectNotFound = errors.New("object not found")

	// ErrCorruptObject indicates a stored object failed its integrity check
	// on read: the envelope is damaged, the declared length disagrees with
	// the payload, or re-hashing the decoded bytes does not reproduce the id.
	ErrCorruptObject = errors.New("corrupt object")

	// ErrMalformedObject indicates a structural violation while decoding an
	// object body: an unrecognized type tag, a bad tree entry mode, or a
	// header line that cannot be parsed.
	ErrMalformedObject = errors.New("malformed object")

	// ErrAmbiguousPrefix indicates a hash prefix matches more than one
	// stored object.
	ErrAmbiguousPrefix = errors.New("ambiguous object prefix")
)
