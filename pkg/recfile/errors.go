package recfile

import "errors"

// Sentinel errors returned by recfile operations.
var (
	// ErrCorrupt indicates the file is damaged: bad magic, checksum
	// mismatch, or non-zero reserved bytes.
	//
	// Recovery: regenerate the file.
	ErrCorrupt = errors.New("recfile: corrupt")

	// ErrIncompatible indicates an unknown format version or record kind.
	ErrIncompatible = errors.New("recfile: incompatible")

	// ErrClosed indicates the [File] has already been closed.
	//
	// This is a programming error.
	ErrClosed = errors.New("recfile: closed")

	// ErrInvalidInput indicates invalid arguments were provided, for example
	// a value that does not fit the builder's record kind.
	ErrInvalidInput = errors.New("recfile: invalid input")

	// ErrInvalidUUID is returned when decoding a uuid record whose variant
	// is not RFC 4122.
	ErrInvalidUUID = errors.New("recfile: invalid uuid variant")

	// ErrInvalidBool is returned when decoding a bool record that is not 0 or 1.
	ErrInvalidBool = errors.New("recfile: invalid bool")
)
