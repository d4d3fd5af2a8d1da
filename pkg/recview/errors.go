package recview

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by recview operations.
//
// Callers should use [errors.Is] to check error kinds:
//
//	if errors.Is(err, recview.ErrElementOverflow) {
//	    // buffer too short for the requested count
//	}
var (
	// ErrConstruction indicates a [Builder] was finished with a required
	// field missing or with conflicting fields.
	//
	// This is a programming error.
	ErrConstruction = errors.New("recview: construction")

	// ErrElementOverflow indicates count * element size exceeds the
	// length of the source buffer.
	//
	// The concrete error is an [*ElementOverflowError].
	ErrElementOverflow = errors.New("recview: element overflow")

	// ErrDecode indicates a single record failed to decode even though the
	// buffer passed the construction-time bounds check.
	//
	// The concrete error is a [*DecodeError] wrapping the decoder's error.
	ErrDecode = errors.New("recview: decode")

	// ErrInvalidInput indicates invalid arguments were provided.
	//
	// Common causes: negative count, nil layout functions, a non-positive
	// element size for a non-empty view.
	ErrInvalidInput = errors.New("recview: invalid input")
)

// ConstructionError reports which [Builder] field was missing or invalid.
type ConstructionError struct {
	Field  string
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("recview: construction: %s: %s", e.Field, e.Reason)
}

func (*ConstructionError) Unwrap() error {
	return ErrConstruction
}

// ElementOverflowError is returned by [Parse] when the requested records do
// not fit in the source buffer.
type ElementOverflowError struct {
	Count        int
	ElementSize  int
	SourceLength int
}

func (e *ElementOverflowError) Error() string {
	return fmt.Sprintf("recview: element overflow: %d elements of %d bytes exceed source length %d",
		e.Count, e.ElementSize, e.SourceLength)
}

func (*ElementOverflowError) Unwrap() error {
	return ErrElementOverflow
}

// DecodeError wraps a failure reported by a [Layout] decoder for the record
// at Index.
type DecodeError struct {
	Index  int
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("recview: decode record %d at offset %d: %v", e.Index, e.Offset, e.Err)
}

// Unwrap returns both the sentinel and the decoder's error so either can be
// matched with [errors.Is].
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}
