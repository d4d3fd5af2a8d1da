// Package recview provides lazy, indexable views over homogeneous records
// embedded in an opaque source, typically a byte buffer.
//
// A [View] binds a source handle, an element count, and an [Extractor]. No
// element is materialized up front and nothing decoded is cached: every
// access recomputes from the source. Copying a View copies the handle, never
// the underlying data.
//
// # Basic Usage
//
//	data := []byte{0, 0, 0, 4, 0, 0, 0, 5}
//
//	view, err := recview.Parse(data, 2, recview.BigEndian, recview.Uint32)
//	if err != nil {
//	    // errors.Is(err, recview.ErrElementOverflow) if data is too short
//	}
//
//	v, ok, err := view.Get(1) // 5, true, nil
//	_, ok, _ = view.Get(2)    // ok == false: absent, not an error
//
//	for v, err := range view.All() {
//	    ...
//	}
//
// # Fixed-width records
//
// [Parse] checks count * element size against the buffer length once, at
// construction. After that, [View.Get] is O(1) and can never read past the
// buffer: each decoder receives exactly the bytes of its own record.
//
// # Parallel traversal
//
// A [Producer] covers a sub-range of a view and can be split in two halves
// repeatedly. The halves share the view read-only and can be consumed by
// different goroutines without synchronization. The union of all leaf
// ranges always reconstructs [0, Len()) exactly once. See package
// [github.com/calvinalkan/recview/pkg/recview/parallel] for a fork/join
// driver built on it.
//
// # Concurrency
//
// Views are immutable values. They are safe for concurrent use as long as
// the caller does not mutate the source while any view over it is live, and
// the extractor is pure.
package recview
