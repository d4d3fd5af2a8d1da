package recview

import "iter"

// Extractor maps (source, index) to an element.
//
// An Extractor must be pure with respect to an immutable source: calling it
// twice with the same index returns the same element. It must not capture
// mutable state, since parallel traversal calls it from several goroutines at
// once. Capturing immutable values (a layout, a record width) is fine.
//
// Indices passed to an Extractor are always in [0, count). Absence is handled
// by [View.Get] and never reaches the extractor; a non-nil error means the
// element at idx could not be decoded.
type Extractor[S, E any] func(src S, idx int) (E, error)

// View is a lazy, indexable, read-only sequence of count elements decoded on
// demand from src.
//
// The zero View is empty and valid.
type View[S, E any] struct {
	src     S
	count   int
	extract Extractor[S, E]
}

// New creates a view over src with count elements decoded by extract.
//
// New does not validate that extract is safe to call for every index below
// count; that is the job of specializations such as [Parse], or the caller.
//
// Panics if count is negative or extract is nil.
func New[S, E any](src S, count int, extract Extractor[S, E]) View[S, E] {
	if count < 0 {
		panic("recview: negative count")
	}

	if extract == nil {
		panic("recview: extractor is nil")
	}

	return View[S, E]{src: src, count: count, extract: extract}
}

// Len returns the number of addressable elements.
func (v View[S, E]) Len() int {
	return v.count
}

// Source returns the source handle the view reads from.
//
// The view borrows the source; the caller keeps ownership of the underlying
// data and must not mutate it while the view is in use.
func (v View[S, E]) Source() S {
	return v.src
}

// Get returns the element at idx.
//
// If idx is out of range, Get returns found == false and a nil error without
// touching the source. Otherwise found is true and err reports a decode
// failure, if any.
func (v View[S, E]) Get(idx int) (E, bool, error) {
	var zero E

	if idx < 0 || idx >= v.count {
		return zero, false, nil
	}

	elem, err := v.extract(v.src, idx)
	if err != nil {
		return zero, true, err
	}

	return elem, true, nil
}

// Clone returns a copy of the view sharing the same source handle.
//
// Views are values, so plain assignment clones as well. Clone exists for
// readability at call sites that hand a view to another goroutine.
func (v View[S, E]) Clone() View[S, E] {
	return v
}

// Iter returns a fresh sequential iterator positioned before index 0.
//
// Every call starts over, so a view can be iterated any number of times.
func (v View[S, E]) Iter() *Iterator[S, E] {
	return &Iterator[S, E]{view: v}
}

// All returns an iterator over the elements in ascending index order.
//
// On the first decode failure, All yields the zero element with the error
// and stops.
func (v View[S, E]) All() iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		it := v.Iter()

		for it.Next() {
			if !yield(it.Value(), nil) {
				return
			}
		}

		if err := it.Err(); err != nil {
			var zero E

			yield(zero, err)
		}
	}
}

// Collect decodes every element in index order.
//
// Returns the first decode error encountered, with no partial result.
func (v View[S, E]) Collect() ([]E, error) {
	out := make([]E, 0, v.count)

	it := v.Iter()
	for it.Next() {
		out = append(out, it.Value())
	}

	if err := it.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
