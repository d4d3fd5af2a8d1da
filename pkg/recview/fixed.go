package recview

import "fmt"

// Records is the source of a fixed-width view: a byte buffer paired with the
// decoding context its layout needs.
type Records[C any] struct {
	Data []byte
	Ctx  C
}

// Layout describes how to decode one fixed-width record.
//
// Size returns the byte width of one record. It must depend only on the
// context, never on the record index, so that record i lives at i * Size.
//
// Decode receives exactly Size bytes: the record itself, capped so that it
// cannot see neighbouring records. It may reject content it considers
// invalid; [View.Get] reports that as a [*DecodeError].
//
// Both functions must be pure.
type Layout[C, E any] struct {
	Size   func(ctx C) int
	Decode func(rec []byte, ctx C) (E, error)
}

// Parse creates a view over count fixed-width records at the start of data.
//
// The bounds check happens once, here: if count records of Size(ctx) bytes do
// not fit in data, Parse returns an [*ElementOverflowError] and no view.
// A count of zero is always accepted, whatever data holds.
//
// Possible errors: [ErrInvalidInput], [ErrElementOverflow].
func Parse[C, E any](data []byte, count int, ctx C, layout Layout[C, E]) (View[Records[C], E], error) {
	if count < 0 {
		return View[Records[C], E]{}, fmt.Errorf("count must be >= 0, got %d: %w", count, ErrInvalidInput)
	}

	if layout.Size == nil || layout.Decode == nil {
		return View[Records[C], E]{}, fmt.Errorf("layout Size and Decode are required: %w", ErrInvalidInput)
	}

	src := Records[C]{Data: data, Ctx: ctx}

	if count == 0 {
		return New(src, 0, fixedExtractor(layout, 0)), nil
	}

	size := layout.Size(ctx)
	if size <= 0 {
		return View[Records[C], E]{}, fmt.Errorf("element size must be > 0 for %d elements, got %d: %w", count, size, ErrInvalidInput)
	}

	// count > len/size is the overflow-free form of count*size > len.
	if count > len(data)/size {
		return View[Records[C], E]{}, &ElementOverflowError{
			Count:        count,
			ElementSize:  size,
			SourceLength: len(data),
		}
	}

	return New(src, count, fixedExtractor(layout, size)), nil
}

// Empty returns a view with no elements. It never fails.
func Empty[C, E any](ctx C, layout Layout[C, E]) View[Records[C], E] {
	return New(Records[C]{Ctx: ctx}, 0, fixedExtractor(layout, 0))
}

// fixedExtractor binds a layout and its precomputed width to the generic
// extractor slot. Parse has already proven every index below count is in
// bounds, so the slice expression below cannot fail for valid views.
func fixedExtractor[C, E any](layout Layout[C, E], size int) Extractor[Records[C], E] {
	return func(src Records[C], idx int) (E, error) {
		off := idx * size
		rec := src.Data[off : off+size : off+size]

		elem, err := layout.Decode(rec, src.Ctx)
		if err != nil {
			var zero E

			return zero, &DecodeError{Index: idx, Offset: off, Err: err}
		}

		return elem, nil
	}
}
