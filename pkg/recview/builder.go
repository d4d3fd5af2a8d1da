package recview

import "fmt"

// Builder accumulates the pieces of a byte-backed view and validates them
// only in [Builder.Build].
//
// Exactly one decoding path must be set: either a generic [Extractor] over
// [Records], or a [Layout] (with an optional context, defaulting to the zero
// C). Count defaults to zero, which yields an empty view.
//
//	view, err := recview.NewBuilder[recview.Endian, uint32]().
//	    Source(data).
//	    Count(4).
//	    Context(recview.BigEndian).
//	    Layout(recview.Uint32).
//	    Build()
type Builder[C, E any] struct {
	data      []byte
	hasSource bool
	count     int
	ctx       C
	layout    *Layout[C, E]
	extract   Extractor[Records[C], E]
}

// NewBuilder returns an empty builder.
func NewBuilder[C, E any]() *Builder[C, E] {
	return &Builder[C, E]{}
}

// Source sets the byte buffer. A nil or empty buffer counts as set.
func (b *Builder[C, E]) Source(data []byte) *Builder[C, E] {
	b.data = data
	b.hasSource = true

	return b
}

// Count sets the number of elements.
func (b *Builder[C, E]) Count(n int) *Builder[C, E] {
	b.count = n

	return b
}

// Context sets the decoding context handed to the layout or extractor.
func (b *Builder[C, E]) Context(ctx C) *Builder[C, E] {
	b.ctx = ctx

	return b
}

// Layout selects the fixed-width path; Build will call [Parse].
func (b *Builder[C, E]) Layout(layout Layout[C, E]) *Builder[C, E] {
	b.layout = &layout

	return b
}

// Extractor selects the generic path; Build will call [New] and performs no
// bounds check.
func (b *Builder[C, E]) Extractor(fn Extractor[Records[C], E]) *Builder[C, E] {
	b.extract = fn

	return b
}

// Build validates the accumulated fields and creates the view.
//
// Possible errors: [ErrConstruction], plus anything [Parse] returns on the
// layout path.
func (b *Builder[C, E]) Build() (View[Records[C], E], error) {
	if !b.hasSource {
		return View[Records[C], E]{}, &ConstructionError{Field: "source", Reason: "not set"}
	}

	if b.extract != nil && b.layout != nil {
		return View[Records[C], E]{}, &ConstructionError{Field: "extractor", Reason: "extractor and layout are mutually exclusive"}
	}

	if b.extract == nil && b.layout == nil {
		return View[Records[C], E]{}, &ConstructionError{Field: "extractor", Reason: "neither extractor nor layout set"}
	}

	if b.layout != nil {
		return Parse(b.data, b.count, b.ctx, *b.layout)
	}

	if b.count < 0 {
		return View[Records[C], E]{}, fmt.Errorf("count must be >= 0, got %d: %w", b.count, ErrInvalidInput)
	}

	return New(Records[C]{Data: b.data, Ctx: b.ctx}, b.count, b.extract), nil
}
