package recview

// Producer is a cursor over the index range [current, top) of a [View].
//
// A Producer is the unit of parallel work: [Producer.Split] divides its range
// into two balanced halves that can be consumed by different goroutines. Both
// halves share the view read-only, so no synchronization is needed between
// them. A single Producer is not safe for concurrent use.
type Producer[S, E any] struct {
	view    View[S, E]
	current int
	top     int
}

// Producer returns a producer covering every index of v.
func (v View[S, E]) Producer() *Producer[S, E] {
	return &Producer[S, E]{view: v, current: 0, top: v.count}
}

// Range returns a producer over [lo, hi), clamped to 0 <= lo <= hi <= Len().
func (v View[S, E]) Range(lo, hi int) *Producer[S, E] {
	hi = min(max(hi, 0), v.count)
	lo = min(max(lo, 0), hi)

	return &Producer[S, E]{view: v, current: lo, top: hi}
}

// Len returns the number of indices left in the producer's range.
func (p *Producer[S, E]) Len() int {
	return p.top - p.current
}

// Bounds returns the remaining range as [lo, hi).
func (p *Producer[S, E]) Bounds() (int, int) {
	return p.current, p.top
}

// Next returns the element at the current index and advances.
//
// found is false once the range is exhausted. A decode failure is returned
// with found == true; the cursor still advances past the failing index.
func (p *Producer[S, E]) Next() (E, bool, error) {
	var zero E

	if p.current >= p.top || p.current >= p.view.count {
		return zero, false, nil
	}

	idx := p.current
	p.current++

	return p.view.Get(idx)
}

// Split divides the remaining range at its midpoint.
//
// mid is current + (top-current)/2 with floor division. The receiver keeps
// [current, mid) and is returned as left; right covers [mid, top), so for
// odd lengths the extra index goes to the right half.
// Ranges of length <= 1 are leaves: Split returns (p, nil) and p is
// unchanged.
//
// Across any sequence of splits the leaf ranges partition the original
// range: no index is skipped or visited twice.
func (p *Producer[S, E]) Split() (*Producer[S, E], *Producer[S, E]) {
	n := p.top - p.current
	if n <= 1 {
		return p, nil
	}

	mid := p.current + n/2
	right := &Producer[S, E]{view: p.view, current: mid, top: p.top}
	p.top = mid

	return p, right
}

// Fold drives p sequentially to exhaustion, accumulating each element with fn.
//
// fn receives the accumulator, the element's index in the view, and the
// element. Fold stops at the first decode error and returns the accumulator
// as it was before the failing element, together with the error.
func Fold[S, E, A any](p *Producer[S, E], acc A, fn func(acc A, idx int, elem E) A) (A, error) {
	for p.current < p.top && p.current < p.view.count {
		idx := p.current

		elem, _, err := p.Next()
		if err != nil {
			return acc, err
		}

		acc = fn(acc, idx, elem)
	}

	return acc, nil
}
