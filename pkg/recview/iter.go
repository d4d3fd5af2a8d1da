package recview

// Iterator walks a [View] sequentially in ascending index order.
//
// Usage follows bufio.Scanner:
//
//	it := view.Iter()
//	for it.Next() {
//	    use(it.Index(), it.Value())
//	}
//	if err := it.Err(); err != nil {
//	    ...
//	}
//
// An Iterator is not safe for concurrent use. Create one per goroutine, or
// use a [Producer] to split the work.
type Iterator[S, E any] struct {
	view View[S, E]
	next int
	idx  int
	cur  E
	err  error
	done bool
}

// Next advances to the next element. It returns false when the view is
// exhausted or an element failed to decode.
func (it *Iterator[S, E]) Next() bool {
	if it.done {
		return false
	}

	elem, found, err := it.view.Get(it.next)
	if !found {
		it.finish()

		return false
	}

	if err != nil {
		it.err = err
		it.finish()

		return false
	}

	it.idx = it.next
	it.cur = elem
	it.next++

	return true
}

// Value returns the element produced by the last successful call to Next.
func (it *Iterator[S, E]) Value() E {
	return it.cur
}

// Index returns the index of the element returned by Value.
func (it *Iterator[S, E]) Index() int {
	return it.idx
}

// Err returns the decode error that stopped iteration, or nil if the view
// was exhausted normally.
func (it *Iterator[S, E]) Err() error {
	return it.err
}

// Remaining returns how many elements Next can still produce, assuming no
// decode failure.
func (it *Iterator[S, E]) Remaining() int {
	if it.done {
		return 0
	}

	return it.view.Len() - it.next
}

func (it *Iterator[S, E]) finish() {
	var zero E

	it.cur = zero
	it.done = true
}
