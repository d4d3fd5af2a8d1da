// Package parallel is a fork/join driver for [recview.Producer].
//
// The driver splits a view's index range in halves until a range is at most
// [Options.MinChunk] long, folds each leaf sequentially, and combines partial
// results left-then-right. The right half of a split runs on a new goroutine
// when a worker slot is free and inline otherwise, so the number of live
// goroutines never exceeds [Options.Workers].
//
// Each index of the view is visited by exactly one leaf. Leaves run in no
// particular order, but [Reduce] combines them in index order and [Collect]
// returns elements in index order.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/calvinalkan/recview/pkg/recview"
)

// DefaultMinChunk is the leaf size used when [Options.MinChunk] is zero.
const DefaultMinChunk = 1024

// Options tunes the driver.
type Options struct {
	// Workers caps concurrently running leaves. Zero means runtime.GOMAXPROCS(0).
	Workers int

	// MinChunk is the largest range folded without further splitting.
	// Zero means DefaultMinChunk. Values below 1 are treated as 1.
	MinChunk int
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}

	return o.Workers
}

func (o Options) minChunk() int {
	if o.MinChunk == 0 {
		return DefaultMinChunk
	}

	return max(o.MinChunk, 1)
}

// driver carries the shared state of one Reduce call.
type driver struct {
	ctx   context.Context
	slots chan struct{}
	chunk int

	once sync.Once
	err  error
	stop chan struct{}
}

func newDriver(ctx context.Context, opts Options) *driver {
	// The calling goroutine holds one slot implicitly.
	return &driver{
		ctx:   ctx,
		slots: make(chan struct{}, opts.workers()-1),
		chunk: opts.minChunk(),
		stop:  make(chan struct{}),
	}
}

func (d *driver) fail(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.stop)
	})
}

func (d *driver) stopped() bool {
	select {
	case <-d.stop:
		return true
	default:
	}

	if err := d.ctx.Err(); err != nil {
		d.fail(err)

		return true
	}

	return false
}

func (d *driver) tryAcquire() bool {
	select {
	case d.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (d *driver) release() {
	<-d.slots
}

// Reduce folds every element of view and returns the combined result.
//
// identity creates a fresh accumulator per leaf. fold adds one element (with
// its view index) to an accumulator. combine merges the accumulators of two
// adjacent ranges, left first.
//
// Returns the first error encountered: a decode error from the view or the
// context's error. On error the returned accumulator is the zero A.
func Reduce[S, E, A any](
	ctx context.Context,
	view recview.View[S, E],
	opts Options,
	identity func() A,
	fold func(acc A, idx int, elem E) A,
	combine func(left, right A) A,
) (A, error) {
	d := newDriver(ctx, opts)

	result := reduceRange(d, view.Producer(), identity, fold, combine)

	if d.err != nil {
		var zero A

		return zero, d.err
	}

	return result, nil
}

func reduceRange[S, E, A any](
	d *driver,
	p *recview.Producer[S, E],
	identity func() A,
	fold func(A, int, E) A,
	combine func(A, A) A,
) A {
	if d.stopped() {
		return identity()
	}

	if p.Len() <= d.chunk {
		acc, err := recview.Fold(p, identity(), fold)
		if err != nil {
			d.fail(err)
		}

		return acc
	}

	left, right := p.Split()
	if right == nil {
		acc, err := recview.Fold(left, identity(), fold)
		if err != nil {
			d.fail(err)
		}

		return acc
	}

	if !d.tryAcquire() {
		l := reduceRange(d, left, identity, fold, combine)
		r := reduceRange(d, right, identity, fold, combine)

		return combine(l, r)
	}

	var (
		wg sync.WaitGroup
		r  A
	)

	wg.Add(1)

	go func() {
		defer wg.Done()
		defer d.release()

		r = reduceRange(d, right, identity, fold, combine)
	}()

	l := reduceRange(d, left, identity, fold, combine)

	wg.Wait()

	return combine(l, r)
}

// ForEach calls fn for every element of view, from several goroutines.
//
// fn must be safe for concurrent use. The first non-nil error from fn, a
// decode error, or the context's error stops further leaves and is returned.
func ForEach[S, E any](ctx context.Context, view recview.View[S, E], opts Options, fn func(idx int, elem E) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	_, err := Reduce(ctx, view, opts,
		func() struct{} { return struct{}{} },
		func(acc struct{}, idx int, elem E) struct{} {
			if context.Cause(ctx) != nil {
				return acc
			}

			if err := fn(idx, elem); err != nil {
				cancel(err)
			}

			return acc
		},
		func(struct{}, struct{}) struct{} { return struct{}{} },
	)
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}

	return err
}

// Collect decodes every element of view in parallel and returns them in
// index order.
//
// Each leaf writes only to its own window of the result slice, so no locking
// is involved.
func Collect[S, E any](ctx context.Context, view recview.View[S, E], opts Options) ([]E, error) {
	out := make([]E, view.Len())

	_, err := Reduce(ctx, view, opts,
		func() struct{} { return struct{}{} },
		func(acc struct{}, idx int, elem E) struct{} {
			out[idx] = elem

			return acc
		},
		func(struct{}, struct{}) struct{} { return struct{}{} },
	)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Leaves returns the leaf ranges Reduce would fold for view with the given
// MinChunk, in index order.
func Leaves[S, E any](view recview.View[S, E], minChunk int) [][2]int {
	chunk := Options{MinChunk: minChunk}.minChunk()

	var leaves [][2]int

	var walk func(p *recview.Producer[S, E])

	walk = func(p *recview.Producer[S, E]) {
		if p.Len() <= chunk {
			lo, hi := p.Bounds()
			leaves = append(leaves, [2]int{lo, hi})

			return
		}

		left, right := p.Split()
		if right == nil {
			lo, hi := left.Bounds()
			leaves = append(leaves, [2]int{lo, hi})

			return
		}

		walk(left)
		walk(right)
	}

	walk(view.Producer())

	return leaves
}
