// Package sequence provides a small, restartable, lazy iterator built on
// iter.Seq. Iterators are immutable: every traversal replays the underlying
// sequence from the start.
package sequence

import "iter"

// Iterator is a generic, restartable iterator over values of type T.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// Empty returns an iterator that yields nothing.
func Empty[T any]() *Iterator[T] {
	return &Iterator[T]{seq: func(func(T) bool) {}}
}

// From creates an Iterator over the given slice. The slice is captured, not
// copied; callers who need isolation must pass their own copy.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// FromMap creates an Iterator over the values of a map. Order follows Go map
// iteration and is not deterministic.
func FromMap[K comparable, T any](data map[K]T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// Seq exposes the underlying sequence for use in range-over-func loops.
func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

// Pull converts the iterator into a pull-style next/stop pair.
func (i *Iterator[T]) Pull() (next func() (T, bool), stop func()) {
	return iter.Pull(i.seq)
}

// Filter returns a new Iterator yielding only elements for which keep returns
// true. The source is not consumed until the result is traversed.
func (i *Iterator[T]) Filter(keep func(T) bool) *Iterator[T] {
	src := i.seq
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for v := range src {
				if keep(v) && !yield(v) {
					return
				}
			}
		},
	}
}

// Each traverses the iterator, calling fn for every element.
func (i *Iterator[T]) Each(fn func(T)) {
	for v := range i.seq {
		fn(v)
	}
}

// Collect exhausts the iterator into a slice. An empty iterator yields nil.
func (i *Iterator[T]) Collect() []T {
	var out []T
	for v := range i.seq {
		out = append(out, v)
	}
	return out
}

// Count traverses the iterator and returns the number of elements.
func (i *Iterator[T]) Count() int {
	n := 0
	for range i.seq {
		n++
	}
	return n
}
