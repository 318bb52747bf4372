// Package iterator provides forwards-only iterators over finite collections, allowing for early termination.
package iterator

import (
	"iter"
	"sync"
)

type void struct{}

// Accept is a predicate that receives a value from an iterator
// and returns true if more values are desired.
type Accept[T any] func(T) bool

// Collection is a source for iterable values.
type Collection[T any] interface {
	Each(Accept[T])
}

// Iterator is a lazy, forwards-only iterator over an iterable collection with early termination.
//
// The producer runs until the collection is exhausted or Stop is called, so callers that abandon
// an iterator before Next returns false must call Stop.
type Iterator[T any] struct {
	stop     chan void
	stopOnce sync.Once
	values   chan T
	current  T
}

// BuildIterator returns a reference to an iterator for the given collection.
func BuildIterator[T any](coll Collection[T]) *Iterator[T] {
	values := make(chan T)
	stop := make(chan void)
	go func() {
		defer close(values)
		coll.Each(func(value T) bool {
			select {
			case values <- value:
				return true
			case <-stop:
				return false
			}
		})
	}()
	return &Iterator[T]{stop: stop, values: values}
}

// Next advances the iterator, returning true if successful.
func (iter *Iterator[T]) Next() (ok bool) {
	iter.current, ok = <-iter.values
	return
}

// Value returns the value of the iterable collection at the current position of the iterator.
func (iter *Iterator[T]) Value() T {
	return iter.current
}

// Stop invalidates the iterator. It is safe to call more than once.
func (iter *Iterator[T]) Stop() {
	iter.stopOnce.Do(func() { close(iter.stop) })
}

// Drain returns a slice of the values remaining in the iterator.
func (iter *Iterator[T]) Drain() []T {
	values := []T{}
	for iter.Next() {
		values = append(values, iter.Value())
	}
	return values
}

// Seq adapts the remaining values of the iterator to a range function. Breaking out of
// the range stops the iterator.
func (iter *Iterator[T]) Seq() iter.Seq[T] {
	return func(yield func(T) bool) {
		for iter.Next() {
			if !yield(iter.Value()) {
				iter.Stop()
				return
			}
		}
	}
}

// Reduce fully reduces the iterated collection by adding the values sequentially to the given init value.
func Reduce[T any, U any](iter *Iterator[T], add func(U, T) U, init U) U {
	result := init
	for iter.Next() {
		result = add(result, iter.Value())
	}
	return result
}

// Slice is a wrapper type for slices.
type Slice[T any] []T

func (slice Slice[T]) Each(accept Accept[T]) {
	for _, value := range slice {
		if !accept(value) {
			return
		}
	}
}
