// Package index provides for ordered indexes implemented on btrees.
package index

import (
	"github.com/dball/ldapabstract/internal/iterator"
	"golang.org/x/exp/constraints"

	"github.com/google/btree"
)

type item[K constraints.Ordered, V any] struct {
	key   K
	value V
}

func less[K constraints.Ordered, V any](i1 item[K, V], i2 item[K, V]) bool {
	return i1.key < i2.key
}

// Index is a sorted map of keys to values. Indexes are safe for concurrent read operations
// but not for concurrent write operations, including cloning.
type Index[K constraints.Ordered, V any] struct {
	tree *btree.BTreeG[item[K, V]]
}

// New returns an empty index whose btree has the given degree.
func New[K constraints.Ordered, V any](degree int) (index *Index[K, V]) {
	index = &Index[K, V]{tree: btree.NewG(degree, btree.LessFunc[item[K, V]](less[K, V]))}
	return
}

// Get returns the value at the key, if any.
func (index *Index[K, V]) Get(key K) (value V, found bool) {
	var match item[K, V]
	match, found = index.tree.Get(item[K, V]{key: key})
	value = match.value
	return
}

// Put sets the value at the key, returning true if it replaced an extant value.
func (index *Index[K, V]) Put(key K, value V) (extant bool) {
	_, extant = index.tree.ReplaceOrInsert(item[K, V]{key: key, value: value})
	return
}

// Delete removes the key, returning its value if it was present.
func (index *Index[K, V]) Delete(key K) (value V, extant bool) {
	var match item[K, V]
	match, extant = index.tree.Delete(item[K, V]{key: key})
	value = match.value
	return
}

// Len returns the number of keys in the index.
func (index *Index[K, V]) Len() int {
	return index.tree.Len()
}

// Clone returns a copy of the index. Both the original and the clone may be changed hereafter
// without either affecting the other.
func (index *Index[K, V]) Clone() (clone *Index[K, V]) {
	clone = &Index[K, V]{tree: index.tree.Clone()}
	return
}

type selection[K constraints.Ordered, V any] struct {
	index *Index[K, V]
	from  K
	while func(K) bool
}

func (sel *selection[K, V]) Each(accept iterator.Accept[V]) {
	sel.index.tree.AscendGreaterOrEqual(item[K, V]{key: sel.from}, func(i item[K, V]) bool {
		if !sel.while(i.key) {
			return false
		}
		return accept(i.value)
	})
}

// Select returns an ascending iterator of the values whose keys are at or after from,
// ending at the first key for which while returns false.
func (index *Index[K, V]) Select(from K, while func(K) bool) (iter *iterator.Iterator[V]) {
	return iterator.BuildIterator[V](&selection[K, V]{index: index, from: from, while: while})
}
