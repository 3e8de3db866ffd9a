// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/pkg/errors"

	"github.com/liqingnz/goat-locking-wrapper/goat"
)

// Array is a dense storage array with a length slot and index-addressed
// elements. Removal is swap-and-pop, so element order is not stable but
// every remove is O(1).
type Array[V any] struct {
	length *Value[uint64]
	items  *Mapping[IndexKey, V]
}

// NewArray creates an array rooted at pos.
func NewArray[V any](context *Context, pos goat.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewValue[uint64](context, goat.Blake2b(pos.Bytes(), []byte("length"))),
		items:  NewMapping[IndexKey, V](context, goat.Blake2b(pos.Bytes(), []byte("items"))),
	}
}

// Len returns the number of elements.
func (a *Array[V]) Len() (uint64, error) {
	return a.length.Get()
}

// Get returns the element at index i.
func (a *Array[V]) Get(i uint64) (value V, err error) {
	n, err := a.length.Get()
	if err != nil {
		return value, err
	}
	if i >= n {
		return value, errors.Errorf("array index %d out of range %d", i, n)
	}
	return a.items.Get(IndexKey(i))
}

// Set overwrites the element at index i.
func (a *Array[V]) Set(i uint64, value V) error {
	n, err := a.length.Get()
	if err != nil {
		return err
	}
	if i >= n {
		return errors.Errorf("array index %d out of range %d", i, n)
	}
	return a.items.Set(IndexKey(i), value)
}

// Append adds an element at the tail and returns its index.
func (a *Array[V]) Append(value V) (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	if err := a.items.Set(IndexKey(n), value); err != nil {
		return 0, err
	}
	if err := a.length.Set(n + 1); err != nil {
		return 0, err
	}
	return n, nil
}

// Remove deletes the element at index i by moving the tail element into
// its slot. It returns the moved element and whether a move happened;
// when i was the tail there is nothing to re-index.
func (a *Array[V]) Remove(i uint64) (moved V, didMove bool, err error) {
	n, err := a.length.Get()
	if err != nil {
		return moved, false, err
	}
	if i >= n {
		return moved, false, errors.Errorf("array index %d out of range %d", i, n)
	}
	last := n - 1
	if i != last {
		moved, err = a.items.Get(IndexKey(last))
		if err != nil {
			return moved, false, err
		}
		if err := a.items.Set(IndexKey(i), moved); err != nil {
			return moved, false, err
		}
		didMove = true
	}
	if err := a.items.Delete(IndexKey(last)); err != nil {
		return moved, false, err
	}
	if err := a.length.Set(last); err != nil {
		return moved, false, err
	}
	return moved, didMove, nil
}
