// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the key-value persistence boundary of the wrapper.
// The host ledger owns durability; this package only needs a flat store
// the journaled state can commit into.
package kv

// Getter wraps methods for getting kvs.
type Getter interface {
	// Get returns the value for the given key.
	// An error is returned if key not found. It can be checked via IsNotFound.
	Get(key []byte) (value []byte, err error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool
}

// Putter wraps methods for putting kvs.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Batch defines a batch of putting ops, written atomically.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Store is the full store interface.
type Store interface {
	Getter
	Putter

	NewBatch() Batch
	Close() error
}
