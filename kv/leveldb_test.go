// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelDB(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	key := []byte("key")
	value := []byte("value")

	has, err := db.Has(key)
	assert.NoError(t, err)
	assert.False(t, has)

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))

	assert.NoError(t, db.Put(key, value))

	got, err := db.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	assert.NoError(t, db.Delete(key))
	has, err = db.Has(key)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestLevelDBBatch(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	assert.NoError(t, batch.Put([]byte("k1"), []byte("v1")))
	assert.NoError(t, batch.Put([]byte("k2"), []byte("v2")))
	assert.NoError(t, batch.Delete([]byte("k1")))
	assert.Equal(t, 3, batch.Len())

	assert.NoError(t, batch.Write())

	has, err := db.Has([]byte("k1"))
	assert.NoError(t, err)
	assert.False(t, has)

	got, err := db.Get([]byte("k2"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}
