// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/kv"
	"github.com/liqingnz/goat-locking-wrapper/state"
)

func newTestContext(t *testing.T) *Context {
	store, err := kv.NewMem()
	assert.NoError(t, err)
	return NewContext(goat.BytesToAddress([]byte("engine")), state.New(store))
}

type record struct {
	Owner  goat.Address
	Amount *big.Int
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[goat.Address, *record](ctx, goat.Blake2b([]byte("records")))

	key := goat.BytesToAddress([]byte("key"))

	got, err := m.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, &record{}, got, "missing entries decode to the zero value")

	has, err := m.Has(key)
	assert.NoError(t, err)
	assert.False(t, has)

	in := &record{Owner: goat.BytesToAddress([]byte("owner")), Amount: big.NewInt(12)}
	assert.NoError(t, m.Set(key, in))

	got, err = m.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, in, got)

	has, err = m.Has(key)
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, m.Delete(key))
	has, err = m.Has(key)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestMappingIsolation(t *testing.T) {
	ctx := newTestContext(t)
	m1 := NewMapping[goat.Address, uint64](ctx, goat.Blake2b([]byte("m1")))
	m2 := NewMapping[goat.Address, uint64](ctx, goat.Blake2b([]byte("m2")))

	key := goat.BytesToAddress([]byte("key"))
	assert.NoError(t, m1.Set(key, 7))

	v, err := m2.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v, "mappings at distinct positions must not collide")
}

func TestValue(t *testing.T) {
	ctx := newTestContext(t)
	v := NewValue[uint64](ctx, goat.Blake2b([]byte("counter")))

	got, err := v.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), got)

	assert.NoError(t, v.Set(42))
	got, err = v.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	assert.NoError(t, v.Clear())
	got, err = v.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, goat.Blake2b([]byte("total")))

	got, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, 0, got.Sign())

	assert.NoError(t, u.Add(big.NewInt(100)))
	assert.NoError(t, u.Sub(big.NewInt(40)))

	got, err = u.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(60), got)
}

func TestArray(t *testing.T) {
	ctx := newTestContext(t)
	arr := NewArray[goat.Address](ctx, goat.Blake2b([]byte("list")))

	n, err := arr.Len()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	a := goat.BytesToAddress([]byte("a"))
	b := goat.BytesToAddress([]byte("b"))
	c := goat.BytesToAddress([]byte("c"))

	for i, addr := range []goat.Address{a, b, c} {
		idx, err := arr.Append(addr)
		assert.NoError(t, err)
		assert.Equal(t, uint64(i), idx)
	}

	n, err = arr.Len()
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	_, err = arr.Get(3)
	assert.Error(t, err)

	// remove the head: tail element moves into slot 0
	moved, didMove, err := arr.Remove(0)
	assert.NoError(t, err)
	assert.True(t, didMove)
	assert.Equal(t, c, moved)

	got, err := arr.Get(0)
	assert.NoError(t, err)
	assert.Equal(t, c, got)

	// remove the tail: no move
	_, didMove, err = arr.Remove(1)
	assert.NoError(t, err)
	assert.False(t, didMove)

	n, err = arr.Len()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}
