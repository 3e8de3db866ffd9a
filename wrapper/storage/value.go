// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/liqingnz/goat-locking-wrapper/goat"
)

// Value is a singleton storage slot holding one RLP-coded value.
type Value[T any] struct {
	context *Context
	pos     goat.Bytes32
}

// NewValue creates a singleton slot at pos.
func NewValue[T any](context *Context, pos goat.Bytes32) *Value[T] {
	return &Value[T]{context: context, pos: pos}
}

// Get returns the stored value, or the zero value if unset.
func (v *Value[T]) Get() (value T, err error) {
	err = v.context.state.DecodeStorage(v.context.address, v.pos, func(raw []byte) error {
		if reflect.ValueOf(&value).Elem().Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(T)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the value.
func (v *Value[T]) Set(value T) error {
	return v.context.state.EncodeStorage(v.context.address, v.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Clear empties the slot.
func (v *Value[T]) Clear() error {
	return v.context.state.EncodeStorage(v.context.address, v.pos, func() ([]byte, error) {
		return nil, nil
	})
}

// Uint256 is a storage slot holding one unsigned big integer, similar to
// an uint256 variable in a smart contract.
type Uint256 struct {
	context *Context
	pos     goat.Bytes32
}

// NewUint256 creates an integer slot at pos.
func NewUint256(context *Context, pos goat.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

// Get returns the stored integer, zero if unset.
func (u *Uint256) Get() (*big.Int, error) {
	stored, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(stored.Bytes()), nil
}

// Set stores the integer.
func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, goat.BytesToBytes32(value.Bytes()))
}

// Add increases the stored integer by value.
func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	stored.Add(stored, value)
	u.Set(stored)
	return nil
}

// Sub decreases the stored integer by value.
func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	stored.Sub(stored, value)
	u.Set(stored)
	return nil
}
