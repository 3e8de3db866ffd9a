// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/kv"
)

// Account is the persisted account model. Only the native balance lives
// here; everything else the engines need is kept in coded storage.
type Account struct {
	Balance *big.Int
}

// IsEmpty returns if the account can be treated as empty.
func (a *Account) IsEmpty() bool {
	return a.Balance.Sign() == 0
}

func emptyAccount() *Account {
	return &Account{Balance: &big.Int{}}
}

func accountStoreKey(addr goat.Address) []byte {
	return append([]byte("a"), addr.Bytes()...)
}

func storageStoreKey(addr goat.Address, key goat.Bytes32) []byte {
	k := append([]byte("s"), addr.Bytes()...)
	return append(k, key.Bytes()...)
}

// loadAccount loads an account from the store.
// Never returns nil; a missing account is returned as empty.
func loadAccount(store kv.Getter, addr goat.Address) (*Account, error) {
	data, err := store.Get(accountStoreKey(addr))
	if err != nil {
		if store.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	var acc Account
	if err := rlp.DecodeBytes(data, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// loadStorage loads a raw storage value from the store.
func loadStorage(store kv.Getter, addr goat.Address, key goat.Bytes32) (rlp.RawValue, error) {
	data, err := store.Get(storageStoreKey(addr, key))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
