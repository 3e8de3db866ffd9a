// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/kv"
)

const readCacheSize = 2048

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

type (
	accountKey struct{ addr goat.Address }
	storageKey struct {
		addr goat.Address
		key  goat.Bytes32
	}
)

// State manages the wrapper's world state: native balances plus
// RLP-coded storage per address. Writes are journaled until committed,
// and any suffix of writes can be reverted to a checkpoint.
type State struct {
	store   kv.Store
	journal *journal
	cache   *lru.Cache // decoded values read from store
}

// New creates a state backed by the given store.
func New(store kv.Store) *State {
	cache, _ := lru.New(readCacheSize)
	return &State{
		store:   store,
		journal: newJournal(),
		cache:   cache,
	}
}

// source reads through the lru cache down to the store.
func (s *State) source(key any) (any, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}
	var (
		v   any
		err error
	)
	switch k := key.(type) {
	case accountKey:
		v, err = loadAccount(s.store, k.addr)
	case storageKey:
		v, err = loadStorage(s.store, k.addr, k.key)
	default:
		panic(fmt.Errorf("unexpected key type %+v", key))
	}
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, v)
	return v, nil
}

func (s *State) get(key any) (any, error) {
	if v, ok := s.journal.Get(key); ok {
		return v, nil
	}
	return s.source(key)
}

// getAccount gets account by address. The returned account must not be modified.
func (s *State) getAccount(addr goat.Address) (*Account, error) {
	v, err := s.get(accountKey{addr})
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

// GetBalance returns native balance for the given address.
func (s *State) GetBalance(addr goat.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Balance, nil
}

// SetBalance sets native balance for the given address.
func (s *State) SetBalance(addr goat.Address, balance *big.Int) error {
	if _, err := s.getAccount(addr); err != nil {
		return &Error{err}
	}
	s.journal.Put(accountKey{addr}, &Account{Balance: balance})
	return nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr goat.Address, key goat.Bytes32) (rlp.RawValue, error) {
	v, err := s.get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	if v == nil {
		return nil, nil
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage sets storage value in rlp raw.
func (s *State) SetRawStorage(addr goat.Address, key goat.Bytes32, raw rlp.RawValue) {
	s.journal.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr goat.Address, key goat.Bytes32) (goat.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return goat.Bytes32{}, err
	}
	if len(raw) == 0 {
		return goat.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return goat.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return goat.Blake2b(raw), nil
	}
	return goat.BytesToBytes32(content), nil
}

// SetStorage sets storage value for the given address and key.
func (s *State) SetStorage(addr goat.Address, key, value goat.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage sets storage value encoded by given enc method.
func (s *State) EncodeStorage(addr goat.Address, key goat.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage gets and decodes storage value.
func (s *State) DecodeStorage(addr goat.Address, key goat.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns a checkpoint revision usable with RevertTo.
func (s *State) NewCheckpoint() int {
	return s.journal.Checkpoint()
}

// RevertTo reverts the state to the given checkpoint revision.
// The revision must come from NewCheckpoint on this instance.
func (s *State) RevertTo(revision int) {
	s.journal.RevertTo(revision)
}

// Stage collects all journaled writes for committing to the store.
type Stage struct {
	state *State
	batch kv.Batch
	adds  []func()
}

// Stage builds a commit stage from the current journal.
func (s *State) Stage() (*Stage, error) {
	stage := &Stage{state: s, batch: s.store.NewBatch()}

	var err error
	s.journal.Each(func(key, value any) {
		if err != nil {
			return
		}
		switch k := key.(type) {
		case accountKey:
			acc := value.(*Account)
			if acc.IsEmpty() {
				err = stage.batch.Delete(accountStoreKey(k.addr))
				return
			}
			var data []byte
			if data, err = rlp.EncodeToBytes(acc); err != nil {
				return
			}
			err = stage.batch.Put(accountStoreKey(k.addr), data)
		case storageKey:
			raw := value.(rlp.RawValue)
			if len(raw) == 0 {
				err = stage.batch.Delete(storageStoreKey(k.addr, k.key))
				return
			}
			err = stage.batch.Put(storageStoreKey(k.addr, k.key), raw)
		}
		keyCopy, valueCopy := key, value
		stage.adds = append(stage.adds, func() { s.cache.Add(keyCopy, valueCopy) })
	})
	if err != nil {
		return nil, &Error{err}
	}
	return stage, nil
}

// Commit writes the staged changes to the store in one batch and resets
// the journal. The state remains usable afterwards.
func (stage *Stage) Commit() error {
	if err := stage.batch.Write(); err != nil {
		return &Error{err}
	}
	for _, add := range stage.adds {
		add()
	}
	stage.state.journal.Reset()
	return nil
}
