// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package wrapper bundles the native engines at their well-known
// addresses: governance params, the reward token, the locking ledger,
// the escrow engine and the lifecycle coordinator wired on top.
package wrapper

import (
	"sync"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/entry"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/escrow"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/event"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/locking"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/params"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/token"
)

// Wrapper is the engine bundle over one state.
type Wrapper struct {
	mu sync.Mutex

	State   *state.State
	Events  *event.Recorder
	Params  *params.Params
	Token   *token.Token
	Ledger  *locking.Ledger
	Locking locking.System
	Escrow  *escrow.Engine
	Entry   *entry.Entry
}

// New binds the engines to the given state, using the in-state locking
// ledger as the locking system.
func New(st *state.State, events *event.Recorder) *Wrapper {
	tok := token.New(goat.TokenAddress, st)
	ledger := locking.NewLedger(goat.LockingAddress, st, tok)
	return newWrapper(st, events, tok, ledger, ledger)
}

// Lock serializes use of the bundle. The engines journal mutations on
// the shared state and Stage snapshots the whole journal, so concurrent
// callers must funnel every operation through this lock, reads
// included: an interleaved stage/commit would flush another caller's
// in-flight writes and defeat its checkpoint revert.
func (w *Wrapper) Lock() { w.mu.Lock() }

// Unlock releases the bundle lock.
func (w *Wrapper) Unlock() { w.mu.Unlock() }

// NewWithLocking binds the engines with an external locking system in
// place of the reference ledger.
func NewWithLocking(st *state.State, events *event.Recorder, lock locking.System) *Wrapper {
	tok := token.New(goat.TokenAddress, st)
	return newWrapper(st, events, tok, nil, lock)
}

func newWrapper(
	st *state.State,
	events *event.Recorder,
	tok *token.Token,
	ledger *locking.Ledger,
	lock locking.System,
) *Wrapper {
	par := params.New(goat.ParamsAddress, st)
	esc := escrow.New(st, tok, events)
	return &Wrapper{
		State:   st,
		Events:  events,
		Params:  par,
		Token:   tok,
		Ledger:  ledger,
		Locking: lock,
		Escrow:  esc,
		Entry:   entry.New(goat.EntryAddress, st, par, lock, esc, events),
	}
}
