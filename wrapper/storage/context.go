// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed storage layouts for the native engines,
// in the style of Solidity contract storage: mappings, singleton slots
// and dense arrays, all RLP-coded under an engine's address.
package storage

import (
	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/state"
)

// Context scopes storage access to one engine address.
type Context struct {
	address goat.Address
	state   *state.State
}

// NewContext creates a storage context for the engine at address.
func NewContext(address goat.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

// Address returns the engine address the context is scoped to.
func (c *Context) Address() goat.Address {
	return c.address
}

// State returns the underlying state.
func (c *Context) State() *state.State {
	return c.state
}
