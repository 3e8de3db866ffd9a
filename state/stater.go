// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/liqingnz/goat-locking-wrapper/kv"

// Stater is the factory of state instances over a shared store.
type Stater struct {
	store kv.Store
}

// NewStater creates a stater.
func NewStater(store kv.Store) *Stater {
	return &Stater{store}
}

// NewState creates a fresh state instance on top of the store.
func (s *Stater) NewState() *State {
	return New(s.store)
}
