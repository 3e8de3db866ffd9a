// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package locking defines the boundary to the external proof-of-stake
// locking system, plus an in-state reference ledger used by tests and
// the solo node. The real system custodies stake and pays rewards; the
// wrapper only consumes this capability surface.
package locking

import (
	"math/big"

	"github.com/liqingnz/goat-locking-wrapper/goat"
)

// Item is one stake element, tagged by currency: the zero token address
// is the native sentinel, anything else is a fungible token address.
type Item struct {
	Token  goat.Address
	Amount *big.Int
}

// System is the locking capability surface consumed by the entry.
type System interface {
	// OwnerOf returns the current external custody owner of the validator.
	OwnerOf(validator goat.Address) (goat.Address, error)

	// TransferOwnership reassigns custody. The caller must be the current owner.
	TransferOwnership(validator, caller, newOwner goat.Address) error

	// Lock moves stake items from the source account into custody.
	// Adding stake is open to any source; gating who may delegate is
	// the wrapper's concern.
	Lock(validator, from goat.Address, items []Item) error

	// Unlock moves stake items out of custody to the recipient.
	Unlock(validator, caller, recipient goat.Address, items []Item) error

	// Claim pulls accrued rewards to the destination. Settlement may be
	// asynchronous: funds are only guaranteed to have arrived by the
	// next settlement point, not synchronously.
	Claim(validator, destination goat.Address) error
}
