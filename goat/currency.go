// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package goat

// Currency distinguishes the two reward legs handled by the escrow.
type Currency uint8

const (
	// CurrencyNative is the chain's native currency, held as state balance.
	CurrencyNative Currency = iota
	// CurrencyToken is the fungible reward token, held on the token ledger.
	CurrencyToken
)

func (c Currency) String() string {
	switch c {
	case CurrencyNative:
		return "native"
	case CurrencyToken:
		return "token"
	default:
		return "unknown"
	}
}

// NativeTokenSentinel marks native currency in locking stake items,
// where items are otherwise tagged by token address.
var NativeTokenSentinel = Address{}
