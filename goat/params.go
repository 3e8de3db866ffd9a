// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package goat

// Constants of the wrapper protocol.
const (
	// BasisPoints is the denominator of all commission rates.
	BasisPoints uint64 = 10000

	// MaxManagedValidators bounds the managed-validator registry so that
	// global sweep operations stay O(ceiling).
	MaxManagedValidators uint64 = 256

	// InitialCooldownPeriod is the default delay (unit: second) before a
	// released validator may register again.
	InitialCooldownPeriod uint64 = 60 * 60 * 24
)

// Keys of governance params, see wrapper/params.
var (
	KeyOwner      = BytesToBytes32([]byte("owner"))
	KeyFoundation = BytesToBytes32([]byte("foundation"))

	KeyFoundationNativeRate = BytesToBytes32([]byte("foundation-native-rate"))
	KeyOperatorNativeRate   = BytesToBytes32([]byte("operator-native-rate"))
	KeyFoundationTokenRate  = BytesToBytes32([]byte("foundation-token-rate"))
	KeyOperatorTokenRate    = BytesToBytes32([]byte("operator-token-rate"))

	KeyCooldownPeriod       = BytesToBytes32([]byte("cooldown-period"))
	KeyMaxManagedValidators = BytesToBytes32([]byte("max-managed-validators"))
)

// Well-known addresses of the native engines.
var (
	EntryAddress   = BytesToAddress([]byte("goat-entry"))
	ParamsAddress  = BytesToAddress([]byte("goat-params"))
	TokenAddress   = BytesToAddress([]byte("goat-token"))
	LockingAddress = BytesToAddress([]byte("goat-locking"))
)
