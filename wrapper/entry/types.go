// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package entry

import "github.com/liqingnz/goat-locking-wrapper/goat"

// Record is one validator's lifecycle state. The zero record means the
// validator is unknown. A record with a funder but Active false is
// registered and awaiting admission; CooldownUntil in the future marks
// a released validator that may not register again yet.
type Record struct {
	Active        bool
	ListIndex     uint64
	CooldownUntil uint64
	Cycle         uint64
	Funder        goat.Address
	FunderPayee   goat.Address
	Operator      goat.Address
	Pool          goat.Address
}

// Registered reports whether a funder is pinned for admission.
func (r *Record) Registered() bool {
	return !r.Active && !r.Funder.IsZero()
}

// CoolingDown reports whether re-registration is still locked out.
func (r *Record) CoolingDown(now uint64) bool {
	return !r.Active && now < r.CooldownUntil
}
