// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import "math/big"

// Commission holds one beneficiary's accrued, unwithdrawn commission.
type Commission struct {
	Native *big.Int
	Token  *big.Int
}

func newCommission() *Commission {
	return &Commission{Native: &big.Int{}, Token: &big.Int{}}
}

// normalize replaces nil legs decoded from an empty slot.
func (c *Commission) normalize() *Commission {
	if c.Native == nil {
		c.Native = &big.Int{}
	}
	if c.Token == nil {
		c.Token = &big.Int{}
	}
	return c
}

// IsEmpty returns whether both legs are zero.
func (c *Commission) IsEmpty() bool {
	return c.Native.Sign() == 0 && c.Token.Sign() == 0
}

// Allowance is the rolling window bounding operator commission accrual.
// A zero cap means uncapped for that currency; a zero period means the
// used counters never reset.
type Allowance struct {
	NativeCap   *big.Int
	TokenCap    *big.Int
	NativeUsed  *big.Int
	TokenUsed   *big.Int
	Period      uint64
	NextResetAt uint64
}

func (a *Allowance) normalize() *Allowance {
	if a.NativeCap == nil {
		a.NativeCap = &big.Int{}
	}
	if a.TokenCap == nil {
		a.TokenCap = &big.Int{}
	}
	if a.NativeUsed == nil {
		a.NativeUsed = &big.Int{}
	}
	if a.TokenUsed == nil {
		a.TokenUsed = &big.Int{}
	}
	return a
}

// refresh applies the lazy catch-up window reset. It is a pure function
// of (now, nextResetAt, period), so no background timer is needed and
// arbitrarily long gaps between distributions are tolerated.
func (a *Allowance) refresh(now uint64) {
	if a.Period == 0 || now < a.NextResetAt {
		return
	}
	elapsed := 1 + (now-a.NextResetAt)/a.Period
	a.NativeUsed = &big.Int{}
	a.TokenUsed = &big.Int{}
	a.NextResetAt += elapsed * a.Period
}

// apply clamps amount to the remaining allowance for the currency and
// consumes what it grants. A zero cap grants everything.
func (a *Allowance) apply(amount, cap, used *big.Int) *big.Int {
	if amount.Sign() == 0 {
		return &big.Int{}
	}
	if cap.Sign() == 0 {
		return amount
	}
	if used.Cmp(cap) >= 0 {
		return &big.Int{}
	}
	remaining := new(big.Int).Sub(cap, used)
	granted := amount
	if granted.Cmp(remaining) > 0 {
		granted = remaining
	}
	used.Add(used, granted)
	return granted
}

// ApplyNative clamps a native commission amount.
func (a *Allowance) ApplyNative(amount *big.Int) *big.Int {
	return a.apply(amount, a.NativeCap, a.NativeUsed)
}

// ApplyToken clamps a token commission amount.
func (a *Allowance) ApplyToken(amount *big.Int) *big.Int {
	return a.apply(amount, a.TokenCap, a.TokenUsed)
}
