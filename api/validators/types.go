// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/entry"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/escrow"
)

// Validator is the JSON view of one validator record.
type Validator struct {
	Address       goat.Address `json:"address"`
	Active        bool         `json:"active"`
	Cycle         uint64       `json:"cycle"`
	CooldownUntil uint64       `json:"cooldownUntil"`
	Funder        goat.Address `json:"funder"`
	FunderPayee   goat.Address `json:"funderPayee"`
	Operator      goat.Address `json:"operator"`
	Pool          goat.Address `json:"pool"`
}

func convertRecord(addr goat.Address, rec *entry.Record) *Validator {
	return &Validator{
		Address:       addr,
		Active:        rec.Active,
		Cycle:         rec.Cycle,
		CooldownUntil: rec.CooldownUntil,
		Funder:        rec.Funder,
		FunderPayee:   rec.FunderPayee,
		Operator:      rec.Operator,
		Pool:          rec.Pool,
	}
}

// Allowance is the JSON view of a pool's operator allowance. Amounts
// are decimal strings.
type Allowance struct {
	NativeCap   string `json:"nativeCap"`
	TokenCap    string `json:"tokenCap"`
	NativeUsed  string `json:"nativeUsed"`
	TokenUsed   string `json:"tokenUsed"`
	Period      uint64 `json:"period"`
	NextResetAt uint64 `json:"nextResetAt"`
}

// Escrow is the JSON view of a pool snapshot.
type Escrow struct {
	Pool            goat.Address `json:"pool"`
	Operator        goat.Address `json:"operator"`
	NativeBalance   string       `json:"nativeBalance"`
	TokenBalance    string       `json:"tokenBalance"`
	CommittedNative string       `json:"committedNative"`
	CommittedToken  string       `json:"committedToken"`
	Allowance       *Allowance   `json:"allowance"`
}

func convertAllowance(a *escrow.Allowance) *Allowance {
	return &Allowance{
		NativeCap:   a.NativeCap.String(),
		TokenCap:    a.TokenCap.String(),
		NativeUsed:  a.NativeUsed.String(),
		TokenUsed:   a.TokenUsed.String(),
		Period:      a.Period,
		NextResetAt: a.NextResetAt,
	}
}
