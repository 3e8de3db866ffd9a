// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package event defines the observability events emitted by the wrapper
// engines and a recorder that reverts in lockstep with the state, so an
// aborted operation leaves no trace.
package event

import (
	"math/big"

	"github.com/liqingnz/goat-locking-wrapper/goat"
)

// Event is implemented by all wrapper events.
type Event interface {
	EventName() string
}

// ValidatorRegistered pins the funder ahead of the ownership transfer.
type ValidatorRegistered struct {
	Validator goat.Address
	Funder    goat.Address
}

func (*ValidatorRegistered) EventName() string { return "ValidatorRegistered" }

// ValidatorAdmitted records a completed migrate-in.
type ValidatorAdmitted struct {
	Validator goat.Address
	Funder    goat.Address
	Payee     goat.Address
	Operator  goat.Address
	Pool      goat.Address
}

func (*ValidatorAdmitted) EventName() string { return "ValidatorAdmitted" }

// ValidatorReleased records a completed migrate-out. The pool address is
// included because leftover commission stays claimable there.
type ValidatorReleased struct {
	Validator     goat.Address
	NewOwner      goat.Address
	Pool          goat.Address
	CooldownUntil uint64
}

func (*ValidatorReleased) EventName() string { return "ValidatorReleased" }

// RewardDistributed records one currency leg of a distribution.
type RewardDistributed struct {
	Pool       goat.Address
	Payee      goat.Address
	Currency   goat.Currency
	Payout     *big.Int
	Commission *big.Int
}

func (*RewardDistributed) EventName() string { return "RewardDistributed" }

// CommissionWithdrawn records a commission payout from a pool.
type CommissionWithdrawn struct {
	Pool         goat.Address
	Owner        goat.Address
	To           goat.Address
	NativeAmount *big.Int
	TokenAmount  *big.Int
}

func (*CommissionWithdrawn) EventName() string { return "CommissionWithdrawn" }

// CommissionReassigned records an accrued-balance move between owners.
type CommissionReassigned struct {
	Pool goat.Address
	From goat.Address
	To   goat.Address
}

func (*CommissionReassigned) EventName() string { return "CommissionReassigned" }

// AllowanceConfigured records an operator allowance reconfiguration.
type AllowanceConfigured struct {
	Pool      goat.Address
	NativeCap *big.Int
	TokenCap  *big.Int
	Period    uint64
}

func (*AllowanceConfigured) EventName() string { return "AllowanceConfigured" }

// OperatorRotated records an operator self-rotation.
type OperatorRotated struct {
	Validator   goat.Address
	OldOperator goat.Address
	NewOperator goat.Address
}

func (*OperatorRotated) EventName() string { return "OperatorRotated" }

// FunderPayeeChanged records a payee update by the funder.
type FunderPayeeChanged struct {
	Validator goat.Address
	Payee     goat.Address
}

func (*FunderPayeeChanged) EventName() string { return "FunderPayeeChanged" }

// Recorder collects events with checkpoint/revert semantics.
type Recorder struct {
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add appends an event.
func (r *Recorder) Add(e Event) {
	r.events = append(r.events, e)
}

// NewCheckpoint returns a revision usable with RevertTo.
func (r *Recorder) NewCheckpoint() int {
	return len(r.events)
}

// RevertTo drops all events recorded after the given revision.
func (r *Recorder) RevertTo(revision int) {
	r.events = r.events[:revision]
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []Event {
	return r.events
}
