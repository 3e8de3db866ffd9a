// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package entry implements the lifecycle coordinator: the catalog of
// validators under management, the admission and release state machine
// and the role-gated operations driving each validator's escrow pool.
package entry

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/log"
	"github.com/liqingnz/goat-locking-wrapper/metrics"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/escrow"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/event"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/locking"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/params"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/storage"
)

var logger = log.WithContext("pkg", "entry")

var (
	metricAdmissions    = metrics.LazyLoadCounter("entry_admission_count")
	metricReleases      = metrics.LazyLoadCounter("entry_release_count")
	metricDistributions = metrics.LazyLoadCounter("entry_distribution_count")
	metricManaged       = metrics.LazyLoadGauge("entry_managed_validators")
)

// Entry is the lifecycle coordinator. One global instance owns every
// validator record and holds the exclusive handle to each pool.
type Entry struct {
	addr     goat.Address
	state    *state.State
	params   *params.Params
	locking  locking.System
	escrow   *escrow.Engine
	events   *event.Recorder
	registry *registry
}

// New creates a new instance bound to addr.
func New(
	addr goat.Address,
	st *state.State,
	par *params.Params,
	lock locking.System,
	esc *escrow.Engine,
	events *event.Recorder,
) *Entry {
	return &Entry{
		addr:     addr,
		state:    st,
		params:   par,
		locking:  lock,
		escrow:   esc,
		events:   events,
		registry: newRegistry(storage.NewContext(addr, st)),
	}
}

// Address returns the coordinator's own address, which is the external
// custody owner of every managed validator.
func (e *Entry) Address() goat.Address {
	return e.addr
}

// run executes fn under a state and event checkpoint. On error every
// mutation and event of fn is rolled back, so each public operation is
// all-or-nothing.
func (e *Entry) run(fn func() error) error {
	stateRev := e.state.NewCheckpoint()
	eventRev := e.events.NewCheckpoint()
	if err := fn(); err != nil {
		e.state.RevertTo(stateRev)
		e.events.RevertTo(eventRev)
		return err
	}
	return nil
}

// Get returns the validator's record. The zero record means unknown.
func (e *Entry) Get(validator goat.Address) (*Record, error) {
	return e.registry.get(validator)
}

// Managed returns the active validators.
func (e *Entry) Managed() ([]goat.Address, error) {
	return e.registry.all()
}

// Count returns the managed-validator count.
func (e *Entry) Count() (uint64, error) {
	return e.registry.count()
}

// RegisterMigration pins the caller as the validator's funder ahead of
// the external ownership transfer. The caller must be the validator's
// current external owner, which closes the window where an attacker
// could register after observing the transfer.
func (e *Entry) RegisterMigration(caller, validator goat.Address, now uint64) error {
	return e.run(func() error {
		rec, err := e.registry.get(validator)
		if err != nil {
			return err
		}
		if rec.Active {
			return errors.New("entry: validator is already managed")
		}
		if rec.CoolingDown(now) {
			return errors.Errorf("entry: validator in cooldown until %d", rec.CooldownUntil)
		}
		owner, err := e.locking.OwnerOf(validator)
		if err != nil {
			return err
		}
		if owner.IsZero() || owner != caller {
			return errors.New("entry: caller is not the validator's external owner")
		}

		rec.Funder = caller
		rec.FunderPayee = goat.Address{}
		rec.Operator = goat.Address{}
		rec.Pool = goat.Address{}
		if err := e.registry.set(validator, rec); err != nil {
			return err
		}
		e.events.Add(&event.ValidatorRegistered{Validator: validator, Funder: caller})
		return nil
	})
}

// Migrate admits a registered validator. The coordinator must already
// be the external owner, the caller must be the pinned funder and the
// managed set must be below the admission ceiling. A fresh pool is
// deployed for this cycle; pools are never reused across admissions.
func (e *Entry) Migrate(
	caller, validator, funderPayee, operator goat.Address,
	nativeAllowance, tokenAllowance *big.Int,
	allowancePeriod, now uint64,
) error {
	return e.run(func() error {
		rec, err := e.registry.get(validator)
		if err != nil {
			return err
		}
		if rec.Active {
			return errors.New("entry: validator is already managed")
		}
		if !rec.Registered() || rec.Funder != caller {
			return errors.New("entry: caller is not the registered funder")
		}
		if funderPayee.IsZero() || operator.IsZero() {
			return errors.New("entry: payee or operator is the zero address")
		}
		owner, err := e.locking.OwnerOf(validator)
		if err != nil {
			return err
		}
		if owner != e.addr {
			return errors.New("entry: validator custody has not been transferred")
		}
		count, err := e.registry.count()
		if err != nil {
			return err
		}
		ceiling, err := e.params.MaxManagedValidators()
		if err != nil {
			return err
		}
		if count >= ceiling {
			return errors.Errorf("entry: managed-validator ceiling %d reached", ceiling)
		}

		rec.Cycle++
		rec.Active = true
		rec.CooldownUntil = 0
		rec.FunderPayee = funderPayee
		rec.Operator = operator
		rec.Pool = goat.CreateEscrowAddress(validator, rec.Cycle)

		pool := e.escrow.Bind(rec.Pool)
		if err := pool.SetOperator(operator); err != nil {
			return err
		}
		if err := pool.SetAllowance(nonNil(nativeAllowance), nonNil(tokenAllowance), allowancePeriod, now); err != nil {
			return err
		}
		if err := e.registry.add(validator, rec); err != nil {
			return err
		}
		count, err = e.registry.count()
		if err != nil {
			return err
		}

		e.events.Add(&event.ValidatorAdmitted{
			Validator: validator,
			Funder:    rec.Funder,
			Payee:     funderPayee,
			Operator:  operator,
			Pool:      rec.Pool,
		})
		metricAdmissions().Add(1)
		metricManaged().Set(int64(count))
		logger.Info("validator admitted",
			"validator", validator,
			"pool", rec.Pool,
			"cycle", rec.Cycle,
		)
		return nil
	})
}

// MigrateOut releases a managed validator: claim outstanding rewards
// into the pool, run a final distribution so nothing is stranded, hand
// external custody to newOwner and deactivate the record with a
// cooldown. The pool is abandoned, not destroyed; commission left in it
// stays claimable through WithdrawPoolCommission.
func (e *Entry) MigrateOut(caller, validator, newOwner goat.Address, now uint64) error {
	return e.run(func() error {
		rec, err := e.registry.get(validator)
		if err != nil {
			return err
		}
		if !rec.Active {
			return errors.New("entry: validator is not managed")
		}
		if rec.Funder != caller {
			return errors.New("entry: caller is not the funder")
		}
		if newOwner.IsZero() {
			return errors.New("entry: new owner is the zero address")
		}

		pool := rec.Pool
		if err := e.locking.Claim(validator, pool); err != nil {
			return err
		}
		if err := e.distribute(rec, now); err != nil {
			return err
		}
		if err := e.locking.TransferOwnership(validator, e.addr, newOwner); err != nil {
			return err
		}

		cooldown, err := e.params.CooldownPeriod()
		if err != nil {
			return err
		}
		rec.Active = false
		rec.CooldownUntil = now + cooldown
		rec.Funder = goat.Address{}
		rec.FunderPayee = goat.Address{}
		rec.Operator = goat.Address{}
		rec.Pool = goat.Address{}
		if err := e.registry.remove(validator, rec); err != nil {
			return err
		}

		e.events.Add(&event.ValidatorReleased{
			Validator:     validator,
			NewOwner:      newOwner,
			Pool:          pool,
			CooldownUntil: rec.CooldownUntil,
		})
		metricReleases().Add(1)
		count, err := e.registry.count()
		if err != nil {
			return err
		}
		metricManaged().Set(int64(count))
		logger.Info("validator released",
			"validator", validator,
			"newOwner", newOwner,
			"cooldownUntil", rec.CooldownUntil,
		)
		return nil
	})
}

// SetFunderPayee updates the net-reward recipient. Funder only.
func (e *Entry) SetFunderPayee(caller, validator, payee goat.Address) error {
	return e.run(func() error {
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		if rec.Funder != caller {
			return errors.New("entry: caller is not the funder")
		}
		if payee.IsZero() {
			return errors.New("entry: payee is the zero address")
		}
		rec.FunderPayee = payee
		if err := e.registry.set(validator, rec); err != nil {
			return err
		}
		e.events.Add(&event.FunderPayeeChanged{Validator: validator, Payee: payee})
		return nil
	})
}

// SetOperator rotates the operator. Operator only. When withdrawTo is
// non-zero the outgoing operator's accrued commission is paid out there
// before the handover; otherwise the balance is reassigned to the new
// operator.
func (e *Entry) SetOperator(caller, validator, newOperator, withdrawTo goat.Address) error {
	return e.run(func() error {
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		if rec.Operator != caller {
			return errors.New("entry: caller is not the operator")
		}
		if newOperator.IsZero() {
			return errors.New("entry: new operator is the zero address")
		}

		pool := e.escrow.Bind(rec.Pool)
		if !withdrawTo.IsZero() {
			if _, _, err := pool.WithdrawCommission(caller, withdrawTo); err != nil {
				return err
			}
		} else if err := pool.Reassign(caller, newOperator); err != nil {
			return err
		}
		if err := pool.SetOperator(newOperator); err != nil {
			return err
		}
		rec.Operator = newOperator
		if err := e.registry.set(validator, rec); err != nil {
			return err
		}
		e.events.Add(&event.OperatorRotated{
			Validator:   validator,
			OldOperator: caller,
			NewOperator: newOperator,
		})
		return nil
	})
}

// ClaimRewards pulls outstanding rewards from the locking system into
// the pool, then distributes. Permissionless: it can only ever benefit
// the existing role holders, never the caller.
func (e *Entry) ClaimRewards(validator goat.Address, now uint64) error {
	return e.run(func() error {
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		if err := e.locking.Claim(validator, rec.Pool); err != nil {
			return err
		}
		return e.distribute(rec, now)
	})
}

// WithdrawRewards distributes whatever already sits in the pool without
// pulling from the locking system. Permissionless.
func (e *Entry) WithdrawRewards(validator goat.Address, now uint64) error {
	return e.run(func() error {
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		return e.distribute(rec, now)
	})
}

// WithdrawFoundationCommission pays the foundation's accrued commission
// in the validator's pool to the given destination. Foundation only.
func (e *Entry) WithdrawFoundationCommission(caller, validator, to goat.Address) error {
	return e.run(func() error {
		foundation, err := e.params.Foundation()
		if err != nil {
			return err
		}
		if foundation.IsZero() || caller != foundation {
			return errors.New("entry: caller is not the foundation")
		}
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		_, _, err = e.escrow.Bind(rec.Pool).WithdrawCommission(foundation, to)
		return err
	})
}

// WithdrawAllFoundationCommissions sweeps the foundation commission of
// every managed pool. Bounded by the admission ceiling. Foundation only.
func (e *Entry) WithdrawAllFoundationCommissions(caller, to goat.Address) error {
	return e.run(func() error {
		foundation, err := e.params.Foundation()
		if err != nil {
			return err
		}
		if foundation.IsZero() || caller != foundation {
			return errors.New("entry: caller is not the foundation")
		}
		validators, err := e.registry.all()
		if err != nil {
			return err
		}
		for _, validator := range validators {
			rec, err := e.registry.get(validator)
			if err != nil {
				return err
			}
			if _, _, err := e.escrow.Bind(rec.Pool).WithdrawCommission(foundation, to); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithdrawOperatorCommission pays the operator's accrued commission in
// the validator's pool to the given destination. Operator only.
func (e *Entry) WithdrawOperatorCommission(caller, validator, to goat.Address) error {
	return e.run(func() error {
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		if rec.Operator != caller {
			return errors.New("entry: caller is not the operator")
		}
		_, _, err = e.escrow.Bind(rec.Pool).WithdrawCommission(caller, to)
		return err
	})
}

// WithdrawPoolCommission withdraws the caller's own accrued commission
// from any pool, including pools abandoned by a release. Balances are
// keyed by beneficiary, so callers can only ever reach their own funds.
func (e *Entry) WithdrawPoolCommission(caller, pool, to goat.Address) error {
	return e.run(func() error {
		_, _, err := e.escrow.Bind(pool).WithdrawCommission(caller, to)
		return err
	})
}

// Lock delegates stake items to the validator, sourced from the caller.
// Funder only.
func (e *Entry) Lock(caller, validator goat.Address, items []locking.Item) error {
	return e.run(func() error {
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		if rec.Funder != caller {
			return errors.New("entry: caller is not the funder")
		}
		return e.locking.Lock(validator, caller, items)
	})
}

// Unlock undelegates stake items to the recipient. Funder only. The
// coordinator is the external owner, so it authorizes the unlock.
func (e *Entry) Unlock(caller, validator, recipient goat.Address, items []locking.Item) error {
	return e.run(func() error {
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		if rec.Funder != caller {
			return errors.New("entry: caller is not the funder")
		}
		if recipient.IsZero() {
			return errors.New("entry: recipient is the zero address")
		}
		return e.locking.Unlock(validator, e.addr, recipient, items)
	})
}

// SetCommissionRates updates the global commission configuration.
// Administrative owner only.
func (e *Entry) SetCommissionRates(caller goat.Address, rates *params.CommissionRates) error {
	return e.run(func() error {
		if err := e.requireOwner(caller); err != nil {
			return err
		}
		return e.params.SetRates(rates)
	})
}

// SetFoundation rotates the foundation address and sweeps the accrued,
// unwithdrawn foundation commission of every managed pool to the new
// address so nothing is stranded under the old identity.
func (e *Entry) SetFoundation(caller, newFoundation goat.Address) error {
	return e.run(func() error {
		if err := e.requireOwner(caller); err != nil {
			return err
		}
		if newFoundation.IsZero() {
			return errors.New("entry: foundation is the zero address")
		}
		old, err := e.params.Foundation()
		if err != nil {
			return err
		}
		if !old.IsZero() && old != newFoundation {
			validators, err := e.registry.all()
			if err != nil {
				return err
			}
			for _, validator := range validators {
				rec, err := e.registry.get(validator)
				if err != nil {
					return err
				}
				if err := e.escrow.Bind(rec.Pool).Reassign(old, newFoundation); err != nil {
					return err
				}
			}
		}
		return e.params.SetAddress(goat.KeyFoundation, newFoundation)
	})
}

// SetAllowance reconfigures a managed validator's operator allowance.
// Administrative owner only.
func (e *Entry) SetAllowance(caller, validator goat.Address, nativeCap, tokenCap *big.Int, period, now uint64) error {
	return e.run(func() error {
		if err := e.requireOwner(caller); err != nil {
			return err
		}
		rec, err := e.active(validator)
		if err != nil {
			return err
		}
		return e.escrow.Bind(rec.Pool).SetAllowance(nonNil(nativeCap), nonNil(tokenCap), period, now)
	})
}

// active returns the record, failing unless the validator is managed.
func (e *Entry) active(validator goat.Address) (*Record, error) {
	rec, err := e.registry.get(validator)
	if err != nil {
		return nil, err
	}
	if !rec.Active {
		return nil, errors.New("entry: validator is not managed")
	}
	return rec, nil
}

func (e *Entry) requireOwner(caller goat.Address) error {
	owner, err := e.params.Owner()
	if err != nil {
		return err
	}
	if owner.IsZero() || caller != owner {
		return errors.New("entry: caller is not the owner")
	}
	return nil
}

// distribute runs the pool distribution with the current global rates.
func (e *Entry) distribute(rec *Record, now uint64) error {
	foundation, err := e.params.Foundation()
	if err != nil {
		return err
	}
	rates, err := e.params.Rates()
	if err != nil {
		return err
	}
	if err := e.escrow.Bind(rec.Pool).Distribute(rec.FunderPayee, foundation, rec.Operator, rates, now); err != nil {
		return err
	}
	metricDistributions().Add(1)
	return nil
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return &big.Int{}
	}
	return v
}
