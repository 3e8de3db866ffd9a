// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package locking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/storage"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/token"
)

var (
	slotOwners    = goat.Blake2b([]byte("locking-owners"))
	slotLocked    = goat.Blake2b([]byte("locking-locked"))
	slotClaimable = goat.Blake2b([]byte("locking-claimable"))
)

// lockKey addresses one validator's locked balance for one currency.
type lockKey struct {
	validator goat.Address
	token     goat.Address
}

func (k lockKey) Bytes() []byte {
	return append(k.validator.Bytes(), k.token.Bytes()...)
}

// reward is a validator's claimable but unclaimed reward balance.
type reward struct {
	Native *big.Int
	Token  *big.Int
}

var _ System = (*Ledger)(nil)

// Ledger is the in-state reference implementation of the locking system.
// It settles claims synchronously, which satisfies the System contract's
// "by the next settlement point" guarantee trivially.
type Ledger struct {
	addr      goat.Address
	state     *state.State
	token     *token.Token
	owners    *storage.Mapping[goat.Address, *goat.Address]
	locked    *storage.Mapping[lockKey, *big.Int]
	claimable *storage.Mapping[goat.Address, *reward]
}

// NewLedger creates a new instance bound to addr.
func NewLedger(addr goat.Address, st *state.State, tok *token.Token) *Ledger {
	ctx := storage.NewContext(addr, st)
	return &Ledger{
		addr:      addr,
		state:     st,
		token:     tok,
		owners:    storage.NewMapping[goat.Address, *goat.Address](ctx, slotOwners),
		locked:    storage.NewMapping[lockKey, *big.Int](ctx, slotLocked),
		claimable: storage.NewMapping[goat.Address, *reward](ctx, slotClaimable),
	}
}

// SetOwner assigns the validator's custody owner without checks.
// Used by genesis and tests to seed ownership.
func (l *Ledger) SetOwner(validator, owner goat.Address) error {
	return l.owners.Set(validator, &owner)
}

// OwnerOf implements System.
func (l *Ledger) OwnerOf(validator goat.Address) (goat.Address, error) {
	owner, err := l.owners.Get(validator)
	if err != nil {
		return goat.Address{}, err
	}
	return *owner, nil
}

// TransferOwnership implements System.
func (l *Ledger) TransferOwnership(validator, caller, newOwner goat.Address) error {
	owner, err := l.OwnerOf(validator)
	if err != nil {
		return err
	}
	if owner != caller {
		return errors.New("locking: caller is not the validator owner")
	}
	if newOwner.IsZero() {
		return errors.New("locking: new owner is the zero address")
	}
	return l.owners.Set(validator, &newOwner)
}

// Lock implements System.
func (l *Ledger) Lock(validator, from goat.Address, items []Item) error {
	owner, err := l.OwnerOf(validator)
	if err != nil {
		return err
	}
	if owner.IsZero() {
		return errors.New("locking: unknown validator")
	}
	for _, item := range items {
		if err := l.moveIn(from, item); err != nil {
			return err
		}
		bal, err := l.locked.Get(lockKey{validator, item.Token})
		if err != nil {
			return err
		}
		if err := l.locked.Set(lockKey{validator, item.Token}, new(big.Int).Add(bal, item.Amount)); err != nil {
			return err
		}
	}
	return nil
}

// Unlock implements System.
func (l *Ledger) Unlock(validator, caller, recipient goat.Address, items []Item) error {
	owner, err := l.OwnerOf(validator)
	if err != nil {
		return err
	}
	if owner != caller {
		return errors.New("locking: caller is not the validator owner")
	}
	for _, item := range items {
		bal, err := l.locked.Get(lockKey{validator, item.Token})
		if err != nil {
			return err
		}
		if bal.Cmp(item.Amount) < 0 {
			return errors.Errorf("locking: unlock amount %v exceeds locked %v", item.Amount, bal)
		}
		if err := l.locked.Set(lockKey{validator, item.Token}, new(big.Int).Sub(bal, item.Amount)); err != nil {
			return err
		}
		if err := l.moveOut(recipient, item); err != nil {
			return err
		}
	}
	return nil
}

// LockedBalance returns the validator's locked balance for a currency.
func (l *Ledger) LockedBalance(validator, tokenAddr goat.Address) (*big.Int, error) {
	return l.locked.Get(lockKey{validator, tokenAddr})
}

// AddReward accrues claimable rewards for the validator and funds the
// ledger so a later claim is covered.
func (l *Ledger) AddReward(validator goat.Address, native, tokenAmount *big.Int) error {
	r, err := l.claimable.Get(validator)
	if err != nil {
		return err
	}
	if r.Native == nil {
		r = &reward{Native: &big.Int{}, Token: &big.Int{}}
	}
	r.Native = new(big.Int).Add(r.Native, native)
	r.Token = new(big.Int).Add(r.Token, tokenAmount)
	if err := l.claimable.Set(validator, r); err != nil {
		return err
	}

	if native.Sign() > 0 {
		bal, err := l.state.GetBalance(l.addr)
		if err != nil {
			return err
		}
		if err := l.state.SetBalance(l.addr, new(big.Int).Add(bal, native)); err != nil {
			return err
		}
	}
	if tokenAmount.Sign() > 0 {
		if err := l.token.Mint(l.addr, tokenAmount); err != nil {
			return err
		}
	}
	return nil
}

// Claim implements System. The reference ledger settles synchronously.
func (l *Ledger) Claim(validator, destination goat.Address) error {
	if destination.IsZero() {
		return errors.New("locking: claim destination is the zero address")
	}
	r, err := l.claimable.Get(validator)
	if err != nil {
		return err
	}
	if r.Native == nil {
		return nil // nothing accrued yet
	}
	if err := l.claimable.Delete(validator); err != nil {
		return err
	}
	if r.Native.Sign() > 0 {
		if err := l.moveOut(destination, Item{Token: goat.NativeTokenSentinel, Amount: r.Native}); err != nil {
			return err
		}
	}
	if r.Token.Sign() > 0 {
		if err := l.token.Transfer(l.addr, destination, r.Token); err != nil {
			return err
		}
	}
	return nil
}

// moveIn pulls one stake item from the source into the ledger.
func (l *Ledger) moveIn(from goat.Address, item Item) error {
	if item.Amount.Sign() == 0 {
		return nil
	}
	if item.Token == goat.NativeTokenSentinel {
		fromBal, err := l.state.GetBalance(from)
		if err != nil {
			return err
		}
		if fromBal.Cmp(item.Amount) < 0 {
			return errors.Errorf("locking: lock amount %v exceeds balance %v", item.Amount, fromBal)
		}
		if err := l.state.SetBalance(from, new(big.Int).Sub(fromBal, item.Amount)); err != nil {
			return err
		}
		selfBal, err := l.state.GetBalance(l.addr)
		if err != nil {
			return err
		}
		return l.state.SetBalance(l.addr, new(big.Int).Add(selfBal, item.Amount))
	}
	return l.token.Transfer(from, l.addr, item.Amount)
}

// moveOut pays one stake item from the ledger to the recipient.
func (l *Ledger) moveOut(to goat.Address, item Item) error {
	if item.Amount.Sign() == 0 {
		return nil
	}
	if item.Token == goat.NativeTokenSentinel {
		selfBal, err := l.state.GetBalance(l.addr)
		if err != nil {
			return err
		}
		if selfBal.Cmp(item.Amount) < 0 {
			return errors.Errorf("locking: payout %v exceeds ledger balance %v", item.Amount, selfBal)
		}
		if err := l.state.SetBalance(l.addr, new(big.Int).Sub(selfBal, item.Amount)); err != nil {
			return err
		}
		toBal, err := l.state.GetBalance(to)
		if err != nil {
			return err
		}
		return l.state.SetBalance(to, new(big.Int).Add(toBal, item.Amount))
	}
	return l.token.Transfer(l.addr, to, item.Amount)
}
