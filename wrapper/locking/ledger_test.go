// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package locking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/kv"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/token"
)

func newTestLedger(t *testing.T) (*Ledger, *state.State, *token.Token) {
	store, err := kv.NewMem()
	assert.NoError(t, err)
	st := state.New(store)
	tok := token.New(goat.TokenAddress, st)
	return NewLedger(goat.LockingAddress, st, tok), st, tok
}

func TestOwnership(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	validator := goat.BytesToAddress([]byte("validator"))
	alice := goat.BytesToAddress([]byte("alice"))
	bob := goat.BytesToAddress([]byte("bob"))

	owner, err := ledger.OwnerOf(validator)
	assert.NoError(t, err)
	assert.True(t, owner.IsZero())

	assert.NoError(t, ledger.SetOwner(validator, alice))

	assert.Error(t, ledger.TransferOwnership(validator, bob, bob), "non-owner cannot transfer")
	assert.Error(t, ledger.TransferOwnership(validator, alice, goat.Address{}), "zero new owner rejected")
	assert.NoError(t, ledger.TransferOwnership(validator, alice, bob))

	owner, err = ledger.OwnerOf(validator)
	assert.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestLockUnlock(t *testing.T) {
	ledger, st, tok := newTestLedger(t)
	validator := goat.BytesToAddress([]byte("validator"))
	funder := goat.BytesToAddress([]byte("funder"))

	assert.NoError(t, ledger.SetOwner(validator, funder))
	assert.NoError(t, st.SetBalance(funder, big.NewInt(100)))
	assert.NoError(t, tok.Mint(funder, big.NewInt(50)))

	items := []Item{
		{Token: goat.NativeTokenSentinel, Amount: big.NewInt(60)},
		{Token: goat.TokenAddress, Amount: big.NewInt(50)},
	}
	assert.NoError(t, ledger.Lock(validator, funder, items))

	bal, _ := st.GetBalance(funder)
	assert.Equal(t, big.NewInt(40), bal)

	locked, err := ledger.LockedBalance(validator, goat.NativeTokenSentinel)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(60), locked)

	// unlocking more than locked fails
	err = ledger.Unlock(validator, funder, funder, []Item{{Token: goat.NativeTokenSentinel, Amount: big.NewInt(61)}})
	assert.Error(t, err)

	assert.NoError(t, ledger.Unlock(validator, funder, funder, []Item{{Token: goat.NativeTokenSentinel, Amount: big.NewInt(10)}}))
	bal, _ = st.GetBalance(funder)
	assert.Equal(t, big.NewInt(50), bal)

	// non-owner unlock rejected
	stranger := goat.BytesToAddress([]byte("stranger"))
	err = ledger.Unlock(validator, stranger, stranger, []Item{{Token: goat.NativeTokenSentinel, Amount: big.NewInt(1)}})
	assert.Error(t, err)

	// locking against an unregistered validator fails
	unknown := goat.BytesToAddress([]byte("unknown"))
	assert.Error(t, ledger.Lock(unknown, funder, items))
}

func TestRewardClaim(t *testing.T) {
	ledger, st, tok := newTestLedger(t)
	validator := goat.BytesToAddress([]byte("validator"))
	pool := goat.BytesToAddress([]byte("pool"))

	// claim with nothing accrued is a no-op
	assert.NoError(t, ledger.Claim(validator, pool))

	assert.NoError(t, ledger.AddReward(validator, big.NewInt(10), big.NewInt(1000)))
	assert.Error(t, ledger.Claim(validator, goat.Address{}))
	assert.NoError(t, ledger.Claim(validator, pool))

	bal, _ := st.GetBalance(pool)
	assert.Equal(t, big.NewInt(10), bal)

	tokBal, _ := tok.BalanceOf(pool)
	assert.Equal(t, big.NewInt(1000), tokBal)

	// second claim finds nothing
	assert.NoError(t, ledger.Claim(validator, pool))
	bal, _ = st.GetBalance(pool)
	assert.Equal(t, big.NewInt(10), bal)
}
