// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible reward-token ledger. It is the
// in-state realization of the token collaborator: standard balance,
// transfer and approval semantics, with failed transfers reported as
// errors so the enclosing operation can abort.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/storage"
)

var (
	slotAccounts    = goat.Blake2b([]byte("token-accounts"))
	slotApprovals   = goat.Blake2b([]byte("token-approvals"))
	slotTotalSupply = goat.Blake2b([]byte("token-total-supply"))
)

// approvalKey is the compound (owner, spender) mapping key.
type approvalKey struct {
	owner   goat.Address
	spender goat.Address
}

func (k approvalKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token binds the token ledger to its engine address.
type Token struct {
	accounts  *storage.Mapping[goat.Address, *big.Int]
	approvals *storage.Mapping[approvalKey, *big.Int]
	supply    *storage.Uint256
}

// New creates a new instance.
func New(addr goat.Address, st *state.State) *Token {
	ctx := storage.NewContext(addr, st)
	return &Token{
		accounts:  storage.NewMapping[goat.Address, *big.Int](ctx, slotAccounts),
		approvals: storage.NewMapping[approvalKey, *big.Int](ctx, slotApprovals),
		supply:    storage.NewUint256(ctx, slotTotalSupply),
	}
}

// TotalSupply returns the minted supply.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

// BalanceOf returns the token balance of an account.
func (t *Token) BalanceOf(addr goat.Address) (*big.Int, error) {
	return t.accounts.Get(addr)
}

// Mint creates amount tokens on addr's balance.
func (t *Token) Mint(addr goat.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := t.accounts.Get(addr)
	if err != nil {
		return err
	}
	if err := t.accounts.Set(addr, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	return t.supply.Add(amount)
}

// Transfer moves amount from sender to recipient.
// Insufficient balance fails the transfer.
func (t *Token) Transfer(sender, recipient goat.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	senderBal, err := t.accounts.Get(sender)
	if err != nil {
		return err
	}
	if senderBal.Cmp(amount) < 0 {
		return errors.Errorf("token: transfer amount %v exceeds balance %v", amount, senderBal)
	}
	if err := t.accounts.Set(sender, new(big.Int).Sub(senderBal, amount)); err != nil {
		return err
	}
	recipientBal, err := t.accounts.Get(recipient)
	if err != nil {
		return err
	}
	return t.accounts.Set(recipient, new(big.Int).Add(recipientBal, amount))
}

// Approve sets spender's allowance over owner's balance.
func (t *Token) Approve(owner, spender goat.Address, amount *big.Int) error {
	return t.approvals.Set(approvalKey{owner, spender}, amount)
}

// Allowance returns spender's remaining allowance over owner's balance.
func (t *Token) Allowance(owner, spender goat.Address) (*big.Int, error) {
	return t.approvals.Get(approvalKey{owner, spender})
}

// TransferFrom moves amount from owner to recipient, consuming spender's allowance.
func (t *Token) TransferFrom(spender, owner, recipient goat.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	allowed, err := t.approvals.Get(approvalKey{owner, spender})
	if err != nil {
		return err
	}
	if allowed.Cmp(amount) < 0 {
		return errors.Errorf("token: transfer amount %v exceeds allowance %v", amount, allowed)
	}
	if err := t.approvals.Set(approvalKey{owner, spender}, new(big.Int).Sub(allowed, amount)); err != nil {
		return err
	}
	return t.Transfer(owner, recipient, amount)
}
