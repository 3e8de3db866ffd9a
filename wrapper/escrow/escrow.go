// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package escrow implements the per-validator reward pool: the exclusive
// custodian of pending rewards, splitting them into commission shares
// under a rate-limited operator allowance and paying the remainder to
// the funder's payee.
package escrow

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/event"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/params"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/storage"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/token"
)

var (
	slotCommissions     = goat.Blake2b([]byte("escrow-commissions"))
	slotCommittedNative = goat.Blake2b([]byte("escrow-committed-native"))
	slotCommittedToken  = goat.Blake2b([]byte("escrow-committed-token"))
	slotAllowance       = goat.Blake2b([]byte("escrow-allowance"))
	slotOperator        = goat.Blake2b([]byte("escrow-operator"))
)

// Engine creates pool bindings over shared state.
type Engine struct {
	state  *state.State
	token  *token.Token
	events *event.Recorder
}

// New creates a new instance.
func New(st *state.State, tok *token.Token, events *event.Recorder) *Engine {
	return &Engine{state: st, token: tok, events: events}
}

// Bind binds a pool at the given address. Each pool is single-owner: the
// coordinator holds the only handle through which balances are mutated.
type Pool struct {
	engine *Engine
	addr   goat.Address

	commissions     *storage.Mapping[goat.Address, *Commission]
	committedNative *storage.Uint256
	committedToken  *storage.Uint256
	allowance       *storage.Value[*Allowance]
	operator        *storage.Value[goat.Address]
}

func (e *Engine) Bind(addr goat.Address) *Pool {
	ctx := storage.NewContext(addr, e.state)
	return &Pool{
		engine:          e,
		addr:            addr,
		commissions:     storage.NewMapping[goat.Address, *Commission](ctx, slotCommissions),
		committedNative: storage.NewUint256(ctx, slotCommittedNative),
		committedToken:  storage.NewUint256(ctx, slotCommittedToken),
		allowance:       storage.NewValue[*Allowance](ctx, slotAllowance),
		operator:        storage.NewValue[goat.Address](ctx, slotOperator),
	}
}

// Address returns the pool address.
func (p *Pool) Address() goat.Address {
	return p.addr
}

// Operator returns the operator recorded on the pool. It survives the
// validator's release so leftover commission stays attributable.
func (p *Pool) Operator() (goat.Address, error) {
	return p.operator.Get()
}

// SetOperator records the pool's operator.
func (p *Pool) SetOperator(operator goat.Address) error {
	return p.operator.Set(operator)
}

// SetAllowance reconfigures the operator allowance. The used counters
// restart and the window is re-anchored at now.
func (p *Pool) SetAllowance(nativeCap, tokenCap *big.Int, period, now uint64) error {
	a := &Allowance{
		NativeCap:  nativeCap,
		TokenCap:   tokenCap,
		NativeUsed: &big.Int{},
		TokenUsed:  &big.Int{},
		Period:     period,
	}
	if period > 0 {
		a.NextResetAt = now + period
	}
	if err := p.allowance.Set(a); err != nil {
		return err
	}
	p.engine.events.Add(&event.AllowanceConfigured{
		Pool:      p.addr,
		NativeCap: nativeCap,
		TokenCap:  tokenCap,
		Period:    period,
	})
	return nil
}

// Allowance returns the current allowance state.
func (p *Pool) Allowance() (*Allowance, error) {
	a, err := p.allowance.Get()
	if err != nil {
		return nil, err
	}
	return a.normalize(), nil
}

// Committed returns the held-but-unwithdrawn commission totals.
func (p *Pool) Committed() (native, tokenAmount *big.Int, err error) {
	if native, err = p.committedNative.Get(); err != nil {
		return nil, nil, err
	}
	if tokenAmount, err = p.committedToken.Get(); err != nil {
		return nil, nil, err
	}
	return native, tokenAmount, nil
}

// CommissionOf returns a beneficiary's accrued commission.
func (p *Pool) CommissionOf(owner goat.Address) (*Commission, error) {
	c, err := p.commissions.Get(owner)
	if err != nil {
		return nil, err
	}
	return c.normalize(), nil
}

// Balances returns the pool's raw balances per currency.
func (p *Pool) Balances() (native, tokenAmount *big.Int, err error) {
	if native, err = p.engine.state.GetBalance(p.addr); err != nil {
		return nil, nil, err
	}
	if tokenAmount, err = p.engine.token.BalanceOf(p.addr); err != nil {
		return nil, nil, err
	}
	return native, tokenAmount, nil
}

// share computes floor(available * rate / 10000).
func share(available *big.Int, rate uint64) *big.Int {
	s := new(big.Int).Mul(available, new(big.Int).SetUint64(rate))
	return s.Div(s, new(big.Int).SetUint64(goat.BasisPoints))
}

// Distribute settles the pool's uncommitted balances: it refreshes the
// allowance window, accrues foundation and operator commission, and pays
// the remainder to the funder's payee. The native and token legs are
// independent; a leg with nothing available performs no state change.
// Anything the allowance clamps away from the operator falls through to
// the payee, never to another commission balance.
func (p *Pool) Distribute(payee, foundation, operator goat.Address, rates *params.CommissionRates, now uint64) error {
	if payee.IsZero() || foundation.IsZero() || operator.IsZero() {
		return errors.New("escrow: distribution address is the zero address")
	}
	if err := rates.Validate(); err != nil {
		return err
	}

	allowance, err := p.Allowance()
	if err != nil {
		return err
	}
	allowance.refresh(now)

	if err := p.distributeNative(payee, foundation, operator, rates, allowance); err != nil {
		return err
	}
	if err := p.distributeToken(payee, foundation, operator, rates, allowance); err != nil {
		return err
	}
	return p.allowance.Set(allowance)
}

func (p *Pool) distributeNative(payee, foundation, operator goat.Address, rates *params.CommissionRates, allowance *Allowance) error {
	raw, err := p.engine.state.GetBalance(p.addr)
	if err != nil {
		return err
	}
	committed, err := p.committedNative.Get()
	if err != nil {
		return err
	}
	available := new(big.Int).Sub(raw, committed)
	if available.Sign() <= 0 {
		return nil
	}

	foundationShare := share(available, rates.FoundationNative)
	operatorShare := allowance.ApplyNative(share(available, rates.OperatorNative))

	if err := p.accrue(foundation, foundationShare, goat.CurrencyNative); err != nil {
		return err
	}
	if err := p.accrue(operator, operatorShare, goat.CurrencyNative); err != nil {
		return err
	}
	commission := new(big.Int).Add(foundationShare, operatorShare)
	if err := p.committedNative.Add(commission); err != nil {
		return err
	}

	payout := new(big.Int).Sub(available, commission)
	if payout.Sign() > 0 {
		if err := p.transferNative(payee, payout); err != nil {
			return err
		}
	}
	p.engine.events.Add(&event.RewardDistributed{
		Pool:       p.addr,
		Payee:      payee,
		Currency:   goat.CurrencyNative,
		Payout:     payout,
		Commission: commission,
	})
	return nil
}

func (p *Pool) distributeToken(payee, foundation, operator goat.Address, rates *params.CommissionRates, allowance *Allowance) error {
	raw, err := p.engine.token.BalanceOf(p.addr)
	if err != nil {
		return err
	}
	committed, err := p.committedToken.Get()
	if err != nil {
		return err
	}
	available := new(big.Int).Sub(raw, committed)
	if available.Sign() <= 0 {
		return nil
	}

	foundationShare := share(available, rates.FoundationToken)
	operatorShare := allowance.ApplyToken(share(available, rates.OperatorToken))

	if err := p.accrue(foundation, foundationShare, goat.CurrencyToken); err != nil {
		return err
	}
	if err := p.accrue(operator, operatorShare, goat.CurrencyToken); err != nil {
		return err
	}
	commission := new(big.Int).Add(foundationShare, operatorShare)
	if err := p.committedToken.Add(commission); err != nil {
		return err
	}

	payout := new(big.Int).Sub(available, commission)
	if payout.Sign() > 0 {
		if err := p.engine.token.Transfer(p.addr, payee, payout); err != nil {
			return err
		}
	}
	p.engine.events.Add(&event.RewardDistributed{
		Pool:       p.addr,
		Payee:      payee,
		Currency:   goat.CurrencyToken,
		Payout:     payout,
		Commission: commission,
	})
	return nil
}

func (p *Pool) accrue(owner goat.Address, amount *big.Int, currency goat.Currency) error {
	if amount.Sign() == 0 {
		return nil
	}
	c, err := p.CommissionOf(owner)
	if err != nil {
		return err
	}
	switch currency {
	case goat.CurrencyNative:
		c.Native = new(big.Int).Add(c.Native, amount)
	case goat.CurrencyToken:
		c.Token = new(big.Int).Add(c.Token, amount)
	}
	return p.commissions.Set(owner, c)
}

// WithdrawCommission pays out a beneficiary's accrued commission for
// both currencies. The balance is zeroed before any transfer is
// attempted, and a failed transfer aborts the whole operation.
func (p *Pool) WithdrawCommission(owner, to goat.Address) (native, tokenAmount *big.Int, err error) {
	if to.IsZero() {
		return nil, nil, errors.New("escrow: withdrawal destination is the zero address")
	}
	c, err := p.CommissionOf(owner)
	if err != nil {
		return nil, nil, err
	}
	native, tokenAmount = c.Native, c.Token
	if c.IsEmpty() {
		return native, tokenAmount, nil
	}

	if err := p.commissions.Delete(owner); err != nil {
		return nil, nil, err
	}
	if native.Sign() > 0 {
		if err := p.committedNative.Sub(native); err != nil {
			return nil, nil, err
		}
		if err := p.transferNative(to, native); err != nil {
			return nil, nil, err
		}
	}
	if tokenAmount.Sign() > 0 {
		if err := p.committedToken.Sub(tokenAmount); err != nil {
			return nil, nil, err
		}
		if err := p.engine.token.Transfer(p.addr, to, tokenAmount); err != nil {
			return nil, nil, err
		}
	}
	p.engine.events.Add(&event.CommissionWithdrawn{
		Pool:         p.addr,
		Owner:        owner,
		To:           to,
		NativeAmount: native,
		TokenAmount:  tokenAmount,
	})
	return native, tokenAmount, nil
}

// Reassign moves an owner's accrued, unwithdrawn commission to a new
// owner atomically for both currencies. Committed totals are untouched.
func (p *Pool) Reassign(from, to goat.Address) error {
	if to.IsZero() {
		return errors.New("escrow: reassignment destination is the zero address")
	}
	if from == to {
		return nil
	}
	fromCommission, err := p.CommissionOf(from)
	if err != nil {
		return err
	}
	if fromCommission.IsEmpty() {
		return nil
	}
	toCommission, err := p.CommissionOf(to)
	if err != nil {
		return err
	}
	toCommission.Native = new(big.Int).Add(toCommission.Native, fromCommission.Native)
	toCommission.Token = new(big.Int).Add(toCommission.Token, fromCommission.Token)

	if err := p.commissions.Delete(from); err != nil {
		return err
	}
	if err := p.commissions.Set(to, toCommission); err != nil {
		return err
	}
	p.engine.events.Add(&event.CommissionReassigned{Pool: p.addr, From: from, To: to})
	return nil
}

// transferNative moves native balance out of the pool.
func (p *Pool) transferNative(to goat.Address, amount *big.Int) error {
	bal, err := p.engine.state.GetBalance(p.addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errors.Errorf("escrow: native payout %v exceeds pool balance %v", amount, bal)
	}
	if err := p.engine.state.SetBalance(p.addr, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	toBal, err := p.engine.state.GetBalance(to)
	if err != nil {
		return err
	}
	return p.engine.state.SetBalance(to, new(big.Int).Add(toBal, amount))
}
