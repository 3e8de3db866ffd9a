// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/kv"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/event"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/params"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/token"
)

var (
	payee      = goat.BytesToAddress([]byte("payee"))
	foundation = goat.BytesToAddress([]byte("foundation"))
	operator   = goat.BytesToAddress([]byte("operator"))
)

type testEnv struct {
	st     *state.State
	tok    *token.Token
	events *event.Recorder
	pool   *Pool
}

func newTestEnv(t *testing.T) *testEnv {
	store, err := kv.NewMem()
	assert.NoError(t, err)
	st := state.New(store)
	tok := token.New(goat.TokenAddress, st)
	events := event.NewRecorder()
	engine := New(st, tok, events)
	return &testEnv{
		st:     st,
		tok:    tok,
		events: events,
		pool:   engine.Bind(goat.CreateEscrowAddress(goat.BytesToAddress([]byte("validator")), 0)),
	}
}

func (env *testEnv) fund(t *testing.T, native, tokenAmount int64) {
	bal, err := env.st.GetBalance(env.pool.Address())
	assert.NoError(t, err)
	assert.NoError(t, env.st.SetBalance(env.pool.Address(), new(big.Int).Add(bal, big.NewInt(native))))
	assert.NoError(t, env.tok.Mint(env.pool.Address(), big.NewInt(tokenAmount)))
}

func defaultRates() *params.CommissionRates {
	return &params.CommissionRates{
		FoundationNative: 2000,
		OperatorNative:   3000,
		FoundationToken:  5000,
		OperatorToken:    4000,
	}
}

func TestDistributeUncapped(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10, 1000)
	assert.NoError(t, env.pool.SetAllowance(&big.Int{}, &big.Int{}, 0, 0))

	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	fc, err := env.pool.CommissionOf(foundation)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(2), fc.Native)
	assert.Equal(t, big.NewInt(500), fc.Token)

	oc, err := env.pool.CommissionOf(operator)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(3), oc.Native)
	assert.Equal(t, big.NewInt(400), oc.Token)

	payeeNative, _ := env.st.GetBalance(payee)
	assert.Equal(t, big.NewInt(5), payeeNative)
	payeeToken, _ := env.tok.BalanceOf(payee)
	assert.Equal(t, big.NewInt(100), payeeToken)

	committedNative, committedToken, err := env.pool.Committed()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(5), committedNative)
	assert.Equal(t, big.NewInt(900), committedToken)
}

func TestAllowanceFallthrough(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10, 1000)
	assert.NoError(t, env.pool.SetAllowance(big.NewInt(1), big.NewInt(100), 0, 0))

	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	oc, err := env.pool.CommissionOf(operator)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1), oc.Native, "operator native share clamps to the allowance")
	assert.Equal(t, big.NewInt(100), oc.Token, "operator token share clamps to the allowance")

	// the clamped difference flows to the payee, not to any commission
	payeeNative, _ := env.st.GetBalance(payee)
	assert.Equal(t, big.NewInt(7), payeeNative)
	payeeToken, _ := env.tok.BalanceOf(payee)
	assert.Equal(t, big.NewInt(400), payeeToken)
}

func TestAllowanceExhausted(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10, 0)
	assert.NoError(t, env.pool.SetAllowance(big.NewInt(3), big.NewInt(0), 0, 0))
	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	// allowance fully used; the next round's operator share clamps to zero
	env.fund(t, 10, 0)
	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	oc, err := env.pool.CommissionOf(operator)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(3), oc.Native, "no further accrual once the cap is used")

	payeeNative, _ := env.st.GetBalance(payee)
	// round one: 10-2-3=5; round two: 10-2-0=8
	assert.Equal(t, big.NewInt(13), payeeNative)
}

func TestAllowanceWindowReset(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10, 0)
	assert.NoError(t, env.pool.SetAllowance(big.NewInt(3), big.NewInt(0), 100, 0))

	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 10))

	a, err := env.pool.Allowance()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(3), a.NativeUsed)
	assert.Equal(t, uint64(100), a.NextResetAt)

	// long gap: the lazy reset catches up over several periods at once
	env.fund(t, 10, 0)
	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 350))

	a, err = env.pool.Allowance()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(3), a.NativeUsed, "window reset made room for a fresh accrual")
	assert.Equal(t, uint64(400), a.NextResetAt, "next reset always lands at or after now")

	oc, _ := env.pool.CommissionOf(operator)
	assert.Equal(t, big.NewInt(6), oc.Native)
}

func TestDistributeIdempotentWithoutNewFunds(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10, 1000)
	assert.NoError(t, env.pool.SetAllowance(&big.Int{}, &big.Int{}, 0, 0))
	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	events := len(env.events.Events())
	payeeNative, _ := env.st.GetBalance(payee)

	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	assert.Len(t, env.events.Events(), events, "no new funds means no state change and no events")
	payeeNativeAfter, _ := env.st.GetBalance(payee)
	assert.Equal(t, payeeNative, payeeNativeAfter)
}

func TestConservation(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.pool.SetAllowance(big.NewInt(2), big.NewInt(50), 0, 0))

	totalNative := big.NewInt(0)
	totalToken := big.NewInt(0)
	for _, round := range []struct{ native, token int64 }{
		{10, 1000}, {7, 33}, {123, 4567}, {1, 1},
	} {
		env.fund(t, round.native, round.token)
		totalNative.Add(totalNative, big.NewInt(round.native))
		totalToken.Add(totalToken, big.NewInt(round.token))
		assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

		// totalCommitted always equals the sum of all commission balances
		fc, _ := env.pool.CommissionOf(foundation)
		oc, _ := env.pool.CommissionOf(operator)
		committedNative, committedToken, err := env.pool.Committed()
		assert.NoError(t, err)
		assert.Equal(t, committedNative, new(big.Int).Add(fc.Native, oc.Native))
		assert.Equal(t, committedToken, new(big.Int).Add(fc.Token, oc.Token))

		// and the pool's raw balances are exactly the committed amounts
		rawNative, _ := env.st.GetBalance(env.pool.Address())
		assert.Equal(t, committedNative, rawNative)
		rawToken, _ := env.tok.BalanceOf(env.pool.Address())
		assert.Equal(t, committedToken, rawToken)
	}

	// everything funded ends up either with the payee or committed
	payeeNative, _ := env.st.GetBalance(payee)
	payeeToken, _ := env.tok.BalanceOf(payee)
	committedNative, committedToken, _ := env.pool.Committed()
	assert.Equal(t, totalNative, new(big.Int).Add(payeeNative, committedNative))
	assert.Equal(t, totalToken, new(big.Int).Add(payeeToken, committedToken))
}

func TestDistributeValidation(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10, 0)

	err := env.pool.Distribute(goat.Address{}, foundation, operator, defaultRates(), 0)
	assert.Error(t, err, "zero payee rejected")

	err = env.pool.Distribute(payee, foundation, operator, &params.CommissionRates{
		FoundationNative: 6000, OperatorNative: 5000,
	}, 0)
	assert.Error(t, err, "over-100% rate combination rejected")

	// nothing changed
	payeeNative, _ := env.st.GetBalance(payee)
	assert.Equal(t, 0, payeeNative.Sign())
	assert.Empty(t, env.events.Events())
}

func TestWithdrawCommission(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10, 1000)
	assert.NoError(t, env.pool.SetAllowance(&big.Int{}, &big.Int{}, 0, 0))
	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	dest := goat.BytesToAddress([]byte("dest"))
	native, tokenAmount, err := env.pool.WithdrawCommission(operator, dest)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(3), native)
	assert.Equal(t, big.NewInt(400), tokenAmount)

	destNative, _ := env.st.GetBalance(dest)
	assert.Equal(t, big.NewInt(3), destNative)
	destToken, _ := env.tok.BalanceOf(dest)
	assert.Equal(t, big.NewInt(400), destToken)

	oc, _ := env.pool.CommissionOf(operator)
	assert.True(t, oc.IsEmpty())

	committedNative, committedToken, _ := env.pool.Committed()
	assert.Equal(t, big.NewInt(2), committedNative)
	assert.Equal(t, big.NewInt(500), committedToken)

	// withdrawing again is a no-op
	native, tokenAmount, err = env.pool.WithdrawCommission(operator, dest)
	assert.NoError(t, err)
	assert.Equal(t, 0, native.Sign())
	assert.Equal(t, 0, tokenAmount.Sign())

	_, _, err = env.pool.WithdrawCommission(foundation, goat.Address{})
	assert.Error(t, err, "zero destination rejected")
}

func TestReassign(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10, 1000)
	assert.NoError(t, env.pool.SetAllowance(&big.Int{}, &big.Int{}, 0, 0))
	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	newOperator := goat.BytesToAddress([]byte("new-operator"))
	assert.NoError(t, env.pool.Reassign(operator, newOperator))

	oc, _ := env.pool.CommissionOf(operator)
	assert.True(t, oc.IsEmpty())

	nc, _ := env.pool.CommissionOf(newOperator)
	assert.Equal(t, big.NewInt(3), nc.Native)
	assert.Equal(t, big.NewInt(400), nc.Token)

	// committed totals untouched
	committedNative, committedToken, _ := env.pool.Committed()
	assert.Equal(t, big.NewInt(5), committedNative)
	assert.Equal(t, big.NewInt(900), committedToken)

	assert.Error(t, env.pool.Reassign(newOperator, goat.Address{}))
	assert.NoError(t, env.pool.Reassign(newOperator, newOperator), "self reassign is a no-op")
}

func TestLegsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	// token only, no native
	assert.NoError(t, env.tok.Mint(env.pool.Address(), big.NewInt(1000)))
	assert.NoError(t, env.pool.SetAllowance(&big.Int{}, &big.Int{}, 0, 0))

	assert.NoError(t, env.pool.Distribute(payee, foundation, operator, defaultRates(), 0))

	payeeToken, _ := env.tok.BalanceOf(payee)
	assert.Equal(t, big.NewInt(100), payeeToken, "absence of native funds must not block the token leg")

	events := env.events.Events()
	// one allowance event plus exactly one distribution event (token leg)
	assert.Len(t, events, 2)
	dist, ok := events[1].(*event.RewardDistributed)
	assert.True(t, ok)
	assert.Equal(t, goat.CurrencyToken, dist.Currency)
}

func TestOperatorIdentity(t *testing.T) {
	env := newTestEnv(t)

	op, err := env.pool.Operator()
	assert.NoError(t, err)
	assert.True(t, op.IsZero())

	assert.NoError(t, env.pool.SetOperator(operator))
	op, err = env.pool.Operator()
	assert.NoError(t, err)
	assert.Equal(t, operator, op)
}
