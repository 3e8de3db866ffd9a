// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/kv"
	"github.com/liqingnz/goat-locking-wrapper/state"
)

func newTestParams(t *testing.T) *Params {
	store, err := kv.NewMem()
	assert.NoError(t, err)
	return New(goat.ParamsAddress, state.New(store))
}

func TestParamsGetSet(t *testing.T) {
	p := newTestParams(t)
	key := goat.BytesToBytes32([]byte("key"))
	setv := big.NewInt(10)

	getv, err := p.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, 0, getv.Sign())

	assert.NoError(t, p.Set(key, setv))
	getv, err = p.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, setv, getv)
}

func TestParamsAddresses(t *testing.T) {
	p := newTestParams(t)
	owner := goat.BytesToAddress([]byte("owner"))
	foundation := goat.BytesToAddress([]byte("foundation"))

	assert.NoError(t, p.SetAddress(goat.KeyOwner, owner))
	assert.NoError(t, p.SetAddress(goat.KeyFoundation, foundation))

	got, err := p.Owner()
	assert.NoError(t, err)
	assert.Equal(t, owner, got)

	got, err = p.Foundation()
	assert.NoError(t, err)
	assert.Equal(t, foundation, got)
}

func TestCommissionRates(t *testing.T) {
	p := newTestParams(t)

	rates := &CommissionRates{
		FoundationNative: 2000,
		OperatorNative:   3000,
		FoundationToken:  5000,
		OperatorToken:    4000,
	}
	assert.NoError(t, p.SetRates(rates))

	got, err := p.Rates()
	assert.NoError(t, err)
	assert.Equal(t, rates, got)

	bad := &CommissionRates{FoundationNative: 6000, OperatorNative: 5000}
	assert.Error(t, p.SetRates(bad), "native rates summing above 100% must be rejected")

	bad = &CommissionRates{FoundationToken: 9000, OperatorToken: 2000}
	assert.Error(t, p.SetRates(bad), "token rates summing above 100% must be rejected")
}

func TestDefaults(t *testing.T) {
	p := newTestParams(t)

	cooldown, err := p.CooldownPeriod()
	assert.NoError(t, err)
	assert.Equal(t, goat.InitialCooldownPeriod, cooldown)

	ceiling, err := p.MaxManagedValidators()
	assert.NoError(t, err)
	assert.Equal(t, goat.MaxManagedValidators, ceiling)

	assert.NoError(t, p.Set(goat.KeyCooldownPeriod, big.NewInt(60)))
	cooldown, err = p.CooldownPeriod()
	assert.NoError(t, err)
	assert.Equal(t, uint64(60), cooldown)
}
