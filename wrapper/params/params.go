// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params implements the governance parameter engine: the
// administrative owner, the foundation address and the global
// commission configuration shared by all managed validators.
package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/state"
)

// CommissionRates is the global commission configuration, all values in
// basis points. Each currency pair must sum to at most 10000.
type CommissionRates struct {
	FoundationNative uint64
	OperatorNative   uint64
	FoundationToken  uint64
	OperatorToken    uint64
}

// Validate checks the per-currency rate sums.
func (r *CommissionRates) Validate() error {
	if r.FoundationNative+r.OperatorNative > goat.BasisPoints {
		return errors.New("native commission rates exceed 100%")
	}
	if r.FoundationToken+r.OperatorToken > goat.BasisPoints {
		return errors.New("token commission rates exceed 100%")
	}
	return nil
}

// Params binds the parameter engine to its address.
type Params struct {
	addr  goat.Address
	state *state.State
}

// New creates a new instance.
func New(addr goat.Address, state *state.State) *Params {
	return &Params{addr, state}
}

// Get returns the numeric param for key, zero if unset.
func (p *Params) Get(key goat.Bytes32) (*big.Int, error) {
	var v big.Int
	err := p.state.DecodeStorage(p.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Set sets the numeric param for key.
func (p *Params) Set(key goat.Bytes32, value *big.Int) error {
	return p.state.EncodeStorage(p.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// GetAddress returns the address param for key, zero if unset.
func (p *Params) GetAddress(key goat.Bytes32) (addr goat.Address, err error) {
	err = p.state.DecodeStorage(p.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

// SetAddress sets the address param for key.
func (p *Params) SetAddress(key goat.Bytes32, addr goat.Address) error {
	return p.state.EncodeStorage(p.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&addr)
	})
}

// Owner returns the administrative owner.
func (p *Params) Owner() (goat.Address, error) {
	return p.GetAddress(goat.KeyOwner)
}

// Foundation returns the foundation commission recipient.
func (p *Params) Foundation() (goat.Address, error) {
	return p.GetAddress(goat.KeyFoundation)
}

// Rates returns the global commission rates.
func (p *Params) Rates() (*CommissionRates, error) {
	var rates CommissionRates
	for _, f := range []struct {
		key goat.Bytes32
		dst *uint64
	}{
		{goat.KeyFoundationNativeRate, &rates.FoundationNative},
		{goat.KeyOperatorNativeRate, &rates.OperatorNative},
		{goat.KeyFoundationTokenRate, &rates.FoundationToken},
		{goat.KeyOperatorTokenRate, &rates.OperatorToken},
	} {
		v, err := p.Get(f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v.Uint64()
	}
	return &rates, nil
}

// SetRates validates and stores the global commission rates.
func (p *Params) SetRates(rates *CommissionRates) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	for _, f := range []struct {
		key goat.Bytes32
		val uint64
	}{
		{goat.KeyFoundationNativeRate, rates.FoundationNative},
		{goat.KeyOperatorNativeRate, rates.OperatorNative},
		{goat.KeyFoundationTokenRate, rates.FoundationToken},
		{goat.KeyOperatorTokenRate, rates.OperatorToken},
	} {
		if err := p.Set(f.key, new(big.Int).SetUint64(f.val)); err != nil {
			return err
		}
	}
	return nil
}

// CooldownPeriod returns the re-admission cooldown in seconds.
func (p *Params) CooldownPeriod() (uint64, error) {
	v, err := p.Get(goat.KeyCooldownPeriod)
	if err != nil {
		return 0, err
	}
	if v.Sign() == 0 {
		return goat.InitialCooldownPeriod, nil
	}
	return v.Uint64(), nil
}

// MaxManagedValidators returns the admission ceiling.
func (p *Params) MaxManagedValidators() (uint64, error) {
	v, err := p.Get(goat.KeyMaxManagedValidators)
	if err != nil {
		return 0, err
	}
	if v.Sign() == 0 {
		return goat.MaxManagedValidators, nil
	}
	return v.Uint64(), nil
}
