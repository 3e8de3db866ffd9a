// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis seeds a fresh state from a yaml config: governance
// params, initial balances and pre-existing validator custody owners.
package genesis

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/wrapper"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/params"
)

// Rates is the initial commission configuration in basis points.
type Rates struct {
	FoundationNative uint64 `yaml:"foundationNative"`
	OperatorNative   uint64 `yaml:"operatorNative"`
	FoundationToken  uint64 `yaml:"foundationToken"`
	OperatorToken    uint64 `yaml:"operatorToken"`
}

// Account pre-funds one address.
type Account struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
	Tokens  string `yaml:"tokens"`
}

// Validator pre-seeds one external custody owner in the locking ledger.
type Validator struct {
	Address string `yaml:"address"`
	Owner   string `yaml:"owner"`
}

// Config is the genesis file layout.
type Config struct {
	Owner                string      `yaml:"owner"`
	Foundation           string      `yaml:"foundation"`
	Rates                Rates       `yaml:"rates"`
	CooldownPeriod       uint64      `yaml:"cooldownPeriod"`
	MaxManagedValidators uint64      `yaml:"maxManagedValidators"`
	Accounts             []Account   `yaml:"accounts"`
	Validators           []Validator `yaml:"validators"`
}

// LoadConfig reads and validates a genesis file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "genesis: read config")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "genesis: parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks addresses and rate sums before any state is touched.
func (c *Config) Validate() error {
	if _, err := goat.ParseAddress(c.Owner); err != nil {
		return errors.Wrap(err, "genesis: owner")
	}
	if _, err := goat.ParseAddress(c.Foundation); err != nil {
		return errors.Wrap(err, "genesis: foundation")
	}
	rates := c.commissionRates()
	if err := rates.Validate(); err != nil {
		return errors.Wrap(err, "genesis")
	}
	for _, acc := range c.Accounts {
		if _, err := goat.ParseAddress(acc.Address); err != nil {
			return errors.Wrapf(err, "genesis: account %q", acc.Address)
		}
		if _, err := parseAmount(acc.Balance); err != nil {
			return errors.Wrapf(err, "genesis: account %q balance", acc.Address)
		}
		if _, err := parseAmount(acc.Tokens); err != nil {
			return errors.Wrapf(err, "genesis: account %q tokens", acc.Address)
		}
	}
	for _, v := range c.Validators {
		if _, err := goat.ParseAddress(v.Address); err != nil {
			return errors.Wrapf(err, "genesis: validator %q", v.Address)
		}
		if _, err := goat.ParseAddress(v.Owner); err != nil {
			return errors.Wrapf(err, "genesis: validator %q owner", v.Address)
		}
	}
	return nil
}

func (c *Config) commissionRates() *params.CommissionRates {
	return &params.CommissionRates{
		FoundationNative: c.Rates.FoundationNative,
		OperatorNative:   c.Rates.OperatorNative,
		FoundationToken:  c.Rates.FoundationToken,
		OperatorToken:    c.Rates.OperatorToken,
	}
}

// Build applies the config to the engine bundle's state. The caller
// commits the resulting stage.
func (c *Config) Build(w *wrapper.Wrapper) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := w.Params.SetAddress(goat.KeyOwner, goat.MustParseAddress(c.Owner)); err != nil {
		return err
	}
	if err := w.Params.SetAddress(goat.KeyFoundation, goat.MustParseAddress(c.Foundation)); err != nil {
		return err
	}
	if err := w.Params.SetRates(c.commissionRates()); err != nil {
		return err
	}
	if c.CooldownPeriod > 0 {
		if err := w.Params.Set(goat.KeyCooldownPeriod, new(big.Int).SetUint64(c.CooldownPeriod)); err != nil {
			return err
		}
	}
	if c.MaxManagedValidators > 0 {
		if err := w.Params.Set(goat.KeyMaxManagedValidators, new(big.Int).SetUint64(c.MaxManagedValidators)); err != nil {
			return err
		}
	}
	for _, acc := range c.Accounts {
		addr := goat.MustParseAddress(acc.Address)
		balance, _ := parseAmount(acc.Balance)
		if balance.Sign() > 0 {
			if err := w.State.SetBalance(addr, balance); err != nil {
				return err
			}
		}
		tokens, _ := parseAmount(acc.Tokens)
		if tokens.Sign() > 0 {
			if err := w.Token.Mint(addr, tokens); err != nil {
				return err
			}
		}
	}
	if w.Ledger != nil {
		for _, v := range c.Validators {
			if err := w.Ledger.SetOwner(goat.MustParseAddress(v.Address), goat.MustParseAddress(v.Owner)); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseAmount parses a decimal amount; empty means zero.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return &big.Int{}, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}
