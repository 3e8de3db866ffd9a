// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package validators exposes the managed-validator set over HTTP.
package validators

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/liqingnz/goat-locking-wrapper/api/utils"
	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/wrapper"
)

// Validators is the HTTP facade over the lifecycle coordinator.
type Validators struct {
	wrapper *wrapper.Wrapper
	now     func() uint64
}

// New creates a new instance.
func New(w *wrapper.Wrapper, now func() uint64) *Validators {
	return &Validators{wrapper: w, now: now}
}

func (v *Validators) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	managed, err := v.wrapper.Entry.Managed()
	if err != nil {
		return err
	}
	out := make([]*Validator, 0, len(managed))
	for _, addr := range managed {
		rec, err := v.wrapper.Entry.Get(addr)
		if err != nil {
			return err
		}
		out = append(out, convertRecord(addr, rec))
	}
	return utils.WriteJSON(w, out)
}

func (v *Validators) handleGetValidator(w http.ResponseWriter, r *http.Request) error {
	addr, err := v.parseAddress(r)
	if err != nil {
		return err
	}
	rec, err := v.wrapper.Entry.Get(addr)
	if err != nil {
		return err
	}
	if !rec.Active && rec.Cycle == 0 && !rec.Registered() {
		return utils.NotFound(errors.New("unknown validator"))
	}
	return utils.WriteJSON(w, convertRecord(addr, rec))
}

func (v *Validators) handleGetEscrow(w http.ResponseWriter, r *http.Request) error {
	addr, err := v.parseAddress(r)
	if err != nil {
		return err
	}
	rec, err := v.wrapper.Entry.Get(addr)
	if err != nil {
		return err
	}
	if !rec.Active {
		return utils.NotFound(errors.New("validator is not managed"))
	}
	pool := v.wrapper.Escrow.Bind(rec.Pool)

	native, tokenAmount, err := pool.Balances()
	if err != nil {
		return err
	}
	committedNative, committedToken, err := pool.Committed()
	if err != nil {
		return err
	}
	allowance, err := pool.Allowance()
	if err != nil {
		return err
	}
	operator, err := pool.Operator()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Escrow{
		Pool:            rec.Pool,
		Operator:        operator,
		NativeBalance:   native.String(),
		TokenBalance:    tokenAmount.String(),
		CommittedNative: committedNative.String(),
		CommittedToken:  committedToken.String(),
		Allowance:       convertAllowance(allowance),
	})
}

func (v *Validators) handlePostClaim(w http.ResponseWriter, r *http.Request) error {
	addr, err := v.parseAddress(r)
	if err != nil {
		return err
	}
	if err := v.wrapper.Entry.ClaimRewards(addr, v.now()); err != nil {
		return utils.BadRequest(err)
	}
	stage, err := v.wrapper.State.Stage()
	if err != nil {
		return err
	}
	if err := stage.Commit(); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (v *Validators) parseAddress(r *http.Request) (goat.Address, error) {
	addr, err := goat.ParseAddress(mux.Vars(r)["addr"])
	if err != nil {
		return goat.Address{}, utils.BadRequest(errors.WithMessage(err, "addr"))
	}
	return *addr, nil
}

// Mount attaches the handlers under the path prefix.
func (v *Validators) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /validators").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetValidators))
	sub.Path("/{addr}").
		Methods(http.MethodGet).
		Name("GET /validators/{addr}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetValidator))
	sub.Path("/{addr}/escrow").
		Methods(http.MethodGet).
		Name("GET /validators/{addr}/escrow").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetEscrow))
	sub.Path("/{addr}/claim").
		Methods(http.MethodPost).
		Name("POST /validators/{addr}/claim").
		HandlerFunc(utils.WrapHandlerFunc(v.handlePostClaim))
}
