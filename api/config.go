// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/liqingnz/goat-locking-wrapper/api/utils"
	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/wrapper"
)

type configResponse struct {
	Owner                goat.Address `json:"owner"`
	Foundation           goat.Address `json:"foundation"`
	FoundationNative     uint64       `json:"foundationNativeRate"`
	OperatorNative       uint64       `json:"operatorNativeRate"`
	FoundationToken      uint64       `json:"foundationTokenRate"`
	OperatorToken        uint64       `json:"operatorTokenRate"`
	CooldownPeriod       uint64       `json:"cooldownPeriod"`
	MaxManagedValidators uint64       `json:"maxManagedValidators"`
}

func mountConfig(router *mux.Router, w *wrapper.Wrapper) {
	router.Path("/config").
		Methods(http.MethodGet).
		Name("GET /config").
		HandlerFunc(utils.WrapHandlerFunc(func(rw http.ResponseWriter, _ *http.Request) error {
			owner, err := w.Params.Owner()
			if err != nil {
				return err
			}
			foundation, err := w.Params.Foundation()
			if err != nil {
				return err
			}
			rates, err := w.Params.Rates()
			if err != nil {
				return err
			}
			cooldown, err := w.Params.CooldownPeriod()
			if err != nil {
				return err
			}
			ceiling, err := w.Params.MaxManagedValidators()
			if err != nil {
				return err
			}
			return utils.WriteJSON(rw, &configResponse{
				Owner:                owner,
				Foundation:           foundation,
				FoundationNative:     rates.FoundationNative,
				OperatorNative:       rates.OperatorNative,
				FoundationToken:      rates.FoundationToken,
				OperatorToken:        rates.OperatorToken,
				CooldownPeriod:       cooldown,
				MaxManagedValidators: ceiling,
			})
		}))
}
