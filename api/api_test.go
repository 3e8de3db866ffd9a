// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/kv"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/test/datagen"
	"github.com/liqingnz/goat-locking-wrapper/wrapper"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/event"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/params"
)

func TestConfigEndpoint(t *testing.T) {
	store, err := kv.NewMem()
	require.NoError(t, err)
	w := wrapper.New(state.New(store), event.NewRecorder())

	owner := datagen.RandAddress()
	foundation := datagen.RandAddress()
	require.NoError(t, w.Params.SetAddress(goat.KeyOwner, owner))
	require.NoError(t, w.Params.SetAddress(goat.KeyFoundation, foundation))
	require.NoError(t, w.Params.SetRates(&params.CommissionRates{
		FoundationNative: 2000,
		OperatorNative:   3000,
	}))

	srv := httptest.NewServer(New(w, func() uint64 { return 0 }, Config{}))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/config") //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var got configResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, foundation, got.Foundation)
	assert.Equal(t, uint64(2000), got.FoundationNative)
	assert.Equal(t, goat.InitialCooldownPeriod, got.CooldownPeriod)
	assert.Equal(t, goat.MaxManagedValidators, got.MaxManagedValidators)

	// the validator routes are mounted behind the same handler
	res, err = http.Get(srv.URL + "/validators") //#nosec G107
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

// Claims commit the shared journaled state, so the handler must
// serialize requests arriving on concurrent connection goroutines.
func TestConcurrentClaims(t *testing.T) {
	store, err := kv.NewMem()
	require.NoError(t, err)
	w := wrapper.New(state.New(store), event.NewRecorder())

	var (
		owner      = datagen.RandAddress()
		foundation = datagen.RandAddress()
		funder     = datagen.RandAddress()
		payee      = datagen.RandAddress()
		operator   = datagen.RandAddress()
		validator  = datagen.RandAddress()
	)
	require.NoError(t, w.Params.SetAddress(goat.KeyOwner, owner))
	require.NoError(t, w.Params.SetAddress(goat.KeyFoundation, foundation))
	require.NoError(t, w.Params.SetRates(&params.CommissionRates{
		FoundationNative: 2000,
		OperatorNative:   3000,
	}))
	require.NoError(t, w.Ledger.SetOwner(validator, funder))
	require.NoError(t, w.Entry.RegisterMigration(funder, validator, 0))
	require.NoError(t, w.Ledger.TransferOwnership(validator, funder, w.Entry.Address()))
	require.NoError(t, w.Entry.Migrate(funder, validator, payee, operator, &big.Int{}, &big.Int{}, 0, 0))
	require.NoError(t, w.Ledger.AddReward(validator, big.NewInt(10), big.NewInt(1000)))

	handler := New(w, func() uint64 { return 0 }, Config{})

	const n = 16
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var req *http.Request
			if i%2 == 0 {
				req = httptest.NewRequest(http.MethodPost, "/validators/"+validator.String()+"/claim", nil)
			} else {
				req = httptest.NewRequest(http.MethodGet, "/validators/"+validator.String()+"/escrow", nil)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if i%2 == 0 {
			assert.Equal(t, http.StatusNoContent, code)
		} else {
			assert.Equal(t, http.StatusOK, code)
		}
	}

	// one reward, many claims: the payee is paid exactly once
	payeeNative, err := w.State.GetBalance(payee)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), payeeNative)
}
