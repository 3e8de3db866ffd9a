// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/liqingnz/goat-locking-wrapper/goat"
)

func RandBytes32() (b goat.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr goat.Address) {
	rand.Read(addr[:])
	return
}
