// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(NewTerminalHandler(&buf, false))

	logger.Info("pool funded", "amount", big.NewInt(1000), "note", "two words")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO ["), out)
	assert.Contains(t, out, "pool funded")
	assert.Contains(t, out, "amount=1000")
	assert.Contains(t, out, `note="two words"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestTerminalHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	var level slog.LevelVar
	level.Set(LevelWarn)
	logger := New(NewTerminalHandlerWithLevel(&buf, &level, false))

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(NewTerminalHandler(&buf, false))

	child := logger.With("pkg", "escrow")
	child.Info("bound")

	assert.Contains(t, buf.String(), "pkg=escrow")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "TRCE", LevelString(LevelTrace))
	assert.Equal(t, "INFO", LevelString(LevelInfo))
	assert.Equal(t, "CRIT", LevelString(LevelCrit))
}

func TestFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelCrit, FromVerbosity(0))
	assert.Equal(t, LevelInfo, FromVerbosity(3))
	assert.Equal(t, LevelTrace, FromVerbosity(9))
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(JSONHandler(&buf))

	logger.Info("registered", "count", 3)

	out := buf.String()
	assert.Contains(t, out, `"lvl":"INFO"`)
	assert.Contains(t, out, `"msg":"registered"`)
	assert.Contains(t, out, `"count":3`)
}

func TestDiscardHandler(t *testing.T) {
	logger := New(DiscardHandler())
	logger.Error("dropped")
}
