// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournalPutGet(t *testing.T) {
	j := newJournal()

	_, ok := j.Get("k")
	assert.False(t, ok)

	j.Put("k", 1)
	v, ok := j.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	j.Put("k", 2)
	v, _ = j.Get("k")
	assert.Equal(t, 2, v)
}

func TestJournalRevert(t *testing.T) {
	j := newJournal()

	j.Put("a", 1)
	rev := j.Checkpoint()
	j.Put("a", 2)
	j.Put("b", 3)

	j.RevertTo(rev)

	v, ok := j.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = j.Get("b")
	assert.False(t, ok)
}

func TestJournalNestedRevert(t *testing.T) {
	j := newJournal()

	outer := j.Checkpoint()
	j.Put("a", 1)
	inner := j.Checkpoint()
	j.Put("a", 2)

	j.RevertTo(inner)
	v, _ := j.Get("a")
	assert.Equal(t, 1, v)

	j.RevertTo(outer)
	_, ok := j.Get("a")
	assert.False(t, ok)
}
