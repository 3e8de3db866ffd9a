// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// journal is a flat write buffer with an undo log. Every Put records the
// previous value, so any suffix of writes can be rolled back, which is
// what gives public operations their all-or-nothing semantics.
type journal struct {
	values map[any]any
	undo   []undoEntry
}

type undoEntry struct {
	key     any
	prev    any
	existed bool
}

func newJournal() *journal {
	return &journal{values: make(map[any]any)}
}

// Get returns the journaled value for key, if any.
func (j *journal) Get(key any) (any, bool) {
	v, ok := j.values[key]
	return v, ok
}

// Put buffers a write and records how to undo it.
func (j *journal) Put(key, value any) {
	prev, existed := j.values[key]
	j.undo = append(j.undo, undoEntry{key: key, prev: prev, existed: existed})
	j.values[key] = value
}

// Checkpoint returns a revision usable with RevertTo.
func (j *journal) Checkpoint() int {
	return len(j.undo)
}

// RevertTo rolls back all writes made after the given revision.
func (j *journal) RevertTo(rev int) {
	for i := len(j.undo) - 1; i >= rev; i-- {
		e := j.undo[i]
		if e.existed {
			j.values[e.key] = e.prev
		} else {
			delete(j.values, e.key)
		}
	}
	j.undo = j.undo[:rev]
}

// Each visits every buffered key/value.
func (j *journal) Each(fn func(key, value any)) {
	for k, v := range j.values {
		fn(k, v)
	}
}

// Reset drops all buffered writes and undo history.
func (j *journal) Reset() {
	j.values = make(map[any]any)
	j.undo = j.undo[:0]
}
