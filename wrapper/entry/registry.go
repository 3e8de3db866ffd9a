// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package entry

import (
	"github.com/liqingnz/goat-locking-wrapper/goat"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/storage"
)

var (
	slotRecords = goat.Blake2b([]byte("entry-records"))
	slotManaged = goat.Blake2b([]byte("entry-managed"))
)

// registry keeps the validator records and the dense managed list.
// The list holds exactly the active validators; each record's ListIndex
// points back at its list slot so removal is swap-and-pop.
type registry struct {
	records *storage.Mapping[goat.Address, *Record]
	managed *storage.Array[goat.Address]
}

func newRegistry(ctx *storage.Context) *registry {
	return &registry{
		records: storage.NewMapping[goat.Address, *Record](ctx, slotRecords),
		managed: storage.NewArray[goat.Address](ctx, slotManaged),
	}
}

func (r *registry) get(validator goat.Address) (*Record, error) {
	return r.records.Get(validator)
}

func (r *registry) set(validator goat.Address, rec *Record) error {
	return r.records.Set(validator, rec)
}

// count returns the managed list size.
func (r *registry) count() (uint64, error) {
	return r.managed.Len()
}

// all returns the managed validators. Order follows the list, which is
// perturbed by swap-and-pop removals.
func (r *registry) all() ([]goat.Address, error) {
	n, err := r.managed.Len()
	if err != nil {
		return nil, err
	}
	out := make([]goat.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := r.managed.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// add appends the validator to the managed list and stores the record
// with its list index filled in.
func (r *registry) add(validator goat.Address, rec *Record) error {
	index, err := r.managed.Append(validator)
	if err != nil {
		return err
	}
	rec.ListIndex = index
	return r.records.Set(validator, rec)
}

// remove drops the validator from the managed list and, when the pop
// moved the tail into the freed slot, fixes the moved record's index.
func (r *registry) remove(validator goat.Address, rec *Record) error {
	moved, didMove, err := r.managed.Remove(rec.ListIndex)
	if err != nil {
		return err
	}
	if didMove {
		movedRec, err := r.records.Get(moved)
		if err != nil {
			return err
		}
		movedRec.ListIndex = rec.ListIndex
		if err := r.records.Set(moved, movedRec); err != nil {
			return err
		}
	}
	rec.ListIndex = 0
	return r.records.Set(validator, rec)
}
