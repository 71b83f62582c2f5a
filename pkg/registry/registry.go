// Package registry computes registry_root, the Merkle-style digest over the
// public item_id -> item_volume mapping that circuits reference as a witness
// but never prove membership against (spec.md §4.5 design notes, §9 "item_volume
// trust model" open question). The prover uses this package to compute a
// registry_root consistent with the one the external registry will assert;
// the verifier never calls it — it receives registry_root from the real
// registry and compares. This is scaffolding for the prover side of spec.md
// §4.5's design note, not a new circuit (SPEC_FULL.md §5).
package registry

import (
	"math/big"

	"github.com/privateinv/inventory-zkproof/pkg/smt"
)

// Table is a snapshot of the public item_id -> item_volume mapping. It
// reuses pkg/smt's sparse tree structure because the registry and an
// inventory's slot tree are the same shape (a sparse map keyed by item_id,
// depth pkg/smt.Depth) — just populated with volumes instead of quantities.
type Table struct {
	tree *smt.Tree
}

// NewTable builds a Table from an item_id -> item_volume map.
func NewTable(volumes map[uint64]uint32) *Table {
	t := smt.NewEmpty()
	for id, vol := range volumes {
		t.Update(id, vol)
	}
	return &Table{tree: t}
}

// Set registers or updates a single item's volume.
func (t *Table) Set(itemID uint64, volume uint32) {
	t.tree.Update(itemID, volume)
}

// Volume returns the registered volume for itemID, 0 if unregistered.
func (t *Table) Volume(itemID uint64) uint32 {
	return t.tree.Get(itemID)
}

// Digest returns registry_root, the current root of the registry tree.
func (t *Table) Digest() *big.Int {
	return t.tree.Root()
}
