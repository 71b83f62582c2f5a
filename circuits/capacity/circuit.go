// Package capacity implements spec.md §4.7's Capacity circuit: prove the
// committed volume is within a declared maximum, without revealing the
// actual volume, root, or blinding. Grounded on the same keyleak-style
// single-aggregated-public-hash shape as circuits/itemexists, reusing the
// range-check gadget from circuits/gadgets.
package capacity

import (
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/circuits/gadgets"
)

// Circuit proves volume <= max_capacity for a committed inventory state.
type Circuit struct {
	// Public input (1): public_hash = Poseidon(commitment, max_capacity).
	PublicHash frontend.Variable `gnark:"publicHash,public"`

	Root        frontend.Variable `gnark:"root"`
	Volume      frontend.Variable `gnark:"volume"`
	Blinding    frontend.Variable `gnark:"blinding"`
	MaxCapacity frontend.Variable `gnark:"maxCapacity"`
}

// Define implements the three constraints of spec.md §4.7, in order.
func (c *Circuit) Define(api frontend.API) error {
	h, err := gadgets.NewHasher(api)
	if err != nil {
		return err
	}

	// 1. Commitment.
	commitment := gadgets.Commitment(h, c.Root, c.Volume, c.Blinding)

	// 2. Rigorous capacity proof.
	gadgets.EnforceGeq(api, c.MaxCapacity, c.Volume)

	// 3. Aggregate public hash.
	computed := h.Hash2(commitment, c.MaxCapacity)
	api.AssertIsEqual(computed, c.PublicHash)

	return nil
}
