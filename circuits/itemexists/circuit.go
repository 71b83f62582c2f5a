// Package itemexists implements spec.md §4.6's ItemExists circuit: prove a
// minimum quantity of an item exists in the inventory, without revealing
// the actual quantity. Grounded on circuits/keyleak/circuit.go's shape
// (small circuit, single aggregated public hash, non-zero witness guards)
// and circuits/poi/merkle.go for the membership gadget.
package itemexists

import (
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/circuits/gadgets"
)

// Circuit proves membership of item_id at quantity >= min_qty in a
// committed inventory, without revealing actual_qty, root, volume, or
// blinding. Single public input, as spec.md §4.6 requires.
type Circuit struct {
	// Public input (1): public_hash = Poseidon(commitment, item_id, min_qty).
	PublicHash frontend.Variable `gnark:"publicHash,public"`

	Root      frontend.Variable `gnark:"root"`
	Volume    frontend.Variable `gnark:"volume"`
	Blinding  frontend.Variable `gnark:"blinding"`
	ItemID    frontend.Variable `gnark:"itemID"`
	ActualQty frontend.Variable `gnark:"actualQty"`
	MinQty    frontend.Variable `gnark:"minQty"`

	Proof gadgets.MerkleProof `gnark:"proof"`
}

// Define implements the four constraints of spec.md §4.6, in order.
func (c *Circuit) Define(api frontend.API) error {
	h, err := gadgets.NewHasher(api)
	if err != nil {
		return err
	}

	// 1. Membership.
	gadgets.VerifyMembership(api, h, c.Root, c.ItemID, c.ActualQty, c.Proof)

	// 2. actual_qty >= min_qty, rigorous form (a malicious prover must not
	// be able to claim a minimum they don't actually hold).
	gadgets.EnforceGeq(api, c.ActualQty, c.MinQty)

	// 3. Commitment.
	commitment := gadgets.Commitment(h, c.Root, c.Volume, c.Blinding)

	// 4. Aggregate public hash, binds (commitment, item_id, min_qty)
	// inseparably.
	computed := h.Hash3(commitment, c.ItemID, c.MinQty)
	api.AssertIsEqual(computed, c.PublicHash)

	return nil
}
