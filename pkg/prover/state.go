// Package prover implements spec.md §4.8's off-chain prover: it owns a
// sparse Merkle tree, volume, blinding, and nonce per live inventory, and
// drives the three Groth16 circuits to produce proofs against them.
// Grounded on circuits/poi/witness.go's derive-from-minimal-inputs pattern
// and pkg/setup/setup.go's key-ownership shape (here generalized into an
// explicit ProvingContext, per spec.md §9's mapping note).
package prover

import (
	"math/big"

	"github.com/privateinv/inventory-zkproof/pkg/publicinput"
	"github.com/privateinv/inventory-zkproof/pkg/smt"
)

// InventoryState is the explicit value type spec.md §9 calls for: it owns
// the sparse slot map (via *smt.Tree), the running volume, the current
// blinding, the current nonce, and the two values persisted alongside the
// commitment externally — instance_id and max_capacity.
type InventoryState struct {
	Tree        *smt.Tree
	Volume      *big.Int
	Blinding    *big.Int
	Nonce       uint64
	InstanceID  *big.Int
	MaxCapacity uint32
}

// NewInventoryState creates the lifecycle-start state spec.md §3 describes:
// an empty tree, zero volume, nonce 0, and the given initial blinding.
func NewInventoryState(instanceID *big.Int, maxCapacity uint32, initialBlinding *big.Int) *InventoryState {
	return &InventoryState{
		Tree:        smt.NewEmpty(),
		Volume:      big.NewInt(0),
		Blinding:    initialBlinding,
		Nonce:       0,
		InstanceID:  instanceID,
		MaxCapacity: maxCapacity,
	}
}

// Clone returns a deep-enough copy safe to mutate speculatively without
// affecting the original — used while a proposal is in flight so the
// original state is only replaced once the caller confirms acceptance
// (spec.md §4.8 step 7 / §7 "never partially updates its persistent state").
func (s *InventoryState) Clone() *InventoryState {
	return &InventoryState{
		Tree:        s.Tree.Clone(),
		Volume:      new(big.Int).Set(s.Volume),
		Blinding:    new(big.Int).Set(s.Blinding),
		Nonce:       s.Nonce,
		InstanceID:  s.InstanceID,
		MaxCapacity: s.MaxCapacity,
	}
}

// Commitment computes C = Poseidon(root, volume, blinding), spec.md §3.
func (s *InventoryState) Commitment() *big.Int {
	return publicinput.Commitment(s.Tree.Root(), s.Volume, s.Blinding)
}
