// Package statetransition implements spec.md §4.5's StateTransition circuit:
// deposit or withdraw against a sparse Merkle tree inventory, with capacity
// and arithmetic-consistency enforcement. Grounded on the teacher's overall
// circuit shape (circuits/poi/circuit.go: public/private struct tags, gadget
// composition order, Define reading top-to-bottom following a numbered
// constraint list) and circuits/merkle.go's verify-and-update shape.
package statetransition

import (
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/circuits/gadgets"
)

// Circuit proves a single deposit or withdraw transition against one
// inventory slot. Public inputs are declared first, in the exact order
// spec.md §6 fixes: signal_hash, nonce, instance_id, registry_root — the
// same "struct tag order = wire order" convention circuits/poi/export.go
// documents for PoICircuit.
type Circuit struct {
	// Public inputs (4), in PUBLIC WITNESS ORDER:
	//   [0] SignalHash
	//   [1] Nonce
	//   [2] InstanceID
	//   [3] RegistryRoot
	SignalHash   frontend.Variable `gnark:"signalHash,public"`
	Nonce        frontend.Variable `gnark:"nonce,public"`
	InstanceID   frontend.Variable `gnark:"instanceID,public"`
	RegistryRoot frontend.Variable `gnark:"registryRoot,public"`

	// Private witnesses.
	OldRoot     frontend.Variable `gnark:"oldRoot"`
	OldVolume   frontend.Variable `gnark:"oldVolume"`
	OldBlinding frontend.Variable `gnark:"oldBlinding"`

	NewRoot     frontend.Variable `gnark:"newRoot"`
	NewVolume   frontend.Variable `gnark:"newVolume"`
	NewBlinding frontend.Variable `gnark:"newBlinding"`

	ItemID frontend.Variable `gnark:"itemID"`
	OldQty frontend.Variable `gnark:"oldQty"`
	NewQty frontend.Variable `gnark:"newQty"`
	Amount frontend.Variable `gnark:"amount"`
	OpType frontend.Variable `gnark:"opType"`

	InventoryProof gadgets.MerkleProof `gnark:"inventoryProof"`

	ItemVolume  frontend.Variable `gnark:"itemVolume"`
	MaxCapacity frontend.Variable `gnark:"maxCapacity"`
}

// Define implements the nine numbered constraints of spec.md §4.5, in the
// order the spec lists them.
func (c *Circuit) Define(api frontend.API) error {
	h, err := gadgets.NewHasher(api)
	if err != nil {
		return err
	}

	// 1. SMT verify-and-update.
	computedNewRoot := gadgets.VerifyAndUpdate(api, h, c.OldRoot, c.ItemID, c.OldQty, c.NewQty, c.InventoryProof)
	api.AssertIsEqual(computedNewRoot, c.NewRoot)

	// 2. Operation validity: op_type is boolean.
	api.AssertIsBoolean(c.OpType)
	isDeposit := api.Sub(1, c.OpType)

	// 3. Quantity arithmetic: expected_new_qty := is_deposit ? old+amount : old-amount.
	depositQty := api.Add(c.OldQty, c.Amount)
	withdrawQty := api.Sub(c.OldQty, c.Amount)
	expectedNewQty := api.Select(isDeposit, depositQty, withdrawQty)
	api.AssertIsEqual(c.NewQty, expectedNewQty)

	// 4. Quantity range: prevents withdraw underflow (field-wrapped value
	// will not fit in 32 bits).
	gadgets.EnforceU32(api, c.NewQty)

	// 5. Volume arithmetic.
	delta := api.Mul(c.ItemVolume, c.Amount)
	depositVolume := api.Add(c.OldVolume, delta)
	withdrawVolume := api.Sub(c.OldVolume, delta)
	expectedNewVolume := api.Select(isDeposit, depositVolume, withdrawVolume)
	api.AssertIsEqual(c.NewVolume, expectedNewVolume)

	// 6. Volume range.
	gadgets.EnforceU32(api, c.NewVolume)

	// 7. Capacity.
	gadgets.EnforceGeq(api, c.MaxCapacity, c.NewVolume)

	// 8. Commitments.
	oldCommitment := gadgets.Commitment(h, c.OldRoot, c.OldVolume, c.OldBlinding)
	newCommitment := gadgets.Commitment(h, c.NewRoot, c.NewVolume, c.NewBlinding)

	// 9. Signal binding.
	signalHash := gadgets.SignalHash(h, gadgets.SignalHashPreimage{
		OldCommitment: oldCommitment,
		NewCommitment: newCommitment,
		RegistryRoot:  c.RegistryRoot,
		MaxCapacity:   c.MaxCapacity,
		ItemID:        c.ItemID,
		Amount:        c.Amount,
		OpType:        c.OpType,
		Nonce:         c.Nonce,
		InstanceID:    c.InstanceID,
	})
	api.AssertIsEqual(signalHash, c.SignalHash)

	return nil
}
