// Package publicinput assembles and encodes the fixed-order public-input
// vectors spec.md §6 defines for each circuit, and computes the native
// signal hash / commitment that circuits/gadgets recomputes in-circuit.
// Grounded on circuits/poi/export.go's explicit public-witness-order
// documentation and byte-layout printing.
package publicinput

import (
	"math/big"

	"github.com/privateinv/inventory-zkproof/pkg/field"
	"github.com/privateinv/inventory-zkproof/pkg/poseidon"
)

// SignalPreimage mirrors circuits/gadgets.SignalHashPreimage field for
// field; this is the native half of the signal-hash composer spec.md §4.4
// requires to agree with the in-circuit evaluation.
type SignalPreimage struct {
	OldCommitment *big.Int
	NewCommitment *big.Int
	RegistryRoot  *big.Int
	MaxCapacity   *big.Int
	ItemID        *big.Int
	Amount        *big.Int
	OpType        *big.Int
	Nonce         *big.Int
	InstanceID    *big.Int
}

// SignalHash computes the 9-element Poseidon sponge spec.md §4.4 specifies.
func SignalHash(p SignalPreimage) *big.Int {
	return poseidon.Hash9([9]*big.Int{
		p.OldCommitment,
		p.NewCommitment,
		p.RegistryRoot,
		p.MaxCapacity,
		p.ItemID,
		p.Amount,
		p.OpType,
		p.Nonce,
		p.InstanceID,
	})
}

// Commitment computes C = Poseidon(root, volume, blinding), spec.md §3.
func Commitment(root, volume, blinding *big.Int) *big.Int {
	return poseidon.Hash3(root, volume, blinding)
}

// StateTransitionInputs encodes the four StateTransition public inputs in
// the fixed order spec.md §6 mandates: signal_hash, nonce, instance_id,
// registry_root.
func StateTransitionInputs(signalHash, nonce, instanceID, registryRoot *big.Int) []byte {
	return field.EncodeMany([]*big.Int{signalHash, nonce, instanceID, registryRoot})
}

// ItemExistsHash computes ItemExists's single public_hash = Poseidon(C,
// itemID, minQty), spec.md §4.6.
func ItemExistsHash(commitment, itemID, minQty *big.Int) *big.Int {
	return poseidon.Hash3(commitment, itemID, minQty)
}

// ItemExistsInputs encodes ItemExists's single public input.
func ItemExistsInputs(publicHash *big.Int) []byte {
	return field.Encode(publicHash)
}

// CapacityHash computes Capacity's single public_hash = Poseidon(C,
// maxCapacity), spec.md §4.7.
func CapacityHash(commitment, maxCapacity *big.Int) *big.Int {
	return poseidon.Hash2(commitment, maxCapacity)
}

// CapacityInputs encodes Capacity's single public input.
func CapacityInputs(publicHash *big.Int) []byte {
	return field.Encode(publicHash)
}
