package statetransition

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/privateinv/inventory-zkproof/circuits/gadgets"
	"github.com/privateinv/inventory-zkproof/pkg/publicinput"
	"github.com/privateinv/inventory-zkproof/pkg/smt"
)

// ErrOverflow marks a PrepareWitness failure as spec.md §7 kind 2 —
// amount*item_volume (or the resulting running volume) would exceed 32
// bits — as opposed to a general witness-consistency violation like an
// over-withdraw. Callers distinguish it with errors.Is to pick
// proverr.Overflow over proverr.WitnessUnsatisfiable.
var ErrOverflow = errors.New("statetransition: arithmetic overflow")

// Request describes one proposed deposit or withdraw, the minimal
// independent inputs PrepareWitness needs — the same "derive everything else
// from a small input set" shape as circuits/poi/witness.go's PrepareWitness.
type Request struct {
	OpType      int // Deposit or Withdraw
	ItemID      uint64
	Amount      uint32
	ItemVolume  uint32
	MaxCapacity uint32

	OldVolume   *big.Int
	OldBlinding *big.Int
	NewBlinding *big.Int

	RegistryRoot *big.Int
	Nonce        *big.Int
	InstanceID   *big.Int
}

// Result holds the populated circuit assignment plus the derived public
// values callers need to submit the proof and update local state.
type Result struct {
	Assignment    Circuit
	NewRoot       *big.Int
	NewVolume     *big.Int
	NewQty        uint32
	OldCommitment *big.Int
	NewCommitment *big.Int
	SignalHash    *big.Int
}

// PrepareWitness derives a full Circuit assignment from tree (read only —
// the caller decides when to commit the clone's mutation via
// pkg/prover's Prover.Accept) and req.
func PrepareWitness(tree *smt.Tree, req Request) (*Result, error) {
	itemIDBig := new(big.Int).SetUint64(req.ItemID)
	oldQty := tree.Get(req.ItemID)
	oldQtyBig := new(big.Int).SetUint64(uint64(oldQty))
	oldRoot := tree.Root()

	var newQty uint32
	switch req.OpType {
	case Deposit:
		newQty = oldQty + req.Amount
	case Withdraw:
		if req.Amount > oldQty {
			return nil, fmt.Errorf("statetransition: withdraw amount %d exceeds held quantity %d", req.Amount, oldQty)
		}
		newQty = oldQty - req.Amount
	default:
		return nil, fmt.Errorf("statetransition: invalid op_type %d", req.OpType)
	}

	delta := uint64(req.ItemVolume) * uint64(req.Amount)
	if delta > (1<<32)-1 {
		return nil, fmt.Errorf("statetransition: item_volume * amount overflows 32 bits: %w", ErrOverflow)
	}
	oldVolume := req.OldVolume
	var newVolume *big.Int
	deltaBig := new(big.Int).SetUint64(delta)
	if req.OpType == Deposit {
		newVolume = new(big.Int).Add(oldVolume, deltaBig)
	} else {
		newVolume = new(big.Int).Sub(oldVolume, deltaBig)
	}
	if newVolume.Sign() < 0 || newVolume.BitLen() > 32 {
		return nil, fmt.Errorf("statetransition: new_volume %s out of 32-bit range: %w", newVolume, ErrOverflow)
	}
	maxCapacityBig := new(big.Int).SetUint64(uint64(req.MaxCapacity))
	if newVolume.Cmp(maxCapacityBig) > 0 {
		return nil, fmt.Errorf("statetransition: new_volume %s exceeds max_capacity %s", newVolume, maxCapacityBig)
	}

	proof := tree.Prove(req.ItemID)

	clone := tree.Clone()
	newRoot := clone.Update(req.ItemID, newQty)

	oldCommitment := publicinput.Commitment(oldRoot, oldVolume, req.OldBlinding)
	newCommitment := publicinput.Commitment(newRoot, newVolume, req.NewBlinding)

	opTypeBig := new(big.Int).SetInt64(int64(req.OpType))
	amountBig := new(big.Int).SetUint64(uint64(req.Amount))

	signalHash := publicinput.SignalHash(publicinput.SignalPreimage{
		OldCommitment: oldCommitment,
		NewCommitment: newCommitment,
		RegistryRoot:  req.RegistryRoot,
		MaxCapacity:   maxCapacityBig,
		ItemID:        itemIDBig,
		Amount:        amountBig,
		OpType:        opTypeBig,
		Nonce:         req.Nonce,
		InstanceID:    req.InstanceID,
	})

	var inventoryProof gadgets.MerkleProof
	for i := 0; i < smt.Depth; i++ {
		inventoryProof.Siblings[i] = proof.Siblings[i]
		inventoryProof.Directions[i] = proof.Directions[i]
	}

	assignment := Circuit{
		SignalHash:   signalHash,
		Nonce:        req.Nonce,
		InstanceID:   req.InstanceID,
		RegistryRoot: req.RegistryRoot,

		OldRoot:     oldRoot,
		OldVolume:   oldVolume,
		OldBlinding: req.OldBlinding,

		NewRoot:     newRoot,
		NewVolume:   newVolume,
		NewBlinding: req.NewBlinding,

		ItemID: itemIDBig,
		OldQty: oldQtyBig,
		NewQty: new(big.Int).SetUint64(uint64(newQty)),
		Amount: amountBig,
		OpType: opTypeBig,

		InventoryProof: inventoryProof,

		ItemVolume:  new(big.Int).SetUint64(uint64(req.ItemVolume)),
		MaxCapacity: maxCapacityBig,
	}

	return &Result{
		Assignment:    assignment,
		NewRoot:       newRoot,
		NewVolume:     newVolume,
		NewQty:        newQty,
		OldCommitment: oldCommitment,
		NewCommitment: newCommitment,
		SignalHash:    signalHash,
	}, nil
}
