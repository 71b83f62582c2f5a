package gadgets

import "github.com/consensys/gnark/frontend"

// SignalHashPreimage is the fixed 9-element ordering spec.md §4.4 and §6
// fix for StateTransition's signal hash: oldCommitment, newCommitment,
// registryRoot, maxCapacity, itemID, amount, opType, nonce, instanceID.
type SignalHashPreimage struct {
	OldCommitment frontend.Variable
	NewCommitment frontend.Variable
	RegistryRoot  frontend.Variable
	MaxCapacity   frontend.Variable
	ItemID        frontend.Variable
	Amount        frontend.Variable
	OpType        frontend.Variable
	Nonce         frontend.Variable
	InstanceID    frontend.Variable
}

// SignalHash recomputes the signal hash in-circuit from its nine bound
// parameters, the counterpart of pkg/publicinput.SignalHash. Both sides
// drive the same Hash9 composer so a single-bit change anywhere in the
// 9-tuple changes the output identically on both sides.
func SignalHash(h *Hasher, p SignalHashPreimage) frontend.Variable {
	return h.Hash9([9]frontend.Variable{
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
func Commitment(h *Hasher, root, volume, blinding frontend.Variable) frontend.Variable {
	return h.Hash3(root, volume, blinding)
}
