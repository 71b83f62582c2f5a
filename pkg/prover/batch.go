package prover

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/privateinv/inventory-zkproof/circuits/statetransition"
	"github.com/privateinv/inventory-zkproof/pkg/poseidon"
	"github.com/privateinv/inventory-zkproof/pkg/proverr"
	"github.com/privateinv/inventory-zkproof/pkg/publicinput"
)

// BatchOp is one operation within a same-inventory batch.
type BatchOp struct {
	OpType       int // statetransition.Deposit or statetransition.Withdraw
	ItemID       uint64
	Amount       uint32
	ItemVolume   uint32
	RegistryRoot *big.Int
}

// BatchProposal is the ordered result of proving a batch: one Proposal per
// BatchOp, already locally verified, submitted in the same order the caller
// must publish them in (spec.md §5: "proofs within the batch must be
// submitted in that order").
type BatchProposal struct {
	InventoryID string
	Proposals   []*Proposal
}

// ProposeBatch implements spec.md §5's batch-sequencing requirement: "the
// prover must simulate each operation locally in sequence (applying the
// tree update and bumping the simulated nonce) before running the proofs."
// The inventory is locked for the whole batch — a batch is itself one
// ordering unit, just as a single proposal is.
func (p *Prover) ProposeBatch(invID string, ops []BatchOp) (*BatchProposal, error) {
	entry, err := p.lookup(invID)
	if err != nil {
		return nil, err
	}
	if !entry.mu.TryLock() {
		return nil, fmt.Errorf("prover: inventory %q has a proposal outstanding", invID)
	}
	// The returned BatchProposal takes ownership of the lock (released by
	// AcceptBatch/DiscardBatch); committed stays false on every error path
	// below so the deferred Unlock runs instead of leaking it, mirroring
	// proposeStateTransition's per-branch unlock.
	committed := false
	defer func() {
		if !committed {
			entry.mu.Unlock()
		}
	}()

	state := entry.state
	proposals := make([]*Proposal, 0, len(ops))

	for i, op := range ops {
		newBlinding, err := poseidon.GenerateBlinding()
		if err != nil {
			return nil, fmt.Errorf("prover: batch op %d: sample blinding: %w", i, err)
		}
		nonceBig := new(big.Int).SetUint64(state.Nonce)

		result, err := statetransition.PrepareWitness(state.Tree, statetransition.Request{
			OpType:       op.OpType,
			ItemID:       op.ItemID,
			Amount:       op.Amount,
			ItemVolume:   op.ItemVolume,
			MaxCapacity:  state.MaxCapacity,
			OldVolume:    state.Volume,
			OldBlinding:  state.Blinding,
			NewBlinding:  newBlinding,
			RegistryRoot: op.RegistryRoot,
			Nonce:        nonceBig,
			InstanceID:   state.InstanceID,
		})
		if err != nil {
			kind := proverr.WitnessUnsatisfiable
			if errors.Is(err, statetransition.ErrOverflow) {
				kind = proverr.Overflow
			}
			return nil, proverr.New(kind, fmt.Sprintf("prover.ProposeBatch[%d]", i), err)
		}

		proof, err := proveAndVerify(p.StateTransitionCtx, &result.Assignment)
		if err != nil {
			return nil, err
		}

		nextState := state.Clone()
		nextState.Tree.Update(op.ItemID, result.NewQty)
		nextState.Volume = result.NewVolume
		nextState.Blinding = newBlinding
		nextState.Nonce = state.Nonce + 1

		proposals = append(proposals, &Proposal{
			InventoryID:   invID,
			Proof:         proof,
			PublicInputs:  publicinput.StateTransitionInputs(result.SignalHash, nonceBig, state.InstanceID, op.RegistryRoot),
			NewCommitment: result.NewCommitment,
			NewNonce:      nextState.Nonce,
			entry:         entry,
			newState:      nextState,
		})

		state = nextState
	}

	// An empty batch gives AcceptBatch/DiscardBatch no entry to unlock, so the
	// deferred Unlock releases the lock for it here.
	committed = len(proposals) > 0
	return &BatchProposal{InventoryID: invID, Proposals: proposals}, nil
}

// AcceptBatch commits the final state of bp in one step (every intermediate
// state was only ever simulated locally, never partially persisted) and
// releases the inventory lock.
func (p *Prover) AcceptBatch(bp *BatchProposal) {
	if len(bp.Proposals) == 0 {
		return
	}
	last := bp.Proposals[len(bp.Proposals)-1]
	last.entry.state = last.newState
	last.entry.mu.Unlock()
}

// DiscardBatch releases the inventory lock without committing any of bp's
// simulated operations.
func (p *Prover) DiscardBatch(bp *BatchProposal) {
	if len(bp.Proposals) == 0 {
		return
	}
	bp.Proposals[0].entry.mu.Unlock()
}
