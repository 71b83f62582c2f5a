package prover

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/circuits/capacity"
	"github.com/privateinv/inventory-zkproof/circuits/itemexists"
	"github.com/privateinv/inventory-zkproof/circuits/statetransition"
	"github.com/privateinv/inventory-zkproof/pkg/poseidon"
	"github.com/privateinv/inventory-zkproof/pkg/proverr"
	"github.com/privateinv/inventory-zkproof/pkg/publicinput"
)

// Prover drives the three circuits against a set of live inventories. It
// owns one ProvingContext per circuit (read-only, shared across goroutines
// per spec.md §5) and one locked entry per inventory (owned exclusively by
// whichever goroutine is mid-proposal, per spec.md §5's per-inventory
// ordering guarantee).
type Prover struct {
	StateTransitionCtx *ProvingContext
	ItemExistsCtx      *ProvingContext
	CapacityCtx        *ProvingContext

	mu          sync.Mutex
	inventories map[string]*inventoryEntry
}

type inventoryEntry struct {
	mu    sync.Mutex
	state *InventoryState
}

// NewProver constructs a Prover from already-loaded proving contexts.
func NewProver(stCtx, ieCtx, capCtx *ProvingContext) *Prover {
	return &Prover{
		StateTransitionCtx: stCtx,
		ItemExistsCtx:      ieCtx,
		CapacityCtx:        capCtx,
		inventories:        make(map[string]*inventoryEntry),
	}
}

// Register adds a live inventory under invID. Call once per inventory
// before proposing operations against it.
func (p *Prover) Register(invID string, state *InventoryState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inventories[invID] = &inventoryEntry{state: state}
}

// State returns the currently-committed state for invID (for read-only
// inspection; do not mutate the returned value).
func (p *Prover) State(invID string) (*InventoryState, error) {
	entry, err := p.lookup(invID)
	if err != nil {
		return nil, err
	}
	return entry.state, nil
}

func (p *Prover) lookup(invID string) (*inventoryEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.inventories[invID]
	if !ok {
		return nil, fmt.Errorf("prover: unknown inventory %q", invID)
	}
	return entry, nil
}

// Proposal is a not-yet-accepted StateTransition proof: the caller submits
// (Proof, PublicInputs) to the external verifier, and must call Accept on
// success or Discard on failure/rejection — spec.md §4.8 step 6/7 and §7's
// propagation policy ("never partially updates its persistent state").
type Proposal struct {
	InventoryID   string
	Proof         groth16.Proof
	PublicInputs  []byte
	NewCommitment *big.Int
	NewNonce      uint64

	entry    *inventoryEntry
	newState *InventoryState
}

// ProposeDeposit runs the seven-step protocol of spec.md §4.8 for a deposit:
// read current state, sample a fresh blinding, build the Merkle path,
// compute the new root/volume, assemble the witness, prove, and verify
// locally before returning. The inventory is locked for the duration of the
// call and remains locked until Accept or Discard is called, enforcing
// spec.md §5's "must not begin witness construction for nonce = N+1 until
// nonce = N is confirmed."
func (p *Prover) ProposeDeposit(invID string, itemID uint64, amount, itemVolume uint32, registryRoot *big.Int) (*Proposal, error) {
	return p.proposeStateTransition(invID, statetransition.Deposit, itemID, amount, itemVolume, registryRoot)
}

// ProposeWithdraw is ProposeDeposit's withdraw counterpart.
func (p *Prover) ProposeWithdraw(invID string, itemID uint64, amount, itemVolume uint32, registryRoot *big.Int) (*Proposal, error) {
	return p.proposeStateTransition(invID, statetransition.Withdraw, itemID, amount, itemVolume, registryRoot)
}

func (p *Prover) proposeStateTransition(invID string, opType int, itemID uint64, amount, itemVolume uint32, registryRoot *big.Int) (*Proposal, error) {
	entry, err := p.lookup(invID)
	if err != nil {
		return nil, err
	}
	if !entry.mu.TryLock() {
		return nil, fmt.Errorf("prover: inventory %q has a proposal outstanding", invID)
	}

	state := entry.state
	newBlinding, err := poseidon.GenerateBlinding()
	if err != nil {
		entry.mu.Unlock()
		return nil, fmt.Errorf("prover: sample blinding: %w", err)
	}
	nonceBig := new(big.Int).SetUint64(state.Nonce)
	instanceIDBig := state.InstanceID

	result, err := statetransition.PrepareWitness(state.Tree, statetransition.Request{
		OpType:       opType,
		ItemID:       itemID,
		Amount:       amount,
		ItemVolume:   itemVolume,
		MaxCapacity:  state.MaxCapacity,
		OldVolume:    state.Volume,
		OldBlinding:  state.Blinding,
		NewBlinding:  newBlinding,
		RegistryRoot: registryRoot,
		Nonce:        nonceBig,
		InstanceID:   instanceIDBig,
	})
	if err != nil {
		entry.mu.Unlock()
		kind := proverr.WitnessUnsatisfiable
		if errors.Is(err, statetransition.ErrOverflow) {
			kind = proverr.Overflow
		}
		return nil, proverr.New(kind, "prover.ProposeStateTransition", err)
	}

	proof, err := proveAndVerify(p.StateTransitionCtx, &result.Assignment)
	if err != nil {
		entry.mu.Unlock()
		return nil, err
	}

	newState := state.Clone()
	newState.Tree.Update(itemID, result.NewQty)
	newState.Volume = result.NewVolume
	newState.Blinding = newBlinding
	newState.Nonce = state.Nonce + 1

	return &Proposal{
		InventoryID:   invID,
		Proof:         proof,
		PublicInputs:  publicinput.StateTransitionInputs(result.SignalHash, nonceBig, instanceIDBig, registryRoot),
		NewCommitment: result.NewCommitment,
		NewNonce:      newState.Nonce,
		entry:         entry,
		newState:      newState,
	}, nil
}

// Accept commits prop's speculative new state as the inventory's current
// state, to be called only once the caller has confirmed external
// acceptance of the proof (spec.md §4.8 step 7).
func (p *Prover) Accept(prop *Proposal) {
	prop.entry.state = prop.newState
	prop.entry.mu.Unlock()
}

// Discard releases the inventory lock without committing any state change,
// for a proof that failed external submission (e.g. a stale nonce under
// concurrent operations); the caller refreshes state and retries (spec.md
// §4.8 "Failure semantics").
func (p *Prover) Discard(prop *Proposal) {
	prop.entry.mu.Unlock()
}

// ItemExistsProof is a one-shot proof; there is no inventory state to
// commit or discard since ItemExists never mutates state.
type ItemExistsProof struct {
	Proof        groth16.Proof
	PublicInputs []byte
	PublicHash   *big.Int
}

// ProveItemExists builds and proves spec.md §4.6's ItemExists circuit
// against invID's currently committed state, without locking out concurrent
// StateTransition proposals against the same inventory longer than reading
// its tree snapshot requires.
func (p *Prover) ProveItemExists(invID string, itemID uint64, minQty uint32) (*ItemExistsProof, error) {
	entry, err := p.lookup(invID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	state := entry.state
	entry.mu.Unlock()

	result, err := itemexists.PrepareWitness(state.Tree, itemexists.Request{
		ItemID:   itemID,
		MinQty:   minQty,
		Volume:   state.Volume,
		Blinding: state.Blinding,
	})
	if err != nil {
		return nil, proverr.New(proverr.WitnessUnsatisfiable, "prover.ProveItemExists", err)
	}

	proof, err := proveAndVerify(p.ItemExistsCtx, &result.Assignment)
	if err != nil {
		return nil, err
	}
	return &ItemExistsProof{
		Proof:        proof,
		PublicInputs: publicinput.ItemExistsInputs(result.PublicHash),
		PublicHash:   result.PublicHash,
	}, nil
}

// CapacityProof mirrors ItemExistsProof for spec.md §4.7's Capacity circuit.
type CapacityProof struct {
	Proof        groth16.Proof
	PublicInputs []byte
	PublicHash   *big.Int
}

// ProveCapacity builds and proves spec.md §4.7's Capacity circuit against
// invID's currently committed state.
func (p *Prover) ProveCapacity(invID string) (*CapacityProof, error) {
	entry, err := p.lookup(invID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	state := entry.state
	entry.mu.Unlock()

	result, err := capacity.PrepareWitness(capacity.Request{
		Root:        state.Tree.Root(),
		Volume:      state.Volume,
		Blinding:    state.Blinding,
		MaxCapacity: state.MaxCapacity,
	})
	if err != nil {
		return nil, proverr.New(proverr.WitnessUnsatisfiable, "prover.ProveCapacity", err)
	}

	proof, err := proveAndVerify(p.CapacityCtx, &result.Assignment)
	if err != nil {
		return nil, err
	}
	return &CapacityProof{
		Proof:        proof,
		PublicInputs: publicinput.CapacityInputs(result.PublicHash),
		PublicHash:   result.PublicHash,
	}, nil
}

// TransferProposal pairs the withdraw-side and deposit-side proposals of a
// transfer (SPEC_FULL.md §3.1): two independent StateTransition proofs, one
// per inventory, correlated off-circuit by a shared TransferNonce included
// in both submission envelopes. The circuit's own 9-element signal hash has
// no spare slot for a tenth bound value, so this correlation lives at the
// orchestration layer rather than inside either proof's public inputs —
// an external indexer or contract pairs the two submissions by matching
// TransferNonce, not by anything the Groth16 verifier itself checks.
type TransferProposal struct {
	TransferNonce *big.Int
	Withdraw      *Proposal
	Deposit       *Proposal
}

// ProposeTransfer withdraws amount of itemID from srcInvID and deposits the
// same amount of itemID into dstInvID, returning both proposals linked by a
// freshly sampled TransferNonce. Both legs must be accepted or discarded
// together by the caller to avoid a partial transfer.
func (p *Prover) ProposeTransfer(srcInvID, dstInvID string, itemID uint64, amount, itemVolume uint32, registryRoot *big.Int) (*TransferProposal, error) {
	transferNonce, err := rand.Int(rand.Reader, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("prover: sample transfer nonce: %w", err)
	}

	withdrawal, err := p.ProposeWithdraw(srcInvID, itemID, amount, itemVolume, registryRoot)
	if err != nil {
		return nil, fmt.Errorf("prover: transfer withdraw leg: %w", err)
	}

	deposit, err := p.ProposeDeposit(dstInvID, itemID, amount, itemVolume, registryRoot)
	if err != nil {
		p.Discard(withdrawal)
		return nil, fmt.Errorf("prover: transfer deposit leg: %w", err)
	}

	return &TransferProposal{TransferNonce: transferNonce, Withdraw: withdrawal, Deposit: deposit}, nil
}

// AcceptTransfer commits both legs of tp.
func (p *Prover) AcceptTransfer(tp *TransferProposal) {
	p.Accept(tp.Withdraw)
	p.Accept(tp.Deposit)
}

// DiscardTransfer releases both legs of tp without committing either.
func (p *Prover) DiscardTransfer(tp *TransferProposal) {
	p.Discard(tp.Withdraw)
	p.Discard(tp.Deposit)
}

// proveAndVerify runs groth16.Prove followed by a local groth16.Verify —
// spec.md §4.8 step 6 and §7's "local verification ... should run before
// external submission; a proof that fails local verification is a bug in
// the prover and is fatal."
func proveAndVerify(ctx *ProvingContext, assignment frontend.Circuit) (groth16.Proof, error) {
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, proverr.New(proverr.EncodingError, "prover.proveAndVerify", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, proverr.New(proverr.EncodingError, "prover.proveAndVerify", err)
	}

	proof, err := groth16.Prove(ctx.CCS, ctx.PK, witness)
	if err != nil {
		return nil, proverr.New(proverr.WitnessUnsatisfiable, "prover.proveAndVerify", err)
	}
	if err := groth16.Verify(proof, ctx.VK, publicWitness); err != nil {
		return nil, proverr.New(proverr.KeyMismatch, "prover.proveAndVerify", err)
	}

	return proof, nil
}
