package prover_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark/backend/groth16"

	"github.com/privateinv/inventory-zkproof/circuits/capacity"
	"github.com/privateinv/inventory-zkproof/circuits/itemexists"
	"github.com/privateinv/inventory-zkproof/circuits/statetransition"
	"github.com/privateinv/inventory-zkproof/pkg/prover"
	"github.com/privateinv/inventory-zkproof/pkg/proverr"
	"github.com/privateinv/inventory-zkproof/pkg/setup"
)

// setupStateTransition builds a dev ProvingContext for the StateTransition
// circuit.
func setupStateTransition(t *testing.T) *prover.ProvingContext {
	t.Helper()
	ccs, err := setup.CompileCircuit(&statetransition.Circuit{})
	if err != nil {
		t.Fatalf("compile statetransition: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup statetransition: %v", err)
	}
	return &prover.ProvingContext{CCS: ccs, PK: pk, VK: vk}
}

func setupItemExists(t *testing.T) *prover.ProvingContext {
	t.Helper()
	ccs, err := setup.CompileCircuit(&itemexists.Circuit{})
	if err != nil {
		t.Fatalf("compile itemexists: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup itemexists: %v", err)
	}
	return &prover.ProvingContext{CCS: ccs, PK: pk, VK: vk}
}

func setupCapacity(t *testing.T) *prover.ProvingContext {
	t.Helper()
	ccs, err := setup.CompileCircuit(&capacity.Circuit{})
	if err != nil {
		t.Fatalf("compile capacity: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup capacity: %v", err)
	}
	return &prover.ProvingContext{CCS: ccs, PK: pk, VK: vk}
}

func newTestProver(t *testing.T) *prover.Prover {
	return prover.NewProver(setupStateTransition(t), setupItemExists(t), setupCapacity(t))
}

// TestDepositThenWithdrawRoundTrip covers spec.md §8 scenarios 1+2 through
// the orchestration layer: propose, locally-verify, accept, propose again.
func TestDepositThenWithdrawRoundTrip(t *testing.T) {
	p := newTestProver(t)
	state := prover.NewInventoryState(big.NewInt(1001), 1000, big.NewInt(7))
	p.Register("inv-a", state)

	registryRoot := big.NewInt(555)

	deposit, err := p.ProposeDeposit("inv-a", 3, 10, 1, registryRoot)
	if err != nil {
		t.Fatalf("propose deposit: %v", err)
	}
	p.Accept(deposit)

	got, err := p.State("inv-a")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if got.Tree.Get(3) != 10 {
		t.Fatalf("expected slot 3 = 10 after deposit, got %d", got.Tree.Get(3))
	}
	if got.Nonce != 1 {
		t.Fatalf("expected nonce 1 after deposit, got %d", got.Nonce)
	}

	withdraw, err := p.ProposeWithdraw("inv-a", 3, 4, 1, registryRoot)
	if err != nil {
		t.Fatalf("propose withdraw: %v", err)
	}
	p.Accept(withdraw)

	got, _ = p.State("inv-a")
	if got.Tree.Get(3) != 6 {
		t.Fatalf("expected slot 3 = 6 after withdraw, got %d", got.Tree.Get(3))
	}
	if got.Nonce != 2 {
		t.Fatalf("expected nonce 2 after withdraw, got %d", got.Nonce)
	}
}

// TestOverWithdrawRejectedByPropose covers spec.md §8 scenario 3 through the
// prover: ProposeWithdraw must reject before ever calling Groth16, and must
// release the inventory lock so a corrected proposal can follow.
func TestOverWithdrawRejectedByPropose(t *testing.T) {
	p := newTestProver(t)
	state := prover.NewInventoryState(big.NewInt(1002), 1000, big.NewInt(7))
	p.Register("inv-b", state)
	registryRoot := big.NewInt(555)

	deposit, err := p.ProposeDeposit("inv-b", 3, 10, 1, registryRoot)
	if err != nil {
		t.Fatalf("propose deposit: %v", err)
	}
	p.Accept(deposit)

	if _, err := p.ProposeWithdraw("inv-b", 3, 100, 1, registryRoot); err == nil {
		t.Fatal("expected over-withdraw to be rejected")
	}

	// The failed proposal must not have left the inventory locked.
	if _, err := p.ProposeWithdraw("inv-b", 3, 1, 1, registryRoot); err != nil {
		t.Fatalf("propose withdraw after a rejected proposal: %v", err)
	}
}

// TestConcurrentProposalRejected covers spec.md §5's per-inventory
// sequencing guarantee: a second proposal cannot start while one is
// outstanding.
func TestConcurrentProposalRejected(t *testing.T) {
	p := newTestProver(t)
	state := prover.NewInventoryState(big.NewInt(1003), 1000, big.NewInt(7))
	p.Register("inv-c", state)
	registryRoot := big.NewInt(555)

	first, err := p.ProposeDeposit("inv-c", 1, 5, 1, registryRoot)
	if err != nil {
		t.Fatalf("propose first: %v", err)
	}

	if _, err := p.ProposeDeposit("inv-c", 1, 5, 1, registryRoot); err == nil {
		t.Fatal("expected a concurrent proposal against the same inventory to be rejected")
	}

	p.Accept(first)
}

// TestProveItemExistsAndCapacity covers spec.md §8 scenarios 5/6 and the
// Capacity circuit through the prover's one-shot proof methods.
func TestProveItemExistsAndCapacity(t *testing.T) {
	p := newTestProver(t)
	state := prover.NewInventoryState(big.NewInt(1004), 1000, big.NewInt(7))
	p.Register("inv-d", state)
	registryRoot := big.NewInt(555)

	deposit, err := p.ProposeDeposit("inv-d", 3, 10, 1, registryRoot)
	if err != nil {
		t.Fatalf("propose deposit: %v", err)
	}
	p.Accept(deposit)

	if _, err := p.ProveItemExists("inv-d", 3, 7); err != nil {
		t.Fatalf("item exists (positive): %v", err)
	}
	if _, err := p.ProveItemExists("inv-d", 3, 11); err == nil {
		t.Fatal("expected item exists to reject min_qty above held quantity")
	}
	if _, err := p.ProveCapacity("inv-d"); err != nil {
		t.Fatalf("capacity: %v", err)
	}
}

// TestProposeBatchAppliesSequentially covers spec.md §5's batch-sequencing
// requirement: each op in the batch sees the previous op's simulated state.
func TestProposeBatchAppliesSequentially(t *testing.T) {
	p := newTestProver(t)
	state := prover.NewInventoryState(big.NewInt(1005), 1000, big.NewInt(7))
	p.Register("inv-e", state)
	registryRoot := big.NewInt(555)

	batch, err := p.ProposeBatch("inv-e", []prover.BatchOp{
		{OpType: statetransition.Deposit, ItemID: 3, Amount: 10, ItemVolume: 1, RegistryRoot: registryRoot},
		{OpType: statetransition.Withdraw, ItemID: 3, Amount: 4, ItemVolume: 1, RegistryRoot: registryRoot},
		{OpType: statetransition.Deposit, ItemID: 5, Amount: 2, ItemVolume: 1, RegistryRoot: registryRoot},
	})
	if err != nil {
		t.Fatalf("propose batch: %v", err)
	}
	if len(batch.Proposals) != 3 {
		t.Fatalf("expected 3 proposals, got %d", len(batch.Proposals))
	}
	p.AcceptBatch(batch)

	got, _ := p.State("inv-e")
	if got.Tree.Get(3) != 6 {
		t.Fatalf("expected slot 3 = 6 after batch, got %d", got.Tree.Get(3))
	}
	if got.Tree.Get(5) != 2 {
		t.Fatalf("expected slot 5 = 2 after batch, got %d", got.Tree.Get(5))
	}
	if got.Nonce != 3 {
		t.Fatalf("expected nonce 3 after batch, got %d", got.Nonce)
	}
}

// TestProposeBatchFailureReleasesLock covers a mid-batch failure: a batch
// whose second op over-withdraws must release the inventory lock just like a
// single-op failure does, so a later proposal against the same inventory
// isn't permanently deadlocked.
func TestProposeBatchFailureReleasesLock(t *testing.T) {
	p := newTestProver(t)
	state := prover.NewInventoryState(big.NewInt(1006), 1000, big.NewInt(7))
	p.Register("inv-f", state)
	registryRoot := big.NewInt(555)

	_, err := p.ProposeBatch("inv-f", []prover.BatchOp{
		{OpType: statetransition.Deposit, ItemID: 3, Amount: 10, ItemVolume: 1, RegistryRoot: registryRoot},
		{OpType: statetransition.Withdraw, ItemID: 3, Amount: 100, ItemVolume: 1, RegistryRoot: registryRoot},
	})
	if err == nil {
		t.Fatal("expected a batch containing an over-withdraw to fail")
	}

	if _, err := p.ProposeDeposit("inv-f", 3, 1, 1, registryRoot); err != nil {
		t.Fatalf("propose deposit after a failed batch: %v", err)
	}
}

// TestProposeDepositOverflowTaggedAsOverflow covers spec.md §7 kind 2: an
// amount*item_volume overflow must surface as proverr.Overflow, distinct from
// the general WitnessUnsatisfiable an over-withdraw produces.
func TestProposeDepositOverflowTaggedAsOverflow(t *testing.T) {
	p := newTestProver(t)
	state := prover.NewInventoryState(big.NewInt(1007), 1000, big.NewInt(7))
	p.Register("inv-g", state)
	registryRoot := big.NewInt(555)

	_, err := p.ProposeDeposit("inv-g", 3, 70000, 70000, registryRoot)
	if err == nil {
		t.Fatal("expected an amount*item_volume overflow to be rejected")
	}
	var pe *proverr.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected a *proverr.Error, got %T: %v", err, err)
	}
	if pe.Kind != proverr.Overflow {
		t.Fatalf("expected Overflow, got %s", pe.Kind)
	}
}

// TestProposeBatchOverflowTaggedAsOverflow is TestProposeDepositOverflowTaggedAsOverflow's
// batch counterpart.
func TestProposeBatchOverflowTaggedAsOverflow(t *testing.T) {
	p := newTestProver(t)
	state := prover.NewInventoryState(big.NewInt(1008), 1000, big.NewInt(7))
	p.Register("inv-h", state)
	registryRoot := big.NewInt(555)

	_, err := p.ProposeBatch("inv-h", []prover.BatchOp{
		{OpType: statetransition.Deposit, ItemID: 3, Amount: 70000, ItemVolume: 70000, RegistryRoot: registryRoot},
	})
	if err == nil {
		t.Fatal("expected an amount*item_volume overflow to be rejected")
	}
	var pe *proverr.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected a *proverr.Error, got %T: %v", err, err)
	}
	if pe.Kind != proverr.Overflow {
		t.Fatalf("expected Overflow, got %s", pe.Kind)
	}
}

// TestProposeTransferMovesBetweenInventories covers the supplemented
// Transfer operation (SPEC_FULL.md §3.1): a withdraw on one inventory paired
// with a deposit on another, accepted together.
func TestProposeTransferMovesBetweenInventories(t *testing.T) {
	p := newTestProver(t)
	src := prover.NewInventoryState(big.NewInt(2001), 1000, big.NewInt(7))
	dst := prover.NewInventoryState(big.NewInt(2002), 1000, big.NewInt(11))
	p.Register("inv-src", src)
	p.Register("inv-dst", dst)
	registryRoot := big.NewInt(555)

	deposit, err := p.ProposeDeposit("inv-src", 9, 20, 1, registryRoot)
	if err != nil {
		t.Fatalf("seed deposit: %v", err)
	}
	p.Accept(deposit)

	transfer, err := p.ProposeTransfer("inv-src", "inv-dst", 9, 6, 1, registryRoot)
	if err != nil {
		t.Fatalf("propose transfer: %v", err)
	}
	if transfer.TransferNonce == nil {
		t.Fatal("expected a non-nil transfer nonce")
	}
	p.AcceptTransfer(transfer)

	srcState, _ := p.State("inv-src")
	dstState, _ := p.State("inv-dst")
	if srcState.Tree.Get(9) != 14 {
		t.Fatalf("expected source slot 9 = 14 after transfer, got %d", srcState.Tree.Get(9))
	}
	if dstState.Tree.Get(9) != 6 {
		t.Fatalf("expected destination slot 9 = 6 after transfer, got %d", dstState.Tree.Get(9))
	}
}
