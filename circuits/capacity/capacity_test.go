package capacity_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/circuits/capacity"
	"github.com/privateinv/inventory-zkproof/pkg/setup"
)

// TestCapacityWithinBound covers a satisfiable capacity proof.
func TestCapacityWithinBound(t *testing.T) {
	ccs, err := setup.CompileCircuit(&capacity.Circuit{})
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	result, err := capacity.PrepareWitness(capacity.Request{
		Root:        big.NewInt(123),
		Volume:      big.NewInt(8),
		Blinding:    big.NewInt(7),
		MaxCapacity: 10,
	})
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		t.Fatalf("extract public witness: %v", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

// TestCapacityExceeded covers spec.md §8 scenario 4's Capacity-circuit
// analogue: a volume above max_capacity must be rejected before proving.
func TestCapacityExceeded(t *testing.T) {
	_, err := capacity.PrepareWitness(capacity.Request{
		Root:        big.NewInt(123),
		Volume:      big.NewInt(11),
		Blinding:    big.NewInt(7),
		MaxCapacity: 10,
	})
	if err == nil {
		t.Fatal("expected PrepareWitness to reject volume exceeding max_capacity")
	}
}

// TestCapacityExactBoundary covers volume == max_capacity (the boundary of
// enforce_geq, which must accept equality).
func TestCapacityExactBoundary(t *testing.T) {
	ccs, err := setup.CompileCircuit(&capacity.Circuit{})
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	result, err := capacity.PrepareWitness(capacity.Request{
		Root:        big.NewInt(1),
		Volume:      big.NewInt(10),
		Blinding:    big.NewInt(2),
		MaxCapacity: 10,
	})
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		t.Fatalf("extract public witness: %v", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
