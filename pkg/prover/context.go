package prover

import (
	"fmt"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/pkg/proverr"
	"github.com/privateinv/inventory-zkproof/pkg/setup"
)

// ProvingContext owns one circuit's compiled constraint system and its
// proving/verifying key pair, loaded once and shared read-only across
// goroutines — spec.md §5 "Shared resources" and §9's "explicit
// ProvingContext" mapping note, grounded on pkg/setup.LoadKeys.
type ProvingContext struct {
	CCS constraint.ConstraintSystem
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
}

// LoadProvingContext compiles newCircuit() and loads the Groth16 key pair
// for circuitName from keysDir (produced by setup.DevSetup or a completed
// MPC ceremony).
func LoadProvingContext(keysDir, circuitName string, newCircuit func() frontend.Circuit) (*ProvingContext, error) {
	ccs, err := setup.CompileCircuit(newCircuit())
	if err != nil {
		return nil, fmt.Errorf("provingcontext %s: compile: %w", circuitName, err)
	}
	pk, vk, err := setup.LoadKeys(keysDir, circuitName)
	if err != nil {
		return nil, proverr.New(proverr.KeyMismatch, "provingcontext:"+circuitName, err)
	}
	return &ProvingContext{CCS: ccs, PK: pk, VK: vk}, nil
}
