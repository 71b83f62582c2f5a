package capacity

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/pkg/setup"
)

// Fixture mirrors the sibling circuits' fixture shape for this circuit's
// single public input.
type Fixture struct {
	SolidityProof [8]string `json:"solidity_proof"`
	PublicHash    string    `json:"public_hash"`
}

// ExportProofFixture compiles the circuit, loads dev keys, and emits a
// deterministic fixture for spec.md §8 scenario 4's within-bound case.
func ExportProofFixture(keysDir string) ([]byte, error) {
	fmt.Println("Compiling circuit...")
	ccs, err := setup.CompileCircuit(&Circuit{})
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	fmt.Println("Loading keys...")
	pk, vk, err := setup.LoadKeys(keysDir, "capacity")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	result, err := PrepareWitness(Request{
		Root:        big.NewInt(123),
		Volume:      big.NewInt(8),
		Blinding:    big.NewInt(7),
		MaxCapacity: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare witness: %w", err)
	}

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("extract public witness: %w", err)
	}

	fmt.Println("Generating proof...")
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	fmt.Println("Proof verified successfully in Go!")

	bn254Proof := proof.(*groth16bn254.Proof)
	aX, aY := new(big.Int), new(big.Int)
	bn254Proof.Ar.X.BigInt(aX)
	bn254Proof.Ar.Y.BigInt(aY)
	bX0, bX1, bY0, bY1 := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	bn254Proof.Bs.X.A0.BigInt(bX0)
	bn254Proof.Bs.X.A1.BigInt(bX1)
	bn254Proof.Bs.Y.A0.BigInt(bY0)
	bn254Proof.Bs.Y.A1.BigInt(bY1)
	cX, cY := new(big.Int), new(big.Int)
	bn254Proof.Krs.X.BigInt(cX)
	bn254Proof.Krs.Y.BigInt(cY)
	solidityProof := [8]*big.Int{aX, aY, bX1, bX0, bY1, bY0, cX, cY}

	fixture := Fixture{PublicHash: fmt.Sprintf("0x%064x", result.PublicHash)}
	for i := 0; i < 8; i++ {
		fixture.SolidityProof[i] = fmt.Sprintf("0x%064x", solidityProof[i])
	}

	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}

	fmt.Println("\n=== PROOF FIXTURE (JSON) ===")
	fmt.Println(string(jsonOut))
	fmt.Println("\n=== PUBLIC WITNESS ORDER ===")
	fmt.Println("[0] publicHash")

	return jsonOut, nil
}
