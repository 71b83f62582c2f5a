package statetransition

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/pkg/poseidon"
	"github.com/privateinv/inventory-zkproof/pkg/publicinput"
	"github.com/privateinv/inventory-zkproof/pkg/setup"
	"github.com/privateinv/inventory-zkproof/pkg/smt"
)

// Fixture holds a proof plus its public inputs, shaped for the external
// contract test suite the same way circuits/poi/export.go's ProofFixture is.
type Fixture struct {
	SolidityProof [8]string `json:"solidity_proof"`
	SignalHash    string    `json:"signal_hash"`
	Nonce         string    `json:"nonce"`
	InstanceID    string    `json:"instance_id"`
	RegistryRoot  string    `json:"registry_root"`
}

// ExportProofFixture compiles the circuit, loads dev keys from keysDir,
// builds a deterministic fresh-deposit witness (spec.md §8 scenario 1), and
// emits a JSON + Solidity-constant fixture for the external verifier suite.
func ExportProofFixture(keysDir string) ([]byte, error) {
	fmt.Println("Compiling circuit...")
	ccs, err := setup.CompileCircuit(&Circuit{})
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	fmt.Println("Loading keys...")
	pk, vk, err := setup.LoadKeys(keysDir, "statetransition")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	tree := smt.NewEmpty()
	req := Request{
		OpType:       Deposit,
		ItemID:       3,
		Amount:       10,
		ItemVolume:   1,
		MaxCapacity:  1000,
		OldVolume:    big.NewInt(0),
		OldBlinding:  big.NewInt(7),
		NewBlinding:  big.NewInt(11),
		RegistryRoot: poseidon.EmptyLeafHash(),
		Nonce:        big.NewInt(0),
		InstanceID:   big.NewInt(1),
	}

	result, err := PrepareWitness(tree, req)
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

	fixture := Fixture{
		SignalHash:   fmt.Sprintf("0x%064x", result.SignalHash),
		Nonce:        fmt.Sprintf("0x%064x", req.Nonce),
		InstanceID:   fmt.Sprintf("0x%064x", req.InstanceID),
		RegistryRoot: fmt.Sprintf("0x%064x", req.RegistryRoot),
	}
	for i := 0; i < 8; i++ {
		fixture.SolidityProof[i] = fmt.Sprintf("0x%064x", solidityProof[i])
	}

	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}

	fmt.Println("\n=== PROOF FIXTURE (JSON) ===")
	fmt.Println(string(jsonOut))

	encoded := publicinput.StateTransitionInputs(result.SignalHash, req.Nonce, req.InstanceID, req.RegistryRoot)
	fmt.Println("\n=== PUBLIC WITNESS ORDER ===")
	fmt.Println("[0] signalHash  [1] nonce  [2] instanceID  [3] registryRoot")
	fmt.Printf("encoded length: %d bytes\n", len(encoded))

	return jsonOut, nil
}
