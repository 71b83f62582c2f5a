package keyauth

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	plonkbn254 "github.com/consensys/gnark/backend/plonk/bn254"
	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/pkg/setup"
)

// Fixture holds the values needed for external (e.g. Solidity) verifier tests.
type Fixture struct {
	SolidityProof    string `json:"solidity_proof"`
	AuthorizerPubKey string `json:"authorizer_pub_key"`
	BindingHash      string `json:"binding_hash"`
}

// ExportProofFixture generates a deterministic PLONK proof fixture.
// keysDir is the directory containing the proving and verifying keys.
func ExportProofFixture(keysDir string) ([]byte, error) {
	fmt.Println("Compiling keyauth circuit (PLONK/SCS)...")
	ccs, err := setup.CompileCircuitForBackend(&Circuit{}, setup.PlonkBackend)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	fmt.Println("Loading PLONK keys...")
	pk, vk, err := setup.LoadPlonkKeys(keysDir, "keyauth")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	result := PrepareWitness(Request{
		AuthorizerSecretKey: big.NewInt(12345),
		ItemID:              7,
		Amount:              50,
		Nonce:               big.NewInt(1),
	})

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("extract public witness: %w", err)
	}

	fmt.Println("Generating PLONK proof...")
	proof, err := plonk.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}
	if err := plonk.Verify(proof, vk, publicWitness); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	fmt.Println("PLONK proof verified successfully in Go!")

	bn254Proof := proof.(*plonkbn254.Proof)
	solidityBytes := bn254Proof.MarshalSolidity()

	fixture := Fixture{
		SolidityProof:    "0x" + hex.EncodeToString(solidityBytes),
		AuthorizerPubKey: fmt.Sprintf("0x%064x", result.AuthorizerPubKey),
		BindingHash:      fmt.Sprintf("0x%064x", result.BindingHash),
	}

	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}

	fmt.Println("\n=== PROOF FIXTURE (JSON) ===")
	fmt.Println(string(jsonOut))
	fmt.Println("\n=== PUBLIC WITNESS ORDER ===")
	fmt.Println("[0] authorizerPubKey  [1] bindingHash")

	return jsonOut, nil
}
