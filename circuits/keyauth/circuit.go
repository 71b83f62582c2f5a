// Package keyauth implements the deposit-authorization circuit supplemented
// in SPEC_FULL.md §5: prove knowledge of an authorizer secret key whose
// Poseidon-derived public key matches a declared value, bound to a specific
// deposit's (item_id, amount, nonce) tuple. Grounded on
// circuits/keyleak/circuit.go's "prove knowledge of a secret key whose hash
// matches a registered public key" shape, extended with the binding hash so
// the proof cannot be replayed against a different deposit.
package keyauth

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// Circuit proves that AuthorizerSecretKey derives AuthorizerPubKey and that
// the authorizer bound themselves to this specific deposit via BindingHash.
type Circuit struct {
	// Public inputs, in this order.
	AuthorizerPubKey frontend.Variable `gnark:"authorizerPubKey,public"`
	BindingHash      frontend.Variable `gnark:"bindingHash,public"`

	// Private witness.
	AuthorizerSecretKey frontend.Variable `gnark:"authorizerSecretKey"`
	ItemID              frontend.Variable `gnark:"itemId"`
	Amount              frontend.Variable `gnark:"amount"`
	Nonce               frontend.Variable `gnark:"nonce"`
}

func (c *Circuit) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}

	// 1. AuthorizerSecretKey must be non-zero (a zero key is trivially known).
	api.AssertIsEqual(api.IsZero(c.AuthorizerSecretKey), 0)

	// 2. AuthorizerPubKey must be non-zero.
	api.AssertIsEqual(api.IsZero(c.AuthorizerPubKey), 0)

	// 3. Key ownership: authorizerPubKey == H(authorizerSecretKey).
	keyHasher := hash.NewMerkleDamgardHasher(api, p, 0)
	keyHasher.Write(c.AuthorizerSecretKey)
	derivedPubKey := keyHasher.Sum()
	api.AssertIsEqual(c.AuthorizerPubKey, derivedPubKey)

	// 4. Binding: bindingHash == H(authorizerSecretKey, itemId, amount, nonce).
	// Folding the secret key into the binding (rather than only the public
	// key) ties the proof to a single signing action — the same key cannot
	// be used to mint a binding for a deposit it never authorized without
	// re-deriving this hash.
	bindHasher := hash.NewMerkleDamgardHasher(api, p, 0)
	bindHasher.Write(c.AuthorizerSecretKey, c.ItemID, c.Amount, c.Nonce)
	derivedBinding := bindHasher.Sum()
	api.AssertIsEqual(c.BindingHash, derivedBinding)

	return nil
}
