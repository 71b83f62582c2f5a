// Package poseidon provides the native (out-of-circuit) Poseidon2 sponge used
// to hash inventory slots, Merkle nodes, and commitments. It must produce
// byte-identical outputs to the in-circuit sponge in circuits/gadgets for any
// given input tuple — both sides wrap gnark-crypto's Poseidon2 permutation
// with the same rate/capacity parameterization, so neither side independently
// re-derives round constants or an MDS matrix.
package poseidon

import (
	"crypto/rand"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Hash absorbs the given field elements (rate 2, one squeeze) and returns the
// resulting field element as a big.Int. Fixed-arity wrappers below (Hash2,
// Hash3, Hash9) cover the arities the three inventory circuits use, keeping
// native and in-circuit call sites textually symmetric; circuits/keyauth's
// one- and four-element hashes call Hash directly.
func Hash(inputs ...*big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()
	var elem fr.Element
	for _, in := range inputs {
		elem.SetBigInt(in)
		b := elem.Bytes()
		h.Write(b[:])
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Hash2 hashes exactly two field elements. Used for Merkle internal nodes
// (Poseidon(left, right)) and for inventory-slot leaves
// (Poseidon(item_id, quantity)).
func Hash2(a, b *big.Int) *big.Int {
	return Hash(a, b)
}

// Hash3 hashes exactly three field elements. Used for the inventory
// commitment C = Poseidon(root, total_volume, blinding) and for the
// ItemExists circuit's aggregated public_hash.
func Hash3(a, b, c *big.Int) *big.Int {
	return Hash(a, b, c)
}

// Hash9 hashes exactly nine field elements, matching the signal-hash
// preimage layout of spec §4.4.
func Hash9(in [9]*big.Int) *big.Int {
	return Hash(in[:]...)
}

// zero is reused to avoid reallocating on every EmptyLeafHash call.
var zero = big.NewInt(0)

// EmptyLeafHash returns Poseidon(0, 0), the canonical hash of an unoccupied
// inventory slot.
func EmptyLeafHash() *big.Int {
	return Hash2(zero, zero)
}

// GenerateBlinding samples a uniformly random non-zero BN254 scalar field
// element, used to refresh an inventory's commitment blinding on every
// state-changing operation.
func GenerateBlinding() (*big.Int, error) {
	for {
		b, err := rand.Int(rand.Reader, ecc.BN254.ScalarField())
		if err != nil {
			return nil, err
		}
		if b.Sign() != 0 {
			return b, nil
		}
	}
}

// GenerateSecretKey samples a uniformly random non-zero BN254 scalar field
// element for use as an ownership key in circuits/keyauth.
func GenerateSecretKey() (*big.Int, error) {
	return GenerateBlinding()
}

// DerivePublicKey computes publicKey = H(secretKey), matching
// circuits/keyauth.Circuit.
func DerivePublicKey(secretKey *big.Int) *big.Int {
	return Hash(secretKey)
}
