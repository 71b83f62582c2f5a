// Package gadgets collects the in-circuit building blocks shared by
// StateTransition, ItemExists, and Capacity: Poseidon composition, sparse
// Merkle tree membership/update, range checks, and the signal-hash binder.
// Each gadget mirrors a native counterpart in pkg/poseidon / pkg/smt so the
// prover and the circuit agree on every intermediate value by construction.
package gadgets

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// Hasher wraps gnark's Poseidon2 Merkle-Damgard sponge (rate 2, capacity 1)
// with fixed-arity call sites, the in-circuit counterpart of pkg/poseidon.
// A fresh sponge state is needed per call (hence Reset before each Write),
// the same pattern circuits/poi/merkle.go uses inside its proof-path loop.
type Hasher struct {
	api    frontend.API
	hasher hash.FieldHasher
}

// NewHasher constructs a Hasher bound to api. Construct one per Define call
// and reuse it for every hash in that circuit instance.
func NewHasher(api frontend.API) (*Hasher, error) {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return nil, err
	}
	return &Hasher{api: api, hasher: hash.NewMerkleDamgardHasher(api, p, 0)}, nil
}

// Hash2 returns Poseidon(a, b).
func (h *Hasher) Hash2(a, b frontend.Variable) frontend.Variable {
	h.hasher.Reset()
	h.hasher.Write(a, b)
	return h.hasher.Sum()
}

// Hash3 returns Poseidon(a, b, c).
func (h *Hasher) Hash3(a, b, c frontend.Variable) frontend.Variable {
	h.hasher.Reset()
	h.hasher.Write(a, b, c)
	return h.hasher.Sum()
}

// Hash9 returns Poseidon of the nine signal-hash preimage elements, in order.
func (h *Hasher) Hash9(in [9]frontend.Variable) frontend.Variable {
	h.hasher.Reset()
	h.hasher.Write(in[0], in[1], in[2], in[3], in[4], in[5], in[6], in[7], in[8])
	return h.hasher.Sum()
}
