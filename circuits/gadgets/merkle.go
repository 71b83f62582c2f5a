package gadgets

import (
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/privateinv/inventory-zkproof/pkg/poseidon"
	"github.com/privateinv/inventory-zkproof/pkg/smt"
)

// emptyLeafConst is the canonical empty-slot leaf hash, Poseidon(0, 0). It is
// a compile-time constant baked into the circuit, not a witness — every
// circuit in this package agrees on the same constant because they all read
// it from pkg/poseidon, the same source pkg/smt uses natively.
var emptyLeafConst = poseidon.EmptyLeafHash()

// MerkleProof is the in-circuit sibling/direction witness for one slot,
// matching pkg/smt.Proof's shape and spec.md §4.2's MembershipProof layout.
// direction[i] == 0 means the current node is the left child at level i
// (sibling on the right); direction[i] == 1 means the reverse — the same
// convention circuits/poi/merkle.go uses.
type MerkleProof struct {
	Siblings   [smt.Depth]frontend.Variable
	Directions [smt.Depth]frontend.Variable
}

// walk recomputes a root from a leaf value along proof, asserting each
// direction bit is boolean as it goes (spec.md §4.2: "direction bits are
// booleans, enforced b·(b−1)=0" — AssertIsBoolean is gnark's built-in form of
// that constraint).
func walk(api frontend.API, h *Hasher, leaf frontend.Variable, proof MerkleProof) frontend.Variable {
	cur := leaf
	for i := 0; i < smt.Depth; i++ {
		dir := proof.Directions[i]
		api.AssertIsBoolean(dir)
		sib := proof.Siblings[i]

		left := api.Select(dir, sib, cur)
		right := api.Select(dir, cur, sib)
		cur = h.Hash2(left, right)
	}
	return cur
}

// VerifyMembership implements spec.md §4.2's verify_membership: asserts that
// Poseidon(itemID, quantity), walked up through proof, reaches root. Unlike
// VerifyAndUpdate and pkg/smt.LeafHash, a zero quantity is not mapped to the
// canonical empty leaf, so an unoccupied slot never satisfies this check.
func VerifyMembership(api frontend.API, h *Hasher, root, itemID, quantity frontend.Variable, proof MerkleProof) {
	leaf := h.Hash2(itemID, quantity)
	computed := walk(api, h, leaf, proof)
	api.AssertIsEqual(computed, root)
}

// VerifyAndUpdate implements spec.md §4.2's verify_and_update. The old leaf
// is the canonical empty constant when oldQty == 0 (the "is_insertion"
// special case spec.md calls out), never Poseidon(itemID, 0); symmetrically,
// the new leaf normalizes to the same canonical empty constant when newQty
// == 0, which is this module's resolution of the deletion-leaf-asymmetry
// open question in spec.md §9 (see DESIGN.md) — a slot emptied by a
// withdrawal is indistinguishable from a slot that was never occupied, so a
// later insertion on the same item_id is always well-formed.
//
// The same sibling/direction witnesses are reused for both the old-root
// check and the new-root computation, because only the target leaf changes
// along the path (spec.md §4.2: "same path is valid for old and new states").
func VerifyAndUpdate(api frontend.API, h *Hasher, oldRoot, itemID, oldQty, newQty frontend.Variable, proof MerkleProof) frontend.Variable {
	emptyConst := frontend.Variable(new(big.Int).Set(emptyLeafConst))

	isInsertion := api.IsZero(oldQty)
	oldLeafNormal := h.Hash2(itemID, oldQty)
	oldLeaf := api.Select(isInsertion, emptyConst, oldLeafNormal)

	computedOldRoot := walk(api, h, oldLeaf, proof)
	api.AssertIsEqual(computedOldRoot, oldRoot)

	isDeletion := api.IsZero(newQty)
	newLeafNormal := h.Hash2(itemID, newQty)
	newLeaf := api.Select(isDeletion, emptyConst, newLeafNormal)

	return walk(api, h, newLeaf, proof)
}
