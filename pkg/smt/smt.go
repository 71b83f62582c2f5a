// Package smt implements the fixed-depth Sparse Merkle Tree over inventory
// item slots described in spec §3 and §4.2. Leaves are addressed by item_id;
// an unoccupied slot has the canonical value Poseidon(0, 0) rather than being
// absent from any map, so every leaf index in [0, 2^depth) has a well-defined
// hash without the tree ever materializing more than the occupied slots plus
// the zero-subtree hash chain.
package smt

import (
	"fmt"
	"math/big"

	"github.com/privateinv/inventory-zkproof/pkg/poseidon"
)

// Depth is the fixed tree depth used across every circuit and the native
// prover. 2^Depth item slots is comfortably beyond any inventory this system
// is expected to track; it is a compile-time constant (not a per-tree
// parameter) because the three circuits hard-code MerkleProof array lengths
// to it.
const Depth = 12

// zeroHashes[i] is the hash of a fully-empty subtree of height i.
// zeroHashes[0] is the empty leaf hash, Poseidon(0, 0).
var zeroHashes = precomputeZeroHashes(Depth)

func precomputeZeroHashes(depth int) []*big.Int {
	h := make([]*big.Int, depth+1)
	h[0] = poseidon.EmptyLeafHash()
	for i := 1; i <= depth; i++ {
		h[i] = poseidon.Hash2(h[i-1], h[i-1])
	}
	return h
}

// ZeroHash returns the hash of a fully-empty subtree of the given height
// (height 0 is a single empty leaf).
func ZeroHash(height int) *big.Int {
	return new(big.Int).Set(zeroHashes[height])
}

// LeafHash returns the slot hash for an item occupying quantity units.
// A quantity of 0 collapses to the canonical empty-leaf hash, so a withdrawal
// that empties a slot and an always-unoccupied slot are indistinguishable to
// anyone without the pre-image — this is the "deletion looks like it was
// never occupied" property spec §9 calls out as an accepted information leak
// trade-off (see DESIGN.md).
func LeafHash(itemID, quantity *big.Int) *big.Int {
	if quantity.Sign() == 0 {
		return poseidon.EmptyLeafHash()
	}
	return poseidon.Hash2(itemID, quantity)
}

// Tree is an in-memory sparse Merkle tree over inventory slots. Only
// occupied slots (and the ancestor nodes on their root paths) are stored;
// every other node is implied by the zeroHashes chain. This mirrors the
// teacher's zero-subtree precomputation trick in its proof-of-storage tree,
// adapted here to a sparse (mostly-empty) rather than dense (fully-padded)
// leaf population.
type Tree struct {
	depth int
	// nodes[level][index] holds the hash of a non-default node at that
	// level. Level 0 is leaves, level depth is the root (always stored
	// under index 0).
	nodes []map[uint64]*big.Int
	// quantities tracks the current quantity for each occupied item_id so
	// Get and Update don't need to invert LeafHash.
	quantities map[uint64]uint32
}

// NewEmpty returns a tree of Depth with every slot unoccupied.
func NewEmpty() *Tree {
	nodes := make([]map[uint64]*big.Int, Depth+1)
	for i := range nodes {
		nodes[i] = make(map[uint64]*big.Int)
	}
	return &Tree{
		depth:      Depth,
		nodes:      nodes,
		quantities: make(map[uint64]uint32),
	}
}

// Clone returns a deep copy of t, used by pkg/prover to speculatively apply
// an update while computing a witness without disturbing the committed
// local state until external acceptance (spec.md §4.8 step 7).
func (t *Tree) Clone() *Tree {
	nodes := make([]map[uint64]*big.Int, len(t.nodes))
	for i, m := range t.nodes {
		cp := make(map[uint64]*big.Int, len(m))
		for k, v := range m {
			cp[k] = new(big.Int).Set(v)
		}
		nodes[i] = cp
	}
	quantities := make(map[uint64]uint32, len(t.quantities))
	for k, v := range t.quantities {
		quantities[k] = v
	}
	return &Tree{depth: t.depth, nodes: nodes, quantities: quantities}
}

// Root returns the current tree root.
func (t *Tree) Root() *big.Int {
	if r, ok := t.nodes[t.depth][0]; ok {
		return new(big.Int).Set(r)
	}
	return ZeroHash(t.depth)
}

// Get returns the current quantity stored at itemID, 0 if unoccupied.
func (t *Tree) Get(itemID uint64) uint32 {
	return t.quantities[itemID]
}

func (t *Tree) nodeAt(level int, index uint64) *big.Int {
	if h, ok := t.nodes[level][index]; ok {
		return h
	}
	return zeroHashes[level]
}

// sibling returns the index and direction of index's sibling at a level.
// direction is 0 if index is a left child (sibling is to the right), 1 if
// index is a right child (sibling is to the left) — matching the direction
// bit convention consumed by circuits/gadgets.VerifyMembership.
func sibling(index uint64) (siblingIndex uint64, direction int) {
	if index%2 == 0 {
		return index + 1, 0
	}
	return index - 1, 1
}

// Update sets itemID's slot to newQuantity and returns the new root. This
// covers all three of spec §4.2's cases uniformly: inserting into a
// previously-unoccupied slot, changing an occupied slot's quantity, and
// withdrawing a slot down to zero (which re-collapses it to the canonical
// empty-leaf hash, not a distinct "deleted" marker) — there is no separate
// insert/delete path because LeafHash(id, 0) already equals the empty leaf.
func (t *Tree) Update(itemID uint64, newQuantity uint32) *big.Int {
	idBig := new(big.Int).SetUint64(itemID)
	qBig := new(big.Int).SetUint64(uint64(newQuantity))
	leaf := LeafHash(idBig, qBig)

	if newQuantity == 0 {
		delete(t.nodes[0], itemID)
		delete(t.quantities, itemID)
	} else {
		t.nodes[0][itemID] = leaf
		t.quantities[itemID] = newQuantity
	}

	cur := leaf
	index := itemID
	for level := 0; level < t.depth; level++ {
		sibIdx, dir := sibling(index)
		sibHash := t.nodeAt(level, sibIdx)

		var parent *big.Int
		if dir == 0 {
			parent = poseidon.Hash2(cur, sibHash)
		} else {
			parent = poseidon.Hash2(sibHash, cur)
		}

		index /= 2
		level1 := level + 1
		if parent.Cmp(zeroHashes[level1]) == 0 {
			delete(t.nodes[level1], index)
		} else {
			t.nodes[level1][index] = parent
		}
		cur = parent
	}
	return t.Root()
}

// Proof is a membership/non-membership witness for a single slot: the
// sibling hash and direction bit at each level from leaf to root.
type Proof struct {
	Siblings   []*big.Int
	Directions []int
}

// Prove returns the current Merkle proof for itemID, whether occupied or not.
func (t *Tree) Prove(itemID uint64) *Proof {
	siblings := make([]*big.Int, t.depth)
	directions := make([]int, t.depth)

	index := itemID
	for level := 0; level < t.depth; level++ {
		sibIdx, dir := sibling(index)
		siblings[level] = t.nodeAt(level, sibIdx)
		directions[level] = dir
		index /= 2
	}
	return &Proof{Siblings: siblings, Directions: directions}
}

// VerifyProof recomputes a root from a claimed leaf value and proof, native
// counterpart to circuits/gadgets.VerifyMembership. It is used by the prover
// to sanity-check a witness before submitting it to the circuit, not as a
// substitute for the in-circuit check.
func VerifyProof(leaf *big.Int, proof *Proof, root *big.Int) error {
	if len(proof.Siblings) != Depth || len(proof.Directions) != Depth {
		return fmt.Errorf("smt: proof length %d/%d, want depth %d", len(proof.Siblings), len(proof.Directions), Depth)
	}
	cur := new(big.Int).Set(leaf)
	for level := 0; level < Depth; level++ {
		if proof.Directions[level] == 0 {
			cur = poseidon.Hash2(cur, proof.Siblings[level])
		} else {
			cur = poseidon.Hash2(proof.Siblings[level], cur)
		}
	}
	if cur.Cmp(root) != 0 {
		return fmt.Errorf("smt: recomputed root does not match claimed root")
	}
	return nil
}
