package itemexists

import (
	"fmt"
	"math/big"

	"github.com/privateinv/inventory-zkproof/circuits/gadgets"
	"github.com/privateinv/inventory-zkproof/pkg/publicinput"
	"github.com/privateinv/inventory-zkproof/pkg/smt"
)

// Request describes what a prover wants to prove: "I hold at least MinQty
// of ItemID," against the inventory currently held in the tree passed to
// PrepareWitness, committed with (Volume, Blinding).
type Request struct {
	ItemID   uint64
	MinQty   uint32
	Volume   *big.Int
	Blinding *big.Int
}

// Result holds the populated assignment plus the public hash the verifier
// is handed out of band.
type Result struct {
	Assignment Circuit
	PublicHash *big.Int
}

// PrepareWitness derives a full Circuit assignment from tree and req.
func PrepareWitness(tree *smt.Tree, req Request) (*Result, error) {
	actualQty := tree.Get(req.ItemID)
	if uint64(actualQty) < uint64(req.MinQty) {
		return nil, fmt.Errorf("itemexists: held quantity %d is below requested minimum %d", actualQty, req.MinQty)
	}

	root := tree.Root()
	commitment := publicinput.Commitment(root, req.Volume, req.Blinding)
	itemIDBig := new(big.Int).SetUint64(req.ItemID)
	minQtyBig := new(big.Int).SetUint64(uint64(req.MinQty))
	publicHash := publicinput.ItemExistsHash(commitment, itemIDBig, minQtyBig)

	proof := tree.Prove(req.ItemID)
	var gproof gadgets.MerkleProof
	for i := 0; i < smt.Depth; i++ {
		gproof.Siblings[i] = proof.Siblings[i]
		gproof.Directions[i] = proof.Directions[i]
	}

	assignment := Circuit{
		PublicHash: publicHash,
		Root:       root,
		Volume:     req.Volume,
		Blinding:   req.Blinding,
		ItemID:     itemIDBig,
		ActualQty:  new(big.Int).SetUint64(uint64(actualQty)),
		MinQty:     minQtyBig,
		Proof:      gproof,
	}

	return &Result{Assignment: assignment, PublicHash: publicHash}, nil
}
