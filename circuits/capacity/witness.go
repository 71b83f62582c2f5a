package capacity

import (
	"fmt"
	"math/big"

	"github.com/privateinv/inventory-zkproof/pkg/publicinput"
)

// Request describes what a prover wants to prove: the inventory committed
// by (Root, Volume, Blinding) does not exceed MaxCapacity.
type Request struct {
	Root        *big.Int
	Volume      *big.Int
	Blinding    *big.Int
	MaxCapacity uint32
}

// Result holds the populated assignment plus the public hash.
type Result struct {
	Assignment Circuit
	PublicHash *big.Int
}

// PrepareWitness derives a full Circuit assignment from req.
func PrepareWitness(req Request) (*Result, error) {
	maxCapacityBig := new(big.Int).SetUint64(uint64(req.MaxCapacity))
	if req.Volume.Cmp(maxCapacityBig) > 0 {
		return nil, fmt.Errorf("capacity: volume %s exceeds max_capacity %s", req.Volume, maxCapacityBig)
	}

	commitment := publicinput.Commitment(req.Root, req.Volume, req.Blinding)
	publicHash := publicinput.CapacityHash(commitment, maxCapacityBig)

	assignment := Circuit{
		PublicHash:  publicHash,
		Root:        req.Root,
		Volume:      req.Volume,
		Blinding:    req.Blinding,
		MaxCapacity: maxCapacityBig,
	}

	return &Result{Assignment: assignment, PublicHash: publicHash}, nil
}
