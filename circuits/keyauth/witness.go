package keyauth

import (
	"math/big"

	"github.com/privateinv/inventory-zkproof/pkg/poseidon"
)

// Request describes the deposit being authorized.
type Request struct {
	AuthorizerSecretKey *big.Int
	ItemID              uint64
	Amount              uint32
	Nonce               *big.Int
}

// Result holds the populated assignment plus the two public values.
type Result struct {
	Assignment       Circuit
	AuthorizerPubKey *big.Int
	BindingHash      *big.Int
}

// PrepareWitness derives the full Circuit assignment from req.
func PrepareWitness(req Request) *Result {
	itemIDBig := new(big.Int).SetUint64(req.ItemID)
	amountBig := new(big.Int).SetUint64(uint64(req.Amount))

	pubKey := poseidon.DerivePublicKey(req.AuthorizerSecretKey)
	binding := poseidon.Hash(req.AuthorizerSecretKey, itemIDBig, amountBig, req.Nonce)

	assignment := Circuit{
		AuthorizerPubKey:    pubKey,
		BindingHash:         binding,
		AuthorizerSecretKey: req.AuthorizerSecretKey,
		ItemID:              itemIDBig,
		Amount:              amountBig,
		Nonce:               req.Nonce,
	}

	return &Result{Assignment: assignment, AuthorizerPubKey: pubKey, BindingHash: binding}
}
