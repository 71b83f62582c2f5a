// Package field converts between BN254 scalar field elements and the
// fixed-width byte encoding used on the wire (spec §6): every field element
// is serialized as 32 bytes, little-endian. pkg/publicinput builds on this to
// assemble and parse per-circuit public-input vectors.
package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
)

// Size is the number of bytes used to encode a single BN254 scalar field
// element on the wire.
const Size = 32

// Encode serializes a field element as Size little-endian bytes. The value
// is reduced modulo the scalar field first so callers never need to check
// range themselves before encoding.
func Encode(v *big.Int) []byte {
	reduced := new(big.Int).Mod(v, ecc.BN254.ScalarField())
	be := reduced.Bytes()

	out := make([]byte, Size)
	// be is big-endian and at most Size bytes (mod already bounded it);
	// copy it in reversed so out ends up little-endian.
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}

// EncodeMany serializes each element in order, concatenating their Size-byte
// encodings.
func EncodeMany(values []*big.Int) []byte {
	out := make([]byte, 0, len(values)*Size)
	for _, v := range values {
		out = append(out, Encode(v)...)
	}
	return out
}

// Decode parses a single Size-byte little-endian element.
func Decode(b []byte) (*big.Int, error) {
	if len(b) != Size {
		return nil, fmt.Errorf("field: encoded element is %d bytes, want %d", len(b), Size)
	}
	be := make([]byte, Size)
	for i, c := range b {
		be[Size-1-i] = c
	}
	return new(big.Int).SetBytes(be), nil
}

// DecodeMany splits b into consecutive Size-byte elements.
func DecodeMany(b []byte) ([]*big.Int, error) {
	if len(b)%Size != 0 {
		return nil, fmt.Errorf("field: encoded buffer is %d bytes, not a multiple of %d", len(b), Size)
	}
	n := len(b) / Size
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		v, err := Decode(b[i*Size : (i+1)*Size])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
