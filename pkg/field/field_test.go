package field_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/privateinv/inventory-zkproof/pkg/field"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	v := big.NewInt(987654321)
	enc := field.Encode(v)
	if len(enc) != field.Size {
		t.Fatalf("expected %d bytes, got %d", field.Size, len(enc))
	}
	got, err := field.Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Cmp(v) != 0 {
		t.Fatalf("round trip mismatch: got %s, want %s", got, v)
	}
}

func TestEncodeReducesModScalarField(t *testing.T) {
	over := new(big.Int).Add(ecc.BN254.ScalarField(), big.NewInt(5))
	enc := field.Encode(over)
	got, err := field.Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected reduced value 5, got %s", got)
	}
}

func TestEncodeManyDecodeMany(t *testing.T) {
	values := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	enc := field.EncodeMany(values)
	if len(enc) != field.Size*len(values) {
		t.Fatalf("expected %d bytes, got %d", field.Size*len(values), len(enc))
	}
	got, err := field.DecodeMany(enc)
	if err != nil {
		t.Fatalf("decode many: %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("expected %d values, got %d", len(values), len(got))
	}
	for i := range values {
		if got[i].Cmp(values[i]) != 0 {
			t.Fatalf("value %d: got %s, want %s", i, got[i], values[i])
		}
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	if _, err := field.Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a buffer shorter than field.Size")
	}
}

func TestDecodeManyRejectsNonMultiple(t *testing.T) {
	if _, err := field.DecodeMany(make([]byte, field.Size+1)); err == nil {
		t.Fatal("expected an error for a buffer not a multiple of field.Size")
	}
}
