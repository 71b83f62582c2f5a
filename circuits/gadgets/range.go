package gadgets

import "github.com/consensys/gnark/frontend"

// u32Bits is the bit width spec.md §4.3 fixes for every quantity/volume
// range check.
const u32Bits = 32

// EnforceU32 proves 0 <= v < 2^32. api.ToBinary already allocates k boolean
// witnesses and asserts v equals their weighted sum (one AssertIsBoolean per
// bit internally) — the same k-bit decomposition circuits/fsp/circuit.go
// uses for its lastIdx range check, just parameterized to 32 instead of the
// tree-depth width fsp needs.
func EnforceU32(api frontend.API, v frontend.Variable) {
	api.ToBinary(v, u32Bits)
}

// EnforceGeq proves a >= b for two values already known to fit in 32 bits,
// per spec.md §4.3: "enforce_u32(a - b) ... if a < b the field subtraction
// wraps to a 254-bit value that cannot be reconstructed from 32 bits".
func EnforceGeq(api frontend.API, a, b frontend.Variable) {
	EnforceU32(api, api.Sub(a, b))
}
