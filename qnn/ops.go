// Package qnn holds the integer kernels of the quantized network. All
// arithmetic here must reproduce bit-for-bit across implementations:
// exact int8 products, round-half-away-from-zero requantization, and
// saturating clamps. Nothing in this package allocates except the conv
// output tensors.
package qnn

// MulAcc multiplies two int8 values exactly. The product of two int8s
// always fits an int32, so there is no saturation here.
func MulAcc(a, b int8) int32 {
	return int32(a) * int32(b)
}

// RoundShift requantizes an accumulator: round half away from zero,
// then arithmetic shift right. shift 0 is the identity.
func RoundShift(acc int32, shift uint8) int32 {
	if shift == 0 {
		return acc
	}
	half := int32(1) << (shift - 1)
	if acc >= 0 {
		acc += half
	} else {
		acc -= half
	}
	return acc >> shift
}

// ClampInt8 saturates to the int8 range.
func ClampInt8(x int32) int8 {
	if x > 127 {
		return 127
	}
	if x < -128 {
		return -128
	}
	return int8(x)
}
