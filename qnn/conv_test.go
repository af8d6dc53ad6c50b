package qnn

import (
	"encoding/binary"
	"testing"

	"github.com/matryer/is"
)

func biasBlob(vals ...int32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(v))
	}
	return b
}

func TestConv3x3CenterIdentity(t *testing.T) {
	is := is.New(t)
	// A kernel with 1 in the center and 0 elsewhere, zero bias, shift 0
	// passes the input through untouched.
	in := NewTensor(1)
	in.Set(0, 0, 5)
	in.Set(0, 27, -9)
	in.Set(0, 63, 17)

	weight := make([]int8, 9)
	weight[4] = 1 // center

	out := Conv3x3(in, weight, biasBlob(0), 1, 0, false)
	is.Equal(out.Channels, 1)
	is.Equal(len(out.Data), 64)
	for sq := 0; sq < 64; sq++ {
		is.Equal(out.At(0, sq), in.At(0, sq))
	}
}

func TestConv3x3EdgesDoNotWrap(t *testing.T) {
	is := is.New(t)
	// All-ones input and all-ones kernel: a cell's output counts its
	// in-board neighborhood size. Corners see 4, edges 6, interior 9.
	in := NewTensor(1)
	for sq := range in.Data {
		in.Data[sq] = 1
	}
	weight := make([]int8, 9)
	for k := range weight {
		weight[k] = 1
	}

	out := Conv3x3(in, weight, biasBlob(0), 1, 0, false)
	is.Equal(out.At(0, 0), int8(4))    // a1 corner
	is.Equal(out.At(0, 7), int8(4))    // h1 corner
	is.Equal(out.At(0, 56), int8(4))   // a8 corner
	is.Equal(out.At(0, 63), int8(4))   // h8 corner
	is.Equal(out.At(0, 3), int8(6))    // d1 edge
	is.Equal(out.At(0, 24), int8(6))   // a4 edge
	is.Equal(out.At(0, 27), int8(9))   // d4 interior
}

func TestConv3x3BiasShiftRelu(t *testing.T) {
	is := is.New(t)
	in := NewTensor(1) // all zeros: output is just the requantized bias

	weight := make([]int8, 2*9)
	out := Conv3x3(in, weight, biasBlob(260, -512), 2, 2, true)
	// 260 -> roundshift(260,2) = 65; -512 -> -128, relu'd to 0.
	for sq := 0; sq < 64; sq++ {
		is.Equal(out.At(0, sq), int8(65))
		is.Equal(out.At(1, sq), int8(0))
	}

	out = Conv3x3(in, weight, biasBlob(260, -512), 2, 2, false)
	for sq := 0; sq < 64; sq++ {
		is.Equal(out.At(1, sq), int8(-128))
	}
}

func TestConv3x3SaturatesBeforeRelu(t *testing.T) {
	is := is.New(t)
	in := NewTensor(1)
	weight := make([]int8, 9)
	out := Conv3x3(in, weight, biasBlob(1<<20), 1, 0, true)
	for sq := 0; sq < 64; sq++ {
		is.Equal(out.At(0, sq), int8(127))
	}
}

func TestConv1x1DotProduct(t *testing.T) {
	is := is.New(t)
	in := NewTensor(3)
	for sq := 0; sq < 64; sq++ {
		in.Set(0, sq, 1)
		in.Set(1, sq, 2)
		in.Set(2, sq, 3)
	}
	// oc0 = 1*1 + 2*10 + 3*(-2) + bias 5 = 20
	// oc1 = 1*0 + 2*0 + 3*4 + bias -20 = -8, relu -> 0
	weight := []int8{1, 10, -2, 0, 0, 4}
	out := Conv1x1(in, weight, biasBlob(5, -20), 2, 0, true)
	for sq := 0; sq < 64; sq++ {
		is.Equal(out.At(0, sq), int8(20))
		is.Equal(out.At(1, sq), int8(0))
	}
}

func TestResidual(t *testing.T) {
	is := is.New(t)
	a := NewTensor(1)
	b := NewTensor(1)
	a.Set(0, 0, 100)
	b.Set(0, 0, 100) // saturates to 127
	a.Set(0, 1, -5)
	b.Set(0, 1, 3) // negative sum relu'd to 0
	a.Set(0, 2, 6)
	b.Set(0, 2, 7)

	out, err := Residual(a, b)
	is.NoErr(err)
	is.Equal(out.At(0, 0), int8(127))
	is.Equal(out.At(0, 1), int8(0))
	is.Equal(out.At(0, 2), int8(13))

	_, err = Residual(a, NewTensor(2))
	is.Equal(err, ErrShapeMismatch)
}
