package qnn

import (
	"encoding/binary"
	"errors"
)

// ErrShapeMismatch reports a residual combine over tensors of different
// lengths. Correct trunk wiring never produces it; treat it as fatal.
var ErrShapeMismatch = errors.New("qnn: tensor shape mismatch")

// Kernel neighbor order for 3x3 weights, row-major from the up-left
// corner: up-left, up, up-right, left, center, right, down-left, down,
// down-right. "Up" is toward rank 8.
var kernelDeltas = [9][2]int{
	{1, -1}, {1, 0}, {1, 1},
	{0, -1}, {0, 0}, {0, 1},
	{-1, -1}, {-1, 0}, {-1, 1},
}

// biasAt decodes the little-endian int32 bias for output channel oc.
func biasAt(bias []byte, oc int) int32 {
	return int32(binary.LittleEndian.Uint32(bias[oc*4:]))
}

// Conv3x3 runs a quantized 3x3 convolution over the 8x8 board. Board
// edges are hard: neighbors outside the grid contribute nothing. The
// weight layout is (oc*inChannels+ic)*9 + k with k in kernel order.
// Per output cell: accumulate, add bias, RoundShift, ClampInt8, then
// optionally zero negatives.
func Conv3x3(in Tensor, weight []int8, bias []byte, outCh int, shift uint8, relu bool) Tensor {
	out := NewTensor(outCh)
	inCh := in.Channels
	for oc := 0; oc < outCh; oc++ {
		b := biasAt(bias, oc)
		for rank := 0; rank < 8; rank++ {
			for file := 0; file < 8; file++ {
				acc := b
				for ic := 0; ic < inCh; ic++ {
					wb := (oc*inCh + ic) * 9
					base := ic * BoardCells
					for k, d := range kernelDeltas {
						nr := rank + d[0]
						nf := file + d[1]
						if nr < 0 || nr > 7 || nf < 0 || nf > 7 {
							continue
						}
						acc += MulAcc(in.Data[base+nr*8+nf], weight[wb+k])
					}
				}
				v := ClampInt8(RoundShift(acc, shift))
				if relu && v < 0 {
					v = 0
				}
				out.Data[oc*BoardCells+rank*8+file] = v
			}
		}
	}
	return out
}

// Conv1x1 is the same bias/requantize/clamp/activation pipeline with a
// pure per-cell dot product over input channels. Weight layout is
// oc*inChannels + ic.
func Conv1x1(in Tensor, weight []int8, bias []byte, outCh int, shift uint8, relu bool) Tensor {
	out := NewTensor(outCh)
	inCh := in.Channels
	for oc := 0; oc < outCh; oc++ {
		b := biasAt(bias, oc)
		wb := oc * inCh
		for sq := 0; sq < BoardCells; sq++ {
			acc := b
			for ic := 0; ic < inCh; ic++ {
				acc += MulAcc(in.Data[ic*BoardCells+sq], weight[wb+ic])
			}
			v := ClampInt8(RoundShift(acc, shift))
			if relu && v < 0 {
				v = 0
			}
			out.Data[oc*BoardCells+sq] = v
		}
	}
	return out
}

// Residual combines a block's output with its input: elementwise add,
// clamp, ReLU.
func Residual(a, b Tensor) (Tensor, error) {
	if len(a.Data) != len(b.Data) {
		return Tensor{}, ErrShapeMismatch
	}
	out := Tensor{Channels: a.Channels, Data: make([]int8, len(a.Data))}
	for i := range a.Data {
		v := ClampInt8(int32(a.Data[i]) + int32(b.Data[i]))
		if v < 0 {
			v = 0
		}
		out.Data[i] = v
	}
	return out, nil
}
