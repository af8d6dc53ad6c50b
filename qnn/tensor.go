package qnn

// BoardCells is the spatial extent of every tensor: a linearized 8x8
// board per channel, square = rank*8 + file.
const BoardCells = 64

// Tensor is a flat int8 tensor shaped channels x 64, channel-major.
type Tensor struct {
	Channels int
	Data     []int8
}

// NewTensor allocates a zeroed tensor with the given channel count.
func NewTensor(channels int) Tensor {
	return Tensor{Channels: channels, Data: make([]int8, channels*BoardCells)}
}

// At reads the value of channel c at cell sq.
func (t Tensor) At(c, sq int) int8 {
	return t.Data[c*BoardCells+sq]
}

// Set writes the value of channel c at cell sq.
func (t Tensor) Set(c, sq int, v int8) {
	t.Data[c*BoardCells+sq] = v
}
