package chess

import "math/bits"

// MaskBytes is the size of a legality mask: one bit per encodable move.
const MaskBytes = NumMoves / 8

// LegalityMask is a bit-vector over the 4672 encodable moves; bit i is
// set iff move index i is legal in the position the mask accompanies.
type LegalityMask [MaskBytes]byte

func (m *LegalityMask) IsSet(idx MoveIndex) bool {
	return m[idx>>3]&(1<<(idx&7)) != 0
}

func (m *LegalityMask) Set(idx MoveIndex) {
	m[idx>>3] |= 1 << (idx & 7)
}

func (m *LegalityMask) Clear(idx MoveIndex) {
	m[idx>>3] &^= 1 << (idx & 7)
}

// Count returns the number of legal moves flagged in the mask.
func (m *LegalityMask) Count() int {
	n := 0
	for _, b := range m {
		n += bits.OnesCount8(b)
	}
	return n
}
