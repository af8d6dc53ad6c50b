// Package network assembles the quantized policy network: the binary
// input planes, the convolutional trunk and head, and the chunked
// move-logit projection with masked selection.
package network

import (
	"math/bits"

	"github.com/centaurbot/centaur/chess"
	"github.com/centaurbot/centaur/qnn"
	"github.com/centaurbot/centaur/weights"
)

// Input plane layout, 18 channels of 64 cells:
//
//	 0- 5  white pawn, knight, bishop, rook, queen, king
//	 6-11  black pieces in the same order
//	12     side-to-move fill (all 1 when White is to move)
//	13-16  castling fills: white K, white Q, black K, black Q
//	17     en-passant target one-hot
//
// Every value is 0 or 1 before the quantized layers consume it.
func Encode(b *chess.BoardState) qnn.Tensor {
	t := qnn.NewTensor(weights.InputChannels)

	for side := chess.White; side <= chess.Black; side++ {
		for p := chess.Pawn; p < chess.NumPieces; p++ {
			ch := int(side)*6 + int(p)
			bb := b.Pieces[side][p]
			for ; bb != 0; bb &= bb - 1 {
				t.Set(ch, bits.TrailingZeros64(bb), 1)
			}
		}
	}

	if b.SideToMove == chess.White {
		fillChannel(t, 12)
	}
	for bit := 0; bit < 4; bit++ {
		if b.Castling&(1<<bit) != 0 {
			fillChannel(t, 13+bit)
		}
	}
	if sq := b.EPTargetSquare(); sq >= 0 {
		t.Set(17, sq, 1)
	}
	return t
}

func fillChannel(t qnn.Tensor, ch int) {
	for sq := 0; sq < qnn.BoardCells; sq++ {
		t.Set(ch, sq, 1)
	}
}
