// Package material scores captures in centipawns over the move
// encoding. It is a pure table-lookup leaf with no network dependency.
package material

import (
	"github.com/centaurbot/centaur/chess"
)

const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

var pieceValue = [chess.NumPieces]int{
	chess.Pawn:   PawnValue,
	chess.Knight: KnightValue,
	chess.Bishop: BishopValue,
	chess.Rook:   RookValue,
	chess.Queen:  QueenValue,
	chess.King:   0,
}

// Value returns the material value of a piece type.
func Value(p chess.Piece) int {
	return pieceValue[p]
}

// deltaOrder checks the highest-value piece first so the first bitboard
// that lost a bit decides the result.
var deltaOrder = [5]chess.Piece{
	chess.Queen, chess.Rook, chess.Bishop, chess.Knight, chess.Pawn,
}

// CaptureValueFromDelta compares the opponent's bitboards between a
// root position and one of its successors and returns the value of the
// highest piece type that lost a bit, or 0 when nothing was captured.
// Legal chess allows at most one capture per half-move, so the first
// difference wins.
func CaptureValueFromDelta(root, child *chess.BoardState) int {
	opp := root.SideToMove.Other()
	for _, p := range deltaOrder {
		if root.Pieces[opp][p]&^child.Pieces[opp][p] != 0 {
			return pieceValue[p]
		}
	}
	return 0
}

// MaxCaptureValue decodes every legal move in the mask and returns the
// value of the most valuable capture available to the side to move,
// short-circuiting as soon as a queen capture appears.
func MaxCaptureValue(state *chess.BoardState, mask *chess.LegalityMask) int {
	stm := state.SideToMove
	opp := stm.Other()
	epTarget := state.EPTargetSquare()
	forward := 1
	if stm == chess.Black {
		forward = -1
	}

	best := 0
	for byteIdx, bitsSet := range mask {
		if bitsSet == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if bitsSet&(1<<bit) == 0 {
				continue
			}
			idx := chess.MoveIndex(byteIdx*8 + bit)
			from := idx.From()
			to, ok := idx.Destination(stm)
			if !ok {
				continue
			}
			v := 0
			if p, hit := state.PieceOn(opp, to); hit {
				v = pieceValue[p]
			} else if to == epTarget && isEPCapture(state, stm, from, to, forward) {
				v = PawnValue
			}
			if v > best {
				best = v
				if best == QueenValue {
					return best
				}
			}
		}
	}
	return best
}

// isEPCapture checks the en-passant shape: a friendly pawn on the
// origin, a one-file sideways step, and the right forward-rank
// relationship toward the target square.
func isEPCapture(state *chess.BoardState, stm chess.Side, from, to, forward int) bool {
	if state.Pieces[stm][chess.Pawn]&(1<<uint(from)) == 0 {
		return false
	}
	fileDiff := from%8 - to%8
	if fileDiff != 1 && fileDiff != -1 {
		return false
	}
	return to/8-from/8 == forward
}
