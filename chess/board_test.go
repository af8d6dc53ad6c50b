package chess

import (
	"testing"

	"github.com/matryer/is"
)

func TestEPTargetSquare(t *testing.T) {
	is := is.New(t)
	b := BoardState{EPFile: -1}
	is.Equal(b.EPTargetSquare(), -1)

	b.EPFile = 3
	b.SideToMove = White
	is.Equal(b.EPTargetSquare(), 43) // d6

	b.SideToMove = Black
	is.Equal(b.EPTargetSquare(), 19) // d3
}

func TestPieceOn(t *testing.T) {
	is := is.New(t)
	var b BoardState
	b.Pieces[White][Rook] = 1 << 0
	b.Pieces[Black][Queen] = 1 << 59

	p, ok := b.PieceOn(White, 0)
	is.True(ok)
	is.Equal(p, Rook)

	p, ok = b.PieceOn(Black, 59)
	is.True(ok)
	is.Equal(p, Queen)

	_, ok = b.PieceOn(White, 59)
	is.True(!ok)

	is.Equal(b.Occupied(White), uint64(1))
	is.Equal(b.Occupied(Black), uint64(1)<<59)
}
