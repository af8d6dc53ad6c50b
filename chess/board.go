package chess

// Side is the color to move. White is always the "first side" in the
// encoder's side-to-move plane.
type Side uint8

const (
	White Side = iota
	Black
)

func (s Side) Other() Side {
	return 1 - s
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// Piece indexes the per-side bitboard array.
type Piece uint8

const (
	Pawn Piece = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NumPieces = 6
)

const (
	WhiteKingSide = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide
)

// BoardState is an immutable position snapshot supplied by the caller.
// Square 0 is a1, square 63 is h8 (square = rank*8 + file). The core
// never applies moves itself; successor positions arrive as distinct
// values.
type BoardState struct {
	Pieces     [2][6]uint64
	SideToMove Side
	Castling   uint8
	// EPFile is the en-passant file, or -1 when no en-passant capture
	// is available.
	EPFile int8
}

// Occupied returns the union of one side's piece bitboards.
func (b *BoardState) Occupied(s Side) uint64 {
	var occ uint64
	for p := Pawn; p < NumPieces; p++ {
		occ |= b.Pieces[s][p]
	}
	return occ
}

// PieceOn finds which of side s's pieces sits on sq, if any.
func (b *BoardState) PieceOn(s Side, sq int) (Piece, bool) {
	bit := uint64(1) << uint(sq)
	for p := Pawn; p < NumPieces; p++ {
		if b.Pieces[s][p]&bit != 0 {
			return p, true
		}
	}
	return 0, false
}

// EPTargetSquare returns the square a pawn would land on when capturing
// en passant, or -1. The target rank depends only on the side to move:
// rank index 5 when White is to move, rank index 2 when Black is.
func (b *BoardState) EPTargetSquare() int {
	if b.EPFile < 0 {
		return -1
	}
	if b.SideToMove == White {
		return 5*8 + int(b.EPFile)
	}
	return 2*8 + int(b.EPFile)
}
