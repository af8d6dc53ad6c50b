package chess

// The move index space is the 64x73 scheme: index = fromSquare*73 +
// plane. Planes 0-55 are eight ray directions times seven distances
// (plane = dir*7 + distance-1), planes 56-63 are the knight offsets,
// and planes 64-72 are the nine underpromotion variants (three
// destination directions times three promotion pieces). The promotion
// piece never affects the destination square, so decoding only needs
// the direction third of the plane.

// MoveIndex is an integer in [0, 4671].
type MoveIndex uint16

const (
	NumSquares = 64
	NumPlanes  = 73
	NumMoves   = NumSquares * NumPlanes

	rayPlanes    = 56
	knightPlanes = 8
	promoPlanes  = 9
)

// Ray directions in plane order: N, NE, E, SE, S, SW, W, NW.
// Deltas are (rank, file) with rank 0 = the a1 side.
var rayDeltas = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var knightDeltas = [8][2]int{
	{2, 1}, {1, 2}, {-1, 2}, {-2, 1}, {-2, -1}, {-1, -2}, {1, -2}, {2, -1},
}

// Encode builds a move index from a from-square and a plane.
func Encode(from, plane int) MoveIndex {
	return MoveIndex(from*NumPlanes + plane)
}

// From returns the origin square of the move.
func (m MoveIndex) From() int {
	return int(m) / NumPlanes
}

// Plane returns the move plane in [0, 72].
func (m MoveIndex) Plane() int {
	return int(m) % NumPlanes
}

// Destination decodes the target square. Underpromotion planes depend
// on the mover's forward direction, so the side to move is required.
// ok is false when the decoded square falls off the board, which only
// happens for indexes that can never be legal.
func (m MoveIndex) Destination(stm Side) (to int, ok bool) {
	from := m.From()
	plane := m.Plane()
	rank, file := from/8, from%8

	var dr, df int
	switch {
	case plane < rayPlanes:
		dir := plane / 7
		dist := plane%7 + 1
		dr = rayDeltas[dir][0] * dist
		df = rayDeltas[dir][1] * dist
	case plane < rayPlanes+knightPlanes:
		k := plane - rayPlanes
		dr = knightDeltas[k][0]
		df = knightDeltas[k][1]
	default:
		// dir3: 0 capture toward the mover's left, 1 straight push,
		// 2 capture toward the mover's right. The promotion piece
		// sub-index is irrelevant to the destination.
		dir3 := (plane - rayPlanes - knightPlanes) / 3
		df = dir3 - 1
		dr = 1
		if stm == Black {
			dr = -1
			df = -df
		}
	}

	rank += dr
	file += df
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return 0, false
	}
	return rank*8 + file, true
}

// EncodeFromTo reconstructs the move index for a from/to pair using the
// ray and knight tables. It never produces an underpromotion plane;
// those alias distance-1 ray moves and cannot be told apart from the
// squares alone. ok is false when the geometry matches no plane.
func EncodeFromTo(from, to int) (MoveIndex, bool) {
	dr := to/8 - from/8
	df := to%8 - from%8
	if dr == 0 && df == 0 {
		return 0, false
	}
	for k, d := range knightDeltas {
		if dr == d[0] && df == d[1] {
			return Encode(from, rayPlanes+k), true
		}
	}
	dist := max(abs(dr), abs(df))
	if dr != 0 && df != 0 && abs(dr) != abs(df) {
		return 0, false
	}
	for dir, d := range rayDeltas {
		if dr == d[0]*dist && df == d[1]*dist {
			return Encode(from, dir*7+dist-1), true
		}
	}
	return 0, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
