package chess

import (
	"testing"

	"github.com/matryer/is"
)

func TestRayKnightRoundTrip(t *testing.T) {
	is := is.New(t)
	// Every ray and knight plane that stays on the board must survive a
	// decode/re-encode round trip.
	for from := 0; from < NumSquares; from++ {
		for plane := 0; plane < rayPlanes+knightPlanes; plane++ {
			idx := Encode(from, plane)
			to, ok := idx.Destination(White)
			if !ok {
				continue
			}
			back, ok := EncodeFromTo(from, to)
			is.True(ok)
			is.Equal(back, idx)
		}
	}
}

func TestDestinationKnownSquares(t *testing.T) {
	is := is.New(t)
	type tc struct {
		from  int
		plane int
		stm   Side
		to    int
		ok    bool
	}
	e1 := 4
	cases := []tc{
		{e1, 0, White, 12, true},         // N distance 1 from e1 -> e2
		{e1, 6, White, 60, true},         // N distance 7 from e1 -> e8
		{e1, 2*7 + 2, White, 7, true},    // E distance 3 from e1 -> h1
		{e1, 4*7 + 0, White, 0, false},   // S off the board
		{e1, 56, White, 21, true},        // knight (2,1) from e1 -> f3
		{e1, 56 + 4, White, 0, false},    // knight (-2,-1) off the board
		{6*8 + 3, 64, White, 58, true},   // d7 promo capture-left -> c8
		{6*8 + 3, 67, White, 59, true},   // d7 promo push -> d8
		{6*8 + 3, 70, White, 60, true},   // d7 promo capture-right -> e8
		{1*8 + 3, 64, Black, 4, true},    // d2 promo capture-left (mirrored) -> e1
		{1*8 + 3, 67, Black, 3, true},    // d2 promo push -> d1
		{1*8 + 3, 70, Black, 2, true},    // d2 promo capture-right -> c1
		{0, 5*7 + 0, White, 0, false},    // SW from a1 off the board
	}
	for _, c := range cases {
		to, ok := Encode(c.from, c.plane).Destination(c.stm)
		is.Equal(ok, c.ok)
		if ok {
			is.Equal(to, c.to)
		}
	}
}

func TestPromotionPlanesAliasDestination(t *testing.T) {
	is := is.New(t)
	// The three promotion pieces of one direction third must decode to
	// the same destination square, from either side's perspective.
	for _, stm := range []Side{White, Black} {
		fromRank := 6
		if stm == Black {
			fromRank = 1
		}
		for file := 0; file < 8; file++ {
			from := fromRank*8 + file
			for dir3 := 0; dir3 < 3; dir3++ {
				var dest int
				var destOK bool
				for promo := 0; promo < 3; promo++ {
					plane := rayPlanes + knightPlanes + dir3*3 + promo
					to, ok := Encode(from, plane).Destination(stm)
					if promo == 0 {
						dest, destOK = to, ok
						continue
					}
					is.Equal(ok, destOK)
					if ok {
						is.Equal(to, dest)
					}
				}
			}
		}
	}
}

func TestEncodeFromToRejectsNonMoves(t *testing.T) {
	is := is.New(t)
	_, ok := EncodeFromTo(12, 12)
	is.True(!ok)
	_, ok = EncodeFromTo(0, 26) // (3,2) offset: neither ray nor knight
	is.True(!ok)
}

func TestMaskBits(t *testing.T) {
	is := is.New(t)
	var m LegalityMask
	is.Equal(m.Count(), 0)
	m.Set(0)
	m.Set(4671)
	m.Set(793)
	is.True(m.IsSet(0))
	is.True(m.IsSet(4671))
	is.True(m.IsSet(793))
	is.True(!m.IsSet(792))
	is.Equal(m.Count(), 3)
	m.Clear(793)
	is.True(!m.IsSet(793))
	is.Equal(m.Count(), 2)
}
