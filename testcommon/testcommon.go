// Package testcommon builds deterministic weight fixtures for tests.
package testcommon

import (
	"encoding/binary"

	"github.com/centaurbot/centaur/chess"
	"github.com/centaurbot/centaur/network"
	"github.com/centaurbot/centaur/weights"
)

// BiasOnlyPack returns a pack whose conv layers are all zero, so the
// policy tensor is zero and every move logit equals its final-layer
// bias. logits maps move index to the desired logit.
func BiasOnlyPack(version uint32, logits map[chess.MoveIndex]int32) *weights.Pack {
	p := weights.EmptyPack(version)
	bias := p.Blobs[len(p.Blobs)-1] // fc.b is the last slot
	for move, logit := range logits {
		binary.LittleEndian.PutUint32(bias[int(move)*4:], uint32(logit))
	}
	return p
}

// ReadyNetwork installs a bias-only pack into a fresh in-memory
// registry and returns it with a network on top.
func ReadyNetwork(version uint32, logits map[chess.MoveIndex]int32) (*weights.Registry, *network.Network, error) {
	reg := weights.NewRegistry(weights.NewMemStore())
	if err := reg.Install(BiasOnlyPack(version, logits)); err != nil {
		return nil, nil, err
	}
	return reg, network.New(reg), nil
}

// StartingPosition builds the standard initial chess setup with all
// castling rights and no en-passant file.
func StartingPosition() chess.BoardState {
	var b chess.BoardState
	b.Pieces[chess.White][chess.Pawn] = 0xFF00
	b.Pieces[chess.White][chess.Knight] = 1<<1 | 1<<6
	b.Pieces[chess.White][chess.Bishop] = 1<<2 | 1<<5
	b.Pieces[chess.White][chess.Rook] = 1 | 1<<7
	b.Pieces[chess.White][chess.Queen] = 1 << 3
	b.Pieces[chess.White][chess.King] = 1 << 4
	b.Pieces[chess.Black][chess.Pawn] = 0xFF << 48
	b.Pieces[chess.Black][chess.Knight] = 1<<57 | 1<<62
	b.Pieces[chess.Black][chess.Bishop] = 1<<58 | 1<<61
	b.Pieces[chess.Black][chess.Rook] = 1<<56 | 1<<63
	b.Pieces[chess.Black][chess.Queen] = 1 << 59
	b.Pieces[chess.Black][chess.King] = 1 << 60
	b.SideToMove = chess.White
	b.Castling = chess.WhiteKingSide | chess.WhiteQueenSide |
		chess.BlackKingSide | chess.BlackQueenSide
	b.EPFile = -1
	return b
}
