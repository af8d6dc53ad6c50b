package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/centaurbot/centaur/chess"
	"github.com/centaurbot/centaur/oneply"
)

// Position is the wire form of a board state: twelve hex bitboards
// (white PNBRQK then black PNBRQK), the side to move, the raw castling
// bits, and the en-passant file (-1 when absent).
type Position struct {
	Bitboards [12]string `json:"bitboards"`
	Side      string     `json:"side"`
	Castling  uint8      `json:"castling"`
	EPFile    int8       `json:"ep_file"`
}

func (p *Position) toBoard() (chess.BoardState, error) {
	var b chess.BoardState
	for i, s := range p.Bitboards {
		v, err := strconv.ParseUint(s, 16, 64)
		if err != nil {
			return b, fmt.Errorf("bitboard %d: %w", i, err)
		}
		b.Pieces[i/6][i%6] = v
	}
	switch p.Side {
	case "white":
		b.SideToMove = chess.White
	case "black":
		b.SideToMove = chess.Black
	default:
		return b, fmt.Errorf("bad side %q", p.Side)
	}
	if p.Castling > 15 {
		return b, fmt.Errorf("bad castling bits %d", p.Castling)
	}
	if p.EPFile < -1 || p.EPFile > 7 {
		return b, fmt.Errorf("bad en-passant file %d", p.EPFile)
	}
	b.Castling = p.Castling
	b.EPFile = p.EPFile
	return b, nil
}

// decodeMask parses a base64 legality mask and enforces its exact
// length.
func decodeMask(s string) (*chess.LegalityMask, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	if len(raw) != chess.MaskBytes {
		return nil, fmt.Errorf("mask is %d bytes, want %d", len(raw), chess.MaskBytes)
	}
	var m chess.LegalityMask
	copy(m[:], raw)
	return &m, nil
}

type BestRequest struct {
	Position Position `json:"position"`
	Mask     string   `json:"mask"`
}

type BestResponse struct {
	Move  uint16 `json:"move"`
	Logit int32  `json:"logit"`
}

type TopKRequest struct {
	Position Position `json:"position"`
	Mask     string   `json:"mask"`
	K        int      `json:"k"`
}

type TopKResponse struct {
	Moves []BestResponse `json:"moves"`
}

// AdviseRequest carries the candidate set as parallel arrays; their
// lengths must agree exactly.
type AdviseRequest struct {
	Position       Position   `json:"position"`
	Mask           string     `json:"mask"`
	Moves          []uint16   `json:"moves"`
	Logits         []int32    `json:"logits"`
	Successors     []Position `json:"successors"`
	SuccessorMasks []string   `json:"successor_masks"`
	Alpha          uint8      `json:"alpha"`
	Margin         int32      `json:"margin"`
	Seed           uint64     `json:"seed"`
}

func (r *AdviseRequest) toQuery() (*oneply.Query, error) {
	n := len(r.Moves)
	if len(r.Logits) != n || len(r.Successors) != n || len(r.SuccessorMasks) != n {
		return nil, errors.New("parallel candidate arrays differ in length")
	}
	root, err := r.Position.toBoard()
	if err != nil {
		return nil, err
	}
	mask, err := decodeMask(r.Mask)
	if err != nil {
		return nil, err
	}
	q := &oneply.Query{
		Root:       root,
		RootMask:   *mask,
		Alpha:      r.Alpha,
		RandMargin: r.Margin,
		Seed:       r.Seed,
	}
	for i := 0; i < n; i++ {
		if r.Moves[i] >= chess.NumMoves {
			return nil, fmt.Errorf("candidate %d: move index %d out of range", i, r.Moves[i])
		}
		succ, err := r.Successors[i].toBoard()
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		succMask, err := decodeMask(r.SuccessorMasks[i])
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		q.Candidates = append(q.Candidates, oneply.Candidate{
			Move:          chess.MoveIndex(r.Moves[i]),
			Logit:         r.Logits[i],
			Successor:     succ,
			SuccessorMask: *succMask,
		})
	}
	return q, nil
}

type AdviseResponse struct {
	Move       uint16 `json:"move"`
	Score      int32  `json:"score"`
	Logit      int32  `json:"logit"`
	ReplyLogit int32  `json:"reply_logit"`
	MyCapture  int    `json:"my_capture"`
	OppCapture int    `json:"opp_capture"`
	PoolSize   int    `json:"pool_size"`
	Version    uint32 `json:"version"`
}

type AdviseBatchRequest struct {
	Queries []AdviseRequest `json:"queries"`
}

type AdviseBatchResponse struct {
	Decisions []AdviseResponse `json:"decisions"`
}

type HealthResponse struct {
	Ready   bool   `json:"ready"`
	Version uint32 `json:"version"`
}
