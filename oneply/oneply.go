// Package oneply is the search orchestrator: it triages a caller-
// supplied candidate set by fast material-adjusted scores, refines the
// top three with a full opponent-reply inference each, and settles
// near-ties with a seeded draw. Total extra work per call is bounded:
// at most three inferences beyond the fast scores.
package oneply

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/centaurbot/centaur/chess"
	"github.com/centaurbot/centaur/entropy"
	"github.com/centaurbot/centaur/material"
	"github.com/centaurbot/centaur/network"
)

// MaxCandidates bounds the candidate set per call.
const MaxCandidates = 32

const (
	myCaptureWeight  = 64
	oppCaptureWeight = 48
	triageSlots      = 3
)

var (
	ErrNoCandidates      = errors.New("oneply: empty candidate set")
	ErrTooManyCandidates = errors.New("oneply: more than 32 candidates")
	ErrMoveNotLegal      = errors.New("oneply: candidate move not in root mask")
)

// Candidate is one caller-proposed move with its prior logit and the
// successor position that results from playing it. The core never
// applies moves itself.
type Candidate struct {
	Move          chess.MoveIndex
	Logit         int32
	Successor     chess.BoardState
	SuccessorMask chess.LegalityMask
}

// Query is one advise call.
type Query struct {
	Root       chess.BoardState
	RootMask   chess.LegalityMask
	Candidates []Candidate
	// Alpha scales the opponent-reply penalty, 0..255.
	Alpha uint8
	// RandMargin widens the tie-break pool below the best refined
	// score. Negative values are clamped to 0.
	RandMargin int32
	// Seed drives the tie-break directly when nonzero; 0 means derive
	// a seed from the entropy source, bound to the pool's move list.
	Seed uint64
}

// Decision is the advise result record.
type Decision struct {
	Move       chess.MoveIndex
	Score      int32
	Logit      int32
	ReplyLogit int32
	MyCapture  int
	OppCapture int
	PoolSize   int
	Version    uint32
}

// Advisor runs one-ply refinement on top of a network.
type Advisor struct {
	net *network.Network
	src entropy.Source
}

func NewAdvisor(net *network.Network, src entropy.Source) *Advisor {
	if src == nil {
		src = entropy.Default()
	}
	return &Advisor{net: net, src: src}
}

// slot is one triage entry. Fixed capacity keeps refinement work and
// allocation bounded regardless of candidate count.
type slot struct {
	cand       int
	score      int32
	replyLogit int32
	refined    int32
}

// Advise validates the query, fast-scores every candidate, refines the
// top three with one opponent inference each, and picks from the pool
// of near-best refined scores.
func (a *Advisor) Advise(q *Query) (*Decision, error) {
	if len(q.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if len(q.Candidates) > MaxCandidates {
		return nil, ErrTooManyCandidates
	}
	for i := range q.Candidates {
		if !q.RootMask.IsSet(q.Candidates[i].Move) {
			return nil, ErrMoveNotLegal
		}
	}

	// Fast score every candidate and keep the top three slots via
	// cascading insertion. Strict greater-than, so earlier candidates
	// win ties.
	var slots [triageSlots]slot
	used := 0
	var myCaps, oppCaps [MaxCandidates]int
	for i := range q.Candidates {
		c := &q.Candidates[i]
		myCaps[i] = material.CaptureValueFromDelta(&q.Root, &c.Successor)
		oppCaps[i] = material.MaxCaptureValue(&c.Successor, &c.SuccessorMask)
		score := clampInt32(int64(c.Logit) +
			int64(myCaps[i])*myCaptureWeight -
			int64(oppCaps[i])*oppCaptureWeight)

		for s := 0; s < triageSlots; s++ {
			if s < used && score <= slots[s].score {
				continue
			}
			copy(slots[s+1:], slots[s:triageSlots-1])
			slots[s] = slot{cand: i, score: score}
			if used < triageSlots {
				used++
			}
			break
		}
	}

	// Refine the surviving slots: one full inference on each successor
	// position yields the opponent's best reply logit. One snapshot
	// serves every refinement, so all three scores come from the same
	// model version.
	snap, err := a.net.Snapshot()
	if err != nil {
		return nil, err
	}
	for s := 0; s < used; s++ {
		c := &q.Candidates[slots[s].cand]
		if c.SuccessorMask.Count() == 0 {
			// Mate or stalemate: the opponent has no reply, so there is
			// nothing to charge and no inference to run.
			slots[s].refined = slots[s].score
			continue
		}
		logits, err := a.net.LogitsAt(snap, &c.Successor)
		if err != nil {
			return nil, err
		}
		_, replyLogit, err := network.ArgmaxMasked(logits, &c.SuccessorMask)
		if err != nil {
			return nil, err
		}
		slots[s].replyLogit = replyLogit
		penalty := int64(replyLogit)
		if penalty < 0 {
			penalty = 0
		}
		slots[s].refined = clampInt32(int64(slots[s].score) - int64(q.Alpha)*penalty/255)
	}

	bestScore := slots[0].refined
	for s := 1; s < used; s++ {
		if slots[s].refined > bestScore {
			bestScore = slots[s].refined
		}
	}
	margin := q.RandMargin
	if margin < 0 {
		margin = 0
	}
	threshold := int64(bestScore) - int64(margin)

	// The pool keeps slot order, which is descending fast score.
	var pool [triageSlots]int
	poolSize := 0
	for s := 0; s < used; s++ {
		if int64(slots[s].refined) >= threshold {
			pool[poolSize] = s
			poolSize++
		}
	}
	picked := 0
	if poolSize == 0 {
		// Unreachable given bestScore's definition; fall back to the
		// top slot.
		pool[0] = 0
		poolSize = 1
	}
	if poolSize > 1 {
		seed := q.Seed
		if seed == 0 {
			var poolMoves [triageSlots]chess.MoveIndex
			for i := 0; i < poolSize; i++ {
				poolMoves[i] = q.Candidates[slots[pool[i]].cand].Move
			}
			seed = a.deriveSeed(poolMoves[:poolSize])
		}
		picked = int(seed % uint64(poolSize))
	}

	chosen := slots[pool[picked]]
	c := &q.Candidates[chosen.cand]
	d := &Decision{
		Move:       c.Move,
		Score:      chosen.refined,
		Logit:      c.Logit,
		ReplyLogit: chosen.replyLogit,
		MyCapture:  myCaps[chosen.cand],
		OppCapture: oppCaps[chosen.cand],
		PoolSize:   poolSize,
		Version:    snap.Version,
	}
	log.Debug().
		Int("candidates", len(q.Candidates)).
		Int("pool", poolSize).
		Uint16("move", uint16(d.Move)).
		Int32("score", d.Score).
		Int32("reply_logit", d.ReplyLogit).
		Msg("one-ply decision")
	return d, nil
}

// clampInt32 saturates a score computed in int64. Caller-supplied
// logits span the full int32 range, so the capture and penalty terms
// can push past it.
func clampInt32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// deriveSeed binds an entropy draw to this exact pool: the hash covers
// the entropy bytes and the pool's move indexes, so a seed cannot be
// replayed against a different arbitration.
func (a *Advisor) deriveSeed(poolMoves []chess.MoveIndex) uint64 {
	h := xxhash.New()
	h.Write(a.src.Bytes(16))
	var buf [2]byte
	for _, m := range poolMoves {
		binary.LittleEndian.PutUint16(buf[:], uint16(m))
		h.Write(buf[:])
	}
	return h.Sum64()
}
