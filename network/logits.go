package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/centaurbot/centaur/chess"
	"github.com/centaurbot/centaur/qnn"
	"github.com/centaurbot/centaur/weights"
)

var (
	// ErrNoLegalMoves reports a mask with no bits set; callers must
	// guarantee at least one legal move.
	ErrNoLegalMoves = errors.New("network: mask has no legal moves")
	// ErrBadK reports a non-positive k for a top-K query.
	ErrBadK = errors.New("network: k must be at least 1")
)

// SentinelLogit fills trailing top-K slots when fewer than k moves are
// legal. Callers treat sentinel entries as absent.
const SentinelLogit = math.MinInt32

// MoveLogit pairs a move index with its raw policy logit.
type MoveLogit struct {
	Move  chess.MoveIndex `json:"move"`
	Logit int32           `json:"logit"`
}

// projectLogits computes all 4672 move logits from the flattened
// policy tensor: logit[i] = sum_j policy[j]*row[i][j] + bias[i], with
// no requantization on this final layer. Weight rows arrive in fixed
// chunks processed in index order, so chunk base + offset maps 1:1 to
// the move index.
func projectLogits(snap *weights.Snapshot, policy qnn.Tensor) ([]int32, error) {
	if len(policy.Data) != weights.PolicyLen {
		return nil, fmt.Errorf("network: policy tensor length %d, want %d",
			len(policy.Data), weights.PolicyLen)
	}
	bias, err := snap.Blob("fc.b")
	if err != nil {
		return nil, err
	}
	logits := make([]int32, chess.NumMoves)
	row := 0
	for c := 0; c < weights.FCChunks; c++ {
		chunk, err := snap.Blob(fmt.Sprintf("fc.c%02d", c))
		if err != nil {
			return nil, err
		}
		for off := 0; off < weights.ChunkRows(c); off++ {
			base := off * weights.PolicyLen
			acc := int32(binary.LittleEndian.Uint32(bias[row*4:]))
			for j := 0; j < weights.PolicyLen; j++ {
				acc += qnn.MulAcc(policy.Data[j], int8(chunk[base+j]))
			}
			logits[row] = acc
			row++
		}
	}
	return logits, nil
}

// ArgmaxMasked returns the legal move with the strictly greatest
// logit. Ties keep the first-encountered, lowest move index.
func ArgmaxMasked(logits []int32, mask *chess.LegalityMask) (chess.MoveIndex, int32, error) {
	best := chess.MoveIndex(0)
	bestLogit := int32(SentinelLogit)
	found := false
	for i := 0; i < chess.NumMoves; i++ {
		idx := chess.MoveIndex(i)
		if !mask.IsSet(idx) {
			continue
		}
		if !found || logits[i] > bestLogit {
			best, bestLogit, found = idx, logits[i], true
		}
	}
	if !found {
		return 0, 0, ErrNoLegalMoves
	}
	return best, bestLogit, nil
}

// TopKMasked keeps a sorted size-k insertion buffer over the legal
// moves: a candidate lands at the first slot whose logit it strictly
// exceeds, the tail shifts down, and the last entry falls off. When
// fewer than k moves are legal, trailing slots hold the sentinel logit
// and move index 0.
func TopKMasked(logits []int32, mask *chess.LegalityMask, k int) ([]MoveLogit, error) {
	if k < 1 {
		return nil, ErrBadK
	}
	out := make([]MoveLogit, k)
	for i := range out {
		out[i] = MoveLogit{Move: 0, Logit: SentinelLogit}
	}
	for i := 0; i < chess.NumMoves; i++ {
		idx := chess.MoveIndex(i)
		if !mask.IsSet(idx) {
			continue
		}
		for slot := 0; slot < k; slot++ {
			if logits[i] > out[slot].Logit {
				copy(out[slot+1:], out[slot:k-1])
				out[slot] = MoveLogit{Move: idx, Logit: logits[i]}
				break
			}
		}
	}
	return out, nil
}
