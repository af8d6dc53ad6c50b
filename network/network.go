package network

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/centaurbot/centaur/chess"
	"github.com/centaurbot/centaur/weights"
)

// Network is the inference facade. It is stateless apart from the
// registry handle: every call is a pure function of its inputs and the
// installed snapshot, so concurrent calls need no coordination.
type Network struct {
	reg *weights.Registry
}

func New(reg *weights.Registry) *Network {
	return &Network{reg: reg}
}

// Snapshot pins the currently installed model so a sequence of related
// inferences all run against one version, even if an install lands
// between them.
func (n *Network) Snapshot() (*weights.Snapshot, error) {
	return n.reg.Current()
}

// LogitsAt runs the full pipeline (encode, trunk, projection) against a
// pinned snapshot and returns all 4672 move logits.
func (n *Network) LogitsAt(snap *weights.Snapshot, b *chess.BoardState) ([]int32, error) {
	start := time.Now()
	policy, err := forward(snap, Encode(b))
	if err != nil {
		return nil, err
	}
	logits, err := projectLogits(snap, policy)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int64("infer_us", time.Since(start).Microseconds()).
		Uint32("version", snap.Version).
		Msg("ran inference")
	return logits, nil
}

// Logits runs the full pipeline against the current snapshot and
// returns all 4672 move logits plus the snapshot version they were
// computed against.
func (n *Network) Logits(b *chess.BoardState) ([]int32, uint32, error) {
	snap, err := n.reg.Current()
	if err != nil {
		return nil, 0, err
	}
	logits, err := n.LogitsAt(snap, b)
	if err != nil {
		return nil, 0, err
	}
	return logits, snap.Version, nil
}

// InferBest returns the legal move with the greatest logit.
func (n *Network) InferBest(b *chess.BoardState, mask *chess.LegalityMask) (chess.MoveIndex, int32, error) {
	logits, _, err := n.Logits(b)
	if err != nil {
		return 0, 0, err
	}
	return ArgmaxMasked(logits, mask)
}

// InferTopK returns the k best legal moves in descending logit order,
// padded with sentinel entries when fewer than k are legal.
func (n *Network) InferTopK(b *chess.BoardState, mask *chess.LegalityMask, k int) ([]MoveLogit, error) {
	logits, _, err := n.Logits(b)
	if err != nil {
		return nil, err
	}
	return TopKMasked(logits, mask, k)
}
