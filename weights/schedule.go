package weights

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/centaurbot/centaur/chess"
)

// Network topology constants. The blob-length schedule below is fully
// determined by them.
const (
	InputChannels  = 18
	TrunkChannels  = 24
	PolicyChannels = 2
	ResidualBlocks = 4

	// PolicyLen is the flattened policy head output feeding the final
	// projection.
	PolicyLen = PolicyChannels * 64

	// The fully-connected rows are partitioned into fixed chunks of 191
	// rows each (the last chunk is shorter). Row index = chunk base +
	// offset within chunk = move index; this mapping is a contract with
	// externally distributed weight data and must not change.
	FCRowsPerChunk = 191
	FCChunks       = (chess.NumMoves + FCRowsPerChunk - 1) / FCRowsPerChunk

	// DefaultShift is the requantization shift of the reference
	// training setup. The installed shift travels in the pack header.
	DefaultShift = 6
)

// Slot names one blob of the model and its exact expected length.
type Slot struct {
	Key    string
	Length int
}

var schedule []Slot

func init() {
	add := func(key string, length int) {
		schedule = append(schedule, Slot{Key: key, Length: length})
	}
	add("stem.w", TrunkChannels*InputChannels*9)
	add("stem.b", TrunkChannels*4)
	for blk := 0; blk < ResidualBlocks; blk++ {
		for conv := 1; conv <= 2; conv++ {
			add(fmt.Sprintf("block%d.c%d.w", blk, conv), TrunkChannels*TrunkChannels*9)
			add(fmt.Sprintf("block%d.c%d.b", blk, conv), TrunkChannels*4)
		}
	}
	add("policy.w", PolicyChannels*TrunkChannels)
	add("policy.b", PolicyChannels*4)
	for c := 0; c < FCChunks; c++ {
		add(fmt.Sprintf("fc.c%02d", c), ChunkRows(c)*PolicyLen)
	}
	add("fc.b", chess.NumMoves*4)
}

// Schedule returns every blob slot in pack order.
func Schedule() []Slot {
	return schedule
}

// SlotLength returns the expected byte length for a blob key, or -1 if
// the key is not part of the schedule.
func SlotLength(key string) int {
	for _, s := range schedule {
		if s.Key == key {
			return s.Length
		}
	}
	return -1
}

// ChunkRows returns the number of FC rows held by chunk c.
func ChunkRows(c int) int {
	if c < FCChunks-1 {
		return FCRowsPerChunk
	}
	return chess.NumMoves - (FCChunks-1)*FCRowsPerChunk
}

// PackPayloadSize is the total byte length of all blobs in a pack,
// excluding the header.
func PackPayloadSize() int {
	return lo.SumBy(schedule, func(s Slot) int { return s.Length })
}
