package network

import (
	"fmt"

	"github.com/centaurbot/centaur/qnn"
	"github.com/centaurbot/centaur/weights"
)

// forward runs the fixed trunk topology: stem 3x3 18->24 ReLU, four
// residual blocks of [3x3 24->24 ReLU, 3x3 24->24 linear, residual
// combine], then the 1x1 24->2 ReLU policy head. Each layer fetches
// its own blobs from the snapshot.
func forward(snap *weights.Snapshot, in qnn.Tensor) (qnn.Tensor, error) {
	conv3 := func(t qnn.Tensor, name string, relu bool) (qnn.Tensor, error) {
		w, err := snap.Blob(name + ".w")
		if err != nil {
			return qnn.Tensor{}, err
		}
		b, err := snap.Blob(name + ".b")
		if err != nil {
			return qnn.Tensor{}, err
		}
		return qnn.Conv3x3(t, bytesToInt8(w), b, weights.TrunkChannels, snap.Shift, relu), nil
	}

	t, err := conv3(in, "stem", true)
	if err != nil {
		return qnn.Tensor{}, err
	}
	for blk := 0; blk < weights.ResidualBlocks; blk++ {
		blockIn := t
		t, err = conv3(t, fmt.Sprintf("block%d.c1", blk), true)
		if err != nil {
			return qnn.Tensor{}, err
		}
		t, err = conv3(t, fmt.Sprintf("block%d.c2", blk), false)
		if err != nil {
			return qnn.Tensor{}, err
		}
		t, err = qnn.Residual(t, blockIn)
		if err != nil {
			return qnn.Tensor{}, err
		}
	}

	pw, err := snap.Blob("policy.w")
	if err != nil {
		return qnn.Tensor{}, err
	}
	pb, err := snap.Blob("policy.b")
	if err != nil {
		return qnn.Tensor{}, err
	}
	return qnn.Conv1x1(t, bytesToInt8(pw), pb, weights.PolicyChannels, snap.Shift, true), nil
}

// bytesToInt8 reinterprets a weight blob as int8 values.
func bytesToInt8(b []byte) []int8 {
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}
	return out
}
