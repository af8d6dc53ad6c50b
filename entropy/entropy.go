// Package entropy abstracts the unpredictable-byte source used for
// tie-break seeding. Tests inject a fixed source to pin selections.
package entropy

import "lukechampine.com/frand"

// Source yields unpredictable bytes. It is only consulted when a
// caller supplies no explicit seed.
type Source interface {
	Bytes(n int) []byte
}

type frandSource struct{}

func (frandSource) Bytes(n int) []byte {
	return frand.Bytes(n)
}

// Default returns the production source.
func Default() Source {
	return frandSource{}
}

// Fixed is a deterministic Source that cycles over a fixed byte
// pattern.
type Fixed struct {
	pattern []byte
}

func NewFixed(pattern []byte) *Fixed {
	if len(pattern) == 0 {
		pattern = []byte{0}
	}
	return &Fixed{pattern: append([]byte(nil), pattern...)}
}

func (f *Fixed) Bytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = f.pattern[i%len(f.pattern)]
	}
	return out
}
