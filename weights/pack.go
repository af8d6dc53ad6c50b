package weights

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Pack file layout: "CNPK" magic, u32 little-endian format version,
// u32 network version, u8 requantization shift, then every blob of the
// schedule in order, no padding.

const packMagic = "CNPK"

// PackFormatVersion is the only pack format this build reads.
const PackFormatVersion = 1

const packHeaderSize = 4 + 4 + 4 + 1

// Pack is a fully-read, validated weight pack ready for Install.
type Pack struct {
	Version uint32
	Shift   uint8
	Blobs   [][]byte
}

// ReadPack reads and validates a weight pack. Every blob is length-
// checked against the schedule while reading; a short or oversized
// stream is rejected without partial results.
func ReadPack(r io.Reader) (*Pack, error) {
	header := make([]byte, packHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("reading pack header: %w", err)
	}
	if !bytes.Equal(header[:4], []byte(packMagic)) {
		return nil, fmt.Errorf("bad pack magic %q", header[:4])
	}
	format := binary.LittleEndian.Uint32(header[4:])
	if format != PackFormatVersion {
		return nil, fmt.Errorf("unsupported pack format version %d", format)
	}
	p := &Pack{
		Version: binary.LittleEndian.Uint32(header[8:]),
		Shift:   header[12],
	}
	for _, slot := range Schedule() {
		blob := make([]byte, slot.Length)
		if _, err := io.ReadFull(r, blob); err != nil {
			return nil, fmt.Errorf("reading blob %s: %w", slot.Key, err)
		}
		p.Blobs = append(p.Blobs, blob)
	}
	var trailing [1]byte
	if n, _ := r.Read(trailing[:]); n != 0 {
		return nil, fmt.Errorf("trailing bytes after pack payload")
	}
	return p, nil
}

// WritePack serializes a pack, the inverse of ReadPack. Used by the
// admin tool and tests to assemble installable packs.
func WritePack(w io.Writer, p *Pack) error {
	if len(p.Blobs) != len(Schedule()) {
		return fmt.Errorf("pack has %d blobs, schedule wants %d", len(p.Blobs), len(Schedule()))
	}
	header := make([]byte, packHeaderSize)
	copy(header, packMagic)
	binary.LittleEndian.PutUint32(header[4:], PackFormatVersion)
	binary.LittleEndian.PutUint32(header[8:], p.Version)
	header[12] = p.Shift
	if _, err := w.Write(header); err != nil {
		return err
	}
	for i, slot := range Schedule() {
		if len(p.Blobs[i]) != slot.Length {
			return fmt.Errorf("blob %s: %w (have %d, want %d)",
				slot.Key, ErrBadLength, len(p.Blobs[i]), slot.Length)
		}
		if _, err := w.Write(p.Blobs[i]); err != nil {
			return err
		}
	}
	return nil
}

// EmptyPack builds a pack of all-zero blobs at the given version, with
// the default shift. Useful for tests and for bootstrapping a store.
func EmptyPack(version uint32) *Pack {
	p := &Pack{Version: version, Shift: DefaultShift}
	for _, slot := range Schedule() {
		p.Blobs = append(p.Blobs, make([]byte, slot.Length))
	}
	return p
}
