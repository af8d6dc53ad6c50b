package weights

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const manifestKey = "manifest"

// Snapshot is one installed model version: an immutable view over the
// store. Callers pin one snapshot across a sequence of related
// inferences, so an Install landing mid-sequence is never observed.
type Snapshot struct {
	Version uint32
	Shift   uint8
	store   Store
}

func blobKey(version uint32, key string) string {
	return fmt.Sprintf("v%d/%s", version, key)
}

// Blob fetches one weight blob and validates its exact length against
// the schedule before handing it out.
func (s *Snapshot) Blob(key string) ([]byte, error) {
	want := SlotLength(key)
	if want < 0 {
		return nil, fmt.Errorf("%w: unknown slot %s", ErrNotFound, key)
	}
	blob, err := s.store.Get(blobKey(s.Version, key))
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", key, err)
	}
	if len(blob) != want {
		return nil, fmt.Errorf("blob %s: %w (have %d, want %d)", key, ErrBadLength, len(blob), want)
	}
	return blob, nil
}

// manifest is the installed-model document persisted alongside the
// blobs so a restarted service comes back ready.
type manifest struct {
	Version     uint32    `yaml:"version"`
	Shift       uint8     `yaml:"shift"`
	InstalledAt time.Time `yaml:"installed_at"`
	BlobCount   int       `yaml:"blob_count"`
}

// Registry owns the current snapshot. Install swaps it atomically;
// readers either see the previous complete version or the new one,
// never a half-installed set.
type Registry struct {
	store   Store
	current atomic.Pointer[Snapshot]
}

// NewRegistry wraps a store with an empty (not ready) registry.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Open wraps a store and restores the previously installed snapshot
// from its manifest, if one exists.
func Open(store Store) (*Registry, error) {
	r := NewRegistry(store)
	doc, err := store.Get(manifestKey)
	if errors.Is(err, ErrNotFound) {
		log.Info().Msg("no installed model manifest; registry starts not ready")
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	r.current.Store(&Snapshot{
		Version: m.Version,
		Shift:   m.Shift,
		store:   NewCachingStore(store),
	})
	log.Info().Uint32("version", m.Version).Uint8("shift", m.Shift).
		Msg("restored installed model")
	return r, nil
}

// Install writes every blob of the pack under version-prefixed handles,
// persists the manifest, and only then swaps the snapshot pointer.
func (r *Registry) Install(p *Pack) error {
	sched := Schedule()
	if len(p.Blobs) != len(sched) {
		return fmt.Errorf("pack has %d blobs, schedule wants %d", len(p.Blobs), len(sched))
	}
	start := time.Now()
	for i, slot := range sched {
		if len(p.Blobs[i]) != slot.Length {
			return fmt.Errorf("blob %s: %w (have %d, want %d)",
				slot.Key, ErrBadLength, len(p.Blobs[i]), slot.Length)
		}
		if err := r.store.Put(blobKey(p.Version, slot.Key), p.Blobs[i]); err != nil {
			return fmt.Errorf("storing blob %s: %w", slot.Key, err)
		}
	}
	doc, err := yaml.Marshal(manifest{
		Version:     p.Version,
		Shift:       p.Shift,
		InstalledAt: time.Now().UTC(),
		BlobCount:   len(sched),
	})
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := r.store.Put(manifestKey, doc); err != nil {
		return fmt.Errorf("storing manifest: %w", err)
	}
	r.current.Store(&Snapshot{
		Version: p.Version,
		Shift:   p.Shift,
		store:   NewCachingStore(r.store),
	})
	log.Info().Uint32("version", p.Version).Uint8("shift", p.Shift).
		Int64("install_ms", time.Since(start).Milliseconds()).
		Msg("installed weight pack")
	return nil
}

// Current returns the installed snapshot, or ErrNotReady before the
// first install.
func (r *Registry) Current() (*Snapshot, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap, nil
}

// Ready reports whether a model is installed.
func (r *Registry) Ready() bool {
	return r.current.Load() != nil
}

// Version returns the installed version, or 0 when not ready.
func (r *Registry) Version() uint32 {
	if snap := r.current.Load(); snap != nil {
		return snap.Version
	}
	return 0
}
