package weights

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Verify fetches every blob of the snapshot concurrently and length-
// checks it. Used by the admin tool after an install and at service
// startup to fail fast on a corrupted store.
func Verify(ctx context.Context, snap *Snapshot) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, slot := range Schedule() {
		slot := slot
		g.Go(func() error {
			_, err := snap.Blob(slot.Key)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Debug().Uint32("version", snap.Version).
		Int("blobs", len(Schedule())).
		Msg("verified weight snapshot")
	return nil
}
