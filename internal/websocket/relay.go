package websocket

import (
	"context"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// SnapshotSource publishes market snapshots
type SnapshotSource interface {
	Subscribe() (<-chan domain.Snapshot, func())
}

// Relay forwards every published snapshot to the hub as a market:status
// message until ctx is cancelled.
func Relay(ctx context.Context, hub *Hub, source SnapshotSource) {
	snapshots, unsubscribe := source.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			hub.BroadcastStatus(snap.Status())
		}
	}
}
