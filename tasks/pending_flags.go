package tasks

import (
	"context"
	"log"
	"time"

	"github.com/careloop/guardrail/metrics"
	"github.com/careloop/guardrail/pubsub"
	"github.com/careloop/guardrail/storage"
)

// RefreshPendingFlagsGauge - Counts flags awaiting review and updates the gauge. Scheduled
// periodically; errors are logged and the stale gauge value survives until the next run.
func RefreshPendingFlagsGauge(db storage.PersistentStorage) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := db.CountPendingFlags(ctx)
	if err != nil {
		log.Printf("Non-fatal error counting pending flags: %s", err)
		return
	}
	metrics.SetPendingFlags(count)
}

// WatchFlagNotifications - Refreshes the pending-flags gauge whenever a flag creation is announced
// on the flags topic, so the gauge tracks reality between scheduled refreshes. Blocks until the
// subscription closes.
func WatchFlagNotifications(ctx context.Context, ps pubsub.Client, db storage.PersistentStorage) {
	ch, err := ps.Subscribe(ctx, pubsub.FlagsTopic)
	if err != nil {
		log.Printf("Non-fatal error subscribing to flag notifications: %s", err)
		return
	}
	defer func() {
		_ = ps.Unsubscribe(ctx, ch)
	}()

	for {
		select {
		case val, ok := <-ch:
			if !ok || val == pubsub.ClosingValue {
				log.Println("Flag notification subscription closed")
				return
			}
			RefreshPendingFlagsGauge(db)
		case <-ctx.Done():
			return
		}
	}
}
