package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/careloop/guardrail/metrics"
	"github.com/careloop/guardrail/pubsub"
	"github.com/careloop/guardrail/storage"
	"github.com/careloop/guardrail/test"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRefreshPendingFlagsGauge(t *testing.T) {
	db := test.NewMemoryStorage(t)
	defer db.Close()

	_, err := db.CreateFlag(context.Background(), &storage.StoredFlag{
		ContentId: "content1",
		Reason:    storage.FlagReasonSpam,
	})
	assert.NoError(t, err)
	_, err = db.CreateFlag(context.Background(), &storage.StoredFlag{
		ConversationId: "conv1",
		Reason:         storage.FlagReasonOther,
	})
	assert.NoError(t, err)

	RefreshPendingFlagsGauge(db)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PendingFlags))
}

func TestWatchFlagNotifications(t *testing.T) {
	db := test.NewMemoryStorage(t)
	defer db.Close()

	ps := test.NewMemoryPubsub(t)
	defer ps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		WatchFlagNotifications(ctx, ps, db)
		close(done)
	}()

	// Give the watcher a moment to subscribe, then create a flag and announce it
	time.Sleep(50 * time.Millisecond)
	id, err := db.CreateFlag(context.Background(), &storage.StoredFlag{
		ContentId: "content1",
		Reason:    storage.FlagReasonSpam,
	})
	assert.NoError(t, err)
	assert.NoError(t, ps.Publish(context.Background(), pubsub.FlagsTopic, id))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.PendingFlags) >= 1.0
	}, 5*time.Second, 10*time.Millisecond)

	// The closing sentinel ends the watch
	assert.NoError(t, ps.Close())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on close")
	}
}
