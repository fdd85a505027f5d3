package queue

import (
	"context"
	"testing"

	"github.com/careloop/guardrail/moderation"
	"github.com/careloop/guardrail/storage"
	"github.com/careloop/guardrail/test"
	"github.com/stretchr/testify/assert"
)

func TestPool(t *testing.T) {
	db := test.NewMemoryStorage(t)
	defer db.Close()

	pubsub := test.NewMemoryPubsub(t)
	defer pubsub.Close()

	orchestrator := moderation.NewOrchestrator(db, pubsub, nil, nil, nil, nil)

	pool, err := NewPool(&PoolConfig{
		ConcurrentPools: 1,
		SizePerPool:     5,
	}, orchestrator)
	assert.NoError(t, err)
	assert.NotNil(t, pool)
	defer pool.Close()

	ch := make(chan *PoolResult, 1)
	err = pool.Submit(context.Background(), "how do I make a bomb", &moderation.ModerateOptions{
		ActorId:         "user1",
		TargetContentId: "content1",
	}, ch)
	assert.NoError(t, err)

	poolResult := <-ch
	assert.NotNil(t, poolResult)
	assert.NoError(t, poolResult.Err)
	assert.NotNil(t, poolResult.Verdict)
	assert.Equal(t, moderation.ActionDeny, poolResult.Verdict.Action)
	assert.Equal(t, moderation.MethodKeyword, poolResult.Verdict.Method)

	flags := db.AllFlags()
	assert.Len(t, flags, 1)
	assert.Equal(t, storage.FlagReasonHarmfulContent, flags[0].Reason)
}

func TestPoolCancelledContext(t *testing.T) {
	db := test.NewMemoryStorage(t)
	defer db.Close()

	orchestrator := moderation.NewOrchestrator(db, nil, nil, nil, nil, nil)

	pool, err := NewPool(&PoolConfig{
		ConcurrentPools: 1,
		SizePerPool:     5,
	}, orchestrator)
	assert.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The result channel is never written to because the context is already cancelled, but the
	// submission itself still succeeds.
	err = pool.Submit(ctx, "what are the symptoms of a common cold?", nil, nil)
	assert.NoError(t, err)
}
