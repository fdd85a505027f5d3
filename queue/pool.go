package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/careloop/guardrail/metrics"
	"github.com/careloop/guardrail/moderation"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	typedsf "github.com/t2bot/go-typed-singleflight"
)

type PoolResult struct {
	// Nil if there was an error. Otherwise, the pipeline's verdict.
	Verdict *moderation.Verdict

	// The error processing the text, if any.
	Err error
}

type PoolConfig struct {
	ConcurrentPools int
	SizePerPool     int
}

// Pool - A bounded worker pool in front of the moderation orchestrator. Identical texts submitted
// concurrently are deduplicated so the pipeline (and the remote classifier behind it) runs once.
type Pool struct {
	orchestrator *moderation.Orchestrator
	internal     *ants.MultiPool
	sf           *typedsf.Group[*moderation.Verdict] // keyed by text hash
}

func NewPool(config *PoolConfig, orchestrator *moderation.Orchestrator) (*Pool, error) {
	internal, err := ants.NewMultiPool(config.ConcurrentPools, config.SizePerPool, ants.RoundRobin, ants.WithOptions(ants.Options{
		ExpiryDuration:   1 * time.Minute,
		PreAlloc:         false,
		MaxBlockingTasks: 0, // no limit on submissions
		Nonblocking:      false,
		// If we don't supply a panic handler then ants will print a stack trace for us
		//PanicHandler: func(err interface{}) {
		//	log.Println("Panic in pool:", err)
		//},
		Logger:       log.Default(),
		DisablePurge: false,
	}))
	if err != nil {
		return nil, err
	}
	return &Pool{
		orchestrator: orchestrator,
		internal:     internal,
		sf:           new(typedsf.Group[*moderation.Verdict]),
	}, nil
}

func (p *Pool) Close() error {
	return p.internal.ReleaseTimeout(5 * time.Second)
}

// Submit asks the pool to run the moderation pipeline on the given text. If `waitCh` is non-nil, it
// will be called with the result upon completion or error. The `waitCh` is not called if there was
// a submission error - that is instead returned from Submit.
func (p *Pool) Submit(ctx context.Context, text string, opts *moderation.ModerateOptions, waitCh chan<- *PoolResult) error {
	t := metrics.StartQueueTimer()
	key := textKey(text)

	// Note: waitCh might be nil or unbuffered, so we spawn this in a goroutine later on.
	notifyResult := func(verdict *moderation.Verdict, err error) {
		if err == nil {
			t.ObserveDurationWithExemplar(prometheus.Labels{"waitedUntil": "result"})
		} else if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			t.ObserveDurationWithExemplar(prometheus.Labels{"waitedUntil": "timeout"})
		} else {
			t.ObserveDurationWithExemplar(prometheus.Labels{"waitedUntil": "error"})
		}

		if waitCh != nil {
			res := &PoolResult{
				Verdict: verdict,
				Err:     err,
			}

			// First, check to see if the channel is likely going to be closed already
			if err := ctx.Err(); err != nil {
				log.Printf("[%s] Result channel closed, not sending result (%+v): %s", key, res, err)
				return
			}

			// Consider the context in our delivery of the result
			select {
			case waitCh <- res:
			case <-ctx.Done():
				log.Printf("[%s] Result channel closed, not sending result (%+v): %s", key, res, ctx.Err())
			}
		}
	}

	workFn := func() {
		// If the context is cancelled, save CPU and don't bother checking
		if err := ctx.Err(); err != nil {
			go notifyResult(nil, err)
			log.Printf("Not moderating %s because context was cancelled/timed out", key)
			return
		}

		// Ask the singleflight to do the work (deduplicating identical texts)
		verdict, err, _ := p.sf.Do(key, func() (*moderation.Verdict, error) {
			// We create a new context for two reasons:
			// 1. The singleflight might span multiple requests, and we don't want to tie results for all
			//    requests to the first (maybe cancelled) request.
			// 2. We want to ensure that we continue processing in the background, even if the
			//    request times out or is cancelled.
			modCtx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()

			return p.orchestrator.Moderate(modCtx, text, opts), nil
		})
		if verdict == nil && err == nil {
			// "should never happen"
			err = errors.New("nil result")
		}
		go notifyResult(verdict, err)
	}

	return p.internal.Submit(workFn)
}

func textKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
