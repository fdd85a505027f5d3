package main

import (
	"crypto/rand"
	"log"
	"math/big"
	"time"

	"github.com/careloop/guardrail/storage"
	"github.com/careloop/guardrail/tasks"
	"github.com/go-co-op/gocron/v2"
)

func setupScheduler(scheduler gocron.Scheduler, db storage.PersistentStorage) error {
	// Slight randomness so multiple instances sharing a database don't all query at once.
	gaugeTask, err := scheduler.NewJob(gocron.DurationRandomJob(50*time.Second, 70*time.Second), gocron.NewTask(tasks.RefreshPendingFlagsGauge, db), gocron.WithName("RefreshPendingFlagsGauge"))
	if err != nil {
		return err
	}

	log.Printf("Scheduled pending-flags gauge refresh every ~minute: %s", gaugeTask.ID())
	runTaskNowish(gaugeTask)

	return nil
}

// runTaskNowish - Runs a gocron task as quickly as possible, with a small delay to avoid overlapping calls. The task will
// wait asynchronously to run, so this will return immediately regardless of whether the task is running.
func runTaskNowish(task gocron.Job) {
	go func() {
		// we don't *need* a cryptographic random number here, but security audits might complain if we don't
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			log.Printf("Non-fatal error generating jitter for task %s: %v", task.ID(), err)
			n = big.NewInt(4) // https://xkcd.com/221
		}
		<-time.After(time.Duration(n.Int64()) * time.Second)
		if err = task.RunNow(); err != nil {
			log.Printf("Non-fatal error trying to run task %s immediately: %v", task.ID(), err)
		}
	}()
}
