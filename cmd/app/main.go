package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/careloop/guardrail/audit"
	"github.com/careloop/guardrail/config"
	"github.com/careloop/guardrail/logging" // import this for side effects if this isn't needed directly anymore
	"github.com/careloop/guardrail/pubsub"
	"github.com/careloop/guardrail/storage"
	"github.com/careloop/guardrail/tasks"
	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var err error
	var db storage.PersistentStorage
	var pubsubClient pubsub.Client

	instanceConfig, err := config.NewInstanceConfig()
	if err != nil {
		log.Fatal(err)
	}

	// Start pprof early if configured so startup can be debugged (if needed)
	if instanceConfig.PprofBind != "" {
		go func() {
			// pprof binds itself to the default HTTP server, so we just have to start that server.
			log.Println("Starting pprof server on", instanceConfig.PprofBind)
			log.Fatal(http.ListenAndServe(instanceConfig.PprofBind, nil))
		}()
	}

	if db, pubsubClient, err = setupDataHandlers(instanceConfig); err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	defer pubsubClient.Close()

	auditQueue, err := audit.NewQueue(instanceConfig.WebhookPoolSize, instanceConfig.AuditWebhookUrl, instanceConfig.AllowedWebhookDomains)
	if err != nil {
		log.Fatal(err)
	}
	defer auditQueue.Close()

	pool, err := setupModeration(instanceConfig, db, pubsubClient, auditQueue)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	// The chain and ranking engine are owned by the embedding product layer; building them here
	// validates the deployment's configuration before we report healthy.
	if _, err = setupGeneration(instanceConfig); err != nil {
		log.Fatal(err)
	}
	setupRanking(instanceConfig, db)

	// Keep the pending-flags gauge fresh between scheduled refreshes
	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	go tasks.WatchFlagNotifications(watchCtx, pubsubClient, db)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: instanceConfig.MetricsBind, Handler: metricsMux}

	var wg sync.WaitGroup
	stopping := false
	startServer := func(server *http.Server) {
		err := server.ListenAndServe()
		if err != nil && (!stopping && !errors.Is(err, http.ErrServerClosed)) {
			log.Fatal(err)
		}
	}
	stopServer := func(server *http.Server, ctx context.Context) {
		defer wg.Done()
		err := server.Shutdown(ctx)
		if err != nil {
			log.Fatal(err)
		}
	}
	wg.Add(1)
	go startServer(metricsServer)

	// Schedule tasks now that we're mostly started up
	scheduler, err := gocron.NewScheduler(gocron.WithLogger(&logging.CronLogger{})) // TODO: Support metrics too (gocron "Monitors")
	if err != nil {
		log.Fatal(err)
	}
	scheduler.Start() // start immediately so we can force jobs to run immediately too
	err = setupScheduler(scheduler, db)
	if err != nil {
		log.Fatal(err)
	}

	// Wait for a stop signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer close(stop)
	<-stop
	stopping = true

	log.Println("Stopping...")
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	go func() {
		cancel()
	}()
	if err = scheduler.StopJobs(); err != nil {
		log.Printf("Failed to stop scheduler: %v", err)
	}
	go stopServer(metricsServer, ctx)
	wg.Wait()
}
