package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/careloop/guardrail/audit"
	"github.com/careloop/guardrail/config"
	"github.com/careloop/guardrail/moderation"
	"github.com/careloop/guardrail/pubsub"
	"github.com/careloop/guardrail/queue"
	"github.com/careloop/guardrail/storage"
)

func setupModeration(instanceConfig *config.InstanceConfig, db storage.PersistentStorage, pubsubClient pubsub.Client, auditQueue *audit.Queue) (*queue.Pool, error) {
	var classifier moderation.Classifier
	var err error
	if instanceConfig.UseRemoteClassifier {
		classifier, err = moderation.NewRemoteClassifier(instanceConfig)
		if err != nil {
			return nil, errors.Join(errors.New("NewRemoteClassifier: failed create"), err)
		}
		log.Printf("Remote classifier enabled (%s)", instanceConfig.ClassifierModelName)
	}

	customList, err := loadCustomList(instanceConfig, db)
	if err != nil {
		return nil, err
	}

	orchestrator := moderation.NewOrchestrator(db, pubsubClient, auditQueue, classifier, customList, nil)
	pool, err := queue.NewPool(&queue.PoolConfig{
		ConcurrentPools: instanceConfig.ModerationPools,
		SizePerPool:     instanceConfig.ModerationPoolSize,
	}, orchestrator)
	if err != nil {
		return nil, errors.Join(errors.New("NewPool: failed create"), err)
	}
	return pool, nil
}

func loadCustomList(instanceConfig *config.InstanceConfig, db storage.PersistentStorage) (*moderation.CustomList, error) {
	if len(instanceConfig.CustomKeywordListName) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stored, err := db.GetKeywordList(ctx, instanceConfig.CustomKeywordListName)
	if err != nil {
		return nil, errors.Join(errors.New("GetKeywordList: failed fetch"), err)
	}
	if stored == nil {
		// A configured-but-missing list is a deployment mistake worth failing loudly on
		return nil, errors.New("custom keyword list " + instanceConfig.CustomKeywordListName + " not found in storage")
	}
	log.Printf("Loaded custom keyword list %q (%d entries)", stored.Name, len(stored.Entries))
	return moderation.NewCustomList(stored.Name, stored.Entries), nil
}
