package main

import (
	"errors"
	"log"

	"github.com/careloop/guardrail/config"
	"github.com/careloop/guardrail/generation"
	"github.com/careloop/guardrail/ranking"
	"github.com/careloop/guardrail/storage"
)

func setupGeneration(instanceConfig *config.InstanceConfig) (*generation.Chain, error) {
	providers, err := generation.BuildProviders(instanceConfig)
	if err != nil {
		return nil, errors.Join(errors.New("BuildProviders: failed create"), err)
	}
	chain, err := generation.NewChain(providers, generation.ChainConfigFromInstance(instanceConfig))
	if err != nil {
		return nil, errors.Join(errors.New("NewChain: failed create"), err)
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	log.Printf("Generation chain ready: %v", names)
	return chain, nil
}

func setupRanking(instanceConfig *config.InstanceConfig, db storage.PersistentStorage) *ranking.Engine {
	engine := ranking.NewEngine(db, ranking.WeightsFromInstance(instanceConfig), instanceConfig.RankingSupersetMultiplier, nil)
	log.Printf("Ranking engine ready (superset multiplier %d)", instanceConfig.RankingSupersetMultiplier)
	return engine
}
