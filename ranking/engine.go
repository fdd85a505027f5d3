package ranking

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/careloop/guardrail/config"
	"github.com/careloop/guardrail/storage"
	"github.com/jonboulle/clockwork"
)

// recencyWindow - Linear decay from full weight at age zero to nothing at this age, clipped at
// zero beyond.
const recencyWindow = 30 * 24 * time.Hour

// popularityDenominator - Engagement saturates at this many weighted interactions.
const popularityDenominator = 1000.0

// likesMultiplier - A like is a stronger relevance signal than a view.
const likesMultiplier = 3

type PreferenceVector struct {
	Topics    []string `json:"topics"`
	Languages []string `json:"languages"`
}

type Weights struct {
	Topic         float64
	Recency       float64
	Popularity    float64
	LanguageBonus float64
	VerifiedBonus float64
}

func WeightsFromInstance(cnf *config.InstanceConfig) *Weights {
	return &Weights{
		Topic:         cnf.RankingTopicWeight,
		Recency:       cnf.RankingRecencyWeight,
		Popularity:    cnf.RankingPopularityWeight,
		LanguageBonus: cnf.RankingLanguageBonus,
		VerifiedBonus: cnf.RankingVerifiedBonus,
	}
}

// scoredContent - Internal only. The score is stripped before the ranked list leaves the engine:
// callers observe ordering, never raw scores.
type scoredContent struct {
	content *storage.StoredContent
	score   float64
}

// Engine - Deterministic feed personalization. Scoring is a pure function of the candidate, the
// preference vector, and the supplied "now"; no randomness, no ambient wall clock.
type Engine struct {
	storage            storage.PersistentStorage
	weights            *Weights
	supersetMultiplier int
	clock              clockwork.Clock
}

func NewEngine(db storage.PersistentStorage, weights *Weights, supersetMultiplier int, clock clockwork.Clock) *Engine {
	if supersetMultiplier < 1 {
		supersetMultiplier = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		storage:            db,
		weights:            weights,
		supersetMultiplier: supersetMultiplier,
		clock:              clock,
	}
}

// Score - Computes the relevance score for a single candidate at the given instant. Exposed for
// tests; production callers only see ordering via Rank.
func (e *Engine) Score(content *storage.StoredContent, prefs *PreferenceVector, now time.Time) float64 {
	score := 0.0

	// Topic overlap: substring relation in either direction, case-insensitive.
	overlap := 0
	typeMatched := false
	for _, topic := range prefs.Topics {
		t := strings.ToLower(topic)
		if len(t) == 0 {
			continue
		}
		for _, tag := range content.Tags {
			g := strings.ToLower(tag)
			if strings.Contains(g, t) || strings.Contains(t, g) {
				overlap++
			}
		}
		if content.Type == topic {
			typeMatched = true
		}
	}
	score += float64(overlap) * e.weights.Topic
	if typeMatched {
		score += e.weights.Topic
	}

	for _, lang := range prefs.Languages {
		if strings.EqualFold(lang, content.Language) {
			score += e.weights.LanguageBonus
			break
		}
	}

	age := now.Sub(time.UnixMilli(content.CreatedAtMillis))
	if age < 0 {
		age = 0
	}
	recency := 1.0 - float64(age)/float64(recencyWindow)
	if recency < 0 {
		recency = 0
	}
	score += recency * e.weights.Recency

	engagement := float64(content.Views+content.Likes*likesMultiplier) / popularityDenominator
	if engagement > 1 {
		engagement = 1
	}
	score += engagement * e.weights.Popularity

	if content.Verified {
		score += e.weights.VerifiedBonus
	}

	return score
}

// Rank - Scores the candidates at a fixed instant and returns at most limit records ordered by
// descending score. The sort is stable: ties keep their original relative order. Scores are not
// exposed.
func (e *Engine) Rank(candidates []*storage.StoredContent, prefs *PreferenceVector, limit int, minScore *float64) []*storage.StoredContent {
	now := e.clock.Now()

	scored := make([]*scoredContent, 0, len(candidates))
	for _, c := range candidates {
		s := e.Score(c, prefs, now)
		if minScore != nil && s < *minScore {
			continue
		}
		scored = append(scored, &scoredContent{content: c, score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	ranked := make([]*storage.StoredContent, len(scored))
	for i, sc := range scored {
		ranked[i] = sc.content
	}
	return ranked
}

// RankForUser - Fetches a superset of approved content (configurable multiplier over the requested
// page size) and ranks it in memory. Scoring can't happen inside the storage query, so the
// superset bounds how much the engine considers.
func (e *Engine) RankForUser(ctx context.Context, prefs *PreferenceVector, limit int, minScore *float64) ([]*storage.StoredContent, error) {
	if limit <= 0 {
		limit = 10
	}
	candidates, err := e.storage.GetApprovedContent(ctx, limit*e.supersetMultiplier)
	if err != nil {
		return nil, err
	}
	return e.Rank(candidates, prefs, limit, minScore), nil
}
