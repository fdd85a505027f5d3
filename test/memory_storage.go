package test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/careloop/guardrail/storage"
	"github.com/stretchr/testify/assert"
)

var SimulatedError = errors.New("simulated error")

// ErrorFlagSnippet - A flag whose snippet starts with this marker makes CreateFlag fail, for
// exercising the "persistence failure never alters the verdict" path.
const ErrorFlagSnippet = "!!ERROR"

type MemoryStorage struct {
	t            *testing.T
	lock         sync.Mutex
	flags        map[string]*storage.StoredFlag
	flagOrder    []string
	content      []*storage.StoredContent
	keywordLists map[string]*storage.StoredKeywordList
}

func NewMemoryStorage(t *testing.T) *MemoryStorage {
	return &MemoryStorage{
		t:            t,
		flags:        make(map[string]*storage.StoredFlag),
		flagOrder:    make([]string, 0),
		content:      make([]*storage.StoredContent, 0),
		keywordLists: make(map[string]*storage.StoredKeywordList),
	}
}

func (m *MemoryStorage) Close() error {
	// no-op
	return nil
}

func (m *MemoryStorage) CreateFlag(ctx context.Context, flag *storage.StoredFlag) (string, error) {
	assert.NotNil(m.t, ctx, "context is required")

	if err := flag.Validate(); err != nil {
		return "", err
	}
	if len(flag.TextSnippet) >= len(ErrorFlagSnippet) && flag.TextSnippet[:len(ErrorFlagSnippet)] == ErrorFlagSnippet {
		return "", SimulatedError
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if len(flag.Id) == 0 {
		flag.Id = storage.NextId()
	}
	if len(flag.Action) == 0 {
		flag.Action = storage.ReviewActionPending
	}
	flag.TextSnippet = storage.TruncateSnippet(flag.TextSnippet)
	m.flags[flag.Id] = flag
	m.flagOrder = append(m.flagOrder, flag.Id)
	return flag.Id, nil
}

func (m *MemoryStorage) GetFlag(ctx context.Context, id string) (*storage.StoredFlag, error) {
	assert.NotNil(m.t, ctx, "context is required")

	m.lock.Lock()
	defer m.lock.Unlock()
	return m.flags[id], nil
}

func (m *MemoryStorage) MarkFlagReviewed(ctx context.Context, id string, reviewerId string, action storage.ReviewAction, notes string) error {
	assert.NotNil(m.t, ctx, "context is required")

	m.lock.Lock()
	defer m.lock.Unlock()

	flag, ok := m.flags[id]
	if !ok {
		return fmt.Errorf("flag %s not found", id)
	}
	flag.Action = action
	flag.ReviewedBy = reviewerId
	flag.ReviewedAtMillis = time.Now().UnixMilli()
	flag.ReviewNotes = notes
	return nil
}

func (m *MemoryStorage) ListPendingFlags(ctx context.Context, limit int) ([]*storage.StoredFlag, error) {
	assert.NotNil(m.t, ctx, "context is required")

	m.lock.Lock()
	defer m.lock.Unlock()

	flags := make([]*storage.StoredFlag, 0)
	for _, id := range m.flagOrder {
		flag := m.flags[id]
		if flag.Action != storage.ReviewActionPending {
			continue
		}
		flags = append(flags, flag)
		if limit > 0 && len(flags) >= limit {
			break
		}
	}
	return flags, nil
}

func (m *MemoryStorage) CountPendingFlags(ctx context.Context) (int64, error) {
	assert.NotNil(m.t, ctx, "context is required")

	m.lock.Lock()
	defer m.lock.Unlock()

	count := int64(0)
	for _, flag := range m.flags {
		if flag.Action == storage.ReviewActionPending {
			count++
		}
	}
	return count, nil
}

// AllFlags - Test accessor: every flag in creation order.
func (m *MemoryStorage) AllFlags() []*storage.StoredFlag {
	m.lock.Lock()
	defer m.lock.Unlock()

	flags := make([]*storage.StoredFlag, 0, len(m.flagOrder))
	for _, id := range m.flagOrder {
		flags = append(flags, m.flags[id])
	}
	return flags
}

func (m *MemoryStorage) AddContent(content *storage.StoredContent) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.content = append(m.content, content)
}

func (m *MemoryStorage) GetApprovedContent(ctx context.Context, limit int) ([]*storage.StoredContent, error) {
	assert.NotNil(m.t, ctx, "context is required")

	m.lock.Lock()
	defer m.lock.Unlock()

	sorted := make([]*storage.StoredContent, len(m.content))
	copy(sorted, m.content)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAtMillis > sorted[j].CreatedAtMillis
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (m *MemoryStorage) GetKeywordList(ctx context.Context, name string) (*storage.StoredKeywordList, error) {
	assert.NotNil(m.t, ctx, "context is required")

	m.lock.Lock()
	defer m.lock.Unlock()
	return m.keywordLists[name], nil
}

func (m *MemoryStorage) UpsertKeywordList(ctx context.Context, list *storage.StoredKeywordList) error {
	assert.NotNil(m.t, ctx, "context is required")

	m.lock.Lock()
	defer m.lock.Unlock()
	m.keywordLists[list.Name] = list
	return nil
}
