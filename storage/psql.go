package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/DavidHuie/gomigrate"
	"github.com/careloop/guardrail/metrics/dbmetrics"
	_ "github.com/lib/pq"
	"golang.org/x/sync/singleflight"
)

type PostgresStorageConnectionConfig struct {
	Uri          string
	MaxOpenConns int
	MaxIdleConns int
}

type PostgresStorageConfig struct {
	Database *PostgresStorageConnectionConfig
	// File path to the directory containing migrations
	MigrationsPath string
}

type PostgresStorage struct {
	db *sql.DB

	contentGroup     *singleflight.Group
	keywordListCache *cache.Cache[string, *StoredKeywordList]

	flagInsert         *sql.Stmt
	flagSelect         *sql.Stmt
	flagReviewUpdate   *sql.Stmt
	flagsPendingSelect *sql.Stmt
	flagsPendingCount  *sql.Stmt
	contentSelect      *sql.Stmt
	keywordListSelect  *sql.Stmt
	keywordListUpsert  *sql.Stmt
}

func NewPostgresStorage(config *PostgresStorageConfig) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.Database.Uri)
	if err != nil {
		return nil, errors.Join(errors.New("failed to open database"), err)
	}
	db.SetMaxOpenConns(config.Database.MaxOpenConns)
	db.SetMaxIdleConns(config.Database.MaxIdleConns)

	s := &PostgresStorage{
		db:               db,
		contentGroup:     new(singleflight.Group),
		keywordListCache: cache.New[string, *StoredKeywordList](cache.WithJanitorInterval[string, *StoredKeywordList](1 * time.Minute)),
	}
	if err = s.prepare(config.MigrationsPath); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to run migrations with path '%s'", config.MigrationsPath), err)
	}
	return s, nil
}

func (s *PostgresStorage) prepare(migrationsDir string) error {
	// Migrate first
	if migrator, err := gomigrate.NewMigratorWithLogger(s.db, gomigrate.Postgres{}, migrationsDir, log.Default()); err != nil {
		return err
	} else {
		if err = migrator.Migrate(); err != nil {
			return err
		}
	}

	// Now set up all the prepared statements
	var err error
	if s.flagInsert, err = s.db.Prepare("INSERT INTO flags (id, content_id, conversation_id, flagged_by, reason, severity, text_snippet, action, detection_method, detection_score, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);"); err != nil {
		return err
	}
	if s.flagSelect, err = s.db.Prepare("SELECT id, content_id, conversation_id, flagged_by, reason, severity, text_snippet, action, detection_method, detection_score, created_at, reviewed_by, reviewed_at, review_notes FROM flags WHERE id = $1;"); err != nil {
		return err
	}
	if s.flagReviewUpdate, err = s.db.Prepare("UPDATE flags SET action = $2, reviewed_by = $3, reviewed_at = $4, review_notes = $5 WHERE id = $1;"); err != nil {
		return err
	}
	if s.flagsPendingSelect, err = s.db.Prepare("SELECT id, content_id, conversation_id, flagged_by, reason, severity, text_snippet, action, detection_method, detection_score, created_at, reviewed_by, reviewed_at, review_notes FROM flags WHERE action = 'pending' ORDER BY created_at DESC LIMIT $1;"); err != nil {
		return err
	}
	if s.flagsPendingCount, err = s.db.Prepare("SELECT COUNT(*) FROM flags WHERE action = 'pending';"); err != nil {
		return err
	}
	if s.contentSelect, err = s.db.Prepare("SELECT content_id, content_type, tags, language, views, likes, verified, created_at FROM content WHERE approved = TRUE ORDER BY created_at DESC LIMIT $1;"); err != nil {
		return err
	}
	if s.keywordListSelect, err = s.db.Prepare("SELECT name, entries FROM keyword_lists WHERE name = $1;"); err != nil {
		return err
	}
	if s.keywordListUpsert, err = s.db.Prepare("INSERT INTO keyword_lists (name, entries) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET entries = $2;"); err != nil {
		return err
	}

	return nil
}

func (s *PostgresStorage) SendNotify(ctx context.Context, channel string, msg string) error {
	t := dbmetrics.StartSelfDatabaseTimer("SendNotify")
	defer t.ObserveDuration()
	_, err := s.db.ExecContext(ctx, "SELECT pg_notify($1, $2);", channel, msg)
	return err
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) CreateFlag(ctx context.Context, flag *StoredFlag) (string, error) {
	t := dbmetrics.StartSelfDatabaseTimer("CreateFlag")
	defer t.ObserveDuration()

	if err := flag.Validate(); err != nil {
		return "", err
	}
	if len(flag.Id) == 0 {
		flag.Id = NextId()
	}
	if len(flag.Action) == 0 {
		flag.Action = ReviewActionPending
	}
	flag.TextSnippet = TruncateSnippet(flag.TextSnippet)

	var score sql.NullFloat64
	if flag.DetectionScore != nil {
		score = sql.NullFloat64{Float64: *flag.DetectionScore, Valid: true}
	}
	_, err := s.flagInsert.ExecContext(ctx, flag.Id, nullIfEmpty(flag.ContentId), nullIfEmpty(flag.ConversationId), string(flag.FlaggedBy), string(flag.Reason), flag.Severity, flag.TextSnippet, string(flag.Action), string(flag.DetectionMethod), score, flag.CreatedAtMillis)
	if err != nil {
		return "", err
	}
	return flag.Id, nil
}

func (s *PostgresStorage) GetFlag(ctx context.Context, id string) (*StoredFlag, error) {
	t := dbmetrics.StartSelfDatabaseTimer("GetFlag")
	defer t.ObserveDuration()

	row := s.flagSelect.QueryRowContext(ctx, id)
	flag, err := scanFlag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return flag, err
}

func (s *PostgresStorage) MarkFlagReviewed(ctx context.Context, id string, reviewerId string, action ReviewAction, notes string) error {
	t := dbmetrics.StartSelfDatabaseTimer("MarkFlagReviewed")
	defer t.ObserveDuration()

	res, err := s.flagReviewUpdate.ExecContext(ctx, id, string(action), reviewerId, time.Now().UnixMilli(), notes)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("flag %s not found", id)
	}
	return nil
}

func (s *PostgresStorage) ListPendingFlags(ctx context.Context, limit int) ([]*StoredFlag, error) {
	t := dbmetrics.StartSelfDatabaseTimer("ListPendingFlags")
	defer t.ObserveDuration()

	rows, err := s.flagsPendingSelect.QueryContext(ctx, limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return make([]*StoredFlag, 0), nil
		}
		return nil, err
	}
	defer rows.Close()

	flags := make([]*StoredFlag, 0)
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		flags = append(flags, flag)
	}
	return flags, rows.Err()
}

func (s *PostgresStorage) CountPendingFlags(ctx context.Context) (int64, error) {
	t := dbmetrics.StartSelfDatabaseTimer("CountPendingFlags")
	defer t.ObserveDuration()

	var count int64
	err := s.flagsPendingCount.QueryRowContext(ctx).Scan(&count)
	return count, err
}

func (s *PostgresStorage) GetApprovedContent(ctx context.Context, limit int) ([]*StoredContent, error) {
	t := dbmetrics.StartSelfDatabaseTimer("GetApprovedContent")
	defer t.ObserveDuration()

	// Concurrent feeds asking for the same superset share one query.
	res, err, _ := s.contentGroup.Do(fmt.Sprintf("approved:%d", limit), func() (interface{}, error) {
		rows, err := s.contentSelect.QueryContext(ctx, limit)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return make([]*StoredContent, 0), nil
			}
			return nil, err
		}
		defer rows.Close()

		content := make([]*StoredContent, 0)
		for rows.Next() {
			c := &StoredContent{}
			var tagsJson []byte
			if err = rows.Scan(&c.ContentId, &c.Type, &tagsJson, &c.Language, &c.Views, &c.Likes, &c.Verified, &c.CreatedAtMillis); err != nil {
				return nil, err
			}
			if len(tagsJson) > 0 {
				if err = json.Unmarshal(tagsJson, &c.Tags); err != nil {
					return nil, err
				}
			}
			content = append(content, c)
		}
		return content, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return res.([]*StoredContent), nil
}

func (s *PostgresStorage) GetKeywordList(ctx context.Context, name string) (*StoredKeywordList, error) {
	t := dbmetrics.StartSelfDatabaseTimer("GetKeywordList")
	defer t.ObserveDuration()

	if cached, ok := s.keywordListCache.Get(name); ok {
		return cached, nil
	}

	row := s.keywordListSelect.QueryRowContext(ctx, name)
	list := &StoredKeywordList{}
	var entriesJson []byte
	err := row.Scan(&list.Name, &entriesJson)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(entriesJson, &list.Entries); err != nil {
		return nil, err
	}

	s.keywordListCache.Set(name, list, cache.WithExpiration(5*time.Minute))
	return list, nil
}

func (s *PostgresStorage) UpsertKeywordList(ctx context.Context, list *StoredKeywordList) error {
	t := dbmetrics.StartSelfDatabaseTimer("UpsertKeywordList")
	defer t.ObserveDuration()

	entriesJson, err := json.Marshal(list.Entries)
	if err != nil {
		return err
	}
	if _, err = s.keywordListUpsert.ExecContext(ctx, list.Name, entriesJson); err != nil {
		return err
	}
	s.keywordListCache.Delete(list.Name)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlag(row rowScanner) (*StoredFlag, error) {
	flag := &StoredFlag{}
	var contentId, conversationId, reviewedBy, reviewNotes sql.NullString
	var score sql.NullFloat64
	var reviewedAt sql.NullInt64
	err := row.Scan(&flag.Id, &contentId, &conversationId, &flag.FlaggedBy, &flag.Reason, &flag.Severity, &flag.TextSnippet, &flag.Action, &flag.DetectionMethod, &score, &flag.CreatedAtMillis, &reviewedBy, &reviewedAt, &reviewNotes)
	if err != nil {
		return nil, err
	}
	flag.ContentId = contentId.String
	flag.ConversationId = conversationId.String
	flag.ReviewedBy = reviewedBy.String
	flag.ReviewedAtMillis = reviewedAt.Int64
	flag.ReviewNotes = reviewNotes.String
	if score.Valid {
		flag.DetectionScore = &score.Float64
	}
	return flag, nil
}

func nullIfEmpty(s string) sql.NullString {
	if len(s) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
