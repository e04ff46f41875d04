package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

// timeLayout is RFC 3339 with fixed nine-digit fractional seconds.
// Timestamps live in TEXT columns and are compared as strings, so the
// fractional part must not collapse the way RFC3339Nano renders it.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	locks *ownerLocks
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db, locks: newOwnerLocks()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id               TEXT PRIMARY KEY,
		owner_id         TEXT NOT NULL,
		content          TEXT NOT NULL,
		memory_type      TEXT NOT NULL,
		emotional_weight REAL NOT NULL,
		formative_impact TEXT NOT NULL,
		themes           TEXT,
		created_at       TEXT NOT NULL,
		last_recalled_at TEXT,
		recall_count     INTEGER NOT NULL DEFAULT 0,
		age_when_formed  INTEGER,
		location         TEXT,
		related_entities TEXT,
		metadata         TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_owner ON memories(owner_id);
	CREATE INDEX IF NOT EXISTS idx_memories_owner_type ON memories(owner_id, memory_type);
	CREATE INDEX IF NOT EXISTS idx_memories_owner_weight ON memories(owner_id, emotional_weight DESC);

	CREATE TABLE IF NOT EXISTS memory_clusters (
		id                     TEXT PRIMARY KEY,
		owner_id               TEXT NOT NULL,
		theme                  TEXT NOT NULL,
		member_ids             TEXT,
		summary                TEXT,
		emotional_significance REAL NOT NULL DEFAULT 0,
		time_period            TEXT,
		created_at             TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_clusters_owner ON memory_clusters(owner_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, m *model.Memory) bool {
	if m == nil || m.ID == "" || m.OwnerID == "" {
		log.Printf("store: rejecting memory with missing id/owner: %v", model.ErrValidation)
		return false
	}
	m.EmotionalWeight = model.ClampWeight(m.EmotionalWeight)
	if !m.Type.Valid() {
		m.Type = model.TypeDailyEvent
	}
	if m.Impact == "" {
		m.Impact = model.ImpactForWeight(m.EmotionalWeight)
	}
	m.Themes = model.NormalizeThemes(m.Themes)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	themes, _ := json.Marshal(m.Themes)
	entities, _ := json.Marshal(m.RelatedEntities)
	meta, _ := json.Marshal(m.Metadata)

	mu := s.locks.forOwner(m.OwnerID)
	mu.Lock()
	defer mu.Unlock()

	// Upsert keeps created_at and the reinforcement counters of an existing
	// row: memories are append-only apart from recall bookkeeping.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories
			(id, owner_id, content, memory_type, emotional_weight, formative_impact,
			 themes, created_at, last_recalled_at, recall_count, age_when_formed,
			 location, related_entities, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, 0, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			emotional_weight = excluded.emotional_weight,
			formative_impact = excluded.formative_impact,
			themes = excluded.themes,
			age_when_formed = excluded.age_when_formed,
			location = excluded.location,
			related_entities = excluded.related_entities,
			metadata = excluded.metadata`,
		m.ID, m.OwnerID, m.Content, string(m.Type), m.EmotionalWeight, string(m.Impact),
		string(themes), m.CreatedAt.UTC().Format(timeLayout), m.AgeWhenFormed,
		nullable(m.Location), string(entities), string(meta))
	if err != nil {
		log.Printf("store: save %s failed: %v (%v)", m.ID, err, model.ErrStorage)
		return false
	}
	return true
}

func (s *SQLiteStore) GetByID(ctx context.Context, ownerID, id string) (*model.Memory, bool) {
	row := s.db.QueryRowContext(ctx,
		selectMemory+` WHERE owner_id = ? AND id = ?`, ownerID, id)
	m, err := scanMemory(row)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("store: get %s failed: %v", id, err)
		}
		return nil, false
	}
	return m, true
}

func (s *SQLiteStore) Query(ctx context.Context, p QueryParams) []model.Memory {
	if p.Limit <= 0 {
		p.Limit = 10
	}

	var (
		where = []string{"owner_id = ?"}
		args  = []interface{}{p.OwnerID}
	)
	if len(p.Types) > 0 {
		ph := make([]string, len(p.Types))
		for i, t := range p.Types {
			ph[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, "memory_type IN ("+strings.Join(ph, ", ")+")")
	}
	if p.MinWeight > 0 {
		where = append(where, "emotional_weight >= ?")
		args = append(args, p.MinWeight)
	}
	if len(p.Themes) > 0 {
		// Tag matching is a loose substring check over the serialized theme
		// list; any requested theme qualifies.
		likes := make([]string, 0, len(p.Themes))
		for _, th := range p.Themes {
			th = strings.ToLower(strings.TrimSpace(th))
			if th == "" {
				continue
			}
			likes = append(likes, "themes LIKE ?")
			args = append(args, "%"+th+"%")
		}
		if len(likes) > 0 {
			where = append(where, "("+strings.Join(likes, " OR ")+")")
		}
	}

	q := selectMemory + ` WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY emotional_weight DESC, created_at DESC LIMIT ?`
	args = append(args, p.Limit)

	return s.queryMemories(ctx, q, args...)
}

func (s *SQLiteStore) Recent(ctx context.Context, ownerID string, days, limit int) []model.Memory {
	if limit <= 0 {
		limit = 10
	}
	if days <= 0 {
		days = 1
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)
	return s.queryMemories(ctx,
		selectMemory+` WHERE owner_id = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT ?`, ownerID, cutoff, limit)
}

func (s *SQLiteStore) RecentByType(ctx context.Context, ownerID string, t model.MemoryType, limit int) []model.Memory {
	if limit <= 0 {
		limit = 10
	}
	return s.queryMemories(ctx,
		selectMemory+` WHERE owner_id = ? AND memory_type = ?
		 ORDER BY created_at DESC LIMIT ?`, ownerID, string(t), limit)
}

func (s *SQLiteStore) RecordRecall(ctx context.Context, ownerID, id string) {
	mu := s.locks.forOwner(ownerID)
	mu.Lock()
	defer mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE memories
		SET recall_count = recall_count + 1, last_recalled_at = ?
		WHERE owner_id = ? AND id = ?`,
		time.Now().UTC().Format(timeLayout), ownerID, id)
	if err != nil {
		log.Printf("store: record recall %s failed: %v", id, err)
	}
}

func (s *SQLiteStore) CleanupRetention(ctx context.Context, ownerID string, p RetentionPolicy) int {
	if p.MaxAgeDays <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -p.MaxAgeDays).Format(timeLayout)

	mu := s.locks.forOwner(ownerID)
	mu.Lock()
	defer mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM memories
		WHERE owner_id = ? AND created_at < ? AND emotional_weight < ? AND recall_count < ?`,
		ownerID, cutoff, p.WeightBelow, p.RecallBelow)
	if err != nil {
		log.Printf("store: retention cleanup for %s failed: %v", ownerID, err)
		return 0
	}
	n, _ := res.RowsAffected()
	return int(n)
}

func (s *SQLiteStore) AllForOwner(ctx context.Context, ownerID string) []model.Memory {
	return s.queryMemories(ctx,
		selectMemory+` WHERE owner_id = ? ORDER BY created_at ASC`, ownerID)
}

const selectMemory = `
	SELECT id, owner_id, content, memory_type, emotional_weight, formative_impact,
	       themes, created_at, last_recalled_at, recall_count, age_when_formed,
	       location, related_entities, metadata
	FROM memories`

func (s *SQLiteStore) queryMemories(ctx context.Context, q string, args ...interface{}) []model.Memory {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Printf("store: query failed: %v", err)
		return nil
	}
	defer rows.Close()

	var out []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			log.Printf("store: scan failed: %v", err)
			continue
		}
		out = append(out, *m)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(r rowScanner) (*model.Memory, error) {
	var (
		m                      model.Memory
		mtype, impact          string
		themes, entities, meta sql.NullString
		created                string
		recalled, location     sql.NullString
		age                    sql.NullInt64
	)
	if err := r.Scan(&m.ID, &m.OwnerID, &m.Content, &mtype, &m.EmotionalWeight,
		&impact, &themes, &created, &recalled, &m.RecallCount, &age,
		&location, &entities, &meta); err != nil {
		return nil, err
	}

	m.Type = model.MemoryType(mtype)
	m.Impact = model.FormativeImpact(impact)
	m.Location = location.String
	if themes.Valid && themes.String != "" {
		json.Unmarshal([]byte(themes.String), &m.Themes)
	}
	if entities.Valid && entities.String != "" {
		json.Unmarshal([]byte(entities.String), &m.RelatedEntities)
	}
	if meta.Valid && meta.String != "" && meta.String != "null" {
		json.Unmarshal([]byte(meta.String), &m.Metadata)
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		m.CreatedAt = t
	}
	if recalled.Valid {
		if t, err := time.Parse(time.RFC3339Nano, recalled.String); err == nil {
			m.LastRecalledAt = &t
		}
	}
	if age.Valid {
		a := int(age.Int64)
		m.AgeWhenFormed = &a
	}
	return &m, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
