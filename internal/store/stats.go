package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

// Statistics aggregates one owner's memory set. It never fails: on an empty
// store or a query error the zero-valued view is returned.
func (s *SQLiteStore) Statistics(ctx context.Context, ownerID string) model.Statistics {
	st := model.Statistics{ByType: map[model.MemoryType]int{}}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(emotional_weight), 0)
		 FROM memories WHERE owner_id = ?`, ownerID).
		Scan(&st.Total, &st.AvgWeight)
	if err != nil || st.Total == 0 {
		if err != nil {
			log.Printf("store: statistics for %s failed: %v", ownerID, err)
		}
		return st
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT memory_type, COUNT(*) FROM memories
		 WHERE owner_id = ? GROUP BY memory_type`, ownerID)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var mt string
			var n int
			if rows.Scan(&mt, &n) == nil {
				st.ByType[model.MemoryType(mt)] = n
			}
		}
	}

	row := s.db.QueryRowContext(ctx,
		selectMemory+` WHERE owner_id = ? AND recall_count > 0
		 ORDER BY recall_count DESC, created_at DESC LIMIT 1`, ownerID)
	if m, err := scanMemory(row); err == nil {
		st.MostRecalled = m
	}

	return st
}

func (s *SQLiteStore) SaveCluster(ctx context.Context, c *model.MemoryCluster) bool {
	if c == nil || c.ID == "" || c.OwnerID == "" {
		return false
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	members, _ := json.Marshal(c.MemberIDs)

	mu := s.locks.forOwner(c.OwnerID)
	mu.Lock()
	defer mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory_clusters
			(id, owner_id, theme, member_ids, summary, emotional_significance, time_period, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			member_ids = excluded.member_ids,
			summary = excluded.summary,
			emotional_significance = excluded.emotional_significance,
			time_period = excluded.time_period`,
		c.ID, c.OwnerID, c.Theme, string(members), c.Summary,
		c.EmotionalSignificance, c.TimePeriod, c.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		log.Printf("store: save cluster %s failed: %v", c.ID, err)
		return false
	}
	return true
}

func (s *SQLiteStore) ClustersFor(ctx context.Context, ownerID string, limit int) []model.MemoryCluster {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, theme, member_ids, summary, emotional_significance, time_period, created_at
		FROM memory_clusters WHERE owner_id = ?
		ORDER BY created_at DESC LIMIT ?`, ownerID, limit)
	if err != nil {
		log.Printf("store: clusters for %s failed: %v", ownerID, err)
		return nil
	}
	defer rows.Close()

	var out []model.MemoryCluster
	for rows.Next() {
		var (
			c       model.MemoryCluster
			members string
			created string
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Theme, &members, &c.Summary,
			&c.EmotionalSignificance, &c.TimePeriod, &created); err != nil {
			continue
		}
		json.Unmarshal([]byte(members), &c.MemberIDs)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			c.CreatedAt = t
		}
		out = append(out, c)
	}
	return out
}
