package graph

import "github.com/neo4j/neo4j-go-driver/v5/neo4j"

type edgeRecord struct {
	FromID   string
	ToID     string
	Kind     string
	Strength float64
}

func parseEdgeRecords(res neo4j.EagerResult) []edgeRecord {
	var out []edgeRecord
	for _, rec := range res.Records {
		if rec == nil {
			continue
		}
		var e edgeRecord
		if v, ok := rec.Get("from_id"); ok {
			e.FromID, _ = v.(string)
		}
		if v, ok := rec.Get("to_id"); ok {
			e.ToID, _ = v.(string)
		}
		if v, ok := rec.Get("kind"); ok {
			e.Kind, _ = v.(string)
		}
		if v, ok := rec.Get("strength"); ok {
			switch s := v.(type) {
			case float64:
				e.Strength = s
			case int64:
				e.Strength = float64(s)
			}
		}
		if e.FromID != "" && e.ToID != "" {
			out = append(out, e)
		}
	}
	return out
}
