package driver

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jDriver talks bolt to Neo4j. Memgraph works over the same protocol
// with the same Cypher subset used here.
type Neo4jDriver struct {
	Driver neo4j.DriverWithContext
}

func NewNeo4jDriver(ctx context.Context, uri, username, password string) (*Neo4jDriver, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := d.VerifyConnectivity(ctx); err != nil {
		d.Close(ctx)
		return nil, err
	}

	log.Printf("Connected to graph database at %s", uri)
	return &Neo4jDriver{Driver: d}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX character_id IF NOT EXISTS FOR (c:Character) ON (c.id);",
		"CREATE INDEX memory_id IF NOT EXISTS FOR (m:Memory) ON (m.id);",
		"CREATE INDEX memory_owner IF NOT EXISTS FOR (m:Memory) ON (m.owner_id);",
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// Index may already exist or the server may use older syntax.
			log.Printf("Warning: failed to create index '%s': %v", q, err)
		}
	}
	return nil
}
