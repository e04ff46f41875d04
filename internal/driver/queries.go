package driver

const (
	MergeCharacterQuery = `
		MERGE (c:Character {id: $owner_id})
		SET c.name = coalesce($name, c.name)
		RETURN c.id AS id
	`

	MergeMemoryNodeQuery = `
		MERGE (m:Memory {id: $id})
		SET m.owner_id = $owner_id,
			m.memory_type = $memory_type,
			m.emotional_weight = $emotional_weight,
			m.created_at = $created_at,
			m.themes = $themes
		RETURN m.id AS id
	`

	MergeFormedEdgeQuery = `
		MATCH (c:Character {id: $owner_id})
		MATCH (m:Memory {id: $id})
		MERGE (c)-[:FORMED]->(m)
	`

	MergeRelatesToEdgeQuery = `
		MATCH (a:Memory {id: $from_id})
		MATCH (b:Memory {id: $to_id})
		MERGE (a)-[r:RELATES_TO {kind: $kind}]->(b)
		SET r.strength = $strength
	`

	FetchOwnerEdgesQuery = `
		MATCH (a:Memory {owner_id: $owner_id})-[r:RELATES_TO]->(b:Memory {owner_id: $owner_id})
		RETURN a.id AS from_id, b.id AS to_id, r.kind AS kind, r.strength AS strength
	`

	CountOwnerEdgesQuery = `
		MATCH (:Memory {owner_id: $owner_id})-[r:RELATES_TO]->(:Memory {owner_id: $owner_id})
		RETURN count(r) AS edges
	`

	DeleteOwnerEdgesQuery = `
		MATCH (:Memory {owner_id: $owner_id})-[r:RELATES_TO]->(:Memory {owner_id: $owner_id})
		DELETE r
	`

	DeleteOwnerGraphQuery = `
		MATCH (m:Memory {owner_id: $owner_id})
		DETACH DELETE m
	`
)
