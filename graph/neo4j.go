package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/c360studio/semevents/triples"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

// Neo4jOptions configures the Neo4j connection.
type Neo4jOptions struct {
	URI      string
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// Neo4jLoader upserts complex descriptions into Neo4j. Every resource becomes a
// :Resource node keyed by id; resource-valued predicates become relationships.
type Neo4jLoader struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jLoader connects to Neo4j and verifies connectivity.
func NewNeo4jLoader(ctx context.Context, opts Neo4jOptions, logger *slog.Logger) (*Neo4jLoader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.URI == "" {
		return nil, fmt.Errorf("neo4j: uri required")
	}
	if opts.User == "" {
		opts.User = "neo4j"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	auth := neo4j.BasicAuth(opts.User, opts.Password, "")
	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(cfg *neo4j.Config) {
		cfg.SocketConnectTimeout = opts.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Neo4jLoader{
		driver:   driver,
		database: opts.Database,
		logger:   logger.With("component", "neo4j"),
	}, nil
}

// Close releases the driver.
func (l *Neo4jLoader) Close(ctx context.Context) error {
	if l == nil || l.driver == nil {
		return nil
	}
	err := l.driver.Close(ctx)
	l.driver = nil
	return err
}

// Batch holds the parameter rows of one load.
type Batch struct {
	Nodes []map[string]any
	// Edges are grouped by relationship type since Cypher cannot parameterize it.
	Edges map[string][]map[string]any
}

// Empty reports whether the batch has nothing to write.
func (b Batch) Empty() bool {
	return len(b.Nodes) == 0 && len(b.Edges) == 0
}

// BuildBatch converts complex descriptions into node and relationship rows.
// Literal-valued predicates become node properties (last value wins);
// resource-valued predicates become relationships. Node keys are scoped by
// source so tables converted separately never share a node.
func BuildBatch(descs []triples.Description, source string) Batch {
	syncedAt := time.Now().UTC().Format(time.RFC3339Nano)

	var order []string
	nodes := make(map[string]map[string]any)
	node := func(id string) map[string]any {
		if n, ok := nodes[id]; ok {
			return n
		}
		n := map[string]any{
			"id":   NodeID(source, id),
			"kind": Kind(id),
			"props": map[string]any{
				"resource_id": id,
				"source":      source,
				"synced_at":   syncedAt,
			},
		}
		nodes[id] = n
		order = append(order, id)
		return n
	}

	edges := make(map[string][]map[string]any)
	for _, desc := range descs {
		for _, t := range desc.Triples {
			n := node(t.Sub)
			if Kind(t.Obj) != "" {
				node(t.Obj)
				relType := RelationshipType(t.Rel)
				edges[relType] = append(edges[relType], map[string]any{
					"src": NodeID(source, t.Sub),
					"dst": NodeID(source, t.Obj),
				})
				if t.Rel == landmark.DependsOn && Kind(t.Obj) == KindEvent {
					ev := node(t.Obj)["props"].(map[string]any)
					if desc.ID != nil {
						ev["event_id"] = *desc.ID
					}
					if desc.Sent != nil {
						ev["label"] = *desc.Sent
					}
				}
				continue
			}
			n["props"].(map[string]any)[propertyName(t.Rel)] = objectValue(source, t.Obj)
		}
	}

	batch := Batch{Edges: edges}
	for _, id := range order {
		batch.Nodes = append(batch.Nodes, nodes[id])
	}
	return batch
}

// Load upserts descriptions in a single write transaction.
func (l *Neo4jLoader) Load(ctx context.Context, descs []triples.Description, source string) error {
	if l == nil || l.driver == nil {
		return nil
	}
	batch := BuildBatch(descs, source)
	if batch.Empty() {
		return nil
	}

	session := l.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: l.database,
	})
	defer session.Close(ctx)

	// Best-effort schema init.
	if res, err := session.Run(ctx,
		`CREATE CONSTRAINT resource_id_unique IF NOT EXISTS FOR (r:Resource) REQUIRE r.id IS UNIQUE`, nil); err != nil {
		l.logger.Warn("neo4j schema init failed (continuing)", "error", err)
	} else {
		_, _ = res.Consume(ctx)
	}

	relTypes := make([]string, 0, len(batch.Edges))
	for relType := range batch.Edges {
		relTypes = append(relTypes, relType)
	}
	sort.Strings(relTypes)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (r:Resource {id: n.id})
SET r += n.props, r.kind = n.kind
`, map[string]any{"nodes": batch.Nodes})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		for _, relType := range relTypes {
			res, err := tx.Run(ctx, edgeQuery(relType), map[string]any{"rels": batch.Edges[relType]})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j: load %s: %w", source, err)
	}

	l.logger.Debug("Loaded descriptions into neo4j",
		slog.String("source", source),
		slog.Int("nodes", len(batch.Nodes)),
		slog.Int("relationship_types", len(relTypes)))
	return nil
}

func edgeQuery(relType string) string {
	return "UNWIND $rels AS e\n" +
		"MATCH (a:Resource {id: e.src})\n" +
		"MATCH (b:Resource {id: e.dst})\n" +
		"MERGE (a)-[:`" + relType + "`]->(b)\n"
}

// RelationshipType converts a predicate name to an upper snake case
// relationship type: appliedOn becomes APPLIED_ON.
func RelationshipType(rel string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range rel {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
			prevLower = true
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			prevLower = false
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "RELATED_TO"
	}
	return out
}

// propertyName converts a predicate name to a snake case property key.
func propertyName(rel string) string {
	return strings.ToLower(RelationshipType(rel))
}
