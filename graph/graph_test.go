package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semevents/event"
	"github.com/c360studio/semevents/triples"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

func complexDescription() triples.Description {
	id := "E1"
	sent := "Ouverture du Pont Neuf"
	return triples.Description{
		ID:   &id,
		Sent: &sent,
		Triples: []triples.Triple{
			triples.T("LM_2", landmark.IsLandmarkType, "bridge"),
			triples.T("LM_2", landmark.Label, `"Pont Neuf"@fr`),
			triples.T("CG_3", landmark.IsChangeType, "appearance"),
			triples.T("CG_3", landmark.DependsOn, "EV_1"),
			triples.T("CG_3", landmark.AppliedOn, "LM_2"),
		},
	}
}

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
	failAt   int
}

func (r *recordingPublisher) PublishToStream(_ context.Context, subject string, data []byte) error {
	if r.failAt > 0 && len(r.payloads)+1 == r.failAt {
		return errors.New("stream unavailable")
	}
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return nil
}

func TestKindAndEntityID(t *testing.T) {
	tests := []struct {
		id       string
		kind     string
		entityID string
	}{
		{"EV_1", KindEvent, "semevents.events-tsv.history.landmark.event.EV_1"},
		{"LM_2", KindLandmark, "semevents.events-tsv.history.landmark.landmark.LM_2"},
		{"LR_3", KindRelation, "semevents.events-tsv.history.landmark.relation.LR_3"},
		{"CG_4", KindChange, "semevents.events-tsv.history.landmark.change.CG_4"},
		{"ATTR_5", KindAttribute, "semevents.events-tsv.history.landmark.attribute.ATTR_5"},
		{"AV_6", KindVersion, "semevents.events-tsv.history.landmark.version.AV_6"},
		{"Pont Neuf", "", "semevents.events-tsv.history.landmark.resource.Pont Neuf"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.kind, Kind(tt.id))
			assert.Equal(t, tt.entityID, EntityID("events.tsv", tt.id))
		})
	}
}

func TestScope(t *testing.T) {
	tests := map[string]string{
		"events.tsv":     "events-tsv",
		"rues_1850.csv":  "rues_1850-csv",
		"données.tsv":    "donn-es-tsv",
		"with space.tsv": "with-space-tsv",
		"":               "local",
		"...":            "local",
		"already-scoped": "already-scoped",
	}
	for in, want := range tests {
		assert.Equal(t, want, Scope(in), in)
	}
	assert.Equal(t, "events-tsv:LM_2", NodeID("events.tsv", "LM_2"))
}

func TestPredicate(t *testing.T) {
	assert.Equal(t, "landmark.change.applied_on", Predicate(landmark.AppliedOn))
	assert.Equal(t, "landmark.event.identifier", Predicate(landmark.EventIdentifier))
	assert.Equal(t, "landmark.relation.touches", Predicate("touches"))
}

func TestEntities(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	payloads := Entities("events.tsv", complexDescription(), now)

	require.Len(t, payloads, 3)
	assert.Equal(t, EntityID("events.tsv", "LM_2"), payloads[0].EntityID())
	assert.Equal(t, EntityID("events.tsv", "CG_3"), payloads[1].EntityID())
	assert.Equal(t, EntityID("events.tsv", "EV_1"), payloads[2].EntityID())
	for _, p := range payloads {
		assert.Equal(t, "events.tsv", p.Source)
		assert.Equal(t, now, p.UpdatedAt)
		assert.NoError(t, p.Validate())
	}

	landmarkTriples := payloads[0].Triples()
	require.Len(t, landmarkTriples, 2)
	assert.Equal(t, "bridge", landmarkTriples[0].Object)
	assert.Equal(t, "Pont Neuf", landmarkTriples[1].Object, "language tag stripped")
	assert.Equal(t, TripleSource, landmarkTriples[0].Source)
	assert.Equal(t, now, landmarkTriples[0].Timestamp)

	applied := payloads[1].Triples()[2]
	assert.Equal(t, "landmark.change.applied_on", applied.Predicate)
	assert.Equal(t, EntityID("events.tsv", "LM_2"), applied.Object)

	event := payloads[2].Triples()
	require.Len(t, event, 2)
	assert.Equal(t, "E1", event[0].Object)
	assert.Equal(t, "Ouverture du Pont Neuf", event[1].Object)
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes one event payload per entity", func(t *testing.T) {
		rec := &recordingPublisher{}
		p := NewPublisher(rec, nil)

		n, err := p.Publish(ctx, "events.tsv", complexDescription())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []string{GraphIngestSubject, GraphIngestSubject, GraphIngestSubject}, rec.subjects)

		var payload EventPayload
		require.NoError(t, json.Unmarshal(rec.payloads[0], &payload))
		assert.Equal(t, EntityID("events.tsv", "LM_2"), payload.EntityID())
		assert.Equal(t, "events.tsv", payload.Source)
		assert.Len(t, payload.Triples(), 2)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.payloads[0], &raw))
		assert.Contains(t, raw, "id")
		assert.Contains(t, raw, "source")
		assert.Contains(t, raw, "triples")
		assert.Contains(t, raw, "updated_at")
	})

	t.Run("stops at first failure", func(t *testing.T) {
		rec := &recordingPublisher{failAt: 2}
		n, err := NewPublisher(rec, nil).Publish(ctx, "events.tsv", complexDescription())
		require.Error(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("nil client is a no-op", func(t *testing.T) {
		n, err := NewPublisher(nil, nil).Publish(ctx, "events.tsv", complexDescription())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("sequential ids of different tables do not collide", func(t *testing.T) {
		rec := &recordingPublisher{}
		p := NewPublisher(rec, nil)

		_, err := p.Publish(ctx, "rues_1850.tsv", complexDescription())
		require.NoError(t, err)
		_, err = p.Publish(ctx, "rues_1900.tsv", complexDescription())
		require.NoError(t, err)

		seen := make(map[string]bool)
		for _, data := range rec.payloads {
			var payload EventPayload
			require.NoError(t, json.Unmarshal(data, &payload))
			assert.False(t, seen[payload.EntityID()], payload.EntityID())
			seen[payload.EntityID()] = true
		}
		assert.Len(t, seen, 6)
	})
}

func TestEventPayload(t *testing.T) {
	p := &EventPayload{}
	assert.Error(t, p.Validate())

	p.EntityID_ = EntityID("events.tsv", "CG_3")
	assert.Error(t, p.Validate(), "triples required")

	payloads := Entities("events.tsv", complexDescription(), time.Now())
	p.TripleData = payloads[1].Triples()
	p.Source = "events.tsv"
	require.NoError(t, p.Validate())
	assert.Equal(t, EventType, p.Schema())

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded EventPayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, p.EntityID(), decoded.EntityID())
	assert.Equal(t, "events.tsv", decoded.Source)
	assert.Len(t, decoded.Triples(), 3)
}

func TestRelationshipType(t *testing.T) {
	tests := map[string]string{
		landmark.AppliedOn:           "APPLIED_ON",
		landmark.DependsOn:           "DEPENDS_ON",
		landmark.MakesEffective:      "MAKES_EFFECTIVE",
		landmark.HasAttributeVersion: "HAS_ATTRIBUTE_VERSION",
		landmark.Locatum:             "LOCATUM",
		"touches":                    "TOUCHES",
		"is-near":                    "IS_NEAR",
		"--":                         "RELATED_TO",
	}
	for in, want := range tests {
		assert.Equal(t, want, RelationshipType(in), in)
	}
}

func TestBuildBatch(t *testing.T) {
	batch := BuildBatch([]triples.Description{complexDescription()}, "events.tsv")
	require.False(t, batch.Empty())

	require.Len(t, batch.Nodes, 3)
	lm := batch.Nodes[0]
	assert.Equal(t, "events-tsv:LM_2", lm["id"])
	assert.Equal(t, KindLandmark, lm["kind"])
	props := lm["props"].(map[string]any)
	assert.Equal(t, "LM_2", props["resource_id"])
	assert.Equal(t, "bridge", props["is_landmark_type"])
	assert.Equal(t, "Pont Neuf", props["label"])
	assert.Equal(t, "events.tsv", props["source"])

	ev := batch.Nodes[2]
	assert.Equal(t, "events-tsv:EV_1", ev["id"])
	evProps := ev["props"].(map[string]any)
	assert.Equal(t, "E1", evProps["event_id"])
	assert.Equal(t, "Ouverture du Pont Neuf", evProps["label"])

	require.Len(t, batch.Edges, 2)
	assert.Equal(t, []map[string]any{{"src": "events-tsv:CG_3", "dst": "events-tsv:EV_1"}}, batch.Edges["DEPENDS_ON"])
	assert.Equal(t, []map[string]any{{"src": "events-tsv:CG_3", "dst": "events-tsv:LM_2"}}, batch.Edges["APPLIED_ON"])
}

func TestBuildBatch_SequentialRunsDoNotShareNodes(t *testing.T) {
	build := func(source, label string) Batch {
		ids := &triples.SequenceIDs{}
		gen := triples.NewComplexGenerator(ids)
		desc, err := gen.Generate(event.Group{Key: "E1", Records: []event.Record{event.Extract(event.Row{
			event.ColEventID:       "E1",
			event.ColEventLabel:    "Ouverture",
			event.ColTime:          "1850",
			event.ColLandmarkLabel: label,
			event.ColLandmarkType:  "street",
			event.ColChangeOn:      "landmark",
			event.ColChangeType:    "appearance",
		})}})
		require.NoError(t, err)
		return BuildBatch([]triples.Description{desc}, source)
	}

	a := build("rues_1850.tsv", "Rue A")
	b := build("rues_1900.tsv", "Rue B")
	require.NotEmpty(t, a.Nodes)
	require.NotEmpty(t, b.Nodes)

	idsOf := func(batch Batch) map[string]bool {
		ids := make(map[string]bool)
		for _, n := range batch.Nodes {
			ids[n["id"].(string)] = true
		}
		return ids
	}
	aIDs := idsOf(a)
	for id := range idsOf(b) {
		assert.False(t, aIDs[id], "node %s shared across tables", id)
	}

	rid := func(batch Batch) []string {
		var out []string
		for _, n := range batch.Nodes {
			out = append(out, n["props"].(map[string]any)["resource_id"].(string))
		}
		return out
	}
	assert.Equal(t, rid(a), rid(b), "raw sequential ids are identical across runs")
}

func TestBuildBatch_Empty(t *testing.T) {
	assert.True(t, BuildBatch(nil, "x").Empty())
}

func TestNilNeo4jLoader(t *testing.T) {
	var l *Neo4jLoader
	assert.NoError(t, l.Load(context.Background(), []triples.Description{complexDescription()}, "x"))
	assert.NoError(t, l.Close(context.Background()))
}

func TestNewNeo4jLoader_RequiresURI(t *testing.T) {
	_, err := NewNeo4jLoader(context.Background(), Neo4jOptions{}, nil)
	assert.Error(t, err)
}
