// Package graph publishes complex event descriptions to the knowledge graph,
// either as entity messages on the semstreams ingest stream or directly into
// Neo4j.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semevents/export"
	"github.com/c360studio/semevents/triples"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

// Subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// TripleSource is the source recorded on every published triple.
const TripleSource = "semevents.complex"

// StreamPublisher publishes raw messages to a JetStream subject.
// *natsclient.Client satisfies it.
type StreamPublisher interface {
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// Publisher sends complex descriptions to the graph ingest stream.
type Publisher struct {
	nc     StreamPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher creates a publisher. A nil client disables publishing.
func NewPublisher(nc StreamPublisher, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{nc: nc, logger: logger, now: time.Now}
}

// Publish sends one event payload per resource of desc and returns the
// number of messages published. Entity ids are scoped by source.
func (p *Publisher) Publish(ctx context.Context, source string, desc triples.Description) (int, error) {
	if p == nil || p.nc == nil {
		return 0, nil // Skip publishing if no NATS client (graceful degradation)
	}

	payloads := Entities(source, desc, p.now())
	for i, payload := range payloads {
		if err := payload.Validate(); err != nil {
			return i, fmt.Errorf("invalid entity %s: %w", payload.EntityID(), err)
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return i, fmt.Errorf("marshal entity %s: %w", payload.EntityID(), err)
		}
		if err := p.nc.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
			return i, fmt.Errorf("publish entity %s: %w", payload.EntityID(), err)
		}
	}

	p.logger.Debug("Published event entities",
		slog.String("source", source),
		slog.String("event", desc.EventID()),
		slog.Int("entities", len(payloads)))
	return len(payloads), nil
}

// Entities converts a complex description read from source into event
// payloads, one per subject in first-seen order. The event resource carries
// the description id and label.
func Entities(source string, desc triples.Description, now time.Time) []*EventPayload {
	var order []string
	bySubject := make(map[string][]message.Triple)

	add := func(subject string, t message.Triple) {
		if _, ok := bySubject[subject]; !ok {
			order = append(order, subject)
		}
		bySubject[subject] = append(bySubject[subject], t)
	}

	eventDone := false
	for _, t := range desc.Triples {
		subject := EntityID(source, t.Sub)
		add(subject, message.Triple{
			Subject:    subject,
			Predicate:  Predicate(t.Rel),
			Object:     objectValue(source, t.Obj),
			Source:     TripleSource,
			Timestamp:  now,
			Confidence: 1.0,
		})

		if eventDone || t.Rel != landmark.DependsOn || Kind(t.Obj) != KindEvent {
			continue
		}
		eventDone = true
		eventEntity := EntityID(source, t.Obj)
		if desc.ID != nil {
			add(eventEntity, message.Triple{
				Subject:    eventEntity,
				Predicate:  Predicate(landmark.EventIdentifier),
				Object:     *desc.ID,
				Source:     TripleSource,
				Timestamp:  now,
				Confidence: 1.0,
			})
		}
		if desc.Sent != nil {
			add(eventEntity, message.Triple{
				Subject:    eventEntity,
				Predicate:  Predicate(landmark.Label),
				Object:     *desc.Sent,
				Source:     TripleSource,
				Timestamp:  now,
				Confidence: 1.0,
			})
		}
	}

	payloads := make([]*EventPayload, 0, len(order))
	for _, subject := range order {
		payloads = append(payloads, &EventPayload{
			EntityID_:  subject,
			Source:     source,
			TripleData: bySubject[subject],
			UpdatedAt:  now,
		})
	}
	return payloads
}

// Predicate returns the dotted vocabulary name of a short predicate. Relation
// types read from data are placed under landmark.relation.
func Predicate(rel string) string {
	if dotted, ok := landmark.RegisteredName(rel); ok {
		return dotted
	}
	return "landmark.relation." + rel
}

// objectValue turns resource identifiers into entity references and strips
// language tags from labels.
func objectValue(source, obj string) any {
	if Kind(obj) != "" {
		return EntityID(source, obj)
	}
	term := export.ObjectTerm(obj)
	if term.IsIRI() {
		return term.IRI
	}
	return term.Value
}
