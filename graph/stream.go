package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// GraphStreamName is the stream created when no stream captures the ingest subject.
const GraphStreamName = "GRAPH"

// EnsureIngestStream makes sure a stream captures GraphIngestSubject. An
// existing stream, such as the one of a running semstreams graph, is reused.
func EnsureIngestStream(ctx context.Context, js jetstream.JetStream) (string, error) {
	name, err := js.StreamNameBySubject(ctx, GraphIngestSubject)
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return "", fmt.Errorf("lookup ingest stream: %w", err)
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     GraphStreamName,
		Subjects: []string{"graph.ingest.>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return "", fmt.Errorf("create ingest stream: %w", err)
	}
	return GraphStreamName, nil
}
