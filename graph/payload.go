package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "graph",
		Category:    "event",
		Version:     "v1",
		Description: "Landmark event resource payload for graph ingestion",
		Factory:     func() any { return &EventPayload{} },
	})
	if err != nil {
		panic("failed to register EventPayload: " + err.Error())
	}
}

// EventType is the message type for landmark event resource payloads.
var EventType = message.Type{Domain: "graph", Category: "event", Version: "v1"}

// EventPayload implements message.Payload for one resource of a complex
// description. It is the body of every graph.ingest.entity message; Source
// names the table the resource was converted from.
type EventPayload struct {
	EntityID_  string           `json:"id"`
	Source     string           `json:"source,omitempty"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (e *EventPayload) EntityID() string          { return e.EntityID_ }
func (e *EventPayload) Triples() []message.Triple { return e.TripleData }
func (e *EventPayload) Schema() message.Type      { return EventType }

func (e *EventPayload) Validate() error {
	if e.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	if len(e.TripleData) == 0 {
		return errors.New("at least one triple is required")
	}
	return nil
}

func (e *EventPayload) MarshalJSON() ([]byte, error) {
	type Alias EventPayload
	return json.Marshal((*Alias)(e))
}

func (e *EventPayload) UnmarshalJSON(data []byte) error {
	type Alias EventPayload
	return json.Unmarshal(data, (*Alias)(e))
}
