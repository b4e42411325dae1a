package triples

import (
	"github.com/c360studio/semevents/event"
	"github.com/c360studio/semevents/rules"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

// Simple builds the label-addressed description of a group.
// Absent values appear as empty strings in the emitted triples.
func Simple(g event.Group) Description {
	var out []Triple
	for _, r := range g.Records {
		out = append(out, simpleRow(r)...)
	}

	id, label := g.Identity()
	return Description{
		ID:      id.Ptr(),
		Sent:    label.Ptr(),
		Triples: Dedupe(out),
	}
}

func simpleRow(r event.Record) []Triple {
	var out []Triple
	lm := r.LandmarkLabel.String()

	if r.LandmarkLabel.IsPresent() {
		out = append(out, T(lm, landmark.IsLandmarkType, r.LandmarkType.String()))
	}

	if relatum, ok := r.RelatumLabel.Get(); ok {
		out = append(out, T(relatum, landmark.IsLandmarkType, r.RelatumType.String()))
		if relation, ok := r.RelationType.Get(); ok {
			out = append(out, T(lm, relation, relatum))
		}
	}

	preds, ok := rules.ResolveRecord(r)
	if !ok {
		return out
	}
	out = append(out, T(lm, preds.ChangeTime(), r.Time.Or(landmark.NoTime)))

	if !r.ChangeType.Equals(landmark.ChangeTransition) || !r.AttributeType.IsPresent() {
		return out
	}
	if old, ok := r.Outdates.Get(); ok {
		if pred, ok := preds.OldValue(); ok {
			out = append(out, T(lm, pred, old))
		}
	}
	if current, ok := r.MakesEffective.Get(); ok {
		if pred, ok := preds.NewValue(); ok {
			out = append(out, T(lm, pred, current))
		}
	}
	return out
}
