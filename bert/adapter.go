package bert

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/c360studio/semevents/triples"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

// Adapter rewrites simple descriptions for BERT training.
type Adapter struct {
	dates *Naturalizer
}

// NewAdapter creates an adapter spelling dates with n.
func NewAdapter(n *Naturalizer) *Adapter {
	return &Adapter{dates: n}
}

// Adapt returns a rewritten copy of desc. The id and label are kept; the
// triples are filtered and rewritten in order without deduplication.
func (a *Adapter) Adapt(desc triples.Description) triples.Description {
	// Names are compared by simple lowercasing, not full case folding:
	// "Straße" and "STRASSE" stay different names.
	lower := cases.Lower(language.Und)
	out := make([]triples.Triple, 0, len(desc.Triples))

	for _, t := range desc.Triples {
		switch t.Rel {
		case landmark.HasNewName, landmark.HasOldName:
			if lower.String(t.Sub) == lower.String(t.Obj) {
				continue
			}
			out = append(out, t)
		case landmark.IsLandmarkType:
			out = append(out, triples.T(t.Obj, landmark.IsLandmarkTypeOf, t.Sub))
		case landmark.HasTime:
			if t.Obj == landmark.NoTime {
				continue
			}
			out = append(out, triples.T(t.Sub, t.Rel, a.dates.Naturalize(t.Obj)))
		default:
			out = append(out, t)
		}
	}

	return triples.Description{
		ID:      desc.ID,
		Sent:    desc.Sent,
		Triples: out,
	}
}
