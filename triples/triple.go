// Package triples generates subject-predicate-object descriptions of landmark
// events.
//
// Two encodings are provided. Simple descriptions address landmarks by label and
// are deduplicated. Complex descriptions reify events, changes, relations and
// attribute versions as resources with generated identifiers; every occurrence
// is a distinct assertion, so complex triples are never deduplicated.
package triples

// Triple is one subject-predicate-object statement. The JSON keys are fixed.
type Triple struct {
	Sub string `json:"sub"`
	Rel string `json:"rel"`
	Obj string `json:"obj"`
}

// T builds a Triple.
func T(sub, rel, obj string) Triple {
	return Triple{Sub: sub, Rel: rel, Obj: obj}
}

// Description is the output unit for one event group.
// Sent carries the event label text.
type Description struct {
	ID      *string  `json:"id"`
	Sent    *string  `json:"sent"`
	Triples []Triple `json:"triples"`
}

// EventID returns the description id, or "" when it has none.
func (d Description) EventID() string {
	if d.ID == nil {
		return ""
	}
	return *d.ID
}

// Dedupe removes repeated triples, keeping the first occurrence of each.
func Dedupe(in []Triple) []Triple {
	seen := make(map[Triple]struct{}, len(in))
	out := make([]Triple, 0, len(in))
	for _, t := range in {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
