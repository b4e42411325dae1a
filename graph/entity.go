package graph

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/c360studio/semevents/triples"
)

// Resource kinds, one per identifier prefix.
const (
	KindEvent     = "event"
	KindLandmark  = "landmark"
	KindRelation  = "relation"
	KindChange    = "change"
	KindAttribute = "attribute"
	KindVersion   = "version"
)

var kindByPrefix = []struct {
	prefix string
	kind   string
}{
	{triples.PrefixEvent, KindEvent},
	{triples.PrefixLandmark, KindLandmark},
	{triples.PrefixRelation, KindRelation},
	{triples.PrefixChange, KindChange},
	{triples.PrefixAttribute, KindAttribute},
	{triples.PrefixAttributeVersion, KindVersion},
}

// Kind returns the resource kind of a complex-mode identifier, or "" when id
// is not a resource identifier.
func Kind(id string) string {
	if !triples.IsResourceID(id) {
		return ""
	}
	for _, k := range kindByPrefix {
		if strings.HasPrefix(id, k.prefix) {
			return k.kind
		}
	}
	return ""
}

// Scope turns a source table name into an identifier segment. Complex-mode
// identifiers are only unique within one conversion (sequential ids restart
// at 1 on every run), so graph keys are qualified by the table they came from.
func Scope(source string) string {
	scope := strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') {
			return r
		}
		return '-'
	}, source)
	if strings.Trim(scope, "-") == "" {
		return "local"
	}
	return scope
}

// NodeID returns the graph key of a complex-mode resource read from source.
func NodeID(source, resourceID string) string {
	return Scope(source) + ":" + resourceID
}

// EntityID generates a consistent entity ID for a complex-mode resource.
// Format: semevents.<scope>.history.landmark.<kind>.<resource id>
func EntityID(source, resourceID string) string {
	kind := Kind(resourceID)
	if kind == "" {
		kind = "resource"
	}
	return fmt.Sprintf("semevents.%s.history.landmark.%s.%s", Scope(source), kind, resourceID)
}
