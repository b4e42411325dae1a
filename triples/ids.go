package triples

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Identifier prefixes of complex-mode resources.
const (
	PrefixEvent            = "EV_"
	PrefixLandmark         = "LM_"
	PrefixRelation         = "LR_"
	PrefixChange           = "CG_"
	PrefixAttribute        = "ATTR_"
	PrefixAttributeVersion = "AV_"
)

var resourcePrefixes = []string{
	PrefixEvent,
	PrefixLandmark,
	PrefixRelation,
	PrefixChange,
	PrefixAttribute,
	PrefixAttributeVersion,
}

// IsResourceID reports whether s looks like a complex-mode resource identifier.
func IsResourceID(s string) bool {
	for _, p := range resourcePrefixes {
		if strings.HasPrefix(s, p) && len(s) > len(p) {
			return true
		}
	}
	return false
}

// IDProvider supplies fresh unique tokens for resource identifiers.
// Implementations must be safe for concurrent use.
type IDProvider interface {
	NewID() string
}

// UUIDs issues random version 4 UUIDs.
type UUIDs struct{}

// NewID returns a new random UUID string.
func (UUIDs) NewID() string {
	return uuid.NewString()
}

// SequenceIDs issues "1", "2", "3", ... for reproducible output.
type SequenceIDs struct {
	mu   sync.Mutex
	next int
}

// NewID returns the next number in the sequence.
func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return strconv.Itoa(s.next)
}

// Registry maps landmark labels to identifiers within one event group.
type Registry struct {
	ids       IDProvider
	landmarks map[string]string
}

// NewRegistry creates an empty registry drawing identifiers from ids.
func NewRegistry(ids IDProvider) *Registry {
	return &Registry{
		ids:       ids,
		landmarks: make(map[string]string),
	}
}

// Landmark returns the identifier of a label, creating it on first use.
func (r *Registry) Landmark(label string) string {
	if id, ok := r.landmarks[label]; ok {
		return id
	}
	id := PrefixLandmark + r.ids.NewID()
	r.landmarks[label] = id
	return id
}

// Len returns the number of distinct landmarks seen.
func (r *Registry) Len() int {
	return len(r.landmarks)
}
