package landmark_test

import (
	"testing"

	"github.com/c360studio/semevents/vocabulary/landmark"
	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		landmark.IsLandmarkType,
		landmark.Label,
		landmark.DependsOn,
		landmark.AppliedOn,
		landmark.MakesEffective,
		landmark.AppearsOn,
		landmark.HasNameChangeOn,
		landmark.HasNewGeometry,
	}

	for _, predicate := range predicates {
		t.Run(predicate, func(t *testing.T) {
			dotted, ok := landmark.RegisteredName(predicate)
			if !ok {
				t.Fatalf("predicate %q has no registered name", predicate)
			}
			meta := vocabulary.GetPredicateMetadata(dotted)
			if meta == nil {
				t.Fatalf("predicate %q not registered", dotted)
			}
			if meta.Description == "" {
				t.Errorf("predicate %q has no description", dotted)
			}
			if meta.DataType == "" {
				t.Errorf("predicate %q has no data type", dotted)
			}
		})
	}
}

func TestIRI(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{landmark.AppearsOn, landmark.Namespace + "appearsOn"},
		{landmark.Label, landmark.RDFSLabel},
		{"touches", landmark.Namespace + "touches"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := landmark.IRI(tc.name); got != tc.expected {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}
