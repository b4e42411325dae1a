package bert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/c360studio/semevents/triples"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

func TestNaturalizeFrench(t *testing.T) {
	n := NewNaturalizer(language.French)

	tests := []struct {
		in   string
		want string
	}{
		{"1909-01-03", "3 janvier 1909"},
		{"1909-12-25", "25 décembre 1909"},
		{"2023-09", "septembre 2023"},
		{"2021", "2021"},
		{"1909-02-30", "1909-02-30"},
		{"1909-13", "1909-13"},
		{"0000-01-01", "0000-01-01"},
		{"1909/01/03", "1909/01/03"},
		{"3 janvier 1909", "3 janvier 1909"},
		{"19090103", "19090103"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Naturalize(tt.in))
		})
	}
}

func TestNaturalizeEnglish(t *testing.T) {
	n := NewNaturalizer(language.English)
	assert.Equal(t, "3 January 1909", n.Naturalize("1909-01-03"))
	assert.Equal(t, "September 2023", n.Naturalize("2023-09"))
}

func TestNaturalizerLocaleMatching(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{"fr", language.French},
		{"fr-BE", language.French},
		{"en-GB", language.English},
		{"de", language.French},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tag, err := ParseLocale(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, NewNaturalizer(tag).Locale())
		})
	}

	_, err := ParseLocale("not a locale!")
	assert.Error(t, err)
}

func TestAdapt(t *testing.T) {
	id, sent := "E1", "Renommage de la rue"
	desc := triples.Description{
		ID:   &id,
		Sent: &sent,
		Triples: []triples.Triple{
			triples.T("Rue A", landmark.IsLandmarkType, "street"),
			triples.T("Rue A", landmark.HasOldName, "rue a"),
			triples.T("Rue A", landmark.HasNewName, "Rue B"),
			triples.T("E1", landmark.HasTime, landmark.NoTime),
			triples.T("E1", landmark.HasTime, "1909-01-03"),
			triples.T("Rue A", landmark.HasNameChangeOn, "1909-01-03"),
		},
	}

	out := NewAdapter(NewNaturalizer(language.English)).Adapt(desc)

	assert.Equal(t, desc.ID, out.ID)
	assert.Equal(t, desc.Sent, out.Sent)
	assert.Equal(t, []triples.Triple{
		triples.T("street", landmark.IsLandmarkTypeOf, "Rue A"),
		triples.T("Rue A", landmark.HasNewName, "Rue B"),
		triples.T("E1", landmark.HasTime, "3 January 1909"),
		triples.T("Rue A", landmark.HasNameChangeOn, "1909-01-03"),
	}, out.Triples)

	assert.Len(t, desc.Triples, 6, "input must not be modified")
	assert.Equal(t, landmark.IsLandmarkType, desc.Triples[0].Rel)
}

func TestAdaptNameComparison(t *testing.T) {
	tests := []struct {
		name    string
		sub     string
		obj     string
		dropped bool
	}{
		{"same name other case", "Rue de la Paix", "RUE DE LA PAIX", true},
		{"accented", "Rue Élisée", "rue élisée", true},
		{"sharp s is not folded", "Straße", "STRASSE", false},
		{"different names", "Rue A", "Rue B", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := triples.Description{Triples: []triples.Triple{
				triples.T(tt.sub, landmark.HasOldName, tt.obj),
			}}
			out := NewAdapter(NewNaturalizer(language.French)).Adapt(desc)
			if tt.dropped {
				assert.Empty(t, out.Triples)
			} else {
				assert.Len(t, out.Triples, 1)
			}
		})
	}
}

func TestAdaptKeepsDuplicatesFromInversion(t *testing.T) {
	desc := triples.Description{Triples: []triples.Triple{
		triples.T("Rue A", landmark.IsLandmarkType, "street"),
		triples.T("street", landmark.IsLandmarkTypeOf, "Rue A"),
	}}

	out := NewAdapter(NewNaturalizer(language.French)).Adapt(desc)
	require.Len(t, out.Triples, 2)
	assert.Equal(t, out.Triples[0], out.Triples[1])
}

func TestAdaptTrailingDrop(t *testing.T) {
	desc := triples.Description{Triples: []triples.Triple{
		triples.T("Rue A", landmark.IsLandmarkType, "street"),
		triples.T("E1", landmark.HasTime, landmark.NoTime),
	}}

	out := NewAdapter(NewNaturalizer(language.French)).Adapt(desc)
	assert.Equal(t, []triples.Triple{triples.T("street", landmark.IsLandmarkTypeOf, "Rue A")}, out.Triples)
}
