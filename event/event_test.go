package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		present bool
	}{
		{"empty cell", "", false},
		{"pandas NaN", "NaN", false},
		{"lowercase nan", "nan", false},
		{"NA token", "NA", false},
		{"null token", "null", false},
		{"plain text", "Pont Neuf", true},
		{"whitespace kept", " ", true},
		{"zero", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Normalize(tt.raw)
			assert.Equal(t, tt.present, v.IsPresent())
			if tt.present {
				assert.Equal(t, tt.raw, v.String())
			} else {
				assert.Equal(t, Absent, v)
			}
		})
	}
}

func TestValueHelpers(t *testing.T) {
	assert.Equal(t, "noTime", Absent.Or("noTime"))
	assert.Equal(t, "1900", Present("1900").Or("noTime"))
	assert.True(t, Present("landmark").Equals("landmark"))
	assert.False(t, Absent.Equals(""))
	assert.Nil(t, Absent.Ptr())
	require.NotNil(t, Present("E1").Ptr())
	assert.Equal(t, "E1", *Present("E1").Ptr())
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{A: Present("rue"), B: Absent})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"rue","b":null}`, string(data))

	var decoded struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.A.Equals("rue"))
	assert.False(t, decoded.B.IsPresent())
}

func TestExtract(t *testing.T) {
	row := Row{
		ColEventID:       "E1",
		ColEventLabel:    "Ouverture du pont",
		ColLandmarkLabel: "Pont Neuf",
		ColLandmarkType:  "bridge",
		ColTime:          "NaN",
		"unrelated":      "ignored",
	}

	rec := Extract(row)
	assert.True(t, rec.EventID.Equals("E1"))
	assert.True(t, rec.LandmarkLabel.Equals("Pont Neuf"))
	assert.True(t, rec.LandmarkType.Equals("bridge"))
	assert.False(t, rec.Time.IsPresent(), "NaN must normalize to absent")
	assert.False(t, rec.RelatumLabel.IsPresent(), "missing column must be absent")
	assert.Len(t, Columns, 14)
}

func TestGroupRows(t *testing.T) {
	rows := []Row{
		{ColEventID: "E2", ColLandmarkLabel: "a"},
		{ColEventID: "E1", ColLandmarkLabel: "b"},
		{ColEventID: "", ColLandmarkLabel: "orphan"},
		{ColEventID: "E2", ColLandmarkLabel: "c"},
	}

	groups, dropped := GroupRows(rows, ColEventID)
	require.Len(t, groups, 2)
	assert.Equal(t, 1, dropped)

	assert.Equal(t, "E1", groups[0].Key)
	assert.Equal(t, "E2", groups[1].Key)
	require.Len(t, groups[1].Records, 2)
	assert.Equal(t, "a", groups[1].Records[0].LandmarkLabel.String())
	assert.Equal(t, "c", groups[1].Records[1].LandmarkLabel.String())
}

func TestGroupRowsByEventLabel(t *testing.T) {
	rows := []Row{
		{ColEvent: "ev", ColEventID: "E1"},
		{ColEvent: "ev", ColEventID: "E2"},
	}

	groups, dropped := GroupRows(rows, ColEvent)
	require.Len(t, groups, 1)
	assert.Zero(t, dropped)
	assert.Len(t, groups[0].Records, 2)
}

func TestGroupIdentity(t *testing.T) {
	g := Group{Records: []Record{
		{EventLabel: Present("first label")},
		{EventID: Present("E1"), EventLabel: Present("second label")},
		{EventID: Present("E9")},
	}}

	id, label := g.Identity()
	assert.True(t, id.Equals("E1"))
	assert.True(t, label.Equals("first label"))

	id, label = Group{}.Identity()
	assert.False(t, id.IsPresent())
	assert.False(t, label.IsPresent())
}
