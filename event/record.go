package event

// Column names of the event table.
const (
	ColEventID        = "event_id"
	ColEventLabel     = "event_label"
	ColTime           = "time"
	ColLineID         = "line_id"
	ColLandmarkLabel  = "landmark_label"
	ColLandmarkType   = "landmark_type"
	ColRelatumLabel   = "relatum_label"
	ColRelatumType    = "relatum_type"
	ColRelationType   = "relation_type"
	ColChangeOn       = "change_on"
	ColChangeType     = "change_type"
	ColAttributeType  = "attribute_type"
	ColOutdates       = "outdates"
	ColMakesEffective = "makes_effective"

	// ColEvent is the label-level grouping column used by the older pipeline.
	ColEvent = "event"
)

// Columns lists the record fields in their canonical order.
var Columns = []string{
	ColEventID, ColEventLabel, ColTime, ColLineID,
	ColLandmarkLabel, ColLandmarkType,
	ColRelatumLabel, ColRelatumType, ColRelationType,
	ColChangeOn, ColChangeType, ColAttributeType,
	ColOutdates, ColMakesEffective,
}

// Row is one raw table record keyed by column name. Cells hold the text as read;
// a column missing from the map is treated like an empty cell.
type Row map[string]string

// Value returns the normalized value of a column.
func (r Row) Value(column string) Value {
	raw, ok := r[column]
	if !ok {
		return Absent
	}
	return Normalize(raw)
}

// Record is the fixed-shape view of one event row.
type Record struct {
	EventID        Value `json:"event_id"`
	EventLabel     Value `json:"event_label"`
	Time           Value `json:"time"`
	LineID         Value `json:"line_id"`
	LandmarkLabel  Value `json:"landmark_label"`
	LandmarkType   Value `json:"landmark_type"`
	RelatumLabel   Value `json:"relatum_label"`
	RelatumType    Value `json:"relatum_type"`
	RelationType   Value `json:"relation_type"`
	ChangeOn       Value `json:"change_on"`
	ChangeType     Value `json:"change_type"`
	AttributeType  Value `json:"attribute_type"`
	Outdates       Value `json:"outdates"`
	MakesEffective Value `json:"makes_effective"`
}

// Extract selects the record fields from a row.
func Extract(row Row) Record {
	return Record{
		EventID:        row.Value(ColEventID),
		EventLabel:     row.Value(ColEventLabel),
		Time:           row.Value(ColTime),
		LineID:         row.Value(ColLineID),
		LandmarkLabel:  row.Value(ColLandmarkLabel),
		LandmarkType:   row.Value(ColLandmarkType),
		RelatumLabel:   row.Value(ColRelatumLabel),
		RelatumType:    row.Value(ColRelatumType),
		RelationType:   row.Value(ColRelationType),
		ChangeOn:       row.Value(ColChangeOn),
		ChangeType:     row.Value(ColChangeType),
		AttributeType:  row.Value(ColAttributeType),
		Outdates:       row.Value(ColOutdates),
		MakesEffective: row.Value(ColMakesEffective),
	}
}
