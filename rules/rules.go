// Package rules maps change descriptions to the ontology predicates that
// express them.
package rules

import (
	"github.com/c360studio/semevents/event"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

// PredicateSet is the set of predicates used for one kind of change.
// ChangeTime is always set; the value predicates only for attribute transitions.
type PredicateSet struct {
	changeTime string
	oldValue   string
	newValue   string
}

// ChangeTime returns the predicate linking a landmark to the time of the change.
func (p PredicateSet) ChangeTime() string {
	return p.changeTime
}

// OldValue returns the predicate for the value before the change, if defined.
func (p PredicateSet) OldValue() (string, bool) {
	return p.oldValue, p.oldValue != ""
}

// NewValue returns the predicate for the value after the change, if defined.
func (p PredicateSet) NewValue() (string, bool) {
	return p.newValue, p.newValue != ""
}

// condition holds the keys a rule constrains. Empty fields are wildcards.
type condition struct {
	changeType    string
	changeOn      string
	attributeType string
}

func (c condition) matches(changeType, changeOn, attributeType event.Value) bool {
	return matchKey(c.changeType, changeType) &&
		matchKey(c.changeOn, changeOn) &&
		matchKey(c.attributeType, attributeType)
}

func matchKey(want string, got event.Value) bool {
	if want == "" {
		return true
	}
	return got.Equals(want)
}

type rule struct {
	when condition
	then PredicateSet
}

// table is evaluated in order; the first matching rule wins.
var table = []rule{
	{
		when: condition{changeType: landmark.ChangeAppearance, changeOn: landmark.TargetLandmark},
		then: PredicateSet{changeTime: landmark.AppearsOn},
	},
	{
		when: condition{changeType: landmark.ChangeDisappearance, changeOn: landmark.TargetLandmark},
		then: PredicateSet{changeTime: landmark.DisappearsOn},
	},
	{
		when: condition{changeType: landmark.ChangeDisappearance, changeOn: landmark.TargetClassement},
		then: PredicateSet{changeTime: landmark.IsClassifiedOn},
	},
	{
		when: condition{changeType: landmark.ChangeDisappearance, changeOn: landmark.TargetNumerotation},
		then: PredicateSet{changeTime: landmark.IsNumberedOn},
	},
	{
		when: condition{changeType: landmark.ChangeAppearance, changeOn: landmark.TargetRelation},
		then: PredicateSet{changeTime: landmark.HasAppearedRelationOn},
	},
	{
		when: condition{changeType: landmark.ChangeDisappearance, changeOn: landmark.TargetRelation},
		then: PredicateSet{changeTime: landmark.HasDisappearedRelationOn},
	},
	{
		when: condition{
			changeType:    landmark.ChangeTransition,
			changeOn:      landmark.TargetAttribute,
			attributeType: landmark.AttributeName,
		},
		then: PredicateSet{
			changeTime: landmark.HasNameChangeOn,
			oldValue:   landmark.HasOldName,
			newValue:   landmark.HasNewName,
		},
	},
	{
		when: condition{
			changeType:    landmark.ChangeTransition,
			changeOn:      landmark.TargetAttribute,
			attributeType: landmark.AttributeGeometry,
		},
		then: PredicateSet{
			changeTime: landmark.HasGeometryChangeOn,
			oldValue:   landmark.HasOldGeometry,
			newValue:   landmark.HasNewGeometry,
		},
	},
}

// Resolve returns the predicates for a change, or false when no rule applies.
// Matching is exact and case-sensitive.
func Resolve(changeType, changeOn, attributeType event.Value) (PredicateSet, bool) {
	for _, r := range table {
		if r.when.matches(changeType, changeOn, attributeType) {
			return r.then, true
		}
	}
	return PredicateSet{}, false
}

// ResolveRecord resolves the change predicates of a record.
func ResolveRecord(r event.Record) (PredicateSet, bool) {
	return Resolve(r.ChangeType, r.ChangeOn, r.AttributeType)
}
