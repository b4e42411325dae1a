package triples

import (
	"errors"

	"github.com/c360studio/semevents/event"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

// ComplexGenerator builds reified, identifier-addressed descriptions.
type ComplexGenerator struct {
	ids IDProvider
}

// NewComplexGenerator creates a generator drawing identifiers from ids.
// A nil provider defaults to random UUIDs.
func NewComplexGenerator(ids IDProvider) *ComplexGenerator {
	if ids == nil {
		ids = UUIDs{}
	}
	return &ComplexGenerator{ids: ids}
}

// Generate builds the complex description of a group.
//
// The description is always returned. The error, when non-nil, joins one
// *RowError per row whose change could not be attached to its target.
func (g *ComplexGenerator) Generate(group event.Group) (Description, error) {
	b := &complexBuilder{
		ids:      g.ids,
		registry: NewRegistry(g.ids),
		eventID:  PrefixEvent + g.ids.NewID(),
	}

	var errs []error
	for i, r := range group.Records {
		if err := b.row(r); err != nil {
			errs = append(errs, &RowError{Group: group.Key, Row: i, Err: err})
		}
	}

	id, label := group.Identity()
	return Description{
		ID:      id.Ptr(),
		Sent:    label.Ptr(),
		Triples: b.out,
	}, errors.Join(errs...)
}

type complexBuilder struct {
	ids      IDProvider
	registry *Registry
	eventID  string
	out      []Triple
}

func (b *complexBuilder) add(sub, rel, obj string) {
	b.out = append(b.out, T(sub, rel, obj))
}

func (b *complexBuilder) fresh(prefix string) string {
	return prefix + b.ids.NewID()
}

// displayLabel renders a label literal with its language tag.
func displayLabel(label string) string {
	return `"` + label + `"@` + landmark.LabelLanguage
}

func (b *complexBuilder) row(r event.Record) error {
	lmID := b.landmarkResource(r.LandmarkLabel.String(), r.LandmarkType.String())

	// relationID is scoped to the row: a relation change may only target a
	// relation created by the same row.
	var relationID string
	if relatum, ok := r.RelatumLabel.Get(); ok {
		relatumID := b.landmarkResource(relatum, r.RelatumType.String())

		relationID = b.fresh(PrefixRelation)
		b.add(relationID, landmark.IsLandmarkRelationType, r.RelationType.String())
		b.add(relationID, landmark.Locatum, lmID)
		b.add(relationID, landmark.Relatum, relatumID)
	}

	changeType, hasType := r.ChangeType.Get()
	changeOn, hasTarget := r.ChangeOn.Get()
	if !hasType || !hasTarget {
		return nil
	}

	changeID := b.fresh(PrefixChange)
	b.add(changeID, landmark.IsChangeType, changeType)
	b.add(changeID, landmark.DependsOn, b.eventID)

	switch changeOn {
	case landmark.TargetLandmark:
		b.add(changeID, landmark.AppliedOn, lmID)
	case landmark.TargetRelation:
		if relationID == "" {
			return ErrRelationNotEstablished
		}
		b.add(changeID, landmark.AppliedOn, relationID)
	case landmark.TargetAttribute:
		b.attributeChange(r, changeID, lmID)
	}
	return nil
}

func (b *complexBuilder) landmarkResource(label, typ string) string {
	id := b.registry.Landmark(label)
	b.add(id, landmark.IsLandmarkType, typ)
	b.add(id, landmark.Label, displayLabel(label))
	return id
}

func (b *complexBuilder) attributeChange(r event.Record, changeID, lmID string) {
	attrID := b.fresh(PrefixAttribute)
	b.add(attrID, landmark.IsAttributeType, r.AttributeType.String())
	b.add(changeID, landmark.AppliedOn, attrID)
	b.add(lmID, landmark.HasAttribute, attrID)

	if value, ok := r.MakesEffective.Get(); ok {
		b.version(attrID, changeID, landmark.MakesEffective, value)
	}
	if value, ok := r.Outdates.Get(); ok {
		b.version(attrID, changeID, landmark.Outdates, value)
	}
}

func (b *complexBuilder) version(attrID, changeID, link, value string) {
	versionID := b.fresh(PrefixAttributeVersion)
	b.add(attrID, landmark.HasAttributeVersion, versionID)
	b.add(versionID, landmark.VersionValue, value)
	b.add(changeID, link, versionID)
}
