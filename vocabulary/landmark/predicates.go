package landmark

import "github.com/c360studio/semstreams/vocabulary"

// Namespace is the base IRI of the ADDRESSES ontology.
const Namespace = "http://rdf.geohistoricaldata.org/def/address#"

// RDFSLabel is the standard IRI used for display labels.
const RDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"

// Landmark and relation predicates.
const (
	// IsLandmarkType links a landmark to its type (street, bridge, district...).
	IsLandmarkType = "isLandmarkType"

	// IsLandmarkTypeOf is the inverse of IsLandmarkType, used by BERT descriptions.
	IsLandmarkTypeOf = "isLandmarkTypeOf"

	// Label is the display label of a landmark resource.
	Label = "label"

	// IsLandmarkRelationType links a landmark relation to its type.
	IsLandmarkRelationType = "isLandmarkRelationType"

	// Locatum is the landmark being located by a relation.
	Locatum = "locatum"

	// Relatum is the landmark used as reference by a relation.
	Relatum = "relatum"
)

// Change predicates.
const (
	IsChangeType = "isChangeType"
	DependsOn    = "dependsOn"
	AppliedOn    = "appliedOn"

	// MakesEffective and Outdates keep the column spelling of the source table.
	MakesEffective = "makes_effective"
	Outdates       = "outdates"

	HasTime = "hasTime"

	// EventIdentifier carries the source event_id on an event resource.
	EventIdentifier = "eventIdentifier"
)

// Attribute predicates.
const (
	IsAttributeType     = "isAttributeType"
	HasAttribute        = "hasAttribute"
	HasAttributeVersion = "hasAttributeVersion"
	VersionValue        = "versionValue"
)

// Time and value predicates selected by the change rules.
const (
	AppearsOn                = "appearsOn"
	DisappearsOn             = "disappearsOn"
	IsClassifiedOn           = "isClassifiedOn"
	IsNumberedOn             = "isNumberedOn"
	HasAppearedRelationOn    = "hasAppearedRelationOn"
	HasDisappearedRelationOn = "hasDisappearedRelationOn"
	HasNameChangeOn          = "hasNameChangeOn"
	HasOldName               = "hasOldName"
	HasNewName               = "hasNewName"
	HasGeometryChangeOn      = "hasGeometryChangeOn"
	HasOldGeometry           = "hasOldGeometry"
	HasNewGeometry           = "hasNewGeometry"
)

// NoTime is the object used when a change has no recorded time.
const NoTime = "noTime"

// LabelLanguage is the language tag attached to display labels.
const LabelLanguage = "fr"

// Change types found in the change_type column.
const (
	ChangeAppearance    = "appearance"
	ChangeDisappearance = "disappearance"
	ChangeTransition    = "transition"
)

// Change targets found in the change_on column.
const (
	TargetLandmark     = "landmark"
	TargetRelation     = "relation"
	TargetAttribute    = "attribute"
	TargetClassement   = "classement"
	TargetNumerotation = "numerotation"
)

// Attribute types found in the attribute_type column.
const (
	AttributeName     = "name"
	AttributeGeometry = "geometry"
)

type definition struct {
	name        string
	registered  string
	description string
	dataType    string
}

var definitions = []definition{
	{IsLandmarkType, "landmark.type.is_landmark_type", "Type of a landmark", "string"},
	{IsLandmarkTypeOf, "landmark.type.is_landmark_type_of", "Landmark having this type", "string"},
	{Label, "landmark.type.label", "Display label of a landmark", "string"},
	{IsLandmarkRelationType, "landmark.relation.type", "Type of a landmark relation", "string"},
	{Locatum, "landmark.relation.locatum", "Landmark located by the relation", "entity_id"},
	{Relatum, "landmark.relation.relatum", "Reference landmark of the relation", "entity_id"},
	{IsChangeType, "landmark.change.type", "Kind of change", "string"},
	{DependsOn, "landmark.change.depends_on", "Event the change belongs to", "entity_id"},
	{AppliedOn, "landmark.change.applied_on", "Resource affected by the change", "entity_id"},
	{MakesEffective, "landmark.change.makes_effective", "Attribute version made effective by the change", "entity_id"},
	{Outdates, "landmark.change.outdates", "Attribute version outdated by the change", "entity_id"},
	{HasTime, "landmark.event.has_time", "Time of an event", "string"},
	{EventIdentifier, "landmark.event.identifier", "Identifier of the event in the source table", "string"},
	{IsAttributeType, "landmark.attribute.type", "Type of a landmark attribute", "string"},
	{HasAttribute, "landmark.attribute.has_attribute", "Attribute of a landmark", "entity_id"},
	{HasAttributeVersion, "landmark.attribute.has_version", "Version of an attribute", "entity_id"},
	{VersionValue, "landmark.attribute.version_value", "Value held by an attribute version", "string"},
	{AppearsOn, "landmark.change.appears_on", "Date a landmark appears", "string"},
	{DisappearsOn, "landmark.change.disappears_on", "Date a landmark disappears", "string"},
	{IsClassifiedOn, "landmark.change.is_classified_on", "Date a landmark classification ends", "string"},
	{IsNumberedOn, "landmark.change.is_numbered_on", "Date a landmark numbering ends", "string"},
	{HasAppearedRelationOn, "landmark.change.relation_appears_on", "Date a landmark relation appears", "string"},
	{HasDisappearedRelationOn, "landmark.change.relation_disappears_on", "Date a landmark relation disappears", "string"},
	{HasNameChangeOn, "landmark.change.name_change_on", "Date of a name change", "string"},
	{HasOldName, "landmark.change.old_name", "Name before a name change", "string"},
	{HasNewName, "landmark.change.new_name", "Name after a name change", "string"},
	{HasGeometryChangeOn, "landmark.change.geometry_change_on", "Date of a geometry change", "string"},
	{HasOldGeometry, "landmark.change.old_geometry", "Geometry before a geometry change", "string"},
	{HasNewGeometry, "landmark.change.new_geometry", "Geometry after a geometry change", "string"},
}

var registeredNames = func() map[string]string {
	m := make(map[string]string, len(definitions))
	for _, d := range definitions {
		m[d.name] = d.registered
	}
	return m
}()

func init() {
	for _, d := range definitions {
		vocabulary.Register(d.registered,
			vocabulary.WithDescription(d.description),
			vocabulary.WithDataType(d.dataType),
			vocabulary.WithIRI(iriFor(d.name)))
	}
}

func iriFor(name string) string {
	if name == Label {
		return RDFSLabel
	}
	return Namespace + name
}

// RegisteredName returns the dotted vocabulary name of a short predicate.
func RegisteredName(name string) (string, bool) {
	dotted, ok := registeredNames[name]
	return dotted, ok
}

// IRI returns the IRI of a short predicate name. Names that are not part of the
// vocabulary, such as relation types read from data, resolve inside Namespace.
func IRI(name string) string {
	if dotted, ok := registeredNames[name]; ok {
		if meta := vocabulary.GetPredicateMetadata(dotted); meta != nil && meta.StandardIRI != "" {
			return meta.StandardIRI
		}
	}
	return iriFor(name)
}
