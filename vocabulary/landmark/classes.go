package landmark

// ResourceNamespace is the base IRI for resource instances produced by the
// complex encoding.
const ResourceNamespace = "http://rdf.geohistoricaldata.org/id/"

// Class IRIs of the resources produced by the complex encoding.
const (
	// ClassEvent is a dated event grouping one or more changes.
	ClassEvent = Namespace + "Event"

	// ClassLandmark is a named place: street, bridge, district, square.
	ClassLandmark = Namespace + "Landmark"

	// ClassLandmarkRelation links a locatum landmark to a relatum landmark.
	ClassLandmarkRelation = Namespace + "LandmarkRelation"

	// ClassChange is a change applied to a landmark, relation or attribute.
	ClassChange = Namespace + "Change"

	// ClassAttribute is a changeable property of a landmark.
	ClassAttribute = Namespace + "Attribute"

	// ClassAttributeVersion is one value taken by an attribute over time.
	ClassAttributeVersion = Namespace + "AttributeVersion"
)
