// Package landmark provides vocabulary predicates for historical landmark events.
//
// Triples produced by the generators use short ontology names such as
// isLandmarkType or appearsOn. Each short name is also registered with the
// semstreams vocabulary under a three-level dotted name so that graph consumers
// can look up its description, data type and IRI.
//
// # Semstreams Integration
//
//   - Dotted names follow domain.category.property (landmark.change.appears_on)
//   - Predicates are registered in init() using vocabulary.Register()
//   - IRIs point into the ADDRESSES ontology namespace, except label which maps
//     to rdfs:label
//
// # Resource Model
//
// Complex descriptions reify every assertion:
//
//	Event (EV_)  <-dependsOn-  Change (CG_)  -appliedOn->  Landmark (LM_)
//	                                                      | Relation (LR_)
//	                                                      | Attribute (ATTR_)
//	Attribute (ATTR_) -hasAttributeVersion-> Version (AV_) -versionValue-> literal
//	Change (CG_) -makes_effective / outdates-> Version (AV_)
package landmark
