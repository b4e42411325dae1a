// Package export serializes complex event descriptions as RDF.
//
// Each subject of a complex description becomes one resource typed with the
// ADDRESSES class matching its identifier prefix. Short predicate names are
// resolved through the landmark vocabulary.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/semevents/triples"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

// classByPrefix maps resource identifier prefixes to their class IRI.
var classByPrefix = map[string]string{
	triples.PrefixEvent:            landmark.ClassEvent,
	triples.PrefixLandmark:         landmark.ClassLandmark,
	triples.PrefixRelation:         landmark.ClassLandmarkRelation,
	triples.PrefixChange:           landmark.ClassChange,
	triples.PrefixAttribute:        landmark.ClassAttribute,
	triples.PrefixAttributeVersion: landmark.ClassAttributeVersion,
}

// ClassFor returns the class IRI of a resource identifier, or "" when the
// identifier carries no known prefix.
func ClassFor(id string) string {
	if !triples.IsResourceID(id) {
		return ""
	}
	for prefix, class := range classByPrefix {
		if strings.HasPrefix(id, prefix) {
			return class
		}
	}
	return ""
}

// Statement is one predicate-object pair of a resource.
type Statement struct {
	Predicate string
	Object    Term
}

// Resource is an exportable subject with its class and statements.
type Resource struct {
	IRI        string
	Class      string
	Statements []Statement
}

// RDFExporter accumulates descriptions and serializes them.
type RDFExporter struct {
	prefixes  map[string]string
	resources []*Resource
	index     map[string]*Resource
}

// NewRDFExporter creates an exporter with the default prefixes.
func NewRDFExporter() *RDFExporter {
	return &RDFExporter{
		prefixes: defaultPrefixes(),
		index:    make(map[string]*Resource),
	}
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
		"xsd":  XSD,
		"dc":   "http://purl.org/dc/terms/",
		"addr": landmark.Namespace,
		"res":  landmark.ResourceNamespace,
	}
}

// SetPrefix adds or replaces a namespace prefix.
func (e *RDFExporter) SetPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// Len returns the number of resources collected.
func (e *RDFExporter) Len() int {
	return len(e.resources)
}

// Resources returns the collected resources in first-seen order.
func (e *RDFExporter) Resources() []*Resource {
	return e.resources
}

func (e *RDFExporter) resource(id string) *Resource {
	iri := ResourceIRI(id)
	if r, ok := e.index[iri]; ok {
		return r
	}
	r := &Resource{IRI: iri, Class: ClassFor(id)}
	e.index[iri] = r
	e.resources = append(e.resources, r)
	return r
}

// AddDescription adds every triple of a complex description. The event
// resource referenced by dependsOn receives the description id and label.
func (e *RDFExporter) AddDescription(desc triples.Description) {
	for _, t := range desc.Triples {
		e.AddTriple(t)

		if t.Rel != landmark.DependsOn || !strings.HasPrefix(t.Obj, triples.PrefixEvent) {
			continue
		}
		ev := e.resource(t.Obj)
		if len(ev.Statements) > 0 {
			continue
		}
		if desc.ID != nil {
			ev.Statements = append(ev.Statements, Statement{DCIdentifier, Literal(*desc.ID)})
		}
		if desc.Sent != nil {
			ev.Statements = append(ev.Statements, Statement{
				Predicate: landmark.RDFSLabel,
				Object:    Term{Value: *desc.Sent, Lang: landmark.LabelLanguage},
			})
		}
	}
}

// AddTriple adds a single triple.
func (e *RDFExporter) AddTriple(t triples.Triple) {
	r := e.resource(t.Sub)
	r.Statements = append(r.Statements, Statement{
		Predicate: landmark.IRI(t.Rel),
		Object:    ObjectTerm(t.Obj),
	})
}

// Export serializes all resources to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteFile exports to path, creating parent directories.
func (e *RDFExporter) WriteFile(path string, format Format) error {
	out, err := e.Export(format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

func (e *RDFExporter) toTurtle() string {
	w := NewTurtleWriter(e.prefixes)
	w.WritePrefixes()

	for _, r := range e.resources {
		w.WriteSubject(r.IRI)
		if r.Class != "" {
			w.WriteType(r.Class, len(r.Statements) == 0)
		}
		for i, s := range r.Statements {
			w.WritePredicate(s.Predicate, s.Object, i == len(r.Statements)-1)
		}
		w.WriteBlank()
	}
	return w.String()
}

func (e *RDFExporter) toNTriples() string {
	w := NewNTriplesWriter()
	for _, r := range e.resources {
		if r.Class != "" {
			w.WriteTypeTriple(r.IRI, r.Class)
		}
		for _, s := range r.Statements {
			w.WriteTriple(r.IRI, s.Predicate, s.Object)
		}
	}
	return w.String()
}

func (e *RDFExporter) toJSONLD() (string, error) {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)

	for _, r := range e.resources {
		props := make(map[string]any, len(r.Statements))
		for _, s := range r.Statements {
			value := s.Object.jsonLD()
			switch existing := props[s.Predicate].(type) {
			case nil:
				props[s.Predicate] = value
			case []any:
				props[s.Predicate] = append(existing, value)
			default:
				props[s.Predicate] = []any{existing, value}
			}
		}

		var types []string
		if r.Class != "" {
			types = []string{r.Class}
		}
		w.AddNode(r.IRI, types, props)
	}
	return w.String()
}
