package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/semevents/triples"
	"github.com/c360studio/semevents/vocabulary/landmark"
)

// XSD is the XML Schema datatype namespace.
const XSD = "http://www.w3.org/2001/XMLSchema#"

// Well-known IRIs used by the exporter.
const (
	RDFType      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	DCIdentifier = "http://purl.org/dc/terms/identifier"
)

var (
	langLiteral  = regexp.MustCompile(`^"(.*)"@([A-Za-z]+(?:-[A-Za-z0-9]+)*)$`)
	yearPattern  = regexp.MustCompile(`^[0-9]{4}$`)
	monthPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`)
	datePattern  = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

// Term is an RDF node in object position: an IRI or a literal with an
// optional language tag or datatype.
type Term struct {
	IRI      string
	Value    string
	Lang     string
	Datatype string
}

// IRITerm returns a term referencing iri.
func IRITerm(iri string) Term {
	return Term{IRI: iri}
}

// Literal returns a plain string literal.
func Literal(value string) Term {
	return Term{Value: value}
}

// IsIRI reports whether the term is an IRI reference.
func (t Term) IsIRI() bool {
	return t.IRI != ""
}

// ResourceIRI converts a triple subject or resource identifier to an IRI.
func ResourceIRI(id string) string {
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return id
	}
	return landmark.ResourceNamespace + strings.ReplaceAll(id, " ", "_")
}

// ObjectTerm classifies a triple object. Resource identifiers become IRIs,
// quoted labels keep their language tag, dates get an XSD datatype and
// everything else is a plain literal.
func ObjectTerm(obj string) Term {
	switch {
	case triples.IsResourceID(obj):
		return IRITerm(ResourceIRI(obj))
	case strings.HasPrefix(obj, "http://"), strings.HasPrefix(obj, "https://"):
		return IRITerm(obj)
	}

	if m := langLiteral.FindStringSubmatch(obj); m != nil {
		return Term{Value: m[1], Lang: m[2]}
	}

	switch {
	case datePattern.MatchString(obj):
		return Term{Value: obj, Datatype: XSD + "date"}
	case monthPattern.MatchString(obj):
		return Term{Value: obj, Datatype: XSD + "gYearMonth"}
	case yearPattern.MatchString(obj):
		return Term{Value: obj, Datatype: XSD + "gYear"}
	}
	return Literal(obj)
}

// turtle renders the term for Turtle output, shortening XSD datatypes.
func (t Term) turtle() string {
	if t.IsIRI() {
		return fmt.Sprintf("<%s>", t.IRI)
	}
	lit := fmt.Sprintf("\"%s\"", escapeString(t.Value))
	switch {
	case t.Lang != "":
		return lit + "@" + t.Lang
	case strings.HasPrefix(t.Datatype, XSD):
		return lit + "^^xsd:" + strings.TrimPrefix(t.Datatype, XSD)
	case t.Datatype != "":
		return fmt.Sprintf("%s^^<%s>", lit, t.Datatype)
	}
	return lit
}

// nTriples renders the term for N-Triples output.
func (t Term) nTriples() string {
	if t.IsIRI() {
		return fmt.Sprintf("<%s>", t.IRI)
	}
	lit := fmt.Sprintf("\"%s\"", escapeString(t.Value))
	switch {
	case t.Lang != "":
		return lit + "@" + t.Lang
	case t.Datatype != "":
		return fmt.Sprintf("%s^^<%s>", lit, t.Datatype)
	}
	return lit
}

// jsonLD returns the JSON-LD value object of the term.
func (t Term) jsonLD() any {
	switch {
	case t.IsIRI():
		return map[string]any{"@id": t.IRI}
	case t.Lang != "":
		return map[string]any{"@value": t.Value, "@language": t.Lang}
	case t.Datatype != "":
		return map[string]any{"@value": t.Value, "@type": t.Datatype}
	}
	return t.Value
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
