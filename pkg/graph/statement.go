package graph

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/grom/pkg/rdf"
)

// TypeName is the attribute key the rdf:type predicate is stored under.
const TypeName = "type"

// Statement is one raw triple as delivered by the fetch collaborator.
// Object holds an N-Triples encoded term.
type Statement struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// NewStatement encodes a parsed triple the way it travels in a payload.
func NewStatement(triple *rdf.Triple) Statement {
	subject, _ := rdf.TermKey(triple.Subject)
	predicate, _ := rdf.TermKey(triple.Predicate)
	return Statement{
		Subject:   subject,
		Predicate: predicate,
		Object:    rdf.FormatTerm(triple.Object),
	}
}

// Triple decodes the statement back into RDF terms.
func (s Statement) Triple() (*rdf.Triple, error) {
	object, _, err := ParseObject(s.Object)
	if err != nil {
		return nil, err
	}
	return rdf.NewTriple(subjectTerm(s.Subject), rdf.NewNamedNode(s.Predicate), object.Term()), nil
}

// IsType reports whether the statement declares the subject's type.
func (s Statement) IsType() bool {
	return PredicateName(s.Predicate) == TypeName
}

// Target returns the identifier of the node the statement's object refers
// to. It reports false for literals and for objects that do not parse.
func (s Statement) Target() (string, bool) {
	value, isRef, err := ParseObject(s.Object)
	if err != nil || !isRef {
		return "", false
	}
	return value.String(), true
}

func subjectTerm(subject string) rdf.Term {
	if rdf.IsBlankLabel(subject) {
		return rdf.NewBlankNode(subject)
	}
	return rdf.NewNamedNode(subject)
}

// ParseObject parses an encoded statement object. IRIs and blank nodes
// yield their identifier and isRef is true: the returned string is the key
// a target node is looked up by. Literals yield their unwrapped content and
// isRef is false.
//
// A bare absolute IRI without angle brackets is accepted as a reference.
func ParseObject(encoded string) (value Value, isRef bool, err error) {
	trimmed := strings.TrimSpace(encoded)

	var term rdf.Term
	if isBareIRI(trimmed) {
		term = rdf.NewNamedNode(trimmed)
	} else {
		term, err = rdf.ParseTerm(trimmed)
		if err != nil {
			return Value{}, false, fmt.Errorf("parse object: %w", err)
		}
	}

	return TermValue(term), term.Type() != rdf.TermTypeLiteral, nil
}

func isBareIRI(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n<>\"") {
		return false
	}
	if rdf.IsBlankLabel(s) {
		return false
	}
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || scheme == "" || rest == "" {
		return false
	}
	for i := 0; i < len(scheme); i++ {
		ch := scheme[i]
		isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		if i == 0 && !isAlpha {
			return false
		}
		if !isAlpha && !(ch >= '0' && ch <= '9') && ch != '+' && ch != '-' && ch != '.' {
			return false
		}
	}
	return true
}

// PredicateName returns the attribute key for a predicate IRI: "type" for
// rdf:type, otherwise the last path segment.
func PredicateName(predicate string) string {
	if predicate == rdf.RDFType.IRI {
		return TypeName
	}
	return lastSegment(predicate)
}

// GraphID returns the identifier a node exposes for its subject.
func GraphID(subject string) string {
	return lastSegment(subject)
}

func lastSegment(iri string) string {
	trimmed := strings.TrimRight(iri, "/")
	if idx := strings.LastIndexByte(trimmed, '/'); idx != -1 {
		return trimmed[idx+1:]
	}
	return trimmed
}
