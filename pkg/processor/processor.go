// Package processor turns an RDF response body into the grouped payload the
// graph builder consumes.
package processor

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/rdf"
)

// Processor groups parsed triples by subject and collects the edge table.
type Processor struct {
	Logger *slog.Logger
}

// Process is shorthand for a zero Processor's Process.
func Process(body []byte, contentType string) (*graph.Payload, error) {
	var p Processor
	return p.Process(bytes.NewReader(body), contentType)
}

// Process parses r with the parser registered for contentType and returns
// the payload. Statement subjects keep the order they first appear in.
func (p *Processor) Process(r io.Reader, contentType string) (*graph.Payload, error) {
	parser, err := rdf.NewParser(contentType)
	if err != nil {
		return nil, err
	}

	p.logger().Debug("decoding", "content_type", parser.ContentType())
	triples, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	p.logger().Debug("decoded", "triples", len(triples))

	payload := FromTriples(triples)
	p.logger().Debug("grouped", "subjects", len(payload.Subjects), "edge_subjects", len(payload.Edges))
	return payload, nil
}

// FromTriples builds a payload from triples. Every IRI or blank node object
// becomes an edge, except through predicates stored under the type
// attribute: rdf:type and any other predicate IRI ending in /type.
func FromTriples(triples []*rdf.Triple) *graph.Payload {
	payload := &graph.Payload{}

	for _, triple := range triples {
		st := graph.NewStatement(triple)
		payload.AddStatement(st)

		if st.IsType() {
			continue
		}
		if target, ok := st.Target(); ok {
			payload.AddEdge(st.Subject, st.Predicate, target)
		}
	}

	return payload
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
