package results

import (
	"fmt"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/rdf"
)

// Column names shared by the tabular formats
const (
	ColumnID      = "@id"
	ColumnGraphID = "graph_id"
)

// FormatNTriples writes the statements every node was built from as
// canonical N-Triples, nodes in order
func FormatNTriples(nodes []*graph.Node) ([]byte, error) {
	var triples []*rdf.Triple
	for _, n := range nodes {
		for _, st := range n.Statements() {
			triple, err := st.Triple()
			if err != nil {
				return nil, fmt.Errorf("statement of %s: %w", n.Subject(), err)
			}
			triples = append(triples, triple)
		}
	}
	return []byte(rdf.SerializeTriples(triples)), nil
}

// columns returns the identifier columns followed by every attribute name
// in first-seen order
func columns(nodes []*graph.Node) []string {
	cols := []string{ColumnID, ColumnGraphID}
	seen := make(map[string]bool)
	for _, n := range nodes {
		for _, name := range n.Names() {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	return cols
}

// cellTerms returns the terms stored under column. Linked nodes are written
// as their subject.
func cellTerms(n *graph.Node, column string) []rdf.Term {
	switch column {
	case ColumnID:
		return []rdf.Term{subjectTerm(n.Subject())}
	case ColumnGraphID:
		return []rdf.Term{rdf.NewLiteral(n.GraphID())}
	}

	v, ok := n.Get(column)
	if !ok {
		return nil
	}
	var terms []rdf.Term
	for _, item := range v.Items() {
		switch {
		case item.IsNode():
			terms = append(terms, subjectTerm(item.Node().Subject()))
		case item.Term() != nil:
			terms = append(terms, item.Term())
		default:
			terms = append(terms, rdf.NewLiteral(item.String()))
		}
	}
	return terms
}

func subjectTerm(subject string) rdf.Term {
	if rdf.IsBlankLabel(subject) {
		return rdf.NewBlankNode(subject)
	}
	return rdf.NewNamedNode(subject)
}
