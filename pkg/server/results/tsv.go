package results

import (
	"strings"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/rdf"
)

// FormatTSV writes one row per node and one column per attribute name.
// Cells hold N-Triples style terms, with numeric literals written bare.
func FormatTSV(nodes []*graph.Node) ([]byte, error) {
	var builder strings.Builder

	cols := columns(nodes)
	for i, col := range cols {
		if i > 0 {
			builder.WriteByte('\t')
		}
		builder.WriteString(escapeTSVString(col))
	}
	builder.WriteByte('\n')

	for _, n := range nodes {
		for i, col := range cols {
			if i > 0 {
				builder.WriteByte('\t')
			}
			for j, term := range cellTerms(n, col) {
				if j > 0 {
					builder.WriteString(MultiValueSeparator)
				}
				builder.WriteString(termToTSVValue(term))
			}
		}
		builder.WriteByte('\n')
	}

	return []byte(builder.String()), nil
}

// termToTSVValue converts an RDF term to a TSV cell value:
// <iri>, _:label, "value", "value"@lang, "value"^^<datatype>, and bare
// integer, decimal and double literals
func termToTSVValue(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return "<" + t.IRI + ">"
	case *rdf.BlankNode:
		return t.String()
	case *rdf.Literal:
		escaped := escapeTSVString(t.Value)
		if t.Language != "" {
			return "\"" + escaped + "\"@" + t.Language
		}
		if t.Datatype != nil {
			switch t.Datatype.IRI {
			case rdf.XSDInteger.IRI, rdf.XSDDecimal.IRI, rdf.XSDDouble.IRI:
				return t.Value
			case rdf.XSDString.IRI:
				return "\"" + escaped + "\""
			}
			return "\"" + escaped + "\"^^<" + t.Datatype.IRI + ">"
		}
		return "\"" + escaped + "\""
	default:
		return term.String()
	}
}

// escapeTSVString escapes tabs, newlines, carriage returns, quotes and
// backslashes
func escapeTSVString(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		"\t", "\\t",
		"\n", "\\n",
		"\r", "\\r",
		"\"", "\\\"",
	)
	return r.Replace(s)
}
