package results

import (
	"encoding/csv"
	"strings"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/rdf"
)

// MultiValueSeparator joins the values of a multi-valued attribute in one
// CSV or TSV cell
const MultiValueSeparator = " | "

// FormatCSV writes one row per node and one column per attribute name.
// IRIs are written without angle brackets and literals without quotes.
func FormatCSV(nodes []*graph.Node) ([]byte, error) {
	var builder strings.Builder
	w := csv.NewWriter(&builder)

	cols := columns(nodes)
	if err := w.Write(cols); err != nil {
		return nil, err
	}

	for _, n := range nodes {
		row := make([]string, len(cols))
		for i, col := range cols {
			terms := cellTerms(n, col)
			values := make([]string, len(terms))
			for j, term := range terms {
				values[j] = termToCSVValue(term)
			}
			row[i] = strings.Join(values, MultiValueSeparator)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return []byte(builder.String()), nil
}

// termToCSVValue writes IRIs bare, blank nodes as _:label, language
// literals as value@lang and other literals as their lexical value
func termToCSVValue(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return t.IRI
	case *rdf.BlankNode:
		return t.String()
	case *rdf.Literal:
		if t.Language != "" {
			return t.Value + "@" + t.Language
		}
		return t.Value
	default:
		return term.String()
	}
}
