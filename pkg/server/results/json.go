package results

import (
	"bytes"
	"encoding/json"

	"github.com/aleksaelezovic/grom/pkg/graph"
)

// GraphJSON is the JSON document a built graph is served as.
//
// Without filters Nodes holds every node. With one filter Nodes holds that
// filter's bucket. With several, Buckets holds one entry per filter type in
// request order and Nodes is omitted.
type GraphJSON struct {
	URI     string        `json:"uri,omitempty"`
	Filters []string      `json:"filters,omitempty"`
	Count   int           `json:"count"`
	Nodes   []*graph.Node `json:"nodes,omitempty"`
	Buckets []BucketJSON  `json:"buckets,omitempty"`
}

// BucketJSON is the nodes filed under one filter type
type BucketJSON struct {
	Type  string        `json:"type"`
	Nodes []*graph.Node `json:"nodes"`
}

// NewGraphJSON selects the nodes of result for serialization
func NewGraphJSON(uri string, result *graph.Result) *GraphJSON {
	doc := &GraphJSON{URI: uri, Filters: result.Filters()}

	if len(doc.Filters) > 1 {
		for i, bucket := range result.Buckets() {
			if bucket == nil {
				bucket = []*graph.Node{}
			}
			doc.Buckets = append(doc.Buckets, BucketJSON{Type: doc.Filters[i], Nodes: bucket})
			doc.Count += len(bucket)
		}
		return doc
	}

	doc.Nodes = result.Nodes()
	if doc.Nodes == nil {
		doc.Nodes = []*graph.Node{}
	}
	doc.Count = len(doc.Nodes)
	return doc
}

// FormatJSON serializes result as a GraphJSON document
func FormatJSON(uri string, result *graph.Result) ([]byte, error) {
	return MarshalJSON(NewGraphJSON(uri, result))
}

// MarshalJSON encodes v followed by a newline, leaving <, > and & unescaped
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
