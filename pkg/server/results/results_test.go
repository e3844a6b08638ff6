package results

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aleksaelezovic/grom/pkg/graph"
)

const (
	alice  = "http://example.org/alice"
	bob    = "http://example.org/bob"
	person = "http://example.org/schema/Person"
	org    = "http://example.org/schema/Org"

	rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	name    = "http://xmlns.com/foaf/0.1/name"
	knows   = "http://xmlns.com/foaf/0.1/knows"
	age     = "http://xmlns.com/foaf/0.1/age"
)

func people(t *testing.T, filters ...string) *graph.Result {
	t.Helper()

	p := &graph.Payload{StatusCode: 200}
	for _, st := range []graph.Statement{
		{Subject: alice, Predicate: rdfType, Object: "<" + person + ">"},
		{Subject: alice, Predicate: name, Object: `"Alice"`},
		{Subject: alice, Predicate: knows, Object: "<" + bob + ">"},
		{Subject: bob, Predicate: rdfType, Object: "<" + person + ">"},
		{Subject: bob, Predicate: name, Object: `"Bob, Jr"`},
		{Subject: bob, Predicate: age, Object: `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`},
	} {
		p.AddStatement(st)
	}
	p.AddEdge(alice, knows, bob)

	result, err := graph.Build(p, filters, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return result
}

func TestFormatCSV(t *testing.T) {
	data, err := FormatCSV(people(t).Nodes())
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	want := "@id,graph_id,type,name,knows,age\n" +
		"http://example.org/alice,alice,http://example.org/schema/Person,Alice,http://example.org/bob | http://example.org/bob,\n" +
		"http://example.org/bob,bob,http://example.org/schema/Person,\"Bob, Jr\",,42\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatTSV(t *testing.T) {
	data, err := FormatTSV(people(t).Nodes())
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	want := "@id\tgraph_id\ttype\tname\tknows\tage\n" +
		"<http://example.org/alice>\t\"alice\"\t<http://example.org/schema/Person>\t\"Alice\"\t<http://example.org/bob> | <http://example.org/bob>\t\n" +
		"<http://example.org/bob>\t\"bob\"\t<http://example.org/schema/Person>\t\"Bob, Jr\"\t\t42\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("tsv mismatch (-want +got):\n%s", diff)
	}
}

func TestEscapeTSVString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a\tb", `a\tb`},
		{"line\nbreak\r", `line\nbreak\r`},
		{`say "hi"`, `say \"hi\"`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeTSVString(tt.in); got != tt.want {
			t.Errorf("escapeTSVString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNTriples(t *testing.T) {
	data, err := FormatNTriples(people(t).All())
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	want := strings.Join([]string{
		"<http://example.org/alice> <" + rdfType + "> <" + person + "> .",
		"<http://example.org/alice> <" + name + "> \"Alice\" .",
		"<http://example.org/alice> <" + knows + "> <http://example.org/bob> .",
		"<http://example.org/bob> <" + rdfType + "> <" + person + "> .",
		"<http://example.org/bob> <" + name + "> \"Bob, Jr\" .",
		"<http://example.org/bob> <" + age + "> \"42\"^^<http://www.w3.org/2001/XMLSchema#integer> .",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("n-triples mismatch (-want +got):\n%s", diff)
	}
}

type graphDoc struct {
	URI     string           `json:"uri"`
	Filters []string         `json:"filters"`
	Count   int              `json:"count"`
	Nodes   []map[string]any `json:"nodes"`
	Buckets []struct {
		Type  string           `json:"type"`
		Nodes []map[string]any `json:"nodes"`
	} `json:"buckets"`
}

func decodeDoc(t *testing.T, data []byte) graphDoc {
	t.Helper()
	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return doc
}

func TestFormatJSONSingleFilter(t *testing.T) {
	data, err := FormatJSON("https://api.example.org/people", people(t, "Person"))
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	doc := decodeDoc(t, data)

	if doc.URI != "https://api.example.org/people" || doc.Count != 2 || len(doc.Buckets) != 0 {
		t.Errorf("unexpected document: %s", data)
	}
	if len(doc.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(doc.Nodes))
	}

	want := map[string]any{
		"@id":      alice,
		"graph_id": "alice",
		"type":     person,
		"name":     "Alice",
		"knows":    []any{bob, map[string]any{"@id": bob}},
	}
	if diff := cmp.Diff(want, doc.Nodes[0]); diff != "" {
		t.Errorf("alice mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatJSONBuckets(t *testing.T) {
	data, err := FormatJSON("", people(t, "Person", org))
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	doc := decodeDoc(t, data)

	if doc.Nodes != nil {
		t.Errorf("nodes should be omitted with several filters: %s", data)
	}
	if len(doc.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(doc.Buckets))
	}
	if doc.Buckets[0].Type != "Person" || len(doc.Buckets[0].Nodes) != 2 {
		t.Errorf("person bucket = %+v", doc.Buckets[0])
	}
	if doc.Buckets[1].Type != org || doc.Buckets[1].Nodes == nil || len(doc.Buckets[1].Nodes) != 0 {
		t.Errorf("org bucket should be an empty list: %s", data)
	}
	if doc.Count != 2 {
		t.Errorf("count = %d", doc.Count)
	}
}

func TestFormatJSONKeepsAngleBrackets(t *testing.T) {
	p := &graph.Payload{StatusCode: 200}
	p.AddStatement(graph.Statement{Subject: alice, Predicate: name, Object: `"<b>Alice</b>"`})
	result, err := graph.Build(p, nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	data, err := FormatJSON("", result)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(string(data), `"<b>Alice</b>"`) {
		t.Errorf("expected unescaped markup in %s", data)
	}
}
