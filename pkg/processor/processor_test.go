package processor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/rdf"
)

const body = `<https://id.example.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <https://id.example.org/schema/Person> .
<https://id.example.org/alice> <https://id.example.org/schema/name> "Alice"@en .
<https://id.example.org/alice> <https://id.example.org/schema/knows> <https://id.example.org/bob> .
<https://id.example.org/bob> <https://id.example.org/schema/age> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .
<https://id.example.org/alice> <https://id.example.org/schema/address> _:addr .
_:addr <https://id.example.org/schema/city> "London" .
`

const turtleBody = `@prefix s: <https://id.example.org/schema/> .
@base <https://id.example.org/> .

<alice> a s:Person ;
    s:name "Alice"@en ;
    s:knows <bob> ;
    s:address _:addr .
<bob> s:age 42 .
_:addr s:city "London" .
`

func expectedPayload() *graph.Payload {
	return &graph.Payload{
		Subjects: []graph.SubjectStatements{
			{Subject: "https://id.example.org/alice", Statements: []graph.Statement{
				{Subject: "https://id.example.org/alice", Predicate: rdf.RDFType.IRI, Object: "<https://id.example.org/schema/Person>"},
				{Subject: "https://id.example.org/alice", Predicate: "https://id.example.org/schema/name", Object: `"Alice"@en`},
				{Subject: "https://id.example.org/alice", Predicate: "https://id.example.org/schema/knows", Object: "<https://id.example.org/bob>"},
				{Subject: "https://id.example.org/alice", Predicate: "https://id.example.org/schema/address", Object: "_:addr"},
			}},
			{Subject: "https://id.example.org/bob", Statements: []graph.Statement{
				{Subject: "https://id.example.org/bob", Predicate: "https://id.example.org/schema/age", Object: `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`},
			}},
			{Subject: "_:addr", Statements: []graph.Statement{
				{Subject: "_:addr", Predicate: "https://id.example.org/schema/city", Object: `"London"`},
			}},
		},
		Edges: []graph.SubjectEdges{
			{Subject: "https://id.example.org/alice", Predicates: []graph.PredicateTargets{
				{Predicate: "https://id.example.org/schema/knows", Targets: []string{"https://id.example.org/bob"}},
				{Predicate: "https://id.example.org/schema/address", Targets: []string{"_:addr"}},
			}},
		},
	}
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"n-triples", body, "application/n-triples"},
		{"turtle", turtleBody, "text/turtle; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Process([]byte(tt.body), tt.contentType)
			if err != nil {
				t.Fatalf("process: %v", err)
			}
			if diff := cmp.Diff(expectedPayload(), payload, cmpopts.IgnoreUnexported(graph.Payload{})); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcessBuildsLinkedGraph(t *testing.T) {
	payload, err := Process([]byte(body), "")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	result, err := graph.Build(payload, []string{"Person"}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	people := result.Nodes()
	if len(people) != 1 {
		t.Fatalf("expected 1 person, got %d", len(people))
	}
	address, _ := people[0].Get("address")
	refs := address.Nodes()
	if len(refs) != 1 || refs[0].Text("city") != "London" {
		t.Errorf("address not linked to blank node: %v", address.Strings())
	}
}

func TestProcessTypeLikePredicates(t *testing.T) {
	input := `<http://example.org/a> <http://purl.org/dc/terms/type> <http://example.org/b> .
<http://example.org/a> <http://example.org/schema/type> <http://example.org/c> .
<http://example.org/a> <http://example.org/schema/knows> <http://example.org/b> .
<http://example.org/b> <http://example.org/name> "B" .
`
	payload, err := Process([]byte(input), "application/n-triples")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	wantEdges := []graph.SubjectEdges{
		{Subject: "http://example.org/a", Predicates: []graph.PredicateTargets{
			{Predicate: "http://example.org/schema/knows", Targets: []string{"http://example.org/b"}},
		}},
	}
	if diff := cmp.Diff(wantEdges, payload.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	result, err := graph.Build(payload, nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a, ok := result.Lookup("http://example.org/a")
	if !ok {
		t.Fatal("node a missing")
	}
	want := []string{"http://example.org/b", "http://example.org/c"}
	if diff := cmp.Diff(want, a.Types()); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
	knows, _ := a.Get("knows")
	if refs := knows.Nodes(); len(refs) != 1 || refs[0].Text("name") != "B" {
		t.Errorf("knows not linked: %v", knows.Strings())
	}
}

func TestProcessErrors(t *testing.T) {
	if _, err := Process([]byte("<a> <b> ."), "application/n-triples"); !errors.Is(err, rdf.ErrSyntax) {
		t.Errorf("expected syntax error, got %v", err)
	}
	if _, err := Process([]byte(body), "application/ld+json"); err == nil {
		t.Error("expected unsupported content type error")
	}
}

func TestProcessQuads(t *testing.T) {
	quads := `<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .
`
	payload, err := Process([]byte(quads), "application/n-quads; charset=utf-8")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(payload.Subjects) != 1 || len(payload.Edges) != 1 {
		t.Errorf("unexpected payload %+v", payload)
	}
}
