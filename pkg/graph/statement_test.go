package graph

import (
	"errors"
	"testing"

	"github.com/aleksaelezovic/grom/pkg/rdf"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		name      string
		encoded   string
		wantValue string
		wantRef   bool
		wantErr   bool
	}{
		{name: "IRI", encoded: "<http://example.org/bob>", wantValue: "http://example.org/bob", wantRef: true},
		{name: "bare IRI", encoded: "https://id.parliament.uk/abc", wantValue: "https://id.parliament.uk/abc", wantRef: true},
		{name: "blank node", encoded: "_:b1", wantValue: "_:b1", wantRef: true},
		{name: "plain literal", encoded: `"Jane"`, wantValue: "Jane"},
		{name: "language literal", encoded: `"bonjour"@fr`, wantValue: "bonjour"},
		{name: "typed literal", encoded: `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`, wantValue: "42"},
		{name: "escaped literal", encoded: `"a\"b\nc"`, wantValue: "a\"b\nc"},
		{name: "surrounding whitespace", encoded: "  \"x\" ", wantValue: "x"},
		{name: "unterminated literal", encoded: `"Jane`, wantErr: true},
		{name: "bare word", encoded: "Jane", wantErr: true},
		{name: "empty", encoded: "", wantErr: true},
		{name: "trailing garbage", encoded: `"a" "b"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, isRef, err := ParseObject(tt.encoded)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", value)
				}
				if !errors.Is(err, rdf.ErrSyntax) {
					t.Errorf("expected rdf.ErrSyntax, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !value.IsScalar() {
				t.Fatalf("expected scalar, got %s", value.Kind())
			}
			if value.String() != tt.wantValue {
				t.Errorf("value = %q, want %q", value.String(), tt.wantValue)
			}
			if isRef != tt.wantRef {
				t.Errorf("isRef = %v, want %v", isRef, tt.wantRef)
			}
		})
	}
}

func TestParseObjectKeepsLiteral(t *testing.T) {
	value, _, err := ParseObject(`"bonjour"@FR`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := value.Literal()
	if lit == nil {
		t.Fatal("expected literal")
	}
	if lit.Language != "FR" {
		t.Errorf("language = %q", lit.Language)
	}

	value, _, err = ParseObject("<http://example.org/x>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.Literal() != nil {
		t.Error("IRI value should not expose a literal")
	}
}

func TestPredicateName(t *testing.T) {
	tests := []struct {
		predicate string
		want      string
	}{
		{rdf.RDFType.IRI, "type"},
		{"type", "type"},
		{"name", "name"},
		{"http://xmlns.com/foaf/0.1/name", "name"},
		{"https://id.parliament.uk/schema/personGivenName/", "personGivenName"},
		{"http://example.org/schema#label", "schema#label"},
	}

	for _, tt := range tests {
		if got := PredicateName(tt.predicate); got != tt.want {
			t.Errorf("PredicateName(%q) = %q, want %q", tt.predicate, got, tt.want)
		}
	}
}

func TestGraphID(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"https://id.parliament.uk/43RHonc2", "43RHonc2"},
		{"https://id.parliament.uk/43RHonc2/", "43RHonc2"},
		{"_:b0", "_:b0"},
		{"s1", "s1"},
	}

	for _, tt := range tests {
		if got := GraphID(tt.subject); got != tt.want {
			t.Errorf("GraphID(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}

func TestStatementTripleRoundTrip(t *testing.T) {
	triple := rdf.NewTriple(
		rdf.NewBlankNode("_:b1"),
		rdf.NewNamedNode("http://example.org/p"),
		rdf.NewLiteralWithLanguage("hi", "en"),
	)

	st := NewStatement(triple)
	if st.Subject != "_:b1" || st.Object != `"hi"@en` {
		t.Fatalf("unexpected statement %+v", st)
	}

	back, err := st.Triple()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Subject.Equals(triple.Subject) || !back.Predicate.Equals(triple.Predicate) || !back.Object.Equals(triple.Object) {
		t.Errorf("round trip mismatch: %s vs %s", back, triple)
	}
}

func TestStatementIsType(t *testing.T) {
	if !(Statement{Predicate: rdf.RDFType.IRI}).IsType() {
		t.Error("rdf:type should be a type statement")
	}
	if (Statement{Predicate: "http://example.org/name"}).IsType() {
		t.Error("name should not be a type statement")
	}
}

func TestStatementTarget(t *testing.T) {
	tests := []struct {
		object string
		want   string
		ok     bool
	}{
		{"<http://example.org/b>", "http://example.org/b", true},
		{"_:addr", "_:addr", true},
		{"http://example.org/bare", "http://example.org/bare", true},
		{`"http://example.org/b"`, "", false},
		{`"42"^^<http://www.w3.org/2001/XMLSchema#integer>`, "", false},
		{`"unterminated`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.object, func(t *testing.T) {
			got, ok := Statement{Subject: "s", Predicate: "p", Object: tt.object}.Target()
			if got != tt.want || ok != tt.ok {
				t.Errorf("Target() = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
