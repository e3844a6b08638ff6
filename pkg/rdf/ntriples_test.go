package rdf

import (
	"errors"
	"strings"
	"testing"
)

func TestParseNTriples(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int // number of triples expected
		wantErr  bool
	}{
		{
			name:     "simple triple",
			input:    "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n",
			expected: 1,
		},
		{
			name: "literals",
			input: `<http://example.org/s1> <http://example.org/p1> "literal1" .
<http://example.org/s2> <http://example.org/p2> "2016-06-27+01:00"^^<http://www.w3.org/2001/XMLSchema#date> .
<http://example.org/s3> <http://example.org/p3> "hello"@en-GB .
`,
			expected: 3,
		},
		{
			name: "blank nodes and comments",
			input: `# leading comment
_:b1 <http://example.org/p> "value" .
<http://example.org/s> <http://example.org/p> _:b2 . # trailing
`,
			expected: 2,
		},
		{
			name:     "CRLF line endings",
			input:    "<http://example.org/s> <http://example.org/p> \"a\" .\r\n<http://example.org/s> <http://example.org/p> \"b\" .\r\n",
			expected: 2,
		},
		{
			name:     "empty document",
			input:    "",
			expected: 0,
		},
		{
			name:    "missing dot",
			input:   "<http://example.org/s> <http://example.org/p> <http://example.org/o>\n",
			wantErr: true,
		},
		{
			name:    "literal subject",
			input:   `"s" <http://example.org/p> "o" .`,
			wantErr: true,
		},
		{
			name:    "relative IRI",
			input:   "<s> <http://example.org/p> <http://example.org/o> .",
			wantErr: true,
		},
		{
			name:    "quad rejected by N-Triples",
			input:   "<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .",
			wantErr: true,
		},
		{
			name:    "not triples",
			input:   `{"error":"Definitely not Triples"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triples, err := NewNTriplesParser(tt.input).Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrSyntax) {
					t.Errorf("expected ErrSyntax, got %v", err)
				}
				return
			}
			if len(triples) != tt.expected {
				t.Errorf("Parse() got %d triples, expected %d", len(triples), tt.expected)
			}
		})
	}
}

func TestParseNQuadsDropsGraph(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n"
	triples, err := NewNQuadsParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(triples))
	}
	if !triples[0].Object.Equals(NewNamedNode("http://example.org/o")) {
		t.Errorf("unexpected object %s", triples[0].Object)
	}
}

func TestParseNTriplesErrorLine(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> \"a\" .\n<http://example.org/s> oops .\n"
	_, err := NewNTriplesParser(input).Parse()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "line 2:") {
		t.Errorf("expected error on line 2, got %q", err)
	}
}

func TestParseTerm(t *testing.T) {
	tests := []struct {
		input    string
		expected Term
		wantErr  bool
	}{
		{input: "<https://id.parliament.uk/43RHonMf>", expected: NewNamedNode("https://id.parliament.uk/43RHonMf")},
		{input: "_:node39387803", expected: NewBlankNode("node39387803")},
		{input: `"Jane"`, expected: NewLiteral("Jane")},
		{input: `"Diane"@en`, expected: NewLiteralWithLanguage("Diane", "en")},
		{input: `"12"^^<http://www.w3.org/2001/XMLSchema#integer>`, expected: NewLiteralWithDatatype("12", XSDInteger)},
		{input: `"café"`, expected: NewLiteral("café")},
		{input: `"line\nbreak \"quoted\""`, expected: NewLiteral("line\nbreak \"quoted\"")},
		{input: "  <http://example.org/x>  ", expected: NewNamedNode("http://example.org/x")},
		{input: "", wantErr: true},
		{input: `"unterminated`, wantErr: true},
		{input: `"x"^^xsd:string`, wantErr: true},
		{input: `"x" trailing`, wantErr: true},
		{input: "Jane", wantErr: true},
		{input: `"bad \q escape"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			term, err := ParseTerm(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTerm(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !term.Equals(tt.expected) {
				t.Errorf("ParseTerm(%q) = %s, want %s", tt.input, term, tt.expected)
			}
		})
	}
}

func TestSerializeTriplesRoundTrip(t *testing.T) {
	input := `<http://example.org/s> <http://example.org/name> "Jane \"J\" Doe"@en .
_:b1 <http://example.org/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://example.org/s> <http://example.org/knows> _:b1 .
`
	triples, err := NewNTriplesParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := SerializeTriples(triples); got != input {
		t.Errorf("SerializeTriples() =\n%s\nwant\n%s", got, input)
	}
}

func TestNewParser(t *testing.T) {
	for _, ct := range []string{"application/n-triples", "text/plain; charset=utf-8", ""} {
		p, err := NewParser(ct)
		if err != nil {
			t.Fatalf("NewParser(%q) error = %v", ct, err)
		}
		if p.ContentType() != "application/n-triples" {
			t.Errorf("NewParser(%q) selected %s", ct, p.ContentType())
		}
	}
	if p, err := NewParser("application/n-quads"); err != nil || p.ContentType() != "application/n-quads" {
		t.Errorf("expected N-Quads parser, got %v, %v", p, err)
	}
	if p, err := NewParser("text/turtle; charset=utf-8"); err != nil || p.ContentType() != "text/turtle" {
		t.Errorf("expected Turtle parser, got %v, %v", p, err)
	}
	if _, err := NewParser("application/ld+json"); err == nil {
		t.Error("expected error for unsupported content type")
	}
}
