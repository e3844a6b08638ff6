package rdf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every error the N-Triples and Turtle parsers
// return.
var ErrSyntax = errors.New("rdf syntax error")

// NTriplesParser is a line-oriented N-Triples parser.
// Format: <subject> <predicate> <object> .
// With graph labels enabled it also accepts N-Quads lines and discards the
// fourth term.
type NTriplesParser struct {
	input         string
	pos           int
	length        int
	line          int
	allowGraph    bool
	allowRelative bool // relative IRIs are resolved by the caller
}

// NewNTriplesParser creates a parser for an N-Triples document
func NewNTriplesParser(input string) *NTriplesParser {
	return &NTriplesParser{
		input:  input,
		length: len(input),
		line:   1,
	}
}

// NewNQuadsParser creates a parser that tolerates a graph label after the object
func NewNQuadsParser(input string) *NTriplesParser {
	p := NewNTriplesParser(input)
	p.allowGraph = true
	return p
}

// Parse parses the whole document and returns its triples in document order
func (p *NTriplesParser) Parse() ([]*Triple, error) {
	var triples []*Triple

	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		triple, err := p.parseStatement()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
		triples = append(triples, triple)
	}

	return triples, nil
}

// ParseTerm parses a single N-Triples term. The whole input must be consumed.
func ParseTerm(input string) (Term, error) {
	p := NewNTriplesParser(strings.TrimSpace(input))
	if p.length == 0 {
		return nil, fmt.Errorf("%w: empty term", ErrSyntax)
	}

	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.pos != p.length {
		return nil, p.errorf("unexpected trailing input %q", p.input[p.pos:])
	}
	return term, nil
}

func (p *NTriplesParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}

// skipWhitespaceAndComments skips whitespace and comments, counting lines
func (p *NTriplesParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		switch {
		case ch == '\n':
			p.line++
			p.pos++
		case ch == ' ' || ch == '\t' || ch == '\r':
			p.pos++
		case ch == '#':
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// skipInlineWhitespace skips blanks without crossing a line break
func (p *NTriplesParser) skipInlineWhitespace() {
	for p.pos < p.length && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// parseStatement parses: subject predicate object [graph] .
func (p *NTriplesParser) parseStatement() (*Triple, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	if subject.Type() == TermTypeLiteral {
		return nil, p.errorf("literal cannot be a subject")
	}

	p.skipInlineWhitespace()
	predicate, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("invalid predicate: %w", err)
	}
	if predicate.Type() != TermTypeNamedNode {
		return nil, p.errorf("predicate must be an IRI, got %s", predicate.Type())
	}

	p.skipInlineWhitespace()
	object, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("invalid object: %w", err)
	}

	p.skipInlineWhitespace()
	if p.allowGraph && p.pos < p.length && (p.input[p.pos] == '<' || p.input[p.pos] == '_') {
		if _, err := p.parseTerm(); err != nil {
			return nil, fmt.Errorf("invalid graph label: %w", err)
		}
		p.skipInlineWhitespace()
	}

	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, p.errorf("expected '.' at end of statement")
	}
	p.pos++

	return NewTriple(subject, predicate, object), nil
}

// parseTerm parses an IRI, blank node or literal at the current position
func (p *NTriplesParser) parseTerm() (Term, error) {
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input")
	}

	switch ch := p.input[p.pos]; ch {
	case '<':
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	case '_':
		return p.parseBlankNode()
	case '"':
		return p.parseLiteral()
	default:
		return nil, p.errorf("unexpected character %q at position %d", ch, p.pos)
	}
}

// parseIRI parses an absolute IRI enclosed in < >
func (p *NTriplesParser) parseIRI() (string, error) {
	p.pos++ // skip '<'

	var result strings.Builder
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]

		if ch == '\\' {
			if p.pos+1 < p.length && (p.input[p.pos+1] == 'u' || p.input[p.pos+1] == 'U') {
				escaped, err := p.processUnicodeEscape()
				if err != nil {
					return "", err
				}
				result.WriteString(escaped)
				continue
			}
			return "", p.errorf("invalid escape sequence in IRI at position %d", p.pos)
		}

		// IRIs cannot contain space, <, >, ", {, }, |, ^, ` or control characters
		if ch == ' ' || ch == '<' || ch == '"' || ch == '{' || ch == '}' ||
			ch == '|' || ch == '^' || ch == '`' || ch <= 0x1F {
			return "", p.errorf("invalid character in IRI: %q at position %d", ch, p.pos)
		}

		result.WriteByte(ch)
		p.pos++
	}

	if p.pos >= p.length {
		return "", p.errorf("unclosed IRI")
	}
	p.pos++ // skip '>'

	iri := result.String()
	if !p.allowRelative && !strings.Contains(iri, ":") {
		return "", p.errorf("relative IRI not allowed: %s", iri)
	}
	return iri, nil
}

// parseBlankNode parses a blank node label
func (p *NTriplesParser) parseBlankNode() (Term, error) {
	if p.pos+1 >= p.length || p.input[p.pos+1] != ':' {
		return nil, p.errorf("expected ':' after '_' in blank node")
	}
	p.pos += 2

	start := p.pos
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '<' || ch == '"' {
			break
		}
		// a trailing '.' terminates the statement, not the label
		if ch == '.' && (p.pos+1 >= p.length || isTermBoundary(p.input[p.pos+1])) {
			break
		}
		p.pos++
	}

	if p.pos == start {
		return nil, p.errorf("empty blank node label")
	}
	return NewBlankNode(p.input[start:p.pos]), nil
}

func isTermBoundary(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '#'
}

// parseLiteral parses a quoted literal with optional language tag or datatype
func (p *NTriplesParser) parseLiteral() (Term, error) {
	value, err := p.parseString()
	if err != nil {
		return nil, err
	}

	if p.pos < p.length && p.input[p.pos] == '@' {
		lang, err := p.parseLangTag()
		if err != nil {
			return nil, err
		}
		return NewLiteralWithLanguage(value, lang), nil
	}

	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2
		if p.pos >= p.length || p.input[p.pos] != '<' {
			return nil, p.errorf("expected datatype IRI after '^^'")
		}
		datatype, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("error parsing datatype: %w", err)
		}
		return NewLiteralWithDatatype(value, NewNamedNode(datatype)), nil
	}

	return NewLiteral(value), nil
}

// parseString parses a double-quoted string and returns its unescaped content
func (p *NTriplesParser) parseString() (string, error) {
	p.pos++ // skip opening '"'

	var value strings.Builder
	for p.pos < p.length && p.input[p.pos] != '"' {
		ch := p.input[p.pos]
		if ch != '\\' {
			value.WriteByte(ch)
			p.pos++
			continue
		}

		if p.pos+1 >= p.length {
			return "", p.errorf("unexpected end of input in escape sequence")
		}
		switch esc := p.input[p.pos+1]; esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case 'b':
			value.WriteByte('\b')
		case 'f':
			value.WriteByte('\f')
		case '"':
			value.WriteByte('"')
		case '\'':
			value.WriteByte('\'')
		case '\\':
			value.WriteByte('\\')
		case 'u', 'U':
			escaped, err := p.processUnicodeEscape()
			if err != nil {
				return "", err
			}
			value.WriteString(escaped)
			continue
		default:
			return "", p.errorf("invalid escape sequence \\%c at position %d", esc, p.pos)
		}
		p.pos += 2
	}

	if p.pos >= p.length {
		return "", p.errorf("unclosed string literal")
	}
	p.pos++ // skip closing '"'

	return value.String(), nil
}

// parseLangTag parses '@' followed by a language tag
func (p *NTriplesParser) parseLangTag() (string, error) {
	p.pos++ // skip '@'
	start := p.pos
	for p.pos < p.length && isLangTagChar(p.input[p.pos]) {
		p.pos++
	}
	lang := p.input[start:p.pos]
	if lang == "" || !isLetter(lang[0]) {
		return "", p.errorf("invalid language tag %q", lang)
	}
	return lang, nil
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isLangTagChar(ch byte) bool {
	return isLetter(ch) || (ch >= '0' && ch <= '9') || ch == '-'
}

// processUnicodeEscape processes \uXXXX or \UXXXXXXXX escape sequences
func (p *NTriplesParser) processUnicodeEscape() (string, error) {
	hexDigits := 4
	if p.input[p.pos+1] == 'U' {
		hexDigits = 8
	}
	p.pos += 2 // skip '\u' or '\U'

	if p.pos+hexDigits > p.length {
		return "", p.errorf("incomplete Unicode escape sequence")
	}

	hexStr := p.input[p.pos : p.pos+hexDigits]
	codePoint, err := strconv.ParseUint(hexStr, 16, 32)
	if err != nil {
		return "", p.errorf("invalid hex digits in Unicode escape: %s", hexStr)
	}
	p.pos += hexDigits

	return string(rune(codePoint)), nil
}
