package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// TurtleParser parses the Turtle subset RDF endpoints commonly answer with:
// @prefix/@base and PREFIX/BASE directives, prefixed names, the "a"
// keyword, predicate lists (;), object lists (,) and bare numeric and
// boolean literals. Collections, [ ] blank nodes and long strings are not
// supported.
type TurtleParser struct {
	*NTriplesParser
	prefixes map[string]string
	base     *url.URL
}

// NewTurtleParser creates a parser for a Turtle document
func NewTurtleParser(input string) *TurtleParser {
	p := &TurtleParser{
		NTriplesParser: NewNTriplesParser(input),
		prefixes:       make(map[string]string),
	}
	p.allowRelative = true
	return p
}

// Parse parses the document and returns its triples in document order
func (p *TurtleParser) Parse() ([]*Triple, error) {
	var triples []*Triple

	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		var err error
		switch {
		case p.matchKeyword("@prefix"), p.matchKeyword("PREFIX"):
			err = p.parsePrefix()
		case p.matchKeyword("@base"), p.matchKeyword("BASE"):
			err = p.parseBase()
		default:
			triples, err = p.parseTriples(triples)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}

	return triples, nil
}

// matchKeyword consumes keyword, case-insensitively, unless it is the start
// of a longer name
func (p *TurtleParser) matchKeyword(keyword string) bool {
	end := p.pos + len(keyword)
	if end > p.length || !strings.EqualFold(p.input[p.pos:end], keyword) {
		return false
	}
	if end < p.length && (isNameChar(p.input[end]) || p.input[end] == ':') {
		return false
	}
	p.pos = end
	return true
}

// parsePrefix parses the rest of "@prefix ex: <iri> ." or "PREFIX ex: <iri>"
func (p *TurtleParser) parsePrefix() error {
	p.skipWhitespaceAndComments()

	start := p.pos
	for p.pos < p.length && p.input[p.pos] != ':' && isNameChar(p.input[p.pos]) {
		p.pos++
	}
	prefix := p.input[start:p.pos]
	if p.pos >= p.length || p.input[p.pos] != ':' {
		return p.errorf("expected ':' after prefix name %q", prefix)
	}
	p.pos++

	p.skipWhitespaceAndComments()
	iri, err := p.parseResolvedIRI()
	if err != nil {
		return fmt.Errorf("invalid prefix IRI: %w", err)
	}
	p.prefixes[prefix] = iri

	p.skipDirectiveEnd()
	return nil
}

// parseBase parses the rest of "@base <iri> ." or "BASE <iri>"
func (p *TurtleParser) parseBase() error {
	p.skipWhitespaceAndComments()

	iri, err := p.parseResolvedIRI()
	if err != nil {
		return fmt.Errorf("invalid base IRI: %w", err)
	}
	base, err := url.Parse(iri)
	if err != nil || !base.IsAbs() {
		return p.errorf("base IRI must be absolute: %s", iri)
	}
	p.base = base

	p.skipDirectiveEnd()
	return nil
}

func (p *TurtleParser) skipDirectiveEnd() {
	p.skipWhitespaceAndComments()
	if p.pos < p.length && p.input[p.pos] == '.' {
		p.pos++
	}
}

// parseTriples parses one subject with its predicate-object list and
// appends the triples it states
func (p *TurtleParser) parseTriples(triples []*Triple) ([]*Triple, error) {
	subject, err := p.parseSubject()
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	for {
		p.skipWhitespaceAndComments()
		predicate, err := p.parseVerb()
		if err != nil {
			return nil, fmt.Errorf("invalid predicate: %w", err)
		}

		for {
			p.skipWhitespaceAndComments()
			object, err := p.parseObject()
			if err != nil {
				return nil, fmt.Errorf("invalid object: %w", err)
			}
			triples = append(triples, NewTriple(subject, predicate, object))

			p.skipWhitespaceAndComments()
			if p.pos < p.length && p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}

		if p.pos < p.length && p.input[p.pos] == ';' {
			// repeated and trailing semicolons are allowed
			for p.pos < p.length && p.input[p.pos] == ';' {
				p.pos++
				p.skipWhitespaceAndComments()
			}
			if p.pos < p.length && p.input[p.pos] == '.' {
				break
			}
			continue
		}
		break
	}

	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, p.errorf("expected '.' at end of statement")
	}
	p.pos++

	return triples, nil
}

func (p *TurtleParser) parseSubject() (Term, error) {
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input")
	}
	switch ch := p.input[p.pos]; {
	case ch == '<':
		return p.parseNamedNode()
	case ch == '_':
		return p.parseLabel()
	case ch == ':' || isLetter(ch):
		return p.parsePrefixedName()
	default:
		return nil, p.errorf("unexpected character %q at position %d", ch, p.pos)
	}
}

// parseVerb parses a predicate IRI, a prefixed name or the "a" keyword
func (p *TurtleParser) parseVerb() (Term, error) {
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input")
	}
	if p.input[p.pos] == 'a' && (p.pos+1 >= p.length || !isNameChar(p.input[p.pos+1]) && p.input[p.pos+1] != ':') {
		p.pos++
		return RDFType, nil
	}
	switch ch := p.input[p.pos]; {
	case ch == '<':
		return p.parseNamedNode()
	case ch == ':' || isLetter(ch):
		return p.parsePrefixedName()
	default:
		return nil, p.errorf("predicate must be an IRI, found %q at position %d", ch, p.pos)
	}
}

func (p *TurtleParser) parseObject() (Term, error) {
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input")
	}
	switch ch := p.input[p.pos]; {
	case ch == '<':
		return p.parseNamedNode()
	case ch == '_':
		return p.parseLabel()
	case ch == '"':
		return p.parseTurtleLiteral()
	case ch == '+' || ch == '-' || ch == '.' || (ch >= '0' && ch <= '9'):
		return p.parseNumber()
	case p.matchKeyword("true"):
		return NewLiteralWithDatatype("true", XSDBoolean), nil
	case p.matchKeyword("false"):
		return NewLiteralWithDatatype("false", XSDBoolean), nil
	case ch == ':' || isLetter(ch):
		return p.parsePrefixedName()
	default:
		return nil, p.errorf("unexpected character %q at position %d", ch, p.pos)
	}
}

func (p *TurtleParser) parseNamedNode() (Term, error) {
	iri, err := p.parseResolvedIRI()
	if err != nil {
		return nil, err
	}
	return NewNamedNode(iri), nil
}

// parseResolvedIRI parses <iri> and resolves it against the base IRI
func (p *TurtleParser) parseResolvedIRI() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return "", p.errorf("expected '<' at start of IRI")
	}
	iri, err := p.parseIRI()
	if err != nil {
		return "", err
	}

	ref, err := url.Parse(iri)
	if err != nil {
		return "", p.errorf("invalid IRI %q: %v", iri, err)
	}
	if ref.IsAbs() {
		return iri, nil
	}
	if p.base == nil {
		return "", p.errorf("relative IRI %q without a base", iri)
	}
	return p.base.ResolveReference(ref).String(), nil
}

// parseLabel parses a _:label blank node
func (p *TurtleParser) parseLabel() (Term, error) {
	if p.pos+1 >= p.length || p.input[p.pos+1] != ':' {
		return nil, p.errorf("expected ':' after '_' in blank node")
	}
	p.pos += 2

	label := p.readName()
	if label == "" {
		return nil, p.errorf("empty blank node label")
	}
	return NewBlankNode(label), nil
}

// parsePrefixedName parses prefix:local and expands it
func (p *TurtleParser) parsePrefixedName() (Term, error) {
	start := p.pos
	for p.pos < p.length && p.input[p.pos] != ':' && isNameChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos >= p.length || p.input[p.pos] != ':' {
		return nil, p.errorf("expected ':' in prefixed name %q", p.input[start:p.pos])
	}
	prefix := p.input[start:p.pos]
	p.pos++

	namespace, ok := p.prefixes[prefix]
	if !ok {
		return nil, p.errorf("undefined prefix %q", prefix)
	}
	return NewNamedNode(namespace + p.readName()), nil
}

// readName reads name characters. A trailing '.' ends the statement and is
// not part of the name.
func (p *TurtleParser) readName() string {
	start := p.pos
	for p.pos < p.length && (isNameChar(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	for p.pos > start && p.input[p.pos-1] == '.' {
		p.pos--
	}
	return p.input[start:p.pos]
}

// parseTurtleLiteral parses a quoted literal whose datatype may be a
// prefixed name
func (p *TurtleParser) parseTurtleLiteral() (Term, error) {
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
		var datatype Term
		if p.pos < p.length && p.input[p.pos] == '<' {
			datatype, err = p.parseNamedNode()
		} else {
			datatype, err = p.parsePrefixedName()
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing datatype: %w", err)
		}
		return NewLiteralWithDatatype(value, datatype.(*NamedNode)), nil
	}

	return NewLiteral(value), nil
}

// parseNumber parses an integer, decimal or double keeping its lexical form
func (p *TurtleParser) parseNumber() (Term, error) {
	start := p.pos
	if p.input[p.pos] == '+' || p.input[p.pos] == '-' {
		p.pos++
	}

	datatype := XSDInteger
	digits := p.skipDigits()
	if p.pos+1 < p.length && p.input[p.pos] == '.' && isDigit(p.input[p.pos+1]) {
		p.pos++
		digits += p.skipDigits()
		datatype = XSDDecimal
	}
	if digits == 0 {
		return nil, p.errorf("expected digits in number at position %d", start)
	}
	if p.pos < p.length && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
		p.pos++
		if p.pos < p.length && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
			p.pos++
		}
		if p.skipDigits() == 0 {
			return nil, p.errorf("expected exponent digits at position %d", p.pos)
		}
		datatype = XSDDouble
	}

	return NewLiteralWithDatatype(p.input[start:p.pos], datatype), nil
}

func (p *TurtleParser) skipDigits() int {
	n := 0
	for p.pos < p.length && isDigit(p.input[p.pos]) {
		p.pos++
		n++
	}
	return n
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNameChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-'
}
