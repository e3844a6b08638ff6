package rdf

import (
	"fmt"
	"strings"
)

// SerializeTriples writes triples as canonical N-Triples, one statement per
// line. Input order is preserved.
func SerializeTriples(triples []*Triple) string {
	var builder strings.Builder
	for _, triple := range triples {
		builder.WriteString(FormatTerm(triple.Subject))
		builder.WriteByte(' ')
		builder.WriteString(FormatTerm(triple.Predicate))
		builder.WriteByte(' ')
		builder.WriteString(FormatTerm(triple.Object))
		builder.WriteString(" .\n")
	}
	return builder.String()
}

// FormatTerm returns the canonical N-Triples encoding of a single term.
// This is the encoding statement objects travel in.
func FormatTerm(term Term) string {
	switch t := term.(type) {
	case *NamedNode:
		return "<" + t.IRI + ">"
	case *BlankNode:
		return t.String()
	case *Literal:
		return serializeLiteralCanonical(t)
	default:
		return ""
	}
}

func serializeLiteralCanonical(lit *Literal) string {
	escaped := escapeStringCanonical(lit.Value)

	if lit.Language != "" {
		return fmt.Sprintf(`"%s"@%s`, escaped, strings.ToLower(lit.Language))
	}

	// xsd:string is implicit
	if lit.Datatype != nil && lit.Datatype.IRI != XSDString.IRI {
		return fmt.Sprintf(`"%s"^^<%s>`, escaped, lit.Datatype.IRI)
	}

	return `"` + escaped + `"`
}

// escapeStringCanonical escapes \t \b \n \r \f \" \\ by name and other
// control characters as \uXXXX
func escapeStringCanonical(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\f':
			builder.WriteString(`\f`)
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F || r == 0xFFFE || r == 0xFFFF {
				fmt.Fprintf(&builder, `\u%04X`, r)
			} else {
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}
