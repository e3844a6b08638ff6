package graph

import (
	"bytes"

	"github.com/aleksaelezovic/grom/pkg/rdf"
)

// Kind is the shape of an attribute value
type Kind uint8

const (
	KindInvalid Kind = iota
	KindScalar
	KindSequence
	KindNodeRef
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindNodeRef:
		return "node"
	default:
		return "invalid"
	}
}

// Value is an attribute value: a scalar, a flat ordered sequence, or a
// reference to another node of the same graph. The zero Value is invalid
// and stands for "no value".
type Value struct {
	kind  Kind
	text  string
	term  rdf.Term
	items []Value
	node  *Node
}

// Scalar returns a plain string value.
func Scalar(text string) Value {
	return Value{kind: KindScalar, text: text}
}

// TermValue returns the scalar form of a parsed RDF term: the IRI for named
// nodes, the "_:" label for blank nodes, the unwrapped content for literals.
func TermValue(term rdf.Term) Value {
	v := Value{kind: KindScalar, term: term}
	switch t := term.(type) {
	case *rdf.Literal:
		v.text = t.Value
	default:
		v.text, _ = rdf.TermKey(term)
	}
	return v
}

// Ref returns a value linking to n.
func Ref(n *Node) Value {
	return Value{kind: KindNodeRef, node: n}
}

// Sequence returns an ordered sequence. Nested sequences are spliced in so
// that a sequence never contains another sequence; invalid values are
// skipped.
func Sequence(items ...Value) Value {
	flat := make([]Value, 0, len(items))
	for _, item := range items {
		switch item.kind {
		case KindSequence:
			flat = append(flat, item.items...)
		case KindInvalid:
		default:
			flat = append(flat, item)
		}
	}
	return Value{kind: KindSequence, items: flat}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

func (v Value) IsScalar() bool {
	return v.kind == KindScalar
}

func (v Value) IsSequence() bool {
	return v.kind == KindSequence
}

func (v Value) IsNode() bool {
	return v.kind == KindNodeRef
}

// String returns the scalar text, or the subject of a referenced node.
// Sequences have no single string form and return "".
func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return v.text
	case KindNodeRef:
		return v.node.Subject()
	default:
		return ""
	}
}

// Term returns the RDF term a scalar was parsed from, if any.
func (v Value) Term() rdf.Term {
	return v.term
}

// Literal returns the literal behind a scalar, with its language and
// datatype, or nil when the scalar was not a literal.
func (v Value) Literal() *rdf.Literal {
	lit, _ := v.term.(*rdf.Literal)
	return lit
}

// Node returns the referenced node, or nil.
func (v Value) Node() *Node {
	return v.node
}

// Len is 1 for scalars and references, the item count for sequences.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindInvalid:
		return 0
	default:
		return 1
	}
}

// Items returns the values as a slice: the sequence items, or the value
// itself for a scalar or reference.
func (v Value) Items() []Value {
	switch v.kind {
	case KindSequence:
		return append([]Value(nil), v.items...)
	case KindInvalid:
		return nil
	default:
		return []Value{v}
	}
}

// Strings returns the string form of every scalar in the value.
func (v Value) Strings() []string {
	var out []string
	for _, item := range v.Items() {
		if item.kind == KindScalar {
			out = append(out, item.text)
		}
	}
	return out
}

// Nodes returns every node referenced by the value.
func (v Value) Nodes() []*Node {
	var out []*Node
	for _, item := range v.Items() {
		if item.kind == KindNodeRef {
			out = append(out, item.node)
		}
	}
	return out
}

// Equal compares shape and content. Node references compare by identity.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.text == other.text
	case KindNodeRef:
		return v.node == other.node
	case KindSequence:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// allScalars reports whether v is a sequence made only of scalars.
func (v Value) allScalars() bool {
	for _, item := range v.items {
		if item.kind != KindScalar {
			return false
		}
	}
	return true
}

func (v Value) references(n *Node) bool {
	for _, item := range v.Items() {
		if item.kind == KindNodeRef && item.node == n {
			return true
		}
	}
	return false
}

// merge folds a newly ingested value into the stored one: the first value
// is stored as is, the second promotes to a sequence, later ones append.
func merge(stored, incoming Value) Value {
	if !stored.IsValid() {
		return incoming
	}
	return Sequence(stored, incoming)
}

// MarshalJSON encodes scalars as strings, sequences as arrays and node
// references as {"@id": subject}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return marshalJSON(v.text)
	case KindNodeRef:
		return marshalJSON(map[string]string{"@id": v.node.Subject()})
	case KindSequence:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}
