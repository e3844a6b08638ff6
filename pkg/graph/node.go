package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/aleksaelezovic/grom/pkg/rdf"
)

// BlankType is the type a blank node without an explicit type is filed
// under when filtering.
const BlankType = "blank_node"

// Node is the in-memory form of one subject: its statements plus a bag of
// predicate-name -> value attributes. Nodes are written while a graph is
// built and linked, and are read-only afterwards.
type Node struct {
	subject    string
	graphID    string
	statements []Statement
	attrs      map[string]Value
	order      []string
	aliases    map[string]string
	frozen     bool
}

// NewNode builds the node for subject from its statements. The decorator,
// when not nil, is called once for every type statement.
func NewNode(subject string, statements []Statement, decorator Decorator) (*Node, error) {
	n := &Node{
		subject:    subject,
		statements: statements,
		attrs:      make(map[string]Value),
	}

	n.graphID = GraphID(subject)
	if len(statements) > 0 {
		n.graphID = GraphID(statements[0].Subject)
	}

	for _, st := range statements {
		value, _, err := ParseObject(st.Object)
		if err != nil {
			return nil, &MalformedStatementError{Statement: st, Err: err}
		}

		name := PredicateName(st.Predicate)
		n.put(name, merge(n.attrs[name], value))

		if decorator != nil && st.IsType() {
			decorator.DecorateWithType(n, value)
		}
	}

	return n, nil
}

func (n *Node) put(name string, v Value) {
	if _, ok := n.attrs[name]; !ok {
		n.order = append(n.order, name)
	}
	n.attrs[name] = v
}

// Subject returns the subject identifier the node was built for.
func (n *Node) Subject() string {
	return n.subject
}

// GraphID returns the last path segment of the node's subject.
func (n *Node) GraphID() string {
	return n.graphID
}

// Blank reports whether the node's subject is a blank node label.
func (n *Node) Blank() bool {
	if len(n.statements) > 0 {
		return rdf.IsBlankLabel(n.statements[0].Subject)
	}
	return rdf.IsBlankLabel(n.subject)
}

// Statements returns the raw statements the node was built from.
func (n *Node) Statements() []Statement {
	return n.statements
}

// Get returns the value stored under an attribute name or alias.
func (n *Node) Get(name string) (Value, bool) {
	v, ok := n.attrs[name]
	if !ok {
		if source, isAlias := n.aliases[name]; isAlias {
			v, ok = n.attrs[source]
		}
	}
	return v, ok && v.IsValid()
}

// Has reports whether the attribute is present.
func (n *Node) Has(name string) bool {
	_, ok := n.Get(name)
	return ok
}

// Text returns the scalar text of an attribute, or "" when absent.
func (n *Node) Text(name string) string {
	v, _ := n.Get(name)
	return v.String()
}

// Names returns the stored attribute names in the order they were first
// set. Aliases are not included.
func (n *Node) Names() []string {
	return append([]string(nil), n.order...)
}

// Types returns the node's declared types.
func (n *Node) Types() []string {
	v, ok := n.Get(TypeName)
	if !ok {
		return nil
	}
	return v.Strings()
}

// Set stores an attribute value. It is meant for decorators; once the graph
// is linked every node is frozen and Set fails with ErrNodeFrozen.
func (n *Node) Set(name string, v Value) error {
	if n.frozen {
		return fmt.Errorf("set %q on %s: %w", name, n.subject, ErrNodeFrozen)
	}
	if name == "" {
		return fmt.Errorf("set on %s: empty attribute name", n.subject)
	}
	n.put(name, v)
	return nil
}

// Alias makes the attribute source readable under a second name. Stored
// attributes shadow aliases of the same name.
func (n *Node) Alias(alias, source string) error {
	if n.frozen {
		return fmt.Errorf("alias %q on %s: %w", alias, n.subject, ErrNodeFrozen)
	}
	n.alias(alias, source)
	return nil
}

func (n *Node) alias(alias, source string) {
	if n.aliases == nil {
		n.aliases = make(map[string]string)
	}
	n.aliases[alias] = source
}

func (n *Node) freeze() {
	n.frozen = true
}

// MarshalJSON writes {"@id": subject, "graph_id": id, <attributes>} with
// attributes in insertion order followed by aliases. Linked nodes appear as
// {"@id": subject}.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"@id":`)
	writeJSONString(&buf, n.subject)
	buf.WriteString(`,"graph_id":`)
	writeJSONString(&buf, n.graphID)

	for _, name := range n.order {
		v := n.attrs[name]
		if !v.IsValid() {
			continue
		}
		data, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", name, err)
		}
		buf.WriteByte(',')
		writeJSONString(&buf, name)
		buf.WriteByte(':')
		buf.Write(data)
	}

	for _, alias := range slices.Sorted(maps.Keys(n.aliases)) {
		if _, stored := n.attrs[alias]; stored {
			continue
		}
		v, ok := n.Get(alias)
		if !ok {
			continue
		}
		data, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal alias %s: %w", alias, err)
		}
		buf.WriteByte(',')
		writeJSONString(&buf, alias)
		buf.WriteByte(':')
		buf.Write(data)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	data, _ := marshalJSON(s)
	buf.Write(data)
}

// marshalJSON is json.Marshal without HTML escaping, so encoded IRIs keep
// their angle brackets.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
