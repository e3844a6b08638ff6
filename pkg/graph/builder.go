package graph

import (
	"fmt"
	"log/slog"
)

// Builder turns payloads into linked node graphs. The zero value is ready
// to use. A Builder holds no state between builds and may be shared.
type Builder struct {
	Logger *slog.Logger
}

// Build is shorthand for a zero Builder's Build.
func Build(p *Payload, filterTypes []string, decorator Decorator) (*Result, error) {
	var b Builder
	return b.Build(p, filterTypes, decorator)
}

// Build checks the payload for an upstream error, creates one node per
// subject, files nodes into filter buckets, links them and freezes them.
// On any error no graph is returned.
func (b *Builder) Build(p *Payload, filterTypes []string, decorator Decorator) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrMalformedPayload)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	r := &Result{
		filters: append([]string(nil), filterTypes...),
		index:   make(map[string]*Node, len(p.Subjects)),
		all:     make([]*Node, 0, len(p.Subjects)),
	}
	if len(filterTypes) > 0 {
		r.buckets = make([][]*Node, len(filterTypes))
	}

	for _, s := range p.Subjects {
		node, err := NewNode(s.Subject, s.Statements, decorator)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", s.Subject, err)
		}
		r.all = append(r.all, node)
		r.index[s.Subject] = node
		r.file(node)
	}

	if err := Link(r.index, p.Edges); err != nil {
		return nil, err
	}
	for _, node := range r.all {
		node.freeze()
	}

	b.logger().Debug("graph built",
		"uri", p.URI,
		"nodes", len(r.all),
		"edge_subjects", len(p.Edges),
		"filters", len(filterTypes))

	return r, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// nodeFilterTypes returns the types a node is filed under: its declared
// types, or the blank marker for an untyped blank node.
func nodeFilterTypes(n *Node) []string {
	if types := n.Types(); len(types) > 0 {
		return types
	}
	if n.Blank() {
		return []string{BlankType}
	}
	return nil
}

func matchesType(filter, declared string) bool {
	return filter == declared || filter == lastSegment(declared)
}
