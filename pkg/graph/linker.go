package graph

// Link rewrites attribute values into direct node references using the edge
// table. It is the second pass of a build: every node must already exist in
// nodes, keyed by subject.
//
// The whole edge table is checked for the reserved type predicate before any
// attribute is touched, so a malformed table leaves the nodes unchanged.
// Edges from or to subjects missing from nodes are dropped.
func Link(nodes map[string]*Node, edges []SubjectEdges) error {
	for _, se := range edges {
		for _, pt := range se.Predicates {
			if PredicateName(pt.Predicate) == TypeName {
				return &MalformedEdgeError{Subject: se.Subject, Predicate: pt.Predicate}
			}
		}
	}

	for _, se := range edges {
		source, ok := nodes[se.Subject]
		if !ok {
			continue
		}
		for _, pt := range se.Predicates {
			name := PredicateName(pt.Predicate)
			for _, targetID := range pt.Targets {
				target, ok := nodes[targetID]
				if !ok {
					continue
				}
				linkOne(source, name, target)
			}
		}
	}

	return nil
}

// linkOne applies a single edge to the source attribute:
//   - absent stays absent
//   - a scalar becomes [scalar, target]
//   - a sequence of scalars becomes [target]
//   - anything already holding node references gets target appended,
//     unless target is already there
func linkOne(source *Node, name string, target *Node) {
	current, ok := source.attrs[name]
	if !ok || !current.IsValid() {
		return
	}

	var next Value
	switch {
	case current.IsScalar():
		next = Sequence(current, Ref(target))
	case current.IsSequence() && current.allScalars():
		next = Sequence(Ref(target))
	case current.references(target):
		return
	default:
		next = Sequence(current, Ref(target))
	}

	source.put(name, next)
}
