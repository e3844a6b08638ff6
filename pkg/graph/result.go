package graph

// Result is the node collection produced by a build.
//
// Without filter types, Nodes returns every node in payload order. With one
// filter type, Nodes returns that type's bucket. With several, Buckets
// returns one bucket per filter type in the requested order.
type Result struct {
	filters []string
	buckets [][]*Node
	all     []*Node
	index   map[string]*Node
}

func (r *Result) file(n *Node) {
	if len(r.filters) == 0 {
		return
	}
	types := nodeFilterTypes(n)
	for i, filter := range r.filters {
		for _, declared := range types {
			if matchesType(filter, declared) {
				r.buckets[i] = append(r.buckets[i], n)
				break
			}
		}
	}
}

// Nodes returns the result per the filter rule above. With several filter
// types it returns every node that landed in at least one bucket, in
// payload order.
func (r *Result) Nodes() []*Node {
	switch len(r.filters) {
	case 0:
		return r.all
	case 1:
		return r.buckets[0]
	}

	filed := make(map[*Node]bool)
	for _, bucket := range r.buckets {
		for _, n := range bucket {
			filed[n] = true
		}
	}
	var out []*Node
	for _, n := range r.all {
		if filed[n] {
			out = append(out, n)
		}
	}
	return out
}

// Buckets returns one slice per filter type, in filter order. Buckets may
// be empty. It returns nil when the build had no filter.
func (r *Result) Buckets() [][]*Node {
	return r.buckets
}

// Bucket returns the nodes filed under filterType.
func (r *Result) Bucket(filterType string) []*Node {
	for i, f := range r.filters {
		if f == filterType {
			return r.buckets[i]
		}
	}
	return nil
}

// Filters returns the filter types the result was built with.
func (r *Result) Filters() []string {
	return r.filters
}

// All returns every node of the graph in payload order, filtered or not.
func (r *Result) All() []*Node {
	return r.all
}

// Lookup returns the node built for subject.
func (r *Result) Lookup(subject string) (*Node, bool) {
	n, ok := r.index[subject]
	return n, ok
}

// Len is the number of nodes in the graph.
func (r *Result) Len() int {
	return len(r.all)
}
