package graph

// Decorator attaches computed or alias attributes to a node based on its
// type. DecorateWithType is called once per type statement while the node
// is being built, so a node with two types is decorated twice.
type Decorator interface {
	DecorateWithType(n *Node, typeValue Value)
}

// DecoratorFunc adapts a function to the Decorator interface.
type DecoratorFunc func(n *Node, typeValue Value)

func (f DecoratorFunc) DecorateWithType(n *Node, typeValue Value) {
	f(n, typeValue)
}

// Decorators runs each decorator in order.
type Decorators []Decorator

func (ds Decorators) DecorateWithType(n *Node, typeValue Value) {
	for _, d := range ds {
		if d != nil {
			d.DecorateWithType(n, typeValue)
		}
	}
}

// TypeDecorators dispatches on the type value. Keys may be a full type IRI
// or its last path segment; a full IRI match wins.
type TypeDecorators map[string]Decorator

func (td TypeDecorators) DecorateWithType(n *Node, typeValue Value) {
	if d, ok := td[typeValue.String()]; ok {
		d.DecorateWithType(n, typeValue)
		return
	}
	if d, ok := td[lastSegment(typeValue.String())]; ok {
		d.DecorateWithType(n, typeValue)
	}
}

// AliasDecorator exposes attributes under additional names: each key is
// the alias, each value the attribute it mirrors. Aliases resolve on read,
// so statements ingested after the type statement are visible through them.
// Frozen nodes are left unchanged.
type AliasDecorator map[string]string

func (ad AliasDecorator) DecorateWithType(n *Node, _ Value) {
	if n.frozen {
		return
	}
	for alias, source := range ad {
		n.alias(alias, source)
	}
}
