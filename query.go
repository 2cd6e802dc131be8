package depot

import (
	"github.com/TheBitDrifter/mask"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op         Operation
	children   []QueryNode
	components []Component
	mask       mask.Mask
}

type leafNode struct {
	components []Component
	mask       mask.Mask
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func maskOf(components []Component) mask.Mask {
	var m mask.Mask
	for _, c := range components {
		m.Mark(uint32(c.ID()))
	}
	return m
}

func newCompositeNode(op Operation, components []Component, children []QueryNode) *compositeNode {
	return &compositeNode{
		op:         op,
		children:   children,
		components: components,
		mask:       maskOf(components),
	}
}

func newLeafNode(components []Component) *leafNode {
	return &leafNode{components: components, mask: maskOf(components)}
}

func (n *compositeNode) Evaluate(archetype Archetype) bool {
	archeMask := archetype.Mask()

	switch n.op {
	case OpAnd:
		if !archeMask.ContainsAll(n.mask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(archetype) {
				return false
			}
		}
		return true

	case OpOr:
		if len(n.components) > 0 && archeMask.ContainsAny(n.mask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(archetype) {
				return true
			}
		}
		return false

	case OpNot:
		for _, child := range n.children {
			if child.Evaluate(archetype) {
				return false
			}
		}
		return archeMask.ContainsNone(n.mask)
	}
	return false
}

func (n *leafNode) Evaluate(archetype Archetype) bool {
	return archetype.Mask().ContainsAll(n.mask)
}

func (q *query) And(items ...interface{}) QueryNode {
	return q.node(OpAnd, items)
}

func (q *query) Or(items ...interface{}) QueryNode {
	return q.node(OpOr, items)
}

func (q *query) Not(items ...interface{}) QueryNode {
	return q.node(OpNot, items)
}

// node builds a composite and makes it the query root. Nested calls are
// evaluated first, so the outermost node is built last.
func (q *query) node(op Operation, items []interface{}) QueryNode {
	components, children := q.processItems(items...)
	n := newCompositeNode(op, components, children)
	q.root = n
	return n
}

func (q *query) processItems(items ...interface{}) ([]Component, []QueryNode) {
	components := make([]Component, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}

	return components, children
}

func (q *query) Evaluate(archetype Archetype) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(archetype)
}

// requiredComponents collects the components every match must hold, so the
// reverse index can narrow candidates before the tree is evaluated.
func requiredComponents(node QueryNode) []ComponentID {
	var ids []ComponentID
	var walk func(QueryNode)
	walk = func(n QueryNode) {
		switch v := n.(type) {
		case *query:
			if v.root != nil {
				walk(v.root)
			}
		case *leafNode:
			for _, c := range v.components {
				ids = append(ids, c.ID())
			}
		case *compositeNode:
			if v.op != OpAnd {
				return
			}
			for _, c := range v.components {
				ids = append(ids, c.ID())
			}
			for _, child := range v.children {
				walk(child)
			}
		}
	}
	if node != nil {
		walk(node)
	}
	return ids
}
