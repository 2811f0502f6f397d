package tree

import (
	"fmt"
	"iter"
)

// Order selects the visiting order of Traverse.
type Order int

const (
	PreOrder Order = iota
	PostOrder
	LevelOrder
)

func (o Order) String() string {
	switch o {
	case PreOrder:
		return "preorder"
	case PostOrder:
		return "postorder"
	case LevelOrder:
		return "levelorder"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder maps "preorder", "postorder" and "levelorder" to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "preorder", "":
		return PreOrder, nil
	case "postorder":
		return PostOrder, nil
	case "levelorder":
		return LevelOrder, nil
	}
	return PreOrder, fmt.Errorf("unknown traversal order %q", s)
}

// Traverse yields every node of the subtree rooted at root, root included.
// Stopping the range loop stops the walk.
func Traverse(root Node, order Order) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		switch order {
		case PostOrder:
			postorder(root, yield)
		case LevelOrder:
			queue := []Node{root}
			for len(queue) > 0 {
				n := queue[0]
				queue = queue[1:]
				if !yield(n) {
					return
				}
				queue = append(queue, n.Children()...)
			}
		default:
			preorder(root, yield)
		}
	}
}

func preorder(n Node, yield func(Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.Children() {
		if !preorder(c, yield) {
			return false
		}
	}
	return true
}

func postorder(n Node, yield func(Node) bool) bool {
	for _, c := range n.Children() {
		if !postorder(c, yield) {
			return false
		}
	}
	return yield(n)
}

// Leaves returns the leaves under n, left to right. A leaf is its own leaf.
func Leaves(n Node) []Node {
	var out []Node
	for d := range Traverse(n, PreOrder) {
		if IsLeaf(d) {
			out = append(out, d)
		}
	}
	return out
}

// Descendants returns n and every node below it in preorder.
func Descendants(n Node) []Node {
	var out []Node
	for d := range Traverse(n, PreOrder) {
		out = append(out, d)
	}
	return out
}
