package ast

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// WalkProgram walks every top-level node of p.
func WalkProgram(p *Program, fn func(*Node) bool) {
	if p == nil {
		return
	}
	for _, n := range p.Body {
		Walk(n, fn)
	}
}

// Find returns the first node of the given type, or nil.
func Find(p *Program, typ string) *Node {
	var found *Node
	WalkProgram(p, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Type == typ {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in p.
func Count(p *Program) int {
	total := 0
	WalkProgram(p, func(*Node) bool {
		total++
		return true
	})
	return total
}
