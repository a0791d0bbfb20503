// Package translation offers a small syntax-directed-definition evaluation
// layer on top of the raw postfix-action callbacks spec §4.5/§4.6/§6
// define: a dependency graph over named attributes attached to a
// production's head and body symbols, evaluated bottom-up in dependency
// order. Entirely optional — the raw callback mechanism works standalone
// (spec.md §11 SUPPLEMENT). Grounded on the teacher's
// internal/ictiobus/translation package: AttrRef/SDDBinding's shape
// (binding.go), and the dependency ordering of graph.go's generic
// DirectedGraph[V], which this package reimplements with a private graph
// over one reduction's bindings.
package translation

import "fmt"

// AttrRef names one attribute slot of a production occurrence: either the
// head (NodeIndex == HeadIndex, a synthesized attribute) or one of the
// body's grammar symbols by position (an inherited attribute).
type AttrRef struct {
	NodeIndex int
	Name      string
}

// HeadIndex is the AttrRef.NodeIndex sentinel denoting the production's
// head symbol.
const HeadIndex = -1

func (r AttrRef) String() string {
	if r.NodeIndex == HeadIndex {
		return fmt.Sprintf("head.%s", r.Name)
	}
	return fmt.Sprintf("body[%d].%s", r.NodeIndex, r.Name)
}

// NodeAttrs is the attribute bag carried by one symbol occurrence (head or
// a body element) across a single reduction.
type NodeAttrs map[string]any

// AttributeSetter computes one attribute's value from the values of its
// declared Requirements, in the order Requirements lists them.
type AttributeSetter func(args []any) any

// Binding is one rule of a syntax-directed definition: a destination
// attribute, the attributes it requires to compute its value, and the
// setter that computes it (spec.md §11, grounded on binding.go's
// SDDBinding).
type Binding struct {
	Dest         AttrRef
	Requirements []AttrRef
	Setter       AttributeSetter
}

// graphNode mirrors the teacher's generic DirectedGraph[V]: a node
// carrying a Binding plus its in-repository edges, used only to compute a
// dependency order before evaluation.
type graphNode struct {
	binding  Binding
	edges    []*graphNode // bindings that must run after this one
	inDegree int
}

// Evaluate runs bindings in dependency order, writing each binding's
// result into the NodeAttrs map its Dest refers to (head or the
// corresponding element of body), and reports an error if the bindings
// contain a dependency cycle. Requirements that no binding produces are
// assumed already present in the relevant NodeAttrs map (e.g. a lexical
// attribute set by the token factory) and are read, not computed.
func Evaluate(bindings []Binding, head NodeAttrs, body []NodeAttrs) error {
	nodes := make([]*graphNode, len(bindings))
	byDest := map[AttrRef]*graphNode{}
	for i, b := range bindings {
		n := &graphNode{binding: b}
		nodes[i] = n
		byDest[b.Dest] = n
	}

	for _, n := range nodes {
		for _, req := range n.binding.Requirements {
			if producer, ok := byDest[req]; ok {
				producer.edges = append(producer.edges, n)
				n.inDegree++
			}
		}
	}

	var ready []*graphNode
	for _, n := range nodes {
		if n.inDegree == 0 {
			ready = append(ready, n)
		}
	}

	var order []*graphNode
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, succ := range n.edges {
			succ.inDegree--
			if succ.inDegree == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(nodes) {
		return fmt.Errorf("translation: attribute dependency cycle among %d bindings", len(nodes)-len(order))
	}

	attrsFor := func(ref AttrRef) (NodeAttrs, error) {
		if ref.NodeIndex == HeadIndex {
			return head, nil
		}
		if ref.NodeIndex < 0 || ref.NodeIndex >= len(body) {
			return nil, fmt.Errorf("translation: %s references out-of-range body index", ref)
		}
		return body[ref.NodeIndex], nil
	}

	for _, n := range order {
		args := make([]any, len(n.binding.Requirements))
		for i, req := range n.binding.Requirements {
			attrs, err := attrsFor(req)
			if err != nil {
				return err
			}
			val, ok := attrs[req.Name]
			if !ok {
				return fmt.Errorf("translation: %s has no value when %s needed it", req, n.binding.Dest)
			}
			args[i] = val
		}

		dest, err := attrsFor(n.binding.Dest)
		if err != nil {
			return err
		}
		dest[n.binding.Dest.Name] = n.binding.Setter(args)
	}

	return nil
}
