package model

import (
	"fmt"
	"strings"
)

// Head holds the template metadata collected from header directives.
type Head struct {
	// References are package directories the generated unit may import, in declaration order.
	References []string
	// Imports are import paths added to the generated unit, in declaration order.
	Imports []string
	// Parameters become the positional arguments of the entry point.
	Parameters []Parameter
	// Globals are the @global blocks in declaration order.
	Globals []GlobalBlock
}

// GlobalBlock is the verbatim content of one @global ... @end_global block.
type GlobalBlock struct {
	// Line is the source line of the first content line.
	Line int
	// Text holds the content lines, each terminated by a newline.
	Text string
}

// AddReference appends a reference path unless it is already present.
// Returns false for a duplicate.
func (h *Head) AddReference(path string) bool {
	for _, r := range h.References {
		if r == path {
			return false
		}
	}
	h.References = append(h.References, path)
	return true
}

// AddImport appends an import unless it is already present.
// Returns false for a duplicate.
func (h *Head) AddImport(name string) bool {
	for _, i := range h.Imports {
		if i == name {
			return false
		}
	}
	h.Imports = append(h.Imports, name)
	return true
}

// AddParameter appends a parameter. Returns false if the name is already declared.
func (h *Head) AddParameter(p Parameter) bool {
	if h.Parameter(p.Name) != nil {
		return false
	}
	h.Parameters = append(h.Parameters, p)
	return true
}

// Parameter returns the declared parameter with the given name, or nil.
func (h *Head) Parameter(name string) *Parameter {
	for i := range h.Parameters {
		if h.Parameters[i].Name == name {
			return &h.Parameters[i]
		}
	}
	return nil
}

// StartGlobal opens a new global block whose content starts at line.
func (h *Head) StartGlobal(line int) {
	h.Globals = append(h.Globals, GlobalBlock{Line: line})
}

// AppendGlobal appends one line to the current global block, opening one
// if none exists.
func (h *Head) AppendGlobal(line string) {
	if len(h.Globals) == 0 {
		h.StartGlobal(0)
	}
	g := &h.Globals[len(h.Globals)-1]
	g.Text += line + "\n"
}

// Global returns the content of all global blocks concatenated.
func (h *Head) Global() string {
	var b strings.Builder
	for _, g := range h.Globals {
		b.WriteString(g.Text)
	}
	return b.String()
}

// Template is a parsed template: its head and an arena of directive nodes
// rooted at the body node.
type Template struct {
	Head Head

	nodes []*Node
}

// NewTemplate creates an empty template holding only the body node.
func NewTemplate() *Template {
	return &Template{
		nodes: []*Node{{Kind: KindBody, parent: NoNode}},
	}
}

// Body returns the id of the root node.
func (t *Template) Body() NodeID {
	return 0
}

// Len returns the number of nodes, including detached ones.
func (t *Template) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id. It panics on an unknown id.
func (t *Template) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("model: unknown node id %d", id))
	}
	return t.nodes[id]
}

// Parent returns the owner of id, or NoNode for the body and detached nodes.
func (t *Template) Parent(id NodeID) NodeID {
	return t.Node(id).parent
}

// Children returns a copy of the ordered child ids of id.
func (t *Template) Children(id NodeID) []NodeID {
	children := t.Node(id).children
	out := make([]NodeID, len(children))
	copy(out, children)
	return out
}

// Append adds n as the last child of parent and returns its id.
// It panics if parent cannot own children.
func (t *Template) Append(parent NodeID, n Node) NodeID {
	p := t.Node(parent)
	if !p.Kind.IsContainer() {
		panic(fmt.Sprintf("model: %s node cannot own children", p.Kind))
	}
	n.parent = parent
	n.children = nil
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &n)
	p.children = append(p.children, id)
	return id
}

// Detach removes id from its parent's child list. The node stays in the
// arena with no parent.
func (t *Template) Detach(id NodeID) {
	n := t.Node(id)
	if n.parent == NoNode {
		return
	}
	p := t.Node(n.parent)
	for i, c := range p.children {
		if c == id {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = NoNode
}

// Move detaches id and appends it under newParent. Moving a node below
// itself is rejected.
func (t *Template) Move(id, newParent NodeID) error {
	if id == t.Body() {
		return fmt.Errorf("model: body node cannot be moved")
	}
	if !t.Node(newParent).Kind.IsContainer() {
		return fmt.Errorf("model: %s node cannot own children", t.Node(newParent).Kind)
	}
	for a := newParent; a != NoNode; a = t.Node(a).parent {
		if a == id {
			return fmt.Errorf("model: node %d cannot be moved below itself", id)
		}
	}
	t.Detach(id)
	t.Node(id).parent = newParent
	p := t.Node(newParent)
	p.children = append(p.children, id)
	return nil
}

// Walk visits id and its descendants depth first in document order.
// Returning false from fn skips the children of the visited node.
func (t *Template) Walk(id NodeID, fn func(id NodeID, n *Node) bool) {
	n := t.Node(id)
	if !fn(id, n) {
		return
	}
	for _, c := range n.children {
		t.Walk(c, fn)
	}
}

// Sections returns the section definitions in declaration order.
func (t *Template) Sections() []NodeID {
	var out []NodeID
	for _, c := range t.Node(t.Body()).children {
		if t.Node(c).Kind == KindSectionDefinition {
			out = append(out, c)
		}
	}
	return out
}

// Section returns the definition with the given name.
func (t *Template) Section(name string) (NodeID, bool) {
	for _, id := range t.Sections() {
		if t.Node(id).Name == name {
			return id, true
		}
	}
	return NoNode, false
}

// OutputKeys returns the distinct writer keys used by @output blocks, in
// document order.
func (t *Template) OutputKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	t.Walk(t.Body(), func(_ NodeID, n *Node) bool {
		if n.Kind == KindOutput && !seen[n.Key] {
			seen[n.Key] = true
			keys = append(keys, n.Key)
		}
		return true
	})
	return keys
}

// Indentation concatenates the captured indentation of the ancestors of id
// that contribute indentation, outermost first, stopping at the nearest
// indentation boundary.
func (t *Template) Indentation(id NodeID) string {
	var parts []string
	for p := t.Node(id).parent; p != NoNode; p = t.Node(p).parent {
		n := t.Node(p)
		if n.Kind.IsIndentBoundary() {
			break
		}
		if n.Kind.ContributesIndent() {
			parts = append(parts, n.Indent)
		}
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return b.String()
}

// Dump renders the subtree below id as an indented outline. It is used in
// debug logs and tests.
func (t *Template) Dump(id NodeID) string {
	var b strings.Builder
	t.dump(&b, id, 0)
	return b.String()
}

func (t *Template) dump(b *strings.Builder, id NodeID, depth int) {
	n := t.Node(id)
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Kind.String())
	switch n.Kind {
	case KindStaticText, KindDynamicText, KindEvaluation, KindMultiLineEvaluation, KindExecution:
		fmt.Fprintf(b, " %q", n.Text)
	case KindOutput:
		fmt.Fprintf(b, " %q", n.Key)
	case KindSectionReference:
		fmt.Fprintf(b, " %s%s", n.Name, n.Args)
	case KindSectionDefinition:
		fmt.Fprintf(b, " %s/%d", n.Name, len(n.Params))
	}
	b.WriteByte('\n')
	for _, c := range n.children {
		t.dump(b, c, depth+1)
	}
}
