// Package capture models the browser surface the tracker observes: elements,
// the document, video elements and the page, plus the signals they raise.
package capture

import (
	"slices"
	"strings"
)

// Element is the subset of a DOM element the capture layer reads.
type Element interface {
	// Key identifies the element across repeated queries of the document.
	Key() string
	// TagName is upper case, as in the DOM.
	TagName() string
	ID() string
	ClassName() string
	HasClass(name string) bool
	Attr(name string) string
	Text() string
	ValueLength() int
	Parent() Element
	Children() []Element
}

// Node is a plain, immutable Element. The agent builds it from the page
// bridge's JSON; tests build it directly.
type Node struct {
	NodeKey    string
	Tag        string
	Classes    []string
	Attributes map[string]string
	Content    string
	ValueLen   int
	ParentNode Element
	ChildNodes []Element
}

var _ Element = (*Node)(nil)

func (n *Node) Key() string {
	if n.NodeKey != "" {
		return n.NodeKey
	}
	return n.Attributes["id"]
}

func (n *Node) TagName() string   { return strings.ToUpper(n.Tag) }
func (n *Node) ID() string        { return n.Attributes["id"] }
func (n *Node) ClassName() string { return strings.Join(n.Classes, " ") }
func (n *Node) Text() string      { return n.Content }
func (n *Node) ValueLength() int  { return n.ValueLen }

func (n *Node) HasClass(name string) bool {
	return slices.Contains(n.Classes, name)
}

func (n *Node) Attr(name string) string {
	return n.Attributes[name]
}

func (n *Node) Parent() Element {
	if n.ParentNode == nil {
		return nil
	}
	return n.ParentNode
}

func (n *Node) Children() []Element {
	return n.ChildNodes
}

func (n *Node) setParent(p Element) { n.ParentNode = p }

// Append adds children to n and points their parent at n.
func (n *Node) Append(children ...Element) *Node {
	for _, c := range children {
		if ps, ok := c.(interface{ setParent(Element) }); ok {
			ps.setParent(n)
		}
		n.ChildNodes = append(n.ChildNodes, c)
	}
	return n
}

// Closest walks from el up through its ancestors and returns the first
// element match accepts, like Element.closest.
func Closest(el Element, match func(Element) bool) Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if match(cur) {
			return cur
		}
	}
	return nil
}

// Walk visits el and all of its descendants depth first.
func Walk(el Element, visit func(Element)) {
	if el == nil {
		return
	}
	visit(el)
	for _, c := range el.Children() {
		Walk(c, visit)
	}
}

// IsTag matches elements by tag name.
func IsTag(tag string) func(Element) bool {
	tag = strings.ToUpper(tag)
	return func(el Element) bool { return el.TagName() == tag }
}

// IsButton matches <button> and elements with role="button".
func IsButton(el Element) bool {
	return el.TagName() == "BUTTON" || el.Attr("role") == "button"
}

// IsFormField reports whether el is an INPUT, TEXTAREA or SELECT.
func IsFormField(el Element) bool {
	if el == nil {
		return false
	}
	switch el.TagName() {
	case "INPUT", "TEXTAREA", "SELECT":
		return true
	}
	return false
}
