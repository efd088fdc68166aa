package element

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr is a single attribute on an element descriptor.
type Attr struct {
	Key   string
	Value string
}

// A builds an Attr.
func A(key, value string) Attr {
	return Attr{Key: strings.TrimSpace(key), Value: value}
}

// Element is a typed description of a DOM node. Elements with an empty Tag
// are text nodes. Descriptors are mutated in place the same way the page tree
// would be, which keeps subform logic testable without a browser.
type Element struct {
	Tag      string
	Text     string
	Attrs    []Attr
	Children []*Element

	parent *Element
}

// New constructs an element with the provided attributes.
func New(tag string, attrs ...Attr) *Element {
	el := &Element{Tag: strings.ToLower(strings.TrimSpace(tag))}
	for _, attr := range attrs {
		if attr.Key == "" {
			continue
		}
		el.SetAttr(attr.Key, attr.Value)
	}
	return el
}

// Text constructs a text node.
func Text(value string) *Element {
	return &Element{Text: value}
}

// IsText reports whether the element is a text node.
func (e *Element) IsText() bool {
	return e != nil && e.Tag == ""
}

// Parent returns the element this node was appended to, if any.
func (e *Element) Parent() *Element {
	if e == nil {
		return nil
	}
	return e.parent
}

// Attr returns the value for key and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, attr := range e.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// AttrOr returns the value for key or fallback when absent.
func (e *Element) AttrOr(key, fallback string) string {
	if value, ok := e.Attr(key); ok {
		return value
	}
	return fallback
}

// SetAttr replaces or appends an attribute, keeping insertion order stable.
func (e *Element) SetAttr(key, value string) *Element {
	if e == nil || key == "" {
		return e
	}
	for idx := range e.Attrs {
		if e.Attrs[idx].Key == key {
			e.Attrs[idx].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
	return e
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(key string) *Element {
	if e == nil {
		return e
	}
	e.Attrs = slices.DeleteFunc(e.Attrs, func(attr Attr) bool {
		return attr.Key == key
	})
	return e
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.AttrOr("id", "")
}

// Name returns the name attribute.
func (e *Element) Name() string {
	return e.AttrOr("name", "")
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.AttrOr("class", ""))
}

// HasClass reports whether the class list contains class.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.Classes(), class)
}

// AddClass appends class names that are not already present.
func (e *Element) AddClass(classes ...string) *Element {
	if e == nil {
		return e
	}
	current := e.Classes()
	for _, class := range classes {
		class = strings.TrimSpace(class)
		if class == "" || slices.Contains(current, class) {
			continue
		}
		current = append(current, class)
	}
	if len(current) == 0 {
		return e
	}
	return e.SetAttr("class", strings.Join(current, " "))
}

// RemoveClass removes class names, dropping the attribute when it empties.
func (e *Element) RemoveClass(classes ...string) *Element {
	if e == nil {
		return e
	}
	current := slices.DeleteFunc(e.Classes(), func(class string) bool {
		return slices.Contains(classes, class)
	})
	if len(current) == 0 {
		return e.RemoveAttr("class")
	}
	return e.SetAttr("class", strings.Join(current, " "))
}

// Append adds children and returns the receiver for chaining. Children that
// already belong to another parent are moved.
func (e *Element) Append(children ...*Element) *Element {
	if e == nil {
		return e
	}
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.parent != nil {
			child.parent.Remove(child)
		}
		child.parent = e
		e.Children = append(e.Children, child)
	}
	return e
}

// Remove detaches child from e. It reports whether child was found.
func (e *Element) Remove(child *Element) bool {
	if e == nil || child == nil {
		return false
	}
	for idx, candidate := range e.Children {
		if candidate == child {
			e.Children = slices.Delete(e.Children, idx, idx+1)
			child.parent = nil
			return true
		}
	}
	return false
}

// TextContent concatenates all descendant text nodes.
func (e *Element) TextContent() string {
	if e == nil {
		return ""
	}
	if e.IsText() {
		return e.Text
	}
	var b strings.Builder
	for _, child := range e.Children {
		b.WriteString(child.TextContent())
	}
	return b.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(value string) *Element {
	if e == nil {
		return e
	}
	for _, child := range e.Children {
		child.parent = nil
	}
	e.Children = nil
	return e.Append(Text(value))
}

// Render writes the element as HTML. Attribute values and text are escaped by
// the html package, so descriptors never carry raw markup.
func (e *Element) Render(w io.Writer) error {
	if e == nil {
		return nil
	}
	if err := html.Render(w, e.Node()); err != nil {
		return fmt.Errorf("element: render <%s>: %w", e.Tag, err)
	}
	return nil
}

// HTML renders the element to a string.
func (e *Element) HTML() (string, error) {
	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// String renders the element, returning an empty string on failure.
func (e *Element) String() string {
	out, err := e.HTML()
	if err != nil {
		return ""
	}
	return out
}

// Node converts the descriptor tree into an *html.Node tree.
func (e *Element) Node() *html.Node {
	if e == nil {
		return nil
	}
	if e.IsText() {
		return &html.Node{Type: html.TextNode, Data: e.Text}
	}
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     e.Tag,
		DataAtom: atom.Lookup([]byte(e.Tag)),
	}
	for _, attr := range e.Attrs {
		node.Attr = append(node.Attr, html.Attribute{Key: attr.Key, Val: attr.Value})
	}
	for _, child := range e.Children {
		node.AppendChild(child.Node())
	}
	return node
}

// FromNode converts an *html.Node tree into descriptors. Comments and
// doctype nodes are skipped.
func FromNode(node *html.Node) *Element {
	if node == nil {
		return nil
	}
	switch node.Type {
	case html.TextNode:
		return Text(node.Data)
	case html.ElementNode:
		el := &Element{Tag: node.Data}
		for _, attr := range node.Attr {
			el.Attrs = append(el.Attrs, Attr{Key: attr.Key, Value: attr.Val})
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			el.Append(FromNode(child))
		}
		return el
	case html.DocumentNode:
		root := &Element{Tag: "html"}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode && child.Data == "html" {
				return FromNode(child)
			}
		}
		return root
	default:
		return nil
	}
}

// Clone returns a detached deep copy of e.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{Tag: e.Tag, Text: e.Text, Attrs: slices.Clone(e.Attrs)}
	for _, child := range e.Children {
		out.Append(child.Clone())
	}
	return out
}
