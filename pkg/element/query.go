package element

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Matcher selects elements during a tree walk.
type Matcher func(*Element) bool

// ByID matches the element whose id equals id.
func ByID(id string) Matcher {
	return func(el *Element) bool {
		return !el.IsText() && el.ID() == id
	}
}

// ByTag matches elements by tag name.
func ByTag(tag string) Matcher {
	tag = strings.ToLower(tag)
	return func(el *Element) bool {
		return el.Tag == tag
	}
}

// ByClass matches elements carrying class.
func ByClass(class string) Matcher {
	return func(el *Element) bool {
		return !el.IsText() && el.HasClass(class)
	}
}

// ByName matches form controls by their name attribute.
func ByName(name string) Matcher {
	return func(el *Element) bool {
		return !el.IsText() && el.Name() == name
	}
}

// FileInputs matches <input type="file">.
func FileInputs() Matcher {
	return func(el *Element) bool {
		return el.Tag == "input" && strings.EqualFold(el.AttrOr("type", ""), "file")
	}
}

// HasAttr matches elements that carry key regardless of value.
func HasAttr(key string) Matcher {
	return func(el *Element) bool {
		_, ok := el.Attr(key)
		return ok
	}
}

// All combines matchers with a logical AND.
func All(matchers ...Matcher) Matcher {
	return func(el *Element) bool {
		for _, match := range matchers {
			if match != nil && !match(el) {
				return false
			}
		}
		return true
	}
}

// Find returns the first descendant (depth-first, receiver included) that
// matches.
func (e *Element) Find(match Matcher) *Element {
	if e == nil || match == nil {
		return nil
	}
	if match(e) {
		return e
	}
	for _, child := range e.Children {
		if found := child.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant (receiver included) that matches, in
// document order.
func (e *Element) FindAll(match Matcher) []*Element {
	if e == nil || match == nil {
		return nil
	}
	var out []*Element
	e.walk(func(el *Element) {
		if match(el) {
			out = append(out, el)
		}
	})
	return out
}

// ChildByClass returns the first direct child carrying class.
func (e *Element) ChildByClass(class string) *Element {
	if e == nil {
		return nil
	}
	for _, child := range e.Children {
		if !child.IsText() && child.HasClass(class) {
			return child
		}
	}
	return nil
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, child := range e.Children {
		child.walk(fn)
	}
}

// ParseFragment parses an HTML fragment (as found inside <body>) into a root
// <div> that holds the parsed nodes.
func ParseFragment(r io.Reader) (*Element, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("element: parse fragment: %w", err)
	}
	root := New("div")
	for _, node := range nodes {
		root.Append(FromNode(node))
	}
	return root, nil
}

// ParseFragmentString is ParseFragment for string input.
func ParseFragmentString(markup string) (*Element, error) {
	return ParseFragment(strings.NewReader(markup))
}
