package xsd

import (
	"html"
	"strings"

	"aqwari.net/xml/xmltree"
)

// Children returns the direct children of el that live in the schema
// namespace, in document order. The returned pointers alias el's storage.
func Children(el *xmltree.Element) []*xmltree.Element {
	if el == nil {
		return nil
	}
	children := make([]*xmltree.Element, 0, len(el.Children))
	for i := range el.Children {
		if c := &el.Children[i]; c.Name.Space == Namespace {
			children = append(children, c)
		}
	}
	return children
}

// Child returns the first direct schema child of el with kind t.
func Child(el *xmltree.Element, t ElementType) (*xmltree.Element, bool) {
	for _, c := range Children(el) {
		if KindOf(c) == t {
			return c, true
		}
	}
	return nil, false
}

// Name returns the name attribute of el, or "" if el is nil or unnamed.
func Name(el *xmltree.Element) string {
	if el == nil {
		return ""
	}
	return el.Attr("", "name")
}

// Local strips the namespace prefix of a qualified name.
func Local(qname string) string {
	if i := strings.LastIndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

// ExtensionBase returns the extension-style base reference of el: its own
// base attribute when el is an extension, else the base of its first direct
// extension child.
func ExtensionBase(el *xmltree.Element) (string, bool) {
	return derivationBase(el, Extension)
}

// RestrictionBase returns the restriction-style base reference of el: its own
// base attribute when el is a restriction, else the base of its first direct
// restriction child.
func RestrictionBase(el *xmltree.Element) (string, bool) {
	return derivationBase(el, Restriction)
}

func derivationBase(el *xmltree.Element, t ElementType) (string, bool) {
	if el == nil {
		return "", false
	}
	if KindOf(el) == t {
		if base := el.Attr("", "base"); base != "" {
			return base, true
		}
	}
	if c, ok := Child(el, t); ok {
		if base := c.Attr("", "base"); base != "" {
			return base, true
		}
	}
	return "", false
}

// BaseObjectName returns the root-type ancestry marker of a type fragment:
// the base of complexContent/extension, then complexContent/restriction.
func BaseObjectName(el *xmltree.Element) (string, bool) {
	content, ok := Child(el, ComplexContent)
	if !ok {
		return "", false
	}
	if base, ok := ExtensionBase(content); ok {
		return base, true
	}
	return RestrictionBase(content)
}

// DocumentationOf returns the text of the documentation children of an
// annotation node, trimmed and joined with newlines. Other nodes are searched
// for a direct annotation child first.
func DocumentationOf(el *xmltree.Element) string {
	if KindOf(el) != Annotation {
		a, ok := Child(el, Annotation)
		if !ok {
			return ""
		}
		el = a
	}
	var docs []string
	for _, c := range Children(el) {
		if KindOf(c) != Documentation {
			continue
		}
		if text := strings.TrimSpace(html.UnescapeString(string(c.Content))); text != "" {
			docs = append(docs, text)
		}
	}
	return strings.Join(docs, "\n")
}
