package xsd

import (
	"strings"

	"aqwari.net/xml/xmltree"
)

// Namespace is the XML Schema namespace URI.
const Namespace = "http://www.w3.org/2001/XMLSchema"

// ElementType is the lower-cased local name of a schema node.
type ElementType string

// Node kinds recognized by the compiler.
const (
	Annotation     ElementType = "annotation"
	Attribute      ElementType = "attribute"
	Choice         ElementType = "choice"
	ComplexContent ElementType = "complexcontent"
	ComplexType    ElementType = "complextype"
	Documentation  ElementType = "documentation"
	Element        ElementType = "element"
	Enumeration    ElementType = "enumeration"
	Extension      ElementType = "extension"
	Include        ElementType = "include"
	Restriction    ElementType = "restriction"
	Schema         ElementType = "schema"
	Sequence       ElementType = "sequence"
	SimpleContent  ElementType = "simplecontent"
	SimpleType     ElementType = "simpletype"
	Union          ElementType = "union"
)

// Kinds lists every recognized node kind.
var Kinds = []ElementType{
	Annotation, Attribute, Choice, ComplexContent, ComplexType, Documentation,
	Element, Enumeration, Extension, Include, Restriction, Schema, Sequence,
	SimpleContent, SimpleType, Union,
}

// String implements fmt.Stringer.
func (t ElementType) String() string { return string(t) }

// IsContent reports whether t is one of the four content wrapper kinds.
func (t ElementType) IsContent() bool {
	switch t {
	case ComplexType, ComplexContent, SimpleType, SimpleContent:
		return true
	}
	return false
}

// IsDerivation reports whether t is a restriction or an extension.
func (t ElementType) IsDerivation() bool {
	return t == Restriction || t == Extension
}

// KindOf returns the lower-cased node kind of el. A nil element has no kind.
func KindOf(el *xmltree.Element) ElementType {
	if el == nil {
		return ""
	}
	return ElementType(strings.ToLower(el.Name.Local))
}

// Is reports whether el is a schema-namespace node of kind t.
func Is(el *xmltree.Element, t ElementType) bool {
	return el != nil && el.Name.Space == Namespace && KindOf(el) == t
}
