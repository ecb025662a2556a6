package gen

import (
	"strings"

	"aqwari.net/xml/xmltree"

	"github.com/syssam/fhirgen/schema/xsd"
)

// Kind is the structural classification of a generated class.
type Kind string

// Simple kinds, taken from the suffix of simpleType names.
const (
	KindPrimitive Kind = "primitive"
	KindList      Kind = "list"
)

// Composite kinds. Base-object markers other than these pass through
// unchanged as the kind.
const (
	KindComponent       Kind = "Component"
	KindResource        Kind = "Resource"
	KindDomainResource  Kind = "DomainResource"
	KindElement         Kind = "Element"
	KindQuantity        Kind = "Quantity"
	KindBackboneElement Kind = "BackboneElement"
)

// simpleKindSeparator separates a simple type's name from its kind tag,
// as in "string-primitive".
const simpleKindSeparator = "-"

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// IsResource reports whether classes of kind k are standalone resources.
func (k Kind) IsResource() bool {
	return k == KindResource || k == KindDomainResource
}

// SimpleClassType classifies a simple type by the suffix of its name after
// the last "-". The input is either a type name or a schema node whose name
// attribute is used. A name without a suffix yields the empty kind.
func SimpleClassType(input any) (Kind, error) {
	var name string
	switch v := input.(type) {
	case string:
		name = v
	case *xmltree.Element:
		if v == nil {
			return "", NewInputError(input, "nil schema node")
		}
		name = xsd.Name(v)
		if name == "" {
			return "", NewInputError(xsd.KindOf(v), "schema node has no name")
		}
	default:
		return "", NewInputError(input, "expected a schema node or a type name")
	}
	i := strings.LastIndex(name, simpleKindSeparator)
	if i < 0 {
		return "", nil
	}
	return Kind(name[i+1:]), nil
}

// ComplexClassType classifies a type fragment. Names containing a "." are
// components regardless of their base. Otherwise the base-object marker
// decides, with BackboneElement collapsed into Resource. The second result
// is false when the fragment has no base-object marker.
func ComplexClassType(el *xmltree.Element) (Kind, bool) {
	if strings.Contains(xsd.Name(el), ".") {
		return KindComponent, true
	}
	base, ok := xsd.BaseObjectName(el)
	if !ok {
		return "", false
	}
	switch kind := Kind(base); kind {
	case KindBackboneElement:
		return KindResource, true
	default:
		return kind, true
	}
}
