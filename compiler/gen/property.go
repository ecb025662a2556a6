package gen

import (
	"strconv"
	"strings"
	"unicode"

	"aqwari.net/xml/xmltree"

	"github.com/syssam/fhirgen/compiler/load"
	"github.com/syssam/fhirgen/schema/xsd"
)

// valueProperty is the name of the property holding the value of primitive
// wrappers, enumerations and unions.
const valueProperty = "value"

// xsdBuiltins maps XML Schema builtin types to Go builtin types.
var xsdBuiltins = map[string]string{
	"anyURI":             "string",
	"base64Binary":       "string",
	"boolean":            "bool",
	"date":               "string",
	"dateTime":           "string",
	"decimal":            "float64",
	"double":             "float64",
	"duration":           "string",
	"float":              "float32",
	"gDay":               "string",
	"gMonth":             "string",
	"gYear":              "string",
	"gYearMonth":         "string",
	"hexBinary":          "string",
	"ID":                 "string",
	"IDREF":              "string",
	"int":                "int32",
	"integer":            "int64",
	"language":           "string",
	"long":               "int64",
	"Name":               "string",
	"NCName":             "string",
	"negativeInteger":    "int64",
	"nonNegativeInteger": "uint64",
	"nonPositiveInteger": "int64",
	"normalizedString":   "string",
	"positiveInteger":    "uint64",
	"short":              "int16",
	"string":             "string",
	"time":               "string",
	"token":              "string",
	"unsignedInt":        "uint32",
	"unsignedLong":       "uint64",
	"unsignedShort":      "uint16",
}

// maxSimpleDepth bounds the restriction chain followed when resolving a
// simple type to a Go builtin.
const maxSimpleDepth = 8

var stringType = GoType{Ident: "string", Builtin: true}

// implementProperty turns a property-bearing schema node into properties of c.
func (b *Builder) implementProperty(c *Class, el *xmltree.Element) {
	switch kind := xsd.KindOf(el); kind {
	case xsd.Attribute:
		b.attribute(c, el)
	case xsd.Element:
		b.element(c, el, group{})
	case xsd.Sequence:
		b.sequence(c, el, group{})
	case xsd.Choice:
		b.choice(c, el, group{})
	case xsd.Union:
		b.union(c, el)
	case xsd.Enumeration:
		b.enumeration(c, el)
	default:
		b.logger.Debug("ignoring property node", "class", c.Name, "kind", kind)
	}
}

// group carries the occurrence constraints of an enclosing sequence or choice.
type group struct {
	repeated bool
	optional bool
	choice   string
}

func (b *Builder) attribute(c *Class, el *xmltree.Element) {
	name := xsd.Name(el)
	if name == "" {
		name = xsd.Local(el.Attr("", "ref"))
	}
	if name == "" {
		b.logger.Debug("ignoring unnamed attribute", "class", c.Name)
		return
	}
	ref := el.Attr("", "type")
	if ref == "" {
		if st, ok := xsd.Child(el, xsd.SimpleType); ok {
			ref, _ = xsd.RestrictionBase(st)
		}
	}
	typ := b.resolveType(ref)
	p := &Property{
		Name:       name,
		Kind:       PropertyAttribute,
		Type:       typ,
		SchemaType: ref,
		Primitive:  typ.Builtin,
		Required:   el.Attr("", "use") == "required",
		Default:    defaultValue(el),
		Doc:        xsd.DocumentationOf(el),
	}
	c.AddProperty(p)
}

func (b *Builder) element(c *Class, el *xmltree.Element, g group) {
	ref := el.Attr("", "ref")
	name := xsd.Name(el)
	if name == "" {
		name = xsd.Local(ref)
	}
	if name == "" {
		b.logger.Debug("ignoring unnamed element", "class", c.Name)
		return
	}
	schemaType := el.Attr("", "type")
	if schemaType == "" {
		schemaType = ref
	}
	if schemaType == "" {
		if st, ok := xsd.Child(el, xsd.SimpleType); ok {
			schemaType, _ = xsd.RestrictionBase(st)
		}
	}
	typ := b.resolveType(schemaType)
	p := &Property{
		Name:       name,
		Kind:       PropertyElement,
		Type:       typ,
		SchemaType: schemaType,
		Primitive:  typ.Builtin,
		Collection: g.repeated || repeats(el),
		Required:   !g.optional && el.Attr("", "minOccurs") != "0",
		Default:    defaultValue(el),
		Doc:        xsd.DocumentationOf(el),
		Choice:     g.choice,
	}
	c.AddProperty(p)
}

func (b *Builder) sequence(c *Class, el *xmltree.Element, g group) {
	g.repeated = g.repeated || repeats(el)
	g.optional = g.optional || el.Attr("", "minOccurs") == "0"
	b.members(c, el, g)
}

func (b *Builder) choice(c *Class, el *xmltree.Element, g group) {
	g.repeated = g.repeated || repeats(el)
	g.optional = true
	if g.choice == "" {
		g.choice = choiceName(el)
	}
	b.members(c, el, g)
}

func (b *Builder) members(c *Class, el *xmltree.Element, g group) {
	for _, child := range xsd.Children(el) {
		switch kind := xsd.KindOf(child); kind {
		case xsd.Element:
			b.element(c, child, g)
		case xsd.Sequence:
			b.sequence(c, child, g)
		case xsd.Choice:
			b.choice(c, child, g)
		case xsd.Annotation:
		default:
			b.logger.Debug("ignoring group member", "class", c.Name, "kind", kind)
		}
	}
}

func (b *Builder) union(c *Class, el *xmltree.Element) {
	members := el.Attr("", "memberTypes")
	var doc string
	if members != "" {
		doc = "Union of " + strings.Join(strings.Fields(members), ", ") + "."
	}
	c.AddProperty(&Property{
		Name:       valueProperty,
		Kind:       PropertyValue,
		Type:       stringType,
		SchemaType: members,
		Primitive:  true,
		Doc:        doc,
	})
}

func (b *Builder) enumeration(c *Class, el *xmltree.Element) {
	p, ok := c.Property(valueProperty)
	if !ok {
		p = &Property{
			Name:      valueProperty,
			Kind:      PropertyValue,
			Type:      stringType,
			Primitive: true,
		}
		c.AddProperty(p)
	}
	p.Enums = append(p.Enums, el.Attr("", "value"))
}

// resolveType maps a schema type reference to the Go type of its values.
func (b *Builder) resolveType(ref string) GoType {
	return b.resolveDepth(ref, 0)
}

func (b *Builder) resolveDepth(ref string, depth int) GoType {
	if ref == "" || depth > maxSimpleDepth {
		return stringType
	}
	name, reserved := strings.CutPrefix(ref, b.cfg.primitivePrefix())
	if reserved {
		if ident, ok := xsdBuiltins[name]; ok {
			return GoType{Ident: ident, Builtin: true}
		}
	}
	e, ok := b.schema.Lookup(name)
	if !ok {
		e, ok = b.schema.Lookup(xsd.Local(name))
	}
	if !ok {
		return stringType
	}
	if e.Simple() {
		return b.resolveSimple(e, depth)
	}
	return GoType{Ident: e.ClassName, PkgPath: e.Namespace}
}

func (b *Builder) resolveSimple(e *load.Entry, depth int) GoType {
	base, ok := xsd.RestrictionBase(e.Fragment)
	if !ok {
		return stringType
	}
	typ := b.resolveDepth(base, depth+1)
	if !typ.Builtin {
		return stringType
	}
	return typ
}

// repeats reports whether el may occur more than once.
func repeats(el *xmltree.Element) bool {
	max := el.Attr("", "maxOccurs")
	if max == "unbounded" {
		return true
	}
	n, err := strconv.Atoi(max)
	return err == nil && n > 1
}

func defaultValue(el *xmltree.Element) string {
	if v := el.Attr("", "fixed"); v != "" {
		return v
	}
	return el.Attr("", "default")
}

// choiceName names a choice group after the common prefix of its element
// names, as in deceasedBoolean and deceasedDateTime sharing "deceased".
func choiceName(el *xmltree.Element) string {
	var names []string
	for _, child := range xsd.Children(el) {
		if xsd.KindOf(child) == xsd.Element {
			if name := xsd.Name(child); name != "" {
				names = append(names, name)
			}
		}
	}
	if len(names) < 2 {
		return "choice"
	}
	prefix := names[0]
	for _, name := range names[1:] {
		for !strings.HasPrefix(name, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	prefix = strings.TrimRightFunc(prefix, unicode.IsUpper)
	if prefix == "" {
		return "choice"
	}
	return prefix
}
