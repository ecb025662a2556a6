package gen

import (
	"log/slog"
	"strings"

	"aqwari.net/xml/xmltree"

	"github.com/syssam/fhirgen/compiler/load"
	"github.com/syssam/fhirgen/schema/xsd"
)

// ElementNameProperty is the synthetic property holding the schema element
// name of every class.
const ElementNameProperty = "fhirElementName"

// MarshalerInterface is the interface every generated class implements.
var MarshalerInterface = Interface{PkgPath: "encoding/json", Name: "Marshaler"}

// Builder turns schema type map entries into class models. It only reads
// the map and is safe for concurrent use.
type Builder struct {
	cfg    *Config
	schema *load.Map
	logger *slog.Logger
}

// NewBuilder returns a builder resolving type references against m.
func NewBuilder(cfg *Config, m *load.Map) *Builder {
	return &Builder{cfg: cfg, schema: m, logger: cfg.logger()}
}

// level is the walking depth a node is visited at.
type level int

const (
	// classLevel visits the direct children of a type fragment.
	classLevel level = iota
	// contentLevel visits the children of content wrappers.
	contentLevel
	// derivationLevel visits the children of extension and restriction nodes.
	derivationLevel
)

func (l level) String() string {
	switch l {
	case contentLevel:
		return "content"
	case derivationLevel:
		return "derivation"
	default:
		return "class"
	}
}

type kindSet map[xsd.ElementType]struct{}

func newKindSet(ts ...xsd.ElementType) kindSet {
	s := make(kindSet, len(ts))
	for _, t := range ts {
		s[t] = struct{}{}
	}
	return s
}

// with adds every known node kind matching f.
func (s kindSet) with(f func(xsd.ElementType) bool) kindSet {
	for _, t := range xsd.Kinds {
		if f(t) {
			s[t] = struct{}{}
		}
	}
	return s
}

// handled holds the node kinds acted on at each level. Everything else is
// skipped.
var handled = [...]kindSet{
	classLevel: newKindSet(
		xsd.Attribute, xsd.Choice, xsd.Sequence, xsd.Union,
		xsd.Annotation,
	).with(wrapsContent),
	contentLevel: newKindSet(xsd.Choice).with(wrapsContent),
	derivationLevel: newKindSet(
		xsd.Attribute, xsd.Choice, xsd.Union, xsd.Sequence, xsd.Enumeration,
	),
}

// wrapsContent matches the content wrappers and the derivation nodes they
// lead to.
func wrapsContent(t xsd.ElementType) bool { return t.IsContent() || t.IsDerivation() }

// handler processes one schema node of a class.
type handler func(*Builder, *Class, *xmltree.Element)

// handlers is the dispatch table shared by all levels.
var handlers map[xsd.ElementType]handler

func init() {
	property := (*Builder).implementProperty
	content := func(b *Builder, c *Class, el *xmltree.Element) { b.walk(c, el, contentLevel) }
	handlers = map[xsd.ElementType]handler{
		xsd.Attribute:   property,
		xsd.Choice:      property,
		xsd.Sequence:    property,
		xsd.Union:       property,
		xsd.Enumeration: property,
		xsd.Annotation:  (*Builder).documentation,
	}
	for _, t := range xsd.Kinds {
		switch {
		case t.IsContent():
			handlers[t] = content
		case t.IsDerivation():
			handlers[t] = (*Builder).derive
		}
	}
}

// Build returns the class model of entry e.
func (b *Builder) Build(e *load.Entry) (*Class, error) {
	if e == nil || e.Fragment == nil {
		return nil, NewInputError(e, "entry has no schema fragment")
	}
	c := NewClass(e)
	b.classify(c)
	b.walk(c, e.Fragment, classLevel)
	c.AddProperty(&Property{
		Name:      ElementNameProperty,
		Kind:      PropertyElement,
		Type:      stringType,
		Scope:     ScopePrivate,
		Primitive: true,
		ReadOnly:  true,
		Default:   e.Name,
	})
	for _, p := range c.Properties {
		implementAccessors(c, p)
	}
	c.AddInterface(MarshalerInterface)
	implementStandardMethods(c)
	return c, nil
}

// classify sets the class kind. Types that neither classifier recognizes
// are left without one.
func (b *Builder) classify(c *Class) {
	if kind, ok := ComplexClassType(c.Entry.Fragment); ok {
		c.Kind, c.HasKind = kind, true
		return
	}
	if !c.Entry.Simple() {
		return
	}
	kind, err := SimpleClassType(c.Entry.Fragment)
	switch {
	case err != nil:
		b.logger.Debug("cannot classify simple type", "class", c.Name, "error", err)
	case kind == "":
		b.logger.Debug("simple type has no kind suffix", "class", c.Name)
	default:
		c.Kind, c.HasKind = kind, true
	}
}

// walk visits the schema children of el at level l.
func (b *Builder) walk(c *Class, el *xmltree.Element, l level) {
	for _, child := range xsd.Children(el) {
		kind := xsd.KindOf(child)
		if _, ok := handled[l][kind]; !ok {
			b.logger.Debug("skipping schema node", "class", c.Name, "kind", kind, "level", l)
			continue
		}
		handlers[kind](b, c, child)
	}
}

func (b *Builder) documentation(c *Class, el *xmltree.Element) {
	c.SetDocumentation(xsd.DocumentationOf(el))
}

// derive links the class to the base of an extension or restriction node
// and collects the properties the node declares.
func (b *Builder) derive(c *Class, el *xmltree.Element) {
	base, ok := xsd.ExtensionBase(el)
	if !ok {
		base, ok = xsd.RestrictionBase(el)
	}
	if ok {
		b.setParent(c, base)
	}
	b.walk(c, el, derivationLevel)
}

func (b *Builder) setParent(c *Class, base string) {
	name, _ := strings.CutPrefix(base, b.cfg.primitivePrefix())
	parent, ok := b.schema.Lookup(name)
	if !ok {
		b.logger.Debug("base type not in schema", "class", c.Name, "base", base)
		return
	}
	if !c.SetParent(parent) {
		b.logger.Debug("keeping first parent", "class", c.Name, "parent", c.Parent.Name, "base", base)
	}
}
