package gen

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

// encodingFile holds the helpers shared by the generated classes.
const encodingFile = "encoding.go"

const (
	pkgJSON = "encoding/json"
	pkgXML  = "encoding/xml"
)

// JenniferGenerator renders one Go file per class of the graph.
type JenniferGenerator struct {
	graph   *Graph
	out     *output
	workers int
}

// NewJenniferGenerator returns a generator writing the classes of g to out.
func NewJenniferGenerator(g *Graph, out *output) *JenniferGenerator {
	return &JenniferGenerator{graph: g, out: out, workers: g.workers()}
}

// Generate renders all class files in parallel.
func (g *JenniferGenerator) Generate(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, c := range g.graph.Nodes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.render(g.genClass(c), fileName(c.ClassName))
		})
	}
	eg.Go(func() error {
		return g.render(g.genEncoding(), encodingFile)
	})
	return eg.Wait()
}

func (g *JenniferGenerator) render(f *jen.File, name string) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError("class", name, "render", err)
	}
	return g.out.write(name, buf.Bytes())
}

// newFile creates a new Jennifer file with the header comment.
func (g *JenniferGenerator) newFile() *jen.File {
	f := jen.NewFilePathName(g.pkgPath(), g.graph.PackageName())
	f.HeaderComment(g.graph.header())
	return f
}

func (g *JenniferGenerator) pkgPath() string {
	if g.graph.Package == "" {
		return g.graph.PackageName()
	}
	return g.graph.Package
}

// local reports whether pkgPath is the generated package.
func (g *JenniferGenerator) local(pkgPath string) bool {
	return pkgPath == "" || pkgPath == g.graph.Package
}

// qual returns a reference to a generated type.
func (g *JenniferGenerator) qual(pkgPath, name string) *jen.Statement {
	if g.local(pkgPath) {
		return jen.Id(name)
	}
	return jen.Qual(pkgPath, name)
}

// genClass renders the file of class c.
func (g *JenniferGenerator) genClass(c *Class) *jen.File {
	f := g.newFile()
	g.genEnums(f, c)
	g.genStruct(f, c)
	g.genConstructor(f, c)
	g.genAccessors(f, c)
	g.genString(f, c)
	g.genAppendJSON(f, c)
	g.genMarshalJSON(f, c)
	g.genXMLAttrs(f, c)
	g.genXMLChildren(f, c)
	g.genMarshalXML(f, c)
	for _, i := range c.Interfaces {
		f.Var().Id("_").Qual(i.PkgPath, i.Name).Op("=").Parens(jen.Op("*").Id(c.ClassName)).Parens(jen.Nil())
	}
	return f
}

// base describes how a class holds its parent.
type base struct {
	class *Class
	// field is the selector of the parent value.
	field string
	// embedded is false when the parent name clashes with a method of the
	// class and the parent is held in a named field instead.
	embedded bool
	// chain reports whether the parent's unexported helpers are reachable.
	chain bool
}

func (g *JenniferGenerator) base(c *Class) (base, bool) {
	p := g.graph.Parent(c)
	if p == nil {
		return base{}, false
	}
	b := base{class: p, field: p.ClassName, embedded: true, chain: g.local(p.Namespace)}
	if _, clash := c.Method(p.ClassName); clash {
		b.field, b.embedded = "base", false
		if _, ok := c.Property("base"); ok {
			b.field = "base_"
		}
	}
	return b, true
}

func comment(text string) []jen.Code {
	var cs []jen.Code
	for _, line := range strings.Split(text, "\n") {
		cs = append(cs, jen.Comment(line))
	}
	return cs
}

func (g *JenniferGenerator) genEnums(f *jen.File, c *Class) {
	for _, p := range c.Enums() {
		prefix := c.ClassName
		if p.Name != valueProperty {
			prefix += p.AccessorName()
		}
		names := enumNames(prefix, p.Enums)
		f.Comment(fmt.Sprintf("Allowed values of the %s property of %s.", p.Name, c.ClassName))
		f.Const().DefsFunc(func(grp *jen.Group) {
			for i, v := range p.Enums {
				grp.Id(names[i]).Op("=").Lit(v)
			}
		})
		fn := prefix + "Values"
		f.Comment(fmt.Sprintf("%s returns the allowed values of the %s property.", fn, p.Name))
		f.Func().Id(fn).Params().Index().String().Block(
			jen.Return(jen.Index().String().ValuesFunc(func(grp *jen.Group) {
				for _, name := range names {
					grp.Id(name)
				}
			})),
		)
	}
}

func (g *JenniferGenerator) genStruct(f *jen.File, c *Class) {
	f.Comment(fmt.Sprintf("%s is generated from the %s schema type.", c.ClassName, c.Name))
	if c.Documentation != "" {
		f.Comment("")
		for _, line := range comment(c.Documentation) {
			f.Add(line)
		}
	}
	f.Type().Id(c.ClassName).StructFunc(func(grp *jen.Group) {
		if b, ok := g.base(c); ok {
			if b.embedded {
				grp.Add(g.qual(b.class.Namespace, b.class.ClassName))
			} else {
				grp.Id(b.field).Add(g.qual(b.class.Namespace, b.class.ClassName))
			}
		}
		for _, p := range c.Properties {
			if p.Doc != "" {
				for _, line := range comment(p.Doc) {
					grp.Add(line)
				}
			}
			grp.Id(p.FieldName()).Add(g.fieldType(p))
		}
	})
}

func (g *JenniferGenerator) valueType(p *Property) *jen.Statement {
	if p.Type.Builtin {
		return jen.Id(p.Type.Ident)
	}
	return jen.Op("*").Add(g.qual(p.Type.PkgPath, p.Type.Ident))
}

func (g *JenniferGenerator) fieldType(p *Property) *jen.Statement {
	if p.Collection {
		return jen.Index().Add(g.valueType(p))
	}
	return g.valueType(p)
}

func (g *JenniferGenerator) genConstructor(f *jen.File, c *Class) {
	name := "New" + c.ClassName
	f.Comment(fmt.Sprintf("%s returns a %s with its default values set.", name, c.ClassName))
	f.Func().Id(name).Params().Op("*").Id(c.ClassName).Block(
		jen.Return(jen.Op("&").Id(c.ClassName).Values(jen.DictFunc(func(d jen.Dict) {
			if b, ok := g.base(c); ok {
				ctor := g.qual(b.class.Namespace, "New"+b.class.ClassName)
				d[jen.Id(b.field)] = jen.Op("*").Add(ctor).Call()
			}
			for _, p := range c.Properties {
				if v, ok := defaultLit(p); ok {
					d[jen.Id(p.FieldName())] = v
				}
			}
		}))),
	)
}

// defaultLit returns the literal of the default value of p.
func defaultLit(p *Property) (jen.Code, bool) {
	if p.Default == "" || p.Collection || !p.Type.Builtin {
		return nil, false
	}
	switch ident := p.Type.Ident; {
	case ident == "string":
		return jen.Lit(p.Default), true
	case ident == "bool":
		v, err := strconv.ParseBool(p.Default)
		return jen.Lit(v), err == nil
	case strings.HasPrefix(ident, "float"):
		v, err := strconv.ParseFloat(p.Default, bitSize(ident, "float"))
		return jen.Lit(v), err == nil
	case strings.HasPrefix(ident, "uint"):
		v, err := strconv.ParseUint(p.Default, 10, bitSize(ident, "uint"))
		return jen.Id(strconv.FormatUint(v, 10)), err == nil
	default:
		v, err := strconv.ParseInt(p.Default, 10, bitSize(ident, "int"))
		return jen.Id(strconv.FormatInt(v, 10)), err == nil
	}
}

// bitSize returns the size of a sized numeric builtin such as int64, or 0
// for int and uint.
func bitSize(ident, prefix string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(ident, prefix))
	return n
}

func (g *JenniferGenerator) genAccessors(f *jen.File, c *Class) {
	r := c.Receiver()
	self := func() *jen.Statement { return jen.Id(r).Op("*").Id(c.ClassName) }
	for _, m := range c.Accessors() {
		p := m.Property
		field := func() *jen.Statement { return jen.Id(r).Dot(p.FieldName()) }
		switch m.Kind {
		case MethodGetter:
			f.Comment(fmt.Sprintf("%s returns the value of the %s property.", m.Name, p.Name))
			f.Func().Params(self()).Id(m.Name).Params().Add(g.fieldType(p)).Block(
				jen.Return(field()),
			)
		case MethodSetter:
			f.Comment(fmt.Sprintf("%s sets the %s property.", m.Name, p.Name))
			f.Func().Params(self()).Id(m.Name).Params(jen.Id("v").Add(g.fieldType(p))).Op("*").Id(c.ClassName).Block(
				field().Op("=").Id("v"),
				jen.Return(jen.Id(r)),
			)
		case MethodAdder:
			f.Comment(fmt.Sprintf("%s appends values to the %s property.", m.Name, p.Name))
			f.Func().Params(self()).Id(m.Name).Params(jen.Id("v").Op("...").Add(g.valueType(p))).Op("*").Id(c.ClassName).Block(
				field().Op("=").Append(field(), jen.Id("v").Op("...")),
				jen.Return(jen.Id(r)),
			)
		}
	}
}

func (g *JenniferGenerator) genString(f *jen.File, c *Class) {
	r := c.Receiver()
	var ret jen.Code = jen.Id(r).Dot(builderField(camel(ElementNameProperty)))
	if p, ok := c.Property(valueProperty); ok && !p.Collection {
		field := jen.Id(r).Dot(p.FieldName())
		switch {
		case p.Type.Ident == "string" && p.Type.Builtin:
			ret = field
		case p.Type.Builtin:
			ret = jen.Id("formatValue").Call(field)
		default:
			ret = field.Dot("String").Call()
		}
	}
	f.Comment("String implements fmt.Stringer.")
	f.Func().Params(jen.Id(r).Op("*").Id(c.ClassName)).Id(MethodNameString).Params().String().Block(
		jen.If(jen.Id(r).Op("==").Nil()).Block(jen.Return(jen.Lit(""))),
		jen.Return(ret),
	)
}

// present returns the condition under which a property is serialized.
func present(p *Property, field func() *jen.Statement) *jen.Statement {
	switch {
	case p.Collection:
		return jen.Len(field()).Op(">").Lit(0)
	case !p.Type.Builtin:
		return field().Op("!=").Nil()
	case p.Type.Ident == "string":
		return field().Op("!=").Lit("")
	case p.Type.Ident == "bool":
		return field()
	default:
		return field().Op("!=").Lit(0)
	}
}

// always reports whether a property is serialized even when zero.
func always(p *Property) bool {
	return p.Required && p.Type.Builtin && !p.Collection
}

func (g *JenniferGenerator) genAppendJSON(f *jen.File, c *Class) {
	r := c.Receiver()
	f.Comment("appendJSON adds the set properties to fields, parents first.")
	f.Func().Params(jen.Id(r).Op("*").Id(c.ClassName)).Id("appendJSON").Params(jen.Id("fields").Map(jen.String()).Any()).BlockFunc(func(grp *jen.Group) {
		if b, ok := g.base(c); ok && b.chain {
			grp.Id(r).Dot(b.field).Dot("appendJSON").Call(jen.Id("fields"))
		}
		for _, p := range c.Serialized() {
			field := func() *jen.Statement { return jen.Id(r).Dot(p.FieldName()) }
			set := jen.Id("fields").Index(jen.Lit(p.Name)).Op("=").Add(field())
			if always(p) {
				grp.Add(set)
				continue
			}
			grp.If(present(p, field)).Block(set)
		}
	})
}

func (g *JenniferGenerator) genMarshalJSON(f *jen.File, c *Class) {
	r := c.Receiver()
	f.Comment("MarshalJSON implements json.Marshaler.")
	f.Func().Params(jen.Id(r).Op("*").Id(c.ClassName)).Id(MethodNameMarshalJSON).Params().Params(jen.Index().Byte(), jen.Error()).BlockFunc(func(grp *jen.Group) {
		grp.If(jen.Id(r).Op("==").Nil()).Block(
			jen.Return(jen.Index().Byte().Parens(jen.Lit("null")), jen.Nil()),
		)
		grp.Id("fields").Op(":=").Make(jen.Map(jen.String()).Any())
		grp.Id(r).Dot("appendJSON").Call(jen.Id("fields"))
		if c.HasKind && c.Kind.IsResource() {
			grp.Id("fields").Index(jen.Lit("resourceType")).Op("=").Id(r).Dot(builderField(camel(ElementNameProperty)))
		}
		grp.Return(jen.Qual(pkgJSON, "Marshal").Call(jen.Id("fields")))
	})
}

// xmlAttribute reports whether p is written as an XML attribute.
func xmlAttribute(p *Property) bool {
	return (p.Kind == PropertyAttribute || p.Kind == PropertyValue) && !p.Collection
}

func xmlName(name string) *jen.Statement {
	return jen.Qual(pkgXML, "Name").Values(jen.Dict{jen.Id("Local"): jen.Lit(name)})
}

func (g *JenniferGenerator) genXMLAttrs(f *jen.File, c *Class) {
	r := c.Receiver()
	f.Comment("xmlAttrs adds the set attributes to start, parents first.")
	f.Func().Params(jen.Id(r).Op("*").Id(c.ClassName)).Id("xmlAttrs").Params(jen.Id("start").Op("*").Qual(pkgXML, "StartElement")).BlockFunc(func(grp *jen.Group) {
		if b, ok := g.base(c); ok && b.chain {
			grp.Id(r).Dot(b.field).Dot("xmlAttrs").Call(jen.Id("start"))
		}
		for _, p := range c.Serialized() {
			if !xmlAttribute(p) {
				continue
			}
			field := func() *jen.Statement { return jen.Id(r).Dot(p.FieldName()) }
			var value jen.Code
			switch {
			case p.Type.Builtin && p.Type.Ident == "string":
				value = field()
			case p.Type.Builtin:
				value = jen.Id("formatValue").Call(field())
			default:
				value = field().Dot("String").Call()
			}
			add := jen.Id("start").Dot("Attr").Op("=").Append(
				jen.Id("start").Dot("Attr"),
				jen.Qual(pkgXML, "Attr").Values(jen.Dict{
					jen.Id("Name"):  xmlName(p.Name),
					jen.Id("Value"): value,
				}),
			)
			if always(p) {
				grp.Add(add)
				continue
			}
			grp.If(present(p, field)).Block(add)
		}
	})
}

func (g *JenniferGenerator) genXMLChildren(f *jen.File, c *Class) {
	r := c.Receiver()
	f.Comment("xmlChildren writes the set child elements, parents first.")
	f.Func().Params(jen.Id(r).Op("*").Id(c.ClassName)).Id("xmlChildren").Params(jen.Id("enc").Op("*").Qual(pkgXML, "Encoder")).Error().BlockFunc(func(grp *jen.Group) {
		if b, ok := g.base(c); ok && b.chain {
			grp.If(jen.Err().Op(":=").Id(r).Dot(b.field).Dot("xmlChildren").Call(jen.Id("enc")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Err()),
			)
		}
		for _, p := range c.Serialized() {
			if xmlAttribute(p) {
				continue
			}
			field := func() *jen.Statement { return jen.Id(r).Dot(p.FieldName()) }
			encode := func(v jen.Code) *jen.Statement {
				if p.Type.Builtin {
					return jen.Id("encodeValue").Call(jen.Id("enc"), jen.Lit(p.Name), v)
				}
				return jen.Id("enc").Dot("EncodeElement").Call(v, jen.Qual(pkgXML, "StartElement").Values(jen.Dict{
					jen.Id("Name"): xmlName(p.Name),
				}))
			}
			check := func(v jen.Code) *jen.Statement {
				return jen.If(jen.Err().Op(":=").Add(encode(v)), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
			}
			switch {
			case p.Collection:
				grp.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Add(field())).Block(check(jen.Id("v")))
			case always(p):
				grp.Add(check(field()))
			default:
				grp.If(present(p, field)).Block(check(field()))
			}
		}
		grp.Return(jen.Nil())
	})
}

func (g *JenniferGenerator) genMarshalXML(f *jen.File, c *Class) {
	r := c.Receiver()
	f.Comment("MarshalXML implements xml.Marshaler.")
	f.Func().Params(jen.Id(r).Op("*").Id(c.ClassName)).Id(MethodNameMarshalXML).Params(
		jen.Id("enc").Op("*").Qual(pkgXML, "Encoder"),
		jen.Id("start").Qual(pkgXML, "StartElement"),
	).Error().Block(
		jen.If(jen.Id(r).Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.If(
			jen.Id("start").Dot("Name").Dot("Local").Op("==").Lit("").Op("||").
				Id("start").Dot("Name").Dot("Local").Op("==").Lit(c.ClassName),
		).Block(
			jen.Id("start").Dot("Name").Op("=").Qual(pkgXML, "Name").Values(jen.Dict{
				jen.Id("Space"): jen.Lit(g.graph.xmlNamespace()),
				jen.Id("Local"): jen.Id(r).Dot(builderField(camel(ElementNameProperty))),
			}),
		),
		jen.Id(r).Dot("xmlAttrs").Call(jen.Op("&").Id("start")),
		jen.If(jen.Err().Op(":=").Id("enc").Dot("EncodeToken").Call(jen.Id("start")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Err()),
		),
		jen.If(jen.Err().Op(":=").Id(r).Dot("xmlChildren").Call(jen.Id("enc")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Err()),
		),
		jen.Return(jen.Id("enc").Dot("EncodeToken").Call(jen.Id("start").Dot("End").Call())),
	)
}

// genEncoding renders the helpers shared by all classes.
func (g *JenniferGenerator) genEncoding() *jen.File {
	f := g.newFile()
	f.Comment("encodeValue writes a primitive as an element holding a value attribute.")
	f.Func().Id("encodeValue").Params(
		jen.Id("enc").Op("*").Qual(pkgXML, "Encoder"),
		jen.Id("name").String(),
		jen.Id("v").Any(),
	).Error().Block(
		jen.Id("start").Op(":=").Qual(pkgXML, "StartElement").Values(jen.Dict{
			jen.Id("Name"): jen.Qual(pkgXML, "Name").Values(jen.Dict{jen.Id("Local"): jen.Id("name")}),
			jen.Id("Attr"): jen.Index().Qual(pkgXML, "Attr").Values(jen.Values(jen.Dict{
				jen.Id("Name"):  xmlName("value"),
				jen.Id("Value"): jen.Id("formatValue").Call(jen.Id("v")),
			})),
		}),
		jen.If(jen.Err().Op(":=").Id("enc").Dot("EncodeToken").Call(jen.Id("start")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Err()),
		),
		jen.Return(jen.Id("enc").Dot("EncodeToken").Call(jen.Id("start").Dot("End").Call())),
	)
	f.Comment("formatValue returns the lexical form of a primitive value.")
	f.Func().Id("formatValue").Params(jen.Id("v").Any()).String().Block(
		jen.Switch(jen.Id("v").Op(":=").Id("v").Assert(jen.Type())).Block(
			jen.Case(jen.String()).Block(jen.Return(jen.Id("v"))),
			jen.Case(jen.Bool()).Block(jen.Return(jen.Qual("strconv", "FormatBool").Call(jen.Id("v")))),
			jen.Case(jen.Float32()).Block(jen.Return(jen.Qual("strconv", "FormatFloat").Call(jen.Float64().Call(jen.Id("v")), jen.LitRune('f'), jen.Lit(-1), jen.Lit(32)))),
			jen.Case(jen.Float64()).Block(jen.Return(jen.Qual("strconv", "FormatFloat").Call(jen.Id("v"), jen.LitRune('f'), jen.Lit(-1), jen.Lit(64)))),
			jen.Default().Block(jen.Return(jen.Qual("fmt", "Sprint").Call(jen.Id("v")))),
		),
	)
	return f
}

// enumSymbols names punctuation that carries meaning in enumerated codes.
var enumSymbols = map[rune]string{
	'<': "LessThan",
	'>': "GreaterThan",
	'=': "Equal",
	'!': "Not",
	'+': "Plus",
	'*': "Star",
	'%': "Percent",
	'&': "And",
	'|': "Or",
	'@': "At",
	'#': "Hash",
}

// enumIdent turns an enumerated code into an identifier suffix.
func enumIdent(v string) string {
	var (
		words []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range v {
		switch sym, ok := enumSymbols[r]; {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		case ok:
			flush()
			words = append(words, sym)
		default:
			flush()
		}
	}
	flush()
	return pascalWords(words)
}

// enumNames returns unique constant names for the values of an enum.
func enumNames(prefix string, values []string) []string {
	names := make([]string, len(values))
	seen := make(map[string]struct{}, len(values))
	for i, v := range values {
		ident := enumIdent(v)
		if ident == "" {
			ident = "Empty"
		}
		name := prefix + ident
		for n := 2; ; n++ {
			if _, ok := seen[name]; !ok {
				break
			}
			name = prefix + ident + strconv.Itoa(n)
		}
		seen[name] = struct{}{}
		names[i] = name
	}
	return names
}
