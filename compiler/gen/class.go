package gen

import (
	"github.com/syssam/fhirgen/compiler/load"
)

// The following types and their exported methods are used by the codegen
// to generate the assets.
type (
	// Class represents one class to be generated from a schema type.
	Class struct {
		// Name holds the schema element name, e.g. "Patient.Contact".
		Name string
		// ClassName holds the generated Go type name.
		ClassName string
		// Namespace holds the Go import path of the generated package.
		Namespace string
		// Entry is the schema type map entry the class was built from.
		Entry *load.Entry
		// Kind is the structural classification. HasKind is false when it
		// could not be determined.
		Kind    Kind
		HasKind bool
		// Documentation holds the annotation text of the type.
		Documentation string
		// Properties in first-seen order.
		Properties []*Property
		// Parent is the extended or restricted base type, if any.
		Parent *load.Entry
		// Interfaces holds the implemented interfaces.
		Interfaces []Interface
		// Methods synthesized for the class, in generation order.
		Methods []*Method
		// Conflicts records properties dropped because their name was taken.
		Conflicts []*PropertyConflictError

		props map[string]*Property
	}

	// Property describes one field of a class.
	Property struct {
		// Name is the schema name of the property.
		Name string
		// Kind tells where the property came from.
		Kind PropertyKind
		// Type holds the Go type of a single value.
		Type GoType
		// SchemaType is the schema type reference the Go type was resolved from.
		SchemaType string
		// Scope of the generated field.
		Scope Scope
		// Primitive indicates the value is a Go builtin.
		Primitive bool
		// Collection indicates the property holds a list of values.
		Collection bool
		// Required indicates the schema requires the property.
		Required bool
		// ReadOnly properties get no setter.
		ReadOnly bool
		// Default is the initial value of the field, if any.
		Default string
		// Doc is the property documentation.
		Doc string
		// Enums holds the allowed values of an enumerated property.
		Enums []string
		// Choice names the choice group the property belongs to, if any.
		Choice string
	}

	// GoType describes the Go type of a property value.
	GoType struct {
		// Ident is the type name, e.g. "string" or "HumanName".
		Ident string
		// PkgPath is the import path of a non-builtin type.
		PkgPath string
		// Builtin indicates a predeclared Go type.
		Builtin bool
	}

	// Interface names an interface implemented by a generated class.
	Interface struct {
		PkgPath string
		Name    string
	}

	// Method describes a method synthesized for a class.
	Method struct {
		Name     string
		Kind     MethodKind
		Property *Property
	}
)

// String returns the Go notation of the type.
func (t GoType) String() string {
	if t.Builtin || t.PkgPath == "" {
		return t.Ident
	}
	return t.PkgPath + "." + t.Ident
}

// Scope is the visibility of a generated property.
type Scope int

// Property scopes.
const (
	ScopePublic Scope = iota
	ScopePrivate
)

// String implements fmt.Stringer.
func (s Scope) String() string {
	if s == ScopePrivate {
		return "private"
	}
	return "public"
}

// PropertyKind tells which schema construct produced a property.
type PropertyKind int

// Property kinds.
const (
	PropertyElement PropertyKind = iota
	PropertyAttribute
	PropertyValue
)

// String implements fmt.Stringer.
func (k PropertyKind) String() string {
	switch k {
	case PropertyAttribute:
		return "attribute"
	case PropertyValue:
		return "value"
	default:
		return "element"
	}
}

// MethodKind classifies synthesized methods.
type MethodKind int

// Method kinds.
const (
	MethodGetter MethodKind = iota
	MethodSetter
	MethodAdder
	MethodString
	MethodJSON
	MethodXML
)

// String implements fmt.Stringer.
func (k MethodKind) String() string {
	switch k {
	case MethodSetter:
		return "setter"
	case MethodAdder:
		return "adder"
	case MethodString:
		return "string"
	case MethodJSON:
		return "json"
	case MethodXML:
		return "xml"
	default:
		return "getter"
	}
}

// NewClass returns an empty class for the given entry.
func NewClass(e *load.Entry) *Class {
	return &Class{
		Name:      e.Name,
		ClassName: e.ClassName,
		Namespace: e.Namespace,
		Entry:     e,
		props:     make(map[string]*Property),
	}
}

// AddProperty appends p unless a property with the same name exists. A
// duplicate is recorded in Conflicts and reported as false.
func (c *Class) AddProperty(p *Property) bool {
	if prev, ok := c.props[p.Name]; ok {
		c.Conflicts = append(c.Conflicts, &PropertyConflictError{
			Class:    c.Name,
			Property: p.Name,
			Kept:     prev.Kind,
			Dropped:  p.Kind,
		})
		return false
	}
	c.props[p.Name] = p
	c.Properties = append(c.Properties, p)
	return true
}

// Property returns the property with the given name.
func (c *Class) Property(name string) (*Property, bool) {
	p, ok := c.props[name]
	return p, ok
}

// SetParent links the class to its base type. Only the first link sticks;
// later calls report false.
func (c *Class) SetParent(e *load.Entry) bool {
	if c.Parent != nil || e == nil {
		return false
	}
	c.Parent = e
	return true
}

// SetDocumentation sets the class documentation, replacing any previous value.
func (c *Class) SetDocumentation(doc string) {
	c.Documentation = doc
}

// AddInterface adds an implemented interface once.
func (c *Class) AddInterface(i Interface) {
	for _, have := range c.Interfaces {
		if have == i {
			return
		}
	}
	c.Interfaces = append(c.Interfaces, i)
}

// AddMethod appends a synthesized method.
func (c *Class) AddMethod(m *Method) {
	c.Methods = append(c.Methods, m)
}

// Receiver returns the receiver name of the class methods.
func (c *Class) Receiver() string {
	return receiver(c.ClassName)
}

// Enums returns the properties holding enumerated values.
func (c *Class) Enums() []*Property {
	var enums []*Property
	for _, p := range c.Properties {
		if len(p.Enums) > 0 {
			enums = append(enums, p)
		}
	}
	return enums
}

// Serialized returns the properties written by the serialization methods.
func (c *Class) Serialized() []*Property {
	props := make([]*Property, 0, len(c.Properties))
	for _, p := range c.Properties {
		if p.Scope == ScopePublic {
			props = append(props, p)
		}
	}
	return props
}

// FieldName returns the unexported struct field name of the property.
func (p *Property) FieldName() string {
	return builderField(camel(p.Name))
}

// AccessorName returns the exported accessor name of the property.
func (p *Property) AccessorName() string {
	return pascal(p.Name)
}

// Pointer reports whether a single value is held by pointer.
func (p *Property) Pointer() bool {
	return !p.Type.Builtin
}
