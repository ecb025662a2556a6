package gen

// Names of the standard methods every class implements.
const (
	MethodNameString      = "String"
	MethodNameMarshalJSON = "MarshalJSON"
	MethodNameMarshalXML  = "MarshalXML"
)

var standardMethods = map[string]MethodKind{
	MethodNameString:      MethodString,
	MethodNameMarshalJSON: MethodJSON,
	MethodNameMarshalXML:  MethodXML,
}

// implementAccessors adds the getter, setter and adder of p to c.
func implementAccessors(c *Class, p *Property) {
	name := p.AccessorName()
	getter := name
	if _, ok := standardMethods[getter]; ok {
		getter = "Get" + name
	}
	c.AddMethod(&Method{Name: getter, Kind: MethodGetter, Property: p})
	if p.ReadOnly {
		return
	}
	c.AddMethod(&Method{Name: "Set" + name, Kind: MethodSetter, Property: p})
	if p.Collection {
		c.AddMethod(&Method{Name: "Add" + name, Kind: MethodAdder, Property: p})
	}
}

// implementStandardMethods adds String, MarshalJSON and MarshalXML to c.
func implementStandardMethods(c *Class) {
	for _, name := range []string{MethodNameString, MethodNameMarshalJSON, MethodNameMarshalXML} {
		c.AddMethod(&Method{Name: name, Kind: standardMethods[name]})
	}
}

// Method returns the method with the given name.
func (c *Class) Method(name string) (*Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Accessors returns the methods bound to a property.
func (c *Class) Accessors() []*Method {
	var ms []*Method
	for _, m := range c.Methods {
		if m.Property != nil {
			ms = append(ms, m)
		}
	}
	return ms
}

// StandardMethods returns String, MarshalJSON and MarshalXML.
func (c *Class) StandardMethods() []*Method {
	var ms []*Method
	for _, m := range c.Methods {
		if _, ok := standardMethods[m.Name]; ok && m.Property == nil {
			ms = append(ms, m)
		}
	}
	return ms
}
