package xsd

import (
	"testing"

	"aqwari.net/xml/xmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, doc string) *xmltree.Element {
	t.Helper()
	el, err := xmltree.Parse([]byte(doc))
	require.NoError(t, err)
	return el
}

func TestKindOf(t *testing.T) {
	el := parse(t, `<xs:complexType xmlns:xs="http://www.w3.org/2001/XMLSchema" name="Patient"/>`)
	assert.Equal(t, ComplexType, KindOf(el))
	assert.True(t, KindOf(el).IsContent())
	assert.False(t, KindOf(el).IsDerivation())
	assert.True(t, Is(el, ComplexType))
	assert.Equal(t, ElementType(""), KindOf(nil))
}

func TestChildren(t *testing.T) {
	el := parse(t, `<xs:complexType xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:x="urn:other">
		<xs:annotation/>
		<x:sequence/>
		<xs:sequence/>
		<xs:attribute name="id"/>
	</xs:complexType>`)

	children := Children(el)
	require.Len(t, children, 3)
	assert.Equal(t, Annotation, KindOf(children[0]))
	assert.Equal(t, Sequence, KindOf(children[1]))
	assert.Equal(t, Attribute, KindOf(children[2]))

	attr, ok := Child(el, Attribute)
	require.True(t, ok)
	assert.Equal(t, "id", Name(attr))

	_, ok = Child(el, Choice)
	assert.False(t, ok)
	assert.Nil(t, Children(nil))
}

func TestDerivationBase(t *testing.T) {
	t.Run("extension node", func(t *testing.T) {
		el := parse(t, `<xs:extension xmlns:xs="http://www.w3.org/2001/XMLSchema" base="Element"/>`)
		base, ok := ExtensionBase(el)
		require.True(t, ok)
		assert.Equal(t, "Element", base)
		_, ok = RestrictionBase(el)
		assert.False(t, ok)
	})

	t.Run("restriction node", func(t *testing.T) {
		el := parse(t, `<xs:restriction xmlns:xs="http://www.w3.org/2001/XMLSchema" base="xs:string"/>`)
		_, ok := ExtensionBase(el)
		assert.False(t, ok)
		base, ok := RestrictionBase(el)
		require.True(t, ok)
		assert.Equal(t, "xs:string", base)
	})

	t.Run("nested child reference", func(t *testing.T) {
		el := parse(t, `<xs:restriction xmlns:xs="http://www.w3.org/2001/XMLSchema" base="Quantity">
			<xs:extension base="Element"/>
		</xs:restriction>`)
		ext, ok := ExtensionBase(el)
		require.True(t, ok)
		assert.Equal(t, "Element", ext)
		res, ok := RestrictionBase(el)
		require.True(t, ok)
		assert.Equal(t, "Quantity", res)
	})
}

func TestBaseObjectName(t *testing.T) {
	el := parse(t, `<xs:complexType xmlns:xs="http://www.w3.org/2001/XMLSchema" name="Patient">
		<xs:complexContent>
			<xs:extension base="DomainResource"/>
		</xs:complexContent>
	</xs:complexType>`)
	base, ok := BaseObjectName(el)
	require.True(t, ok)
	assert.Equal(t, "DomainResource", base)

	el = parse(t, `<xs:complexType xmlns:xs="http://www.w3.org/2001/XMLSchema" name="Element">
		<xs:sequence/>
	</xs:complexType>`)
	_, ok = BaseObjectName(el)
	assert.False(t, ok)
}

func TestDocumentationOf(t *testing.T) {
	el := parse(t, `<xs:complexType xmlns:xs="http://www.w3.org/2001/XMLSchema" name="Patient">
		<xs:annotation>
			<xs:documentation xml:lang="en">Demographics &amp; other
			administrative information.</xs:documentation>
			<xs:documentation xml:lang="en">  If the element is present, it must have either a @value.  </xs:documentation>
		</xs:annotation>
	</xs:complexType>`)

	doc := DocumentationOf(el)
	assert.Contains(t, doc, "Demographics & other")
	assert.Contains(t, doc, "\nIf the element is present, it must have either a @value.")

	a, ok := Child(el, Annotation)
	require.True(t, ok)
	assert.Equal(t, doc, DocumentationOf(a))
	assert.Empty(t, DocumentationOf(parse(t, `<xs:sequence xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`)))
}

func TestLocal(t *testing.T) {
	assert.Equal(t, "string", Local("xs:string"))
	assert.Equal(t, "div", Local("xhtml:div"))
	assert.Equal(t, "Patient", Local("Patient"))
}
