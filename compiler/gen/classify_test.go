package gen

import (
	"testing"

	"aqwari.net/xml/xmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xsdHeader = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:xhtml="http://www.w3.org/1999/xhtml">`

// fragment parses a single top-level schema type.
func fragment(t *testing.T, body string) *xmltree.Element {
	t.Helper()
	root, err := xmltree.Parse([]byte(xsdHeader + body + `</xs:schema>`))
	require.NoError(t, err)
	require.NotEmpty(t, root.Children)
	return &root.Children[0]
}

func TestSimpleClassType(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    Kind
		wantErr bool
	}{
		{name: "primitive name", input: "string-primitive", want: KindPrimitive},
		{name: "list name", input: "AdministrativeGender-list", want: KindList},
		{name: "last separator wins", input: "date-time-primitive", want: KindPrimitive},
		{name: "no separator", input: "Basic", want: ""},
		{name: "trailing separator", input: "string-", want: ""},
		{name: "empty name", input: "", want: ""},
		{name: "nil node", input: (*xmltree.Element)(nil), wantErr: true},
		{name: "unsupported input", input: 42, wantErr: true},
		{name: "nil input", input: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := SimpleClassType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.True(t, IsInputError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}

	t.Run("schema node uses its name attribute", func(t *testing.T) {
		el := fragment(t, `<xs:simpleType name="code-primitive"><xs:restriction base="xs:token"/></xs:simpleType>`)
		kind, err := SimpleClassType(el)
		require.NoError(t, err)
		assert.Equal(t, KindPrimitive, kind)
	})

	t.Run("unnamed schema node", func(t *testing.T) {
		el := fragment(t, `<xs:simpleType><xs:restriction base="xs:token"/></xs:simpleType>`)
		_, err := SimpleClassType(el)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestComplexClassType(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   Kind
		wantOK bool
	}{
		{
			name: "component naming wins over base marker",
			body: `<xs:complexType name="Patient.Contact">
				<xs:complexContent><xs:extension base="DomainResource"/></xs:complexContent>
			</xs:complexType>`,
			want: KindComponent, wantOK: true,
		},
		{
			name: "component without content",
			body: `<xs:complexType name="Patient.Contact"/>`,
			want: KindComponent, wantOK: true,
		},
		{
			name: "backbone element collapses into resource",
			body: `<xs:complexType name="Timing">
				<xs:complexContent><xs:extension base="BackboneElement"/></xs:complexContent>
			</xs:complexType>`,
			want: KindResource, wantOK: true,
		},
		{
			name: "domain resource passes through",
			body: `<xs:complexType name="Patient">
				<xs:complexContent><xs:extension base="DomainResource"/></xs:complexContent>
			</xs:complexType>`,
			want: KindDomainResource, wantOK: true,
		},
		{
			name: "unknown marker passes through",
			body: `<xs:complexType name="Age">
				<xs:complexContent><xs:restriction base="Quantity"/></xs:complexContent>
			</xs:complexType>`,
			want: KindQuantity, wantOK: true,
		},
		{
			name: "element marker",
			body: `<xs:complexType name="HumanName">
				<xs:complexContent><xs:extension base="Element"/></xs:complexContent>
			</xs:complexType>`,
			want: KindElement, wantOK: true,
		},
		{
			name: "no marker",
			body: `<xs:complexType name="Patient"><xs:sequence/></xs:complexType>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := ComplexClassType(fragment(t, tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, "Component", KindComponent.String())
	assert.True(t, KindResource.IsResource())
	assert.True(t, KindDomainResource.IsResource())
	assert.False(t, KindComponent.IsResource())
}
