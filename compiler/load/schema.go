// Package load builds the schema type map: the lookup from schema type name
// to the generation metadata of the class that will represent it.
package load

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"aqwari.net/xml/xmltree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/fhirgen/schema/xsd"
)

var (
	// ErrDuplicateType is returned when two schema types share a name.
	ErrDuplicateType = errors.New("fhirgen: duplicate schema type")
	// ErrNotSchema is returned when a document root is not xs:schema.
	ErrNotSchema = errors.New("fhirgen: document is not an XML schema")
)

// Entry describes one schema type that will be generated as a class.
// Entries are immutable once added to a Map.
type Entry struct {
	// Name is the schema element name, e.g. "Patient.Contact".
	Name string
	// ClassName is the generated class name, e.g. "PatientContact".
	ClassName string
	// Namespace is the Go import path the class is generated into.
	Namespace string
	// Fragment is the parsed complexType or simpleType node.
	Fragment *xmltree.Element
	// Source is the file the type was declared in, if any.
	Source string
}

// NewEntry returns an entry for the named schema fragment, deriving the class
// name from the element name.
func NewEntry(name, namespace string, fragment *xmltree.Element) *Entry {
	return &Entry{
		Name:      name,
		ClassName: ClassName(name),
		Namespace: namespace,
		Fragment:  fragment,
	}
}

// Simple reports whether the entry was declared as a top-level simpleType.
func (e *Entry) Simple() bool {
	return xsd.KindOf(e.Fragment) == xsd.SimpleType
}

// Map is the read-only schema type map, keyed by schema element name.
type Map struct {
	entries map[string]*Entry
	sorted  []*Entry
	files   []string
}

// NewMap builds a map from the given entries. Entry names must be unique.
func NewMap(entries ...*Entry) (*Map, error) {
	m := &Map{entries: make(map[string]*Entry, len(entries))}
	for _, e := range entries {
		if e == nil || e.Name == "" {
			return nil, fmt.Errorf("fhirgen: schema type entry without a name")
		}
		if prev, ok := m.entries[e.Name]; ok {
			return nil, fmt.Errorf("%w %q (declared in %q and %q)", ErrDuplicateType, e.Name, prev.Source, e.Source)
		}
		m.entries[e.Name] = e
		m.sorted = append(m.sorted, e)
	}
	sort.Slice(m.sorted, func(i, j int) bool { return m.sorted[i].Name < m.sorted[j].Name })
	return m, nil
}

// MustNewMap is like NewMap but panics on error.
func MustNewMap(entries ...*Entry) *Map {
	m, err := NewMap(entries...)
	if err != nil {
		panic(err)
	}
	return m
}

// Lookup returns the entry registered under name.
func (m *Map) Lookup(name string) (*Entry, bool) {
	if m == nil {
		return nil, false
	}
	e, ok := m.entries[name]
	return e, ok
}

// Entries returns all entries sorted by name.
func (m *Map) Entries() []*Entry {
	if m == nil {
		return nil
	}
	return m.sorted
}

// Files returns the schema documents the map was loaded from, including
// the ones reached through includes, in the order they were read. Maps
// built with NewMap have none.
func (m *Map) Files() []string {
	if m == nil {
		return nil
	}
	return m.files
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.sorted)
}

// ClassName returns the generated class name for a schema element name.
// Segments separated by '.', '-' or '_' are title-cased and joined.
func ClassName(name string) string {
	segments := strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '-' || r == '_' || r == ':'
	})
	// Casers are stateful, so each call gets its own.
	caser := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(caser.String(s))
	}
	return b.String()
}
