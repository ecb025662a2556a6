package gen

import (
	"bytes"

	"github.com/dave/jennifer/jen"
	"github.com/goccy/go-json"
)

// snapshotFile is written by the schema/snapshot feature.
const snapshotFile = "internal/snapshot.go"

type (
	// Snapshot is the serializable form of a class graph.
	Snapshot struct {
		Package string           `json:"package"`
		Classes []*ClassSnapshot `json:"classes"`
	}

	// ClassSnapshot is the serializable form of a class.
	ClassSnapshot struct {
		Name          string              `json:"name"`
		ClassName     string              `json:"class_name"`
		Kind          string              `json:"kind,omitempty"`
		Parent        string              `json:"parent,omitempty"`
		Documentation string              `json:"documentation,omitempty"`
		Properties    []*PropertySnapshot `json:"properties"`
		Interfaces    []string            `json:"interfaces,omitempty"`
		Methods       []string            `json:"methods"`
	}

	// PropertySnapshot is the serializable form of a property.
	PropertySnapshot struct {
		Name       string   `json:"name"`
		Kind       string   `json:"kind"`
		Type       string   `json:"type"`
		SchemaType string   `json:"schema_type,omitempty"`
		Private    bool     `json:"private,omitempty"`
		Collection bool     `json:"collection,omitempty"`
		Required   bool     `json:"required,omitempty"`
		ReadOnly   bool     `json:"read_only,omitempty"`
		Default    string   `json:"default,omitempty"`
		Enums      []string `json:"enums,omitempty"`
		Choice     string   `json:"choice,omitempty"`
	}
)

// NewSnapshot returns the snapshot of the given classes.
func NewSnapshot(pkg string, classes []*Class) *Snapshot {
	s := &Snapshot{Package: pkg, Classes: make([]*ClassSnapshot, 0, len(classes))}
	for _, c := range classes {
		cs := &ClassSnapshot{
			Name:          c.Name,
			ClassName:     c.ClassName,
			Documentation: c.Documentation,
		}
		if c.HasKind {
			cs.Kind = c.Kind.String()
		}
		if c.Parent != nil {
			cs.Parent = c.Parent.Name
		}
		for _, p := range c.Properties {
			cs.Properties = append(cs.Properties, &PropertySnapshot{
				Name:       p.Name,
				Kind:       p.Kind.String(),
				Type:       p.Type.String(),
				SchemaType: p.SchemaType,
				Private:    p.Scope == ScopePrivate,
				Collection: p.Collection,
				Required:   p.Required,
				ReadOnly:   p.ReadOnly,
				Default:    p.Default,
				Enums:      p.Enums,
				Choice:     p.Choice,
			})
		}
		for _, i := range c.Interfaces {
			cs.Interfaces = append(cs.Interfaces, i.PkgPath+"."+i.Name)
		}
		for _, m := range c.Methods {
			cs.Methods = append(cs.Methods, m.Name)
		}
		s.Classes = append(s.Classes, cs)
	}
	return s
}

// MarshalIndent returns the indented JSON encoding of the snapshot.
func (s *Snapshot) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func (g *Graph) writeSnapshot(out *output) error {
	b, err := NewSnapshot(g.Package, g.Nodes).MarshalIndent()
	if err != nil {
		return NewGenerationError("snapshot", snapshotFile, "encode class model", err)
	}
	f := jen.NewFile("internal")
	f.HeaderComment(g.header())
	f.Comment("CurrentSnapshot holds the JSON snapshot of the generated class model.")
	f.Const().Id("CurrentSnapshot").Op("=").Lit(string(b))
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError("snapshot", snapshotFile, "render", err)
	}
	return out.write(snapshotFile, buf.Bytes())
}
