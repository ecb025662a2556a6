package gen

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/fhirgen/compiler/load"
)

// Graph holds the class models of a schema, in schema type map order.
type Graph struct {
	*Config
	// Nodes are the classes of the graph, sorted by schema name.
	Nodes []*Class
	// Schema is the type map the classes were built from.
	Schema *load.Map

	byName map[string]*Class
}

// NewGraph builds the class of every entry of m. Classes are built in
// parallel, bounded by Config.Workers.
func NewGraph(c *Config, m *load.Map) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if m == nil {
		return nil, NewConfigError("Schema", nil, "schema type map cannot be nil")
	}
	entries := m.Entries()
	g := &Graph{
		Config: c,
		Nodes:  make([]*Class, len(entries)),
		Schema: m,
		byName: make(map[string]*Class, len(entries)),
	}
	b := NewBuilder(c, m)
	var eg errgroup.Group
	eg.SetLimit(c.workers())
	for i, e := range entries {
		eg.Go(func() error {
			class, err := b.Build(e)
			if err != nil {
				return err
			}
			g.Nodes[i] = class
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for _, n := range g.Nodes {
		g.byName[n.Name] = n
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	c.logger().Debug("built class graph", "classes", len(g.Nodes))
	return g, nil
}

// Class returns the class of the named schema type.
func (g *Graph) Class(name string) (*Class, bool) {
	c, ok := g.byName[name]
	return c, ok
}

// Parent returns the class c derives from, or nil.
func (g *Graph) Parent(c *Class) *Class {
	if c.Parent == nil {
		return nil
	}
	return g.byName[c.Parent.Name]
}

// Conflicts returns the property conflicts recorded on all classes.
func (g *Graph) Conflicts() []*PropertyConflictError {
	var all []*PropertyConflictError
	for _, n := range g.Nodes {
		all = append(all, n.Conflicts...)
	}
	return all
}

func (g *Graph) validate() error {
	logger := g.logger()
	names := make(map[string]*Class, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := ValidClassName(n.ClassName); err != nil {
			return NewSchemaError(n.Name, "", "invalid class name", err)
		}
		if prev, ok := names[n.ClassName]; ok {
			return NewSchemaError(n.Name, "", fmt.Sprintf("class name %s already used by %s", n.ClassName, prev.Name), nil)
		}
		names[n.ClassName] = n
		if err := checkMembers(n); err != nil {
			return err
		}
		if err := g.checkAncestry(n); err != nil {
			return err
		}
	}
	conflicts := g.Conflicts()
	for _, c := range conflicts {
		logger.Warn("dropped redeclared property", "class", c.Class, "property", c.Property, "kept", c.Kept, "dropped", c.Dropped)
	}
	if g.Strict && len(conflicts) > 0 {
		errs := make([]error, len(conflicts))
		for i, c := range conflicts {
			errs[i] = c
		}
		return errors.Join(errs...)
	}
	return nil
}

// checkMembers rejects classes whose generated field or method names clash.
func checkMembers(c *Class) error {
	fields := make(map[string]string, len(c.Properties))
	for _, p := range c.Properties {
		if prev, ok := fields[p.FieldName()]; ok {
			return NewSchemaError(c.Name, p.Name, "field name already used by property "+prev, nil)
		}
		fields[p.FieldName()] = p.Name
	}
	methods := make(map[string]struct{}, len(c.Methods))
	for _, m := range c.Methods {
		if _, ok := methods[m.Name]; ok {
			prop := ""
			if m.Property != nil {
				prop = m.Property.Name
			}
			return NewSchemaError(c.Name, prop, "method "+m.Name+" declared twice", nil)
		}
		methods[m.Name] = struct{}{}
	}
	return nil
}

// checkAncestry rejects cyclic derivation chains.
func (g *Graph) checkAncestry(c *Class) error {
	seen := map[string]struct{}{c.Name: {}}
	for p := g.Parent(c); p != nil; p = g.Parent(p) {
		if _, ok := seen[p.Name]; ok {
			return NewSchemaError(c.Name, "", "cyclic derivation through "+p.Name, nil)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// reservedFiles are written by the generator next to the class files.
var reservedFiles = map[string]struct{}{
	encodingFile: {},
}

// ValidClassName reports an error when name cannot be used as the name of a
// generated class.
func ValidClassName(name string) error {
	switch {
	case name == "":
		return errors.New("class name cannot be empty")
	case !token.IsIdentifier(name):
		return fmt.Errorf("class name %q is not a valid Go identifier", name)
	case !unicode.IsUpper([]rune(name)[0]):
		return fmt.Errorf("class name %q is not exported", name)
	}
	if _, ok := reservedFiles[fileName(name)]; ok {
		return fmt.Errorf("class name %q conflicts with generated file %s", name, fileName(name))
	}
	return nil
}

// fileName returns the name of the file a class is generated into.
func fileName(className string) string {
	return snake(className) + ".go"
}

// Gen generates the classes of the graph into the target directory.
func (g *Graph) Gen(ctx context.Context) error {
	if g.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	if err := cleanupFeatures(g.Config); err != nil {
		return NewGenerationError("cleanup", "", "remove disabled feature output", err)
	}
	out, err := newOutput(g.Config)
	if err != nil {
		return err
	}
	if err := NewJenniferGenerator(g, out).Generate(ctx); err != nil {
		return err
	}
	if len(g.Templates) > 0 {
		if err := NewTemplateWriter(g, out).Generate(ctx); err != nil {
			return err
		}
	}
	if enabled, _ := g.FeatureEnabled(FeatureSnapshot.Name); enabled {
		if err := g.writeSnapshot(out); err != nil {
			return err
		}
	}
	if err := out.close(); err != nil {
		return err
	}
	g.logger().Info("generated classes",
		"classes", len(g.Nodes),
		"written", len(out.written),
		"unchanged", len(out.skipped),
		"target", g.Target,
	)
	return nil
}
