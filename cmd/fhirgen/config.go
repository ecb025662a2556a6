package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/fhirgen/compiler/gen"
)

// defaultTarget is the output directory used when neither the config file
// nor the flags name one.
const defaultTarget = "fhir"

// classPlaceholder is replaced by the snake-cased class name in template
// output paths.
const classPlaceholder = "{class}"

// Config is the fhirgen.yaml project file.
type Config struct {
	// Schemas are the schema files or directories to load.
	Schemas StringList `yaml:"schemas,omitempty"`
	// Package is the Go import path of the generated package.
	Package string `yaml:"package,omitempty"`
	// Target is the output directory.
	Target string `yaml:"target,omitempty"`
	// Header replaces the generated file header comment.
	Header string `yaml:"header,omitempty"`
	// Prefix is the reserved prefix of XML Schema builtin types.
	Prefix string `yaml:"prefix,omitempty"`
	// XMLNamespace is written on root elements by MarshalXML.
	XMLNamespace string `yaml:"xml_namespace,omitempty"`
	// Features lists the enabled feature-flags by name.
	Features StringList `yaml:"features,omitempty"`
	// Workers bounds generation concurrency.
	Workers int `yaml:"workers,omitempty"`
	// Strict fails generation on redeclared properties.
	Strict bool `yaml:"strict,omitempty"`
	// Acronyms are kept upper-cased in generated identifiers.
	Acronyms []string `yaml:"acronyms,omitempty"`
	// Templates are executed once per class after the default generator.
	Templates []TemplateConfig `yaml:"templates,omitempty"`
}

// TemplateConfig configures one external template.
type TemplateConfig struct {
	// Name of the template. Defaults to the base name of Path.
	Name string `yaml:"name,omitempty"`
	// Path of the template file.
	Path string `yaml:"path"`
	// Output is the file written per class, relative to the target.
	// "{class}" is replaced by the snake-cased class name.
	Output string `yaml:"output,omitempty"`
	// Kinds limits the template to classes of the given kinds.
	Kinds StringList `yaml:"kinds,omitempty"`
}

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadConfig reads a project file. Relative paths in the file are resolved
// against the directory of the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fhirgen config: %w", err)
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fhirgen config %s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return &cfg, nil
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, s := range c.Schemas {
		c.Schemas[i] = abs(s)
	}
	c.Target = abs(c.Target)
	for i := range c.Templates {
		c.Templates[i].Path = abs(c.Templates[i].Path)
	}
}

// Options returns the generator options of the project.
func (c *Config) Options() ([]gen.Option, error) {
	target := c.Target
	if target == "" {
		target = defaultTarget
	}
	opts := []gen.Option{
		gen.WithTarget(target),
		gen.WithHeader(c.Header),
		gen.WithStrict(c.Strict),
	}
	if c.Package != "" {
		opts = append(opts, gen.WithPackage(c.Package))
	}
	if c.Prefix != "" {
		opts = append(opts, gen.WithPrimitivePrefix(c.Prefix))
	}
	if c.XMLNamespace != "" {
		opts = append(opts, gen.WithXMLNamespace(c.XMLNamespace))
	}
	if len(c.Features) > 0 {
		opts = append(opts, gen.WithFeatureNames(c.Features...))
	}
	if c.Workers != 0 {
		opts = append(opts, gen.WithWorkers(c.Workers))
	}
	for _, tc := range c.Templates {
		t, err := tc.template()
		if err != nil {
			return nil, err
		}
		opts = append(opts, gen.WithTemplates(t))
	}
	return opts, nil
}

func (tc TemplateConfig) template() (*gen.Template, error) {
	if tc.Path == "" {
		return nil, fmt.Errorf("template %q: missing path", tc.Name)
	}
	text, err := os.ReadFile(tc.Path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	name := tc.Name
	if name == "" {
		name = filepath.Base(tc.Path)
	}
	t, err := gen.NewTemplate(name).Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", tc.Path, err)
	}
	if tc.Output != "" {
		snake := gen.Funcs["snake"].(func(string) string)
		t.Format = func(c *gen.Class) string {
			return strings.ReplaceAll(tc.Output, classPlaceholder, snake(c.ClassName))
		}
	}
	if len(tc.Kinds) > 0 {
		t.Cond = func(c *gen.Class) bool {
			return c.HasKind && slices.Contains(tc.Kinds, c.Kind.String())
		}
	}
	return t, nil
}
