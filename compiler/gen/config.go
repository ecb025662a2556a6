package gen

import (
	"log/slog"
	"path"
	"runtime"
)

// Defaults applied when the corresponding Config field is empty.
const (
	// DefaultPrimitivePrefix is the reserved prefix of XML Schema builtin types.
	DefaultPrimitivePrefix = "xs:"
	// DefaultXMLNamespace is the namespace written on root elements by the
	// generated MarshalXML methods.
	DefaultXMLNamespace = "http://hl7.org/fhir"
	// DefaultHeader is the comment written at the top of generated files.
	DefaultHeader = "Code generated by fhirgen. DO NOT EDIT."
)

// Config holds the generation settings. It is passed explicitly to every
// component instead of living in package state.
type Config struct {
	// Package is the Go import path of the generated package.
	// For example: "github.com/org/project/fhir".
	Package string
	// Target is the output directory.
	Target string
	// Header is the comment written at the top of every generated file.
	Header string
	// PrimitivePrefix is stripped from base-type references before they are
	// looked up in the schema type map. Defaults to "xs:".
	PrimitivePrefix string
	// XMLNamespace is the namespace of root elements in generated MarshalXML.
	XMLNamespace string
	// Features holds the enabled feature-flags.
	Features []Feature
	// Templates are executed once per class after the default generator.
	Templates []*Template
	// Workers bounds the number of classes built or written concurrently.
	Workers int
	// Strict turns property conflicts into graph construction errors.
	Strict bool
	// Logger receives diagnostic output. Nil discards it.
	Logger *slog.Logger
}

// PackageName returns the name of the generated package.
func (c *Config) PackageName() string {
	if c == nil || c.Package == "" {
		return "fhir"
	}
	return path.Base(c.Package)
}

// FeatureEnabled reports if the given feature name is enabled.
// It's exported to be used by the template engine as follows:
//
//	{{ with $.FeatureEnabled "incremental" }}
//		...
//	{{ end }}
func (c *Config) FeatureEnabled(name string) (bool, error) {
	for _, f := range allFeatures {
		if name == f.Name {
			for i := range c.Features {
				if name == c.Features[i].Name {
					return true, nil
				}
			}
			return f.Default, nil
		}
	}
	return false, NewConfigError("Feature", name, "unexpected feature name")
}

func (c *Config) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Config) primitivePrefix() string {
	if c == nil || c.PrimitivePrefix == "" {
		return DefaultPrimitivePrefix
	}
	return c.PrimitivePrefix
}

func (c *Config) xmlNamespace() string {
	if c == nil || c.XMLNamespace == "" {
		return DefaultXMLNamespace
	}
	return c.XMLNamespace
}

func (c *Config) header() string {
	if c == nil || c.Header == "" {
		return DefaultHeader
	}
	return c.Header
}

func (c *Config) workers() int {
	if c == nil || c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}
