package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Template is a user template executed once per class.
type Template struct {
	*template.Template
	// Format returns the output file of a class, relative to the target.
	// Defaults to <class>_<template>.go.
	Format func(*Class) string
	// Cond selects the classes the template runs for. Nil selects all.
	Cond func(*Class) bool
}

// NewTemplate creates an empty template with the standard codegen functions.
func NewTemplate(name string) *Template {
	return &Template{Template: template.New(name).Funcs(Funcs)}
}

// Funcs merges the given functions into the template function map.
func (t *Template) Funcs(funcMap template.FuncMap) *Template {
	t.Template.Funcs(funcMap)
	return t
}

// Parse parses text as the template body.
func (t *Template) Parse(text string) (*Template, error) {
	if _, err := t.Template.Parse(text); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseFiles parses the named files as the template body.
func (t *Template) ParseFiles(filenames ...string) (*Template, error) {
	if _, err := t.Template.ParseFiles(filenames...); err != nil {
		return nil, err
	}
	return t, nil
}

// MustParse is a helper that wraps a call to a function returning
// (*Template, error) and panics if the error is non-nil.
func MustParse(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) file(c *Class) string {
	if t.Format != nil {
		return t.Format(c)
	}
	return fmt.Sprintf("%s_%s.go", snake(c.ClassName), snake(strings.TrimSuffix(t.Name(), filepath.Ext(t.Name()))))
}

// ClassScope is the data a template is executed with.
type ClassScope struct {
	*Class
	// Config of the run, e.g. {{ $.Config.PackageName }}.
	Config *Config
}

// TemplateWriter executes the configured templates for every class and
// writes their formatted output.
type TemplateWriter struct {
	graph   *Graph
	out     *output
	workers int
}

// NewTemplateWriter creates a new template-based writer.
func NewTemplateWriter(g *Graph, out *output) *TemplateWriter {
	return &TemplateWriter{graph: g, out: out, workers: g.workers()}
}

// fileTask represents a single file generation task.
type fileTask struct {
	name string // output file path (relative to the target)
	tmpl *Template
	data ClassScope
}

// Generate executes all templates in parallel.
func (w *TemplateWriter) Generate(ctx context.Context) error {
	var files []fileTask
	seen := make(map[string]string)
	generated := w.generatedFiles()
	for _, c := range w.graph.Nodes {
		for _, t := range w.graph.Templates {
			if t.Cond != nil && !t.Cond(c) {
				continue
			}
			name := filepath.ToSlash(t.file(c))
			if prev, ok := seen[name]; ok {
				return NewGenerationError("template", name, fmt.Sprintf("output of %s for %s already written by %s", t.Name(), c.Name, prev), nil)
			}
			if owner, ok := generated[name]; ok {
				return NewGenerationError("template", name, fmt.Sprintf("output of %s for %s overwrites %s", t.Name(), c.Name, owner), nil)
			}
			seen[name] = t.Name()
			files = append(files, fileTask{name: name, tmpl: t, data: ClassScope{Class: c, Config: w.graph.Config}})
		}
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.generateFile(f)
			}
		})
	}
	return eg.Wait()
}

// generatedFiles maps the files written by the generator itself to their
// owner.
func (w *TemplateWriter) generatedFiles() map[string]string {
	files := make(map[string]string, len(w.graph.Nodes)+len(reservedFiles)+2)
	for _, c := range w.graph.Nodes {
		files[fileName(c.ClassName)] = "class " + c.Name
	}
	for name := range reservedFiles {
		files[name] = "generated " + name
	}
	files[snapshotFile] = "the class model snapshot"
	files[cacheFile] = "the build cache"
	return files
}

// generateFile executes, formats and writes a single file.
func (w *TemplateWriter) generateFile(f fileTask) error {
	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, f.data); err != nil {
		return NewGenerationError("template", f.name, "execute template "+f.tmpl.Name(), err)
	}
	fullPath := filepath.Join(w.graph.Target, filepath.FromSlash(f.name))
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		// Write unformatted file for debugging.
		debugPath := fullPath + ".error"
		_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return NewGenerationError("format", f.name, "unformatted output written to "+debugPath, err)
	}
	return w.out.write(f.name, formatted)
}
