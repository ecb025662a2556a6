package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/fhirgen/compiler/gen"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fhirgen.yaml", `
schemas: schemas
package: github.com/org/project/fhir
target: out/fhir
header: Code generated by fhirgen. DO NOT EDIT.
prefix: "xsd:"
xml_namespace: urn:test
features:
  - incremental
  - schema/snapshot
workers: 4
strict: true
acronyms: [FHIR]
templates:
  - name: summary
    path: templates/summary.tmpl
    output: "summary/{class}.go"
    kinds: [Resource, DomainResource]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, StringList{filepath.Join(dir, "schemas")}, cfg.Schemas)
	assert.Equal(t, "github.com/org/project/fhir", cfg.Package)
	assert.Equal(t, filepath.Join(dir, "out", "fhir"), cfg.Target)
	assert.Equal(t, "xsd:", cfg.Prefix)
	assert.Equal(t, "urn:test", cfg.XMLNamespace)
	assert.Equal(t, StringList{"incremental", "schema/snapshot"}, cfg.Features)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{"FHIR"}, cfg.Acronyms)
	require.Len(t, cfg.Templates, 1)
	assert.Equal(t, filepath.Join(dir, "templates", "summary.tmpl"), cfg.Templates[0].Path)
	assert.Equal(t, StringList{"Resource", "DomainResource"}, cfg.Templates[0].Kinds)

	t.Run("absolute paths are kept", func(t *testing.T) {
		abs := filepath.Join(t.TempDir(), "schemas")
		path := writeFile(t, dir, "abs.yaml", "schemas: ["+abs+"]\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, StringList{abs}, cfg.Schemas)
		assert.Empty(t, cfg.Target)
	})

	t.Run("empty file", func(t *testing.T) {
		cfg, err := LoadConfig(writeFile(t, dir, "empty.yaml", ""))
		require.NoError(t, err)
		assert.Empty(t, cfg.Schemas)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, dir, "unknown.yaml", "packages: fhir\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "packages")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestStringList(t *testing.T) {
	var v struct {
		List StringList `yaml:"list"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("list: a"), &v))
	assert.Equal(t, StringList{"a"}, v.List)
	require.NoError(t, yaml.Unmarshal([]byte("list: [a, b]"), &v))
	assert.Equal(t, StringList{"a", "b"}, v.List)
	assert.Error(t, yaml.Unmarshal([]byte("list: {a: b}"), &v))

	b, err := yaml.Marshal(map[string]StringList{"one": {"a"}, "two": {"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "one: a\ntwo:\n    - a\n    - b\n", string(b))
}

func TestConfigOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := (&Config{}).Options()
		require.NoError(t, err)
		cfg, err := gen.NewConfig(opts...)
		require.NoError(t, err)
		assert.Equal(t, defaultTarget, cfg.Target)
		assert.Empty(t, cfg.Package)
		assert.Empty(t, cfg.Features)
		assert.False(t, cfg.Strict)
	})

	t.Run("all fields", func(t *testing.T) {
		opts, err := (&Config{
			Package:      "github.com/org/project/fhir",
			Target:       "out",
			Header:       "custom",
			Prefix:       "xsd:",
			XMLNamespace: "urn:test",
			Features:     StringList{"incremental"},
			Workers:      2,
			Strict:       true,
		}).Options()
		require.NoError(t, err)
		cfg, err := gen.NewConfig(opts...)
		require.NoError(t, err)
		assert.Equal(t, "github.com/org/project/fhir", cfg.Package)
		assert.Equal(t, "out", cfg.Target)
		assert.Equal(t, "custom", cfg.Header)
		assert.Equal(t, "xsd:", cfg.PrimitivePrefix)
		assert.Equal(t, "urn:test", cfg.XMLNamespace)
		require.Len(t, cfg.Features, 1)
		assert.Equal(t, gen.FeatureIncremental.Name, cfg.Features[0].Name)
		assert.Equal(t, 2, cfg.Workers)
		assert.True(t, cfg.Strict)
	})

	t.Run("unknown feature", func(t *testing.T) {
		opts, err := (&Config{Features: StringList{"sql/upsert"}}).Options()
		require.NoError(t, err)
		_, err = gen.NewConfig(opts...)
		assert.True(t, gen.IsConfigError(err))
	})

	t.Run("template errors", func(t *testing.T) {
		_, err := (&Config{Templates: []TemplateConfig{{Name: "nopath"}}}).Options()
		assert.Error(t, err)
		_, err = (&Config{Templates: []TemplateConfig{{Path: filepath.Join(t.TempDir(), "missing.tmpl")}}}).Options()
		assert.ErrorIs(t, err, os.ErrNotExist)
		bad := writeFile(t, t.TempDir(), "bad.tmpl", "{{ end }}")
		_, err = (&Config{Templates: []TemplateConfig{{Path: bad}}}).Options()
		assert.Error(t, err)
	})
}

func TestTemplateConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "summary.tmpl", "package fhir")
	patient := &gen.Class{Name: "Patient.Contact", ClassName: "PatientContact", Kind: gen.KindComponent, HasKind: true}
	resource := &gen.Class{Name: "Patient", ClassName: "Patient", Kind: gen.KindDomainResource, HasKind: true}
	untyped := &gen.Class{Name: "Resource", ClassName: "Resource"}

	tmpl, err := TemplateConfig{Path: path}.template()
	require.NoError(t, err)
	assert.Equal(t, "summary.tmpl", tmpl.Name())
	assert.Nil(t, tmpl.Format)
	assert.Nil(t, tmpl.Cond)

	tmpl, err = TemplateConfig{Name: "sum", Path: path, Output: "summary/{class}.go", Kinds: StringList{"DomainResource"}}.template()
	require.NoError(t, err)
	assert.Equal(t, "sum", tmpl.Name())
	assert.Equal(t, "summary/patient_contact.go", tmpl.Format(patient))
	assert.False(t, tmpl.Cond(patient))
	assert.True(t, tmpl.Cond(resource))
	assert.False(t, tmpl.Cond(untyped))
}
