package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPackageName(t *testing.T) {
	tests := []struct {
		pkg      string
		expected string
	}{
		{"", "fhir"},
		{"github.com/org/project/fhir", "fhir"},
		{"github.com/org/project/r4", "r4"},
		{"models", "models"},
	}
	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			c := &Config{Package: tt.pkg}
			assert.Equal(t, tt.expected, c.PackageName())
		})
	}
}

func TestConfigFeatureEnabled(t *testing.T) {
	t.Run("returns true for enabled feature", func(t *testing.T) {
		c := &Config{Features: []Feature{FeatureIncremental}}

		enabled, err := c.FeatureEnabled("incremental")

		assert.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("returns default for disabled feature", func(t *testing.T) {
		c := &Config{Features: []Feature{FeatureIncremental}}

		enabled, err := c.FeatureEnabled(FeatureSnapshot.Name)

		assert.NoError(t, err)
		assert.Equal(t, FeatureSnapshot.Default, enabled)
	})

	t.Run("returns error for unknown feature", func(t *testing.T) {
		c := &Config{}

		_, err := c.FeatureEnabled("nonexistent")

		assert.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestFeatureStage(t *testing.T) {
	assert.Equal(t, "experimental", Experimental.String())
	assert.Equal(t, "alpha", Alpha.String())
	assert.Equal(t, "beta", Beta.String())
	assert.Equal(t, "stable", Stable.String())
	assert.Equal(t, "unknown", FeatureStage(0).String())
}

func TestFeatureByName(t *testing.T) {
	for _, f := range AllFeatures {
		got, ok := FeatureByName(f.Name)
		require.True(t, ok, f.Name)
		assert.Equal(t, f.Name, got.Name)
		assert.NotEmpty(t, got.Description)
	}
	_, ok := FeatureByName("privacy")
	assert.False(t, ok)
}

func TestCleanupFeatures(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, cacheFile), []byte("stale"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(target, "patient.go"), []byte("package fhir"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(target, "internal"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "internal", "snapshot.go"), []byte("package internal"), 0o644))

	t.Run("enabled features keep their output", func(t *testing.T) {
		c := &Config{Target: target, Features: []Feature{FeatureIncremental, FeatureSnapshot}}
		require.NoError(t, cleanupFeatures(c))
		assert.FileExists(t, filepath.Join(target, cacheFile))
		assert.FileExists(t, filepath.Join(target, "internal", "snapshot.go"))
	})

	t.Run("disabled features are removed", func(t *testing.T) {
		c := &Config{Target: target}
		require.NoError(t, cleanupFeatures(c))
		assert.NoFileExists(t, filepath.Join(target, cacheFile))
		assert.NoDirExists(t, filepath.Join(target, "internal"))
		assert.FileExists(t, filepath.Join(target, "patient.go"))
	})

	t.Run("missing output is not an error", func(t *testing.T) {
		c := &Config{Target: filepath.Join(target, "missing")}
		assert.NoError(t, cleanupFeatures(c))
	})
}
