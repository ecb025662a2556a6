package gen

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "Custom header", c.Header)
	})

	t.Run("empty header falls back to default", func(t *testing.T) {
		c := &Config{Header: "existing"}
		err := WithHeader("")(c)

		require.NoError(t, err)
		assert.Equal(t, "", c.Header)
		assert.Equal(t, DefaultHeader, c.header())
	})
}

func TestWithPackage(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithPackage("github.com/org/project/fhir")(c))
	assert.Equal(t, "github.com/org/project/fhir", c.Package)
	assert.Equal(t, "fhir", c.PackageName())

	err := WithPackage("")(c)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestWithTarget(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithTarget("./fhir")(c))
	assert.Equal(t, "./fhir", c.Target)
	assert.True(t, IsConfigError(WithTarget("")(c)))
}

func TestWithPrimitivePrefix(t *testing.T) {
	c := &Config{}
	assert.Equal(t, DefaultPrimitivePrefix, c.primitivePrefix())
	require.NoError(t, WithPrimitivePrefix("xsd:")(c))
	assert.Equal(t, "xsd:", c.primitivePrefix())
	assert.True(t, IsConfigError(WithPrimitivePrefix("")(c)))
}

func TestWithXMLNamespace(t *testing.T) {
	c := &Config{}
	assert.Equal(t, DefaultXMLNamespace, c.xmlNamespace())
	require.NoError(t, WithXMLNamespace("urn:test")(c))
	assert.Equal(t, "urn:test", c.xmlNamespace())
}

func TestWithFeatures(t *testing.T) {
	t.Run("by value", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithFeatures(FeatureIncremental)(c))
		require.Len(t, c.Features, 1)
		assert.Equal(t, "incremental", c.Features[0].Name)
	})

	t.Run("by name", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithFeatureNames("incremental", "schema/snapshot")(c))
		require.Len(t, c.Features, 2)
		assert.Equal(t, FeatureSnapshot.Name, c.Features[1].Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		c := &Config{}
		err := WithFeatureNames("sql/upsert")(c)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Empty(t, c.Features)
	})
}

func TestWithTemplates(t *testing.T) {
	c := &Config{}
	tmpl := NewTemplate("stub")
	require.NoError(t, WithTemplates(tmpl)(c))
	assert.Equal(t, []*Template{tmpl}, c.Templates)

	err := WithTemplates(nil)(c)
	require.Error(t, err)
	assert.Len(t, c.Templates, 1)
}

func TestWithWorkers(t *testing.T) {
	c := &Config{}
	assert.Positive(t, c.workers())
	require.NoError(t, WithWorkers(3)(c))
	assert.Equal(t, 3, c.workers())
	assert.True(t, IsConfigError(WithWorkers(-1)(c)))
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := &Config{}
	require.NoError(t, WithLogger(logger)(c))
	c.logger().Info("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.True(t, IsConfigError(WithLogger(nil)(c)))

	var nilConfig *Config
	assert.NotNil(t, nilConfig.logger())
}

func TestConfigApply(t *testing.T) {
	t.Run("applies multiple options", func(t *testing.T) {
		c := &Config{}
		err := c.Apply(
			WithPackage("github.com/test/project"),
			WithTarget("./fhir"),
			WithHeader("Custom"),
			WithStrict(true),
		)

		require.NoError(t, err)
		assert.Equal(t, "github.com/test/project", c.Package)
		assert.Equal(t, "./fhir", c.Target)
		assert.Equal(t, "Custom", c.Header)
		assert.True(t, c.Strict)
	})

	t.Run("stops on first error", func(t *testing.T) {
		c := &Config{}
		err := c.Apply(
			WithPackage(""),      // Error
			WithTarget("./fhir"), // Should not be applied
		)

		require.Error(t, err)
		assert.Empty(t, c.Package)
		assert.Empty(t, c.Target)
	})
}

func TestConfigApplyAll(t *testing.T) {
	t.Run("collects all errors", func(t *testing.T) {
		c := &Config{}
		err := c.ApplyAll(
			WithPackage(""), // Error
			WithTarget(""),  // Error
		)

		require.Error(t, err)
		unwrapper, ok := err.(interface{ Unwrap() []error })
		require.True(t, ok, "error should implement Unwrap() []error")
		assert.Equal(t, 2, len(unwrapper.Unwrap()))
	})

	t.Run("returns nil when all succeed", func(t *testing.T) {
		c := &Config{}
		err := c.ApplyAll(
			WithPackage("github.com/test"),
			WithTarget("./fhir"),
		)

		require.NoError(t, err)
	})
}

func TestNewConfig(t *testing.T) {
	c, err := NewConfig(
		WithPackage("github.com/test/project"),
		WithTarget("./fhir"),
	)
	require.NoError(t, err)
	assert.Equal(t, "github.com/test/project", c.Package)

	c, err = NewConfig(WithPackage(""))
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestMustNewConfig(t *testing.T) {
	c := MustNewConfig(WithPackage("github.com/test/project"))
	assert.Equal(t, "github.com/test/project", c.Package)

	assert.Panics(t, func() {
		MustNewConfig(WithPackage(""))
	})
}
