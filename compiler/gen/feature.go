package gen

import (
	"os"
	"path/filepath"
)

var (
	// FeatureIncremental keeps a build cache in the target directory and skips
	// rewriting files whose content did not change since the previous run.
	FeatureIncremental = Feature{
		Name:        "incremental",
		Stage:       Alpha,
		Default:     false,
		Description: "Incremental skips rewriting generated files whose content is unchanged",
		cleanup: func(c *Config) error {
			return remove(c.Target, cacheFile)
		},
	}

	// FeatureSnapshot stores a JSON snapshot of the class model in the
	// generated package, for diffing schema upgrades.
	FeatureSnapshot = Feature{
		Name:        "schema/snapshot",
		Stage:       Experimental,
		Default:     false,
		Description: "Schema snapshot stores a JSON snapshot of the generated class model",
		cleanup: func(c *Config) error {
			return remove(filepath.Join(c.Target, "internal"), "snapshot.go")
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureIncremental,
		FeatureSnapshot,
	}
	// allFeatures includes all public and private features.
	allFeatures = AllFeatures
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development, and actively being tested.
	Experimental

	// Alpha features are features whose initial development was finished, but
	// we expect breaking-changes to their APIs.
	Alpha

	// Beta features are Alpha features that were documented, and no
	// breaking-changes are expected for them.
	Beta

	// Stable features are Beta features that were running for a while.
	Stable
)

// String implements fmt.Stringer.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	}
	return "unknown"
}

// A Feature of the fhirgen codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup used to cleanup all changes when a feature-flag is removed.
	// e.g. delete files from previous codegen runs.
	cleanup func(*Config) error
}

// FeatureByName returns the feature registered under name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range allFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// cleanupFeatures removes the output of disabled features left behind by
// previous runs.
func cleanupFeatures(c *Config) error {
	for _, f := range allFeatures {
		if f.cleanup == nil {
			continue
		}
		enabled, err := c.FeatureEnabled(f.Name)
		if err != nil {
			return err
		}
		if !enabled {
			if err := f.cleanup(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
