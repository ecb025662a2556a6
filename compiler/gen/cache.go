package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheFile is the name of the build cache kept in the target directory
// when the incremental feature is enabled.
const cacheFile = ".fhirgen.cache"

// cacheVersion is bumped whenever generated output changes shape, which
// invalidates every cached entry.
const cacheVersion = 1

// buildCache records the content hash of every file written by a run.
type buildCache struct {
	Version int               `msgpack:"version"`
	Files   map[string]string `msgpack:"files"`
}

// loadCache reads the build cache from dir. A missing, unreadable or
// outdated cache yields an empty one.
func loadCache(dir string, logger *slog.Logger) *buildCache {
	empty := &buildCache{Version: cacheVersion, Files: make(map[string]string)}
	b, err := os.ReadFile(filepath.Join(dir, cacheFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ignoring unreadable build cache", "error", err)
		}
		return empty
	}
	var c buildCache
	if err := msgpack.Unmarshal(b, &c); err != nil {
		logger.Warn("ignoring corrupt build cache", "error", err)
		return empty
	}
	if c.Version != cacheVersion || c.Files == nil {
		logger.Debug("discarding outdated build cache", "version", c.Version)
		return empty
	}
	return &c
}

func (c *buildCache) save(dir string) error {
	b, err := msgpack.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFile), b, 0o644)
}

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// output writes generated files below the target directory. With a cache
// it skips files whose content is unchanged since the previous run.
type output struct {
	dir    string
	logger *slog.Logger
	prev   *buildCache

	mu      sync.Mutex
	next    *buildCache
	written []string
	skipped []string
}

func newOutput(c *Config) (*output, error) {
	enabled, err := c.FeatureEnabled(FeatureIncremental.Name)
	if err != nil {
		return nil, err
	}
	o := &output{dir: c.Target, logger: c.logger()}
	if enabled {
		o.prev = loadCache(c.Target, o.logger)
		o.next = &buildCache{Version: cacheVersion, Files: make(map[string]string)}
	}
	return o, nil
}

// write stores b at the slash-separated path rel.
func (o *output) write(rel string, b []byte) error {
	path := filepath.Join(o.dir, filepath.FromSlash(rel))
	if o.next != nil {
		sum := checksum(b)
		o.mu.Lock()
		o.next.Files[rel] = sum
		o.mu.Unlock()
		if o.unchanged(path, rel, sum) {
			o.record(&o.skipped, rel)
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewGenerationError("write", rel, "create directory", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return NewGenerationError("write", rel, "write file", err)
	}
	o.record(&o.written, rel)
	return nil
}

func (o *output) unchanged(path, rel, sum string) bool {
	if o.prev.Files[rel] != sum {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (o *output) record(list *[]string, rel string) {
	o.mu.Lock()
	*list = append(*list, rel)
	o.mu.Unlock()
}

// close prunes files generated by the previous run but not by this one, and
// saves the cache.
func (o *output) close() error {
	if o.next == nil {
		return nil
	}
	var stale []string
	for rel := range o.prev.Files {
		if _, ok := o.next.Files[rel]; !ok {
			stale = append(stale, rel)
		}
	}
	sort.Strings(stale)
	for _, rel := range stale {
		path := filepath.Join(o.dir, filepath.FromSlash(rel))
		if err := remove(filepath.Dir(path), filepath.Base(path)); err != nil {
			return NewGenerationError("cache", rel, "remove stale file", err)
		}
		o.logger.Debug("removed stale file", "file", rel)
	}
	if err := o.next.save(o.dir); err != nil {
		return NewGenerationError("cache", cacheFile, "save build cache", err)
	}
	return nil
}

// Written returns the files written by the run, sorted.
func (o *output) Written() []string { return sorted(o.written) }

// Skipped returns the files left untouched because they were unchanged.
func (o *output) Skipped() []string { return sorted(o.skipped) }

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
