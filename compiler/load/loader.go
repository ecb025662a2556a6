package load

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"aqwari.net/xml/xmltree"

	"github.com/syssam/fhirgen/schema/xsd"
)

// Loader reads XML Schema documents and builds a Map from their named
// top-level complexType and simpleType declarations.
type Loader struct {
	namespace string
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithPackage sets the Go import path assigned to every loaded entry.
func WithPackage(pkg string) Option {
	return func(l *Loader) {
		l.namespace = pkg
	}
}

// WithLogger sets the loader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader returns a loader configured with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load is a convenience wrapper around NewLoader(opts...).Load(paths...).
func Load(paths []string, opts ...Option) (*Map, error) {
	return NewLoader(opts...).Load(paths...)
}

// Load reads the given files and directories. Directories contribute their
// *.xsd files in lexical order. Included schemas are followed relative to the
// including document, and every file is read at most once.
func (l *Loader) Load(paths ...string) (*Map, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}
	var (
		entries []*Entry
		read    []string
		visited = make(map[string]bool)
	)
	for len(files) > 0 {
		file := files[0]
		files = files[1:]
		if visited[file] {
			continue
		}
		visited[file] = true
		found, includes, err := l.parseFile(file)
		if err != nil {
			return nil, err
		}
		read = append(read, file)
		entries = append(entries, found...)
		files = append(files, includes...)
	}
	m, err := NewMap(entries...)
	if err != nil {
		return nil, err
	}
	m.files = read
	return m, nil
}

// Files returns the schema files the given paths expand to, without following
// includes. It is used by callers that watch the inputs for changes.
func Files(paths ...string) ([]string, error) {
	return expand(paths)
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("load schema %q: %w", p, err)
		}
		if !info.IsDir() {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, err
			}
			files = append(files, abs)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.xsd"))
		if err != nil {
			return nil, fmt.Errorf("load schema dir %q: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				return nil, err
			}
			files = append(files, abs)
		}
	}
	return files, nil
}

// parseFile returns the entries declared in file and the absolute paths of
// the documents it includes.
func (l *Loader) parseFile(file string) ([]*Entry, []string, error) {
	buf, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("load schema %q: %w", file, err)
	}
	root, err := xmltree.Parse(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("parse schema %q: %w", file, err)
	}
	if !xsd.Is(root, xsd.Schema) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotSchema, file)
	}
	var (
		entries  []*Entry
		includes []string
	)
	for _, el := range xsd.Children(root) {
		switch xsd.KindOf(el) {
		case xsd.Include:
			if loc := el.Attr("", "schemaLocation"); loc != "" {
				includes = append(includes, filepath.Join(filepath.Dir(file), filepath.FromSlash(loc)))
			}
		case xsd.ComplexType, xsd.SimpleType:
			name := xsd.Name(el)
			if name == "" {
				continue
			}
			e := NewEntry(name, l.namespace, el)
			e.Source = file
			entries = append(entries, e)
		}
	}
	l.logger.Debug("loaded schema file", "file", file, "types", len(entries), "includes", len(includes))
	return entries, includes, nil
}
