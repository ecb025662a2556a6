package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/fhirgen/compiler/gen"
	"github.com/syssam/fhirgen/compiler/load"
)

type loggerFunc func(*cobra.Command) *slog.Logger

// projectFlags are the flags of the commands that load schemas. They take
// precedence over the project file.
type projectFlags struct {
	config   string
	pkg      string
	prefix   string
	strict   bool
	workers  int
	target   string
	header   string
	features []string
}

func (f *projectFlags) register(cmd *cobra.Command, output bool) {
	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "project file (fhirgen.yaml)")
	fs.StringVarP(&f.pkg, "package", "p", "", "Go import path of the generated package")
	fs.StringVar(&f.prefix, "prefix", "", `reserved prefix of XML Schema builtin types (default "xs:")`)
	fs.BoolVar(&f.strict, "strict", false, "fail on redeclared properties")
	fs.IntVar(&f.workers, "workers", 0, "number of concurrent workers (default GOMAXPROCS)")
	if output {
		fs.StringVarP(&f.target, "target", "o", "", `output directory (default "fhir")`)
		fs.StringVar(&f.header, "header", "", "header comment of generated files")
		fs.StringSliceVar(&f.features, "feature", nil, "enable a feature-flag (incremental, schema/snapshot)")
	}
}

// project is a resolved run: the schemas to load and the generator config.
type project struct {
	paths []string
	cfg   *gen.Config
}

func (f *projectFlags) project(cmd *cobra.Command, args []string, logger *slog.Logger) (*project, error) {
	file := &Config{}
	if f.config != "" {
		var err error
		if file, err = LoadConfig(f.config); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("package") {
		file.Package = f.pkg
	}
	if flags.Changed("prefix") {
		file.Prefix = f.prefix
	}
	if flags.Changed("strict") {
		file.Strict = f.strict
	}
	if flags.Changed("workers") {
		file.Workers = f.workers
	}
	if flags.Changed("target") {
		file.Target = f.target
	}
	if flags.Changed("header") {
		file.Header = f.header
	}
	if flags.Changed("feature") {
		file.Features = append(file.Features, f.features...)
	}
	if len(args) > 0 {
		file.Schemas = args
	}
	if len(file.Schemas) == 0 {
		return nil, errors.New("fhirgen: no schema paths given")
	}
	for _, a := range file.Acronyms {
		gen.AddAcronym(a)
	}
	opts, err := file.Options()
	if err != nil {
		return nil, err
	}
	cfg, err := gen.NewConfig(append(opts, gen.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}
	return &project{paths: file.Schemas, cfg: cfg}, nil
}

// graph loads the schemas and builds their class graph.
func (p *project) graph() (*gen.Graph, error) {
	m, err := load.Load(p.paths, load.WithPackage(p.cfg.Package), load.WithLogger(p.cfg.Logger))
	if err != nil {
		return nil, err
	}
	p.cfg.Logger.Debug("loaded schema types", "types", m.Len(), "paths", p.paths)
	return gen.NewGraph(p.cfg, m)
}

func (p *project) generate(ctx context.Context) error {
	g, err := p.graph()
	if err != nil {
		return err
	}
	return g.Gen(ctx)
}

func newGenerateCmd(logger loggerFunc) *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:     "generate [flags] [path...]",
		Aliases: []string{"gen"},
		Short:   "Generate Go classes for the given schema files or directories",
		Example: "  fhirgen generate -p github.com/org/project/fhir -o ./fhir ./schemas\n" +
			"  fhirgen generate -c fhirgen.yaml --feature incremental",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.project(cmd, args, logger(cmd))
			if err != nil {
				return err
			}
			return p.generate(cmd.Context())
		},
	}
	f.register(cmd, true)
	return cmd
}
