package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/fhirgen/compiler/gen"
)

func newInspectCmd(logger loggerFunc) *cobra.Command {
	var (
		f      projectFlags
		types  []string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [flags] [path...]",
		Short: "Print the class model built from the schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.project(cmd, args, logger(cmd))
			if err != nil {
				return err
			}
			g, err := p.graph()
			if err != nil {
				return err
			}
			classes := g.Nodes
			if len(types) > 0 {
				classes = make([]*gen.Class, 0, len(types))
				for _, name := range types {
					c, ok := g.Class(name)
					if !ok {
						return fmt.Errorf("fhirgen: unknown schema type %q", name)
					}
					classes = append(classes, c)
				}
			}
			if asJSON {
				b, err := gen.NewSnapshot(g.Package, classes).MarshalIndent()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}
			return printClasses(cmd.OutOrStdout(), g, classes)
		},
	}
	f.register(cmd, false)
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "only print the given schema types")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the model as JSON")
	return cmd
}

// printClasses writes one header line per class followed by an aligned
// table of its properties.
func printClasses(w io.Writer, g *gen.Graph, classes []*gen.Class) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range classes {
		kind, parent := "-", "-"
		if c.HasKind {
			kind = c.Kind.String()
		}
		if p := g.Parent(c); p != nil {
			parent = p.ClassName
		}
		fmt.Fprintf(tw, "%s (%s) kind=%s parent=%s\n", c.ClassName, c.Name, kind, parent)
		for _, p := range c.Properties {
			typ := p.Type.Ident
			if p.Collection {
				typ = "[]" + typ
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", p.Name, p.Kind, typ, strings.Join(propertyFlags(p), ","))
		}
	}
	return tw.Flush()
}

func propertyFlags(p *gen.Property) []string {
	var flags []string
	if p.Required {
		flags = append(flags, "required")
	}
	if p.Scope == gen.ScopePrivate {
		flags = append(flags, "private")
	}
	if p.Choice != "" {
		flags = append(flags, "choice="+p.Choice)
	}
	if len(p.Enums) > 0 {
		flags = append(flags, "enum="+strings.Join(p.Enums, "|"))
	}
	return flags
}
