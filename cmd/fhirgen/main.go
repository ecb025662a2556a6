// fhirgen compiles the FHIR XML Schema set into Go classes.
//
//	fhirgen generate -p github.com/org/project/fhir -o ./fhir ./schemas
//	fhirgen inspect --type Patient ./schemas
//	fhirgen watch -c fhirgen.yaml
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:          "fhirgen",
		Short:        "Generate Go classes from FHIR XML schemas",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	logger := func(cmd *cobra.Command) *slog.Logger {
		return newLogger(cmd.ErrOrStderr(), verbose)
	}
	cmd.AddCommand(
		newGenerateCmd(logger),
		newInspectCmd(logger),
		newWatchCmd(logger),
	)
	return cmd
}

// newLogger returns a text logger tagged with a fresh run id.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run", uuid.NewString())
}
