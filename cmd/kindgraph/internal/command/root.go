// Package command implements the kindgraph CLI: it compiles a schema document
// and prints the resulting type graph.
package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/reoring/kindgraph"
	"github.com/reoring/kindgraph/internal/classify"
	"github.com/reoring/kindgraph/typegraph"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	logLevel      string
	logFormat     string
	formats       string
	legacyFormats bool
	showAliases   bool
}

// CLI carries the output streams and the loggers configured from the flags.
type CLI struct {
	Out io.Writer
	Err io.Writer

	flags  globalFlags
	log    *slog.Logger
	logger logr.Logger
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	cli := &CLI{Out: out, Err: errOut}
	cmd := &cobra.Command{
		Use:   "kindgraph",
		Short: "Compile Kubernetes-style Swagger documents into a type graph",
		Long: color.New(color.FgBlue, color.Bold).Sprint("kindgraph") + " reads a Swagger 2.0 document (or a bundle of\n" +
			"CustomResourceDefinitions), finds its kinds and compiles every definition\n" +
			"into a type graph that code generators consume.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, logger, err := newLoggers(cli.Err, cli.flags.logFormat, cli.flags.logLevel)
			if err != nil {
				return err
			}
			cli.log, cli.logger = log, logger
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVar(&cli.flags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error or silent")
	pf.StringVar(&cli.flags.logFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cli.flags.formats, "formats", "", "YAML file overriding scalar format mappings")
	pf.BoolVar(&cli.flags.legacyFormats, "legacy-formats", false, "Map plain numbers to float64 instead of a decimal")
	pf.BoolVar(&cli.flags.showAliases, "show-aliases", false, "Report alias definitions that are ignored")

	cmd.AddCommand(
		newCompileCommand(cli),
		newKindsCommand(cli),
		newTypesCommand(cli),
		newCRDCommand(cli),
	)
	return cmd
}

// Execute runs the CLI against the process arguments and exits.
func Execute() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color.NoColor = true
	}
	if err := NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func (c *CLI) options() (kindgraph.Options, error) {
	table := classify.DefaultFormats()
	if c.flags.legacyFormats {
		table = classify.LegacyFormats()
	}
	if c.flags.formats != "" {
		data, err := os.ReadFile(c.flags.formats)
		if err != nil {
			return kindgraph.Options{}, fmt.Errorf("read formats: %w", err)
		}
		overlay, err := classify.LoadFormatTable(data)
		if err != nil {
			return kindgraph.Options{}, fmt.Errorf("%s: %w", c.flags.formats, err)
		}
		table = table.Overlay(overlay)
	}
	return kindgraph.Options{
		Logger:             c.logger,
		ScalarFormats:      table,
		ShowIgnoredAliases: c.flags.showAliases,
	}, nil
}

// compile loads the input at path ("-" for stdin) and compiles it, logging
// every diagnostic as a warning.
func (c *CLI) compile(cmd *cobra.Command, path string, crds bool) (*typegraph.Graph, error) {
	opts, err := c.options()
	if err != nil {
		return nil, err
	}
	var data []byte
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	compile := kindgraph.CompileBytes
	if crds {
		compile = kindgraph.CompileCRDs
	}
	g, d, err := compile(data, opts)
	for _, it := range d.Issues() {
		c.log.Warn(it.Message, "code", it.Code, "path", it.Path)
	}
	if err != nil {
		return nil, err
	}
	c.log.Info("compiled", "input", path, "types", g.Len(), "kinds", len(g.Kinds()))
	return g, nil
}
