package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	goyaml "gopkg.in/yaml.v3"

	"github.com/aretw0/aggregate"
	"github.com/aretw0/aggregate/internal/logging"
	"github.com/aretw0/aggregate/pkg/adapters/yaml"
	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/entity"
	"github.com/aretw0/aggregate/pkg/observability"
)

type buildOptions struct {
	root        string
	input       string
	severity    string
	format      string
	metricsFile string
	maxDepth    int
}

func buildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an entity tree from an input document",
		Long: `Applies the root builder of the rules file to the input document and prints the result.
Input is read from --input or from stdin when it is "-".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "Builder to apply (default: the document root)")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "Input document (YAML or JSON)")
	cmd.Flags().StringVar(&opts.severity, "severity", "", "Override the root builder severity (silent, warn, error)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format (json, yaml, dump)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", domain.DefaultMaxDepth, "Maximum association nesting")
	return cmd
}

func runBuild(cmd *cobra.Command, opts buildOptions) error {
	rulesPath, _ := cmd.Flags().GetString("rules")
	if rulesPath == "" {
		return fmt.Errorf("a rules file is required (--rules)")
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	set, err := yaml.New().LoadFile(rulesPath)
	if err != nil {
		return err
	}
	if opts.root != "" {
		set.Root = opts.root
	}
	rs, err := set.RootRules()
	if err != nil {
		return err
	}
	if opts.severity != "" {
		severity, err := domain.ParseSeverity(opts.severity)
		if err != nil {
			return err
		}
		rs = rs.Clone()
		rs.Severity = severity
	}

	input, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}

	b, err := aggregate.New(rs,
		aggregate.WithLogger(logger),
		aggregate.WithMaxDepth(opts.maxDepth),
		aggregate.WithLifecycleHooks(observability.Chain(logging.Hooks(logger), metrics.Hooks())),
	)
	if err != nil {
		return err
	}

	out, err := b.Build(nil, input)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return render(cmd.OutOrStdout(), opts.format, out)
}

func readInput(stdin io.Reader, path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return yaml.DecodeInput(data)
}

func render(w io.Writer, format string, out any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entity.Export(out))
	case "yaml":
		enc := goyaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entity.Export(out)); err != nil {
			return err
		}
		return enc.Close()
	case "dump":
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(w, entity.Export(out))
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
