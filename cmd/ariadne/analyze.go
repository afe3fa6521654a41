package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/config"
	"github.com/bayleafwalker/ariadne/internal/reader"
	"github.com/bayleafwalker/ariadne/internal/report"
)

type analyzeOptions struct {
	configFile  string
	deps        []string
	vulns       []string
	internal    []string
	out         string
	stats       bool
	metricsFile string
}

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	var o analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Read dependency and vulnerability data and write upgrade tiers",
		Example: `  ariadne analyze --internal com.acme \
    --dep pom-explorer=deps.csv --vuln findings-csv=findings.csv --out out --stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, root, cfg, o.metricsFile)
		},
	}

	cmd.Flags().StringVar(&o.configFile, "config", "", "YAML configuration file; flags override its values")
	cmd.Flags().StringArrayVar(&o.deps, "dep", nil, "Dependency source as <format>=<path> (repeatable)")
	cmd.Flags().StringArrayVar(&o.vulns, "vuln", nil, "Vulnerability source as <format>=<path> (repeatable)")
	cmd.Flags().StringSliceVar(&o.internal, "internal", nil, "Substring marking an artifact as internal (repeatable)")
	cmd.Flags().StringVar(&o.out, "out", config.DefaultOutputDir, "Output directory")
	cmd.Flags().BoolVar(&o.stats, "stats", false, "Also write dependencies.csv and vulnerabilities.csv")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write a Prometheus textfile snapshot of the run")
	return cmd
}

// config merges the configuration file, if any, with the command line.
func (o *analyzeOptions) config(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if len(o.deps) > 0 {
		sources, err := parseSources(o.deps)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Dependencies = sources
	}
	if len(o.vulns) > 0 {
		sources, err := parseSources(o.vulns)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Findings = sources
	}
	if len(o.internal) > 0 {
		cfg.InternalIdentifiers = o.internal
	}
	if cmd.Flags().Changed("out") || cfg.Output.Directory == "" {
		cfg.Output.Directory = o.out
	}
	if cmd.Flags().Changed("stats") {
		cfg.Output.Stats = o.stats
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func parseSources(values []string) ([]config.Source, error) {
	out := make([]config.Source, 0, len(values))
	for _, v := range values {
		format, path, err := reader.ParseSource(v)
		if err != nil {
			return nil, err
		}
		out = append(out, config.Source{Format: format, Path: path})
	}
	return out, nil
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, cfg config.Config, metricsFile string) error {
	ctx := commandContext(cmd)
	log := root.log.WithName("analyze")
	start := time.Now()

	a, err := analyzer.NewDefault(cfg.AnalyzerConfig(log))
	if err != nil {
		return err
	}
	w, err := report.NewCSVWriter(cfg.Output.Directory, log)
	if err != nil {
		return err
	}

	in, err := cfg.ReadInput(log)
	if err != nil {
		return err
	}
	res, err := a.Analyze(ctx, in)
	if err != nil {
		return err
	}
	if err := w.WriteAll(res, cfg.Output.Stats); err != nil {
		return err
	}

	if metricsFile != "" {
		if err := writeMetrics(metricsFile, res, time.Since(start)); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d artifacts to update in %d tiers, results in %s\n",
		res.Stats.Implicated, res.Stats.Tiers, cfg.Output.Directory)
	return nil
}
