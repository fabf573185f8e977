package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ripple/internal/diagfmt"
	"ripple/internal/driver"
	"ripple/internal/project"
	"ripple/internal/trace"
)

var inferCmd = &cobra.Command{
	Use:   "infer [flags] <file.rplu|directory>",
	Short: "Resolve the types of one unit file or every unit under a directory",
	Long:  `Run the type solver over serialized pipeline units and report conflicts, unresolved bindings, and shape errors`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfer,
}

func init() {
	inferCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	inferCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=config default)")
	inferCmd.Flags().String("out", "", "directory that receives typed copies of processed units")
	inferCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
	inferCmd.Flags().Bool("no-cache", false, "skip the on-disk result cache")
	inferCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
}

func runInfer(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tracer, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = tracer.Flush() }()

	useColor, err := resolveColor(cmd)
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}

	opts := driver.Options{
		Config: cfg,
		Tracer: tracer,
		OutDir: outDir,
	}
	if cache, cacheErr := openCache(cmd, cfg); cacheErr != nil {
		return cacheErr
	} else if cache != nil {
		opts.Cache = cache
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var results []*driver.UnitResult
	if info.IsDir() {
		results, err = runDirectory(cmd, path, opts, format)
	} else {
		var res *driver.UnitResult
		res, err = driver.InferFile(path, opts)
		if res != nil {
			results = []*driver.UnitResult{res}
		}
	}
	if err != nil {
		return err
	}

	failed := renderResults(cmd, results, renderConfig{
		format:      format,
		quiet:       quiet,
		showTimings: showTimings && !quiet,
		pretty: diagfmt.PrettyOpts{
			Color:     useColor,
			ShowNotes: withNotes,
		},
	})

	if failed {
		os.Exit(1)
	}
	return nil
}

// loadConfig discovers ripple.toml relative to the working directory and
// layers flag overrides on top.
func loadConfig(cmd *cobra.Command) (project.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := project.Discover(wd)
	if err != nil {
		return project.Config{}, err
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}

	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiags > 0 {
		cfg.MaxDiagnostics = maxDiags
	}

	return cfg, nil
}

// setupTracing builds the tracer from the --trace flag, falling back to the
// manifest's trace_level when the flag is unset.
func setupTracing(cmd *cobra.Command, cfg project.Config) (trace.Tracer, error) {
	levelStr, err := cmd.Root().PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if levelStr == "" {
		levelStr = cfg.TraceLevel
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		return trace.Nop, nil
	}
	return trace.NewStream(os.Stderr, level), nil
}

func openCache(cmd *cobra.Command, cfg project.Config) (*driver.DiskCache, error) {
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if noCache || !cfg.Cache {
		return nil, nil
	}
	cache, err := driver.OpenDiskCache("ripple")
	if err != nil {
		// A broken cache directory should not block the run.
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache unavailable: %v\n", err)
		return nil, nil
	}
	return cache, nil
}

func resolveColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

type renderConfig struct {
	format      string
	quiet       bool
	showTimings bool
	pretty      diagfmt.PrettyOpts
}

func renderResults(cmd *cobra.Command, results []*driver.UnitResult, rc renderConfig) bool {
	out := cmd.OutOrStdout()
	failed := false
	for _, res := range results {
		if res == nil {
			continue
		}
		if !res.OK {
			failed = true
		}
		// Quiet mode still reports failing units.
		if rc.quiet && res.OK {
			continue
		}
		switch rc.format {
		case "json":
			if err := diagfmt.JSON(out, res.Bag, res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeNotes:     rc.pretty.ShowNotes,
			}); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: encode diagnostics for %s: %v\n", res.Path, err)
				failed = true
			}
		default:
			diagfmt.Pretty(out, res.Bag, res.FileSet, rc.pretty)
		}
		if rc.showTimings {
			printTimings(out, res)
		}
	}
	return failed
}

func printTimings(out io.Writer, res *driver.UnitResult) {
	fmt.Fprintf(out, "%s: %.2f ms total", res.Path, res.Timings.TotalMS)
	if res.Cached {
		fmt.Fprint(out, " (cached)")
	}
	fmt.Fprintln(out)
	for _, p := range res.Timings.Phases {
		fmt.Fprintf(out, "  %-12s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(out, "  // %s", p.Note)
		}
		fmt.Fprintln(out)
	}
}
