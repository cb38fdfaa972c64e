package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"signcheck/internal/annot"
	"signcheck/internal/diag"
	"signcheck/internal/diagfmt"
	"signcheck/internal/driver"
	"signcheck/internal/observ"
	"signcheck/internal/project"
	"signcheck/internal/source"
	"signcheck/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.sgn|directory]...",
	Short: "Check signedness qualifiers of fixture files",
	Long: `Check every function in the given files, or in all *.sgn files under the given
directories. Without arguments the paths listed in signcheck.toml are checked,
or the current directory when there is no manifest.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "", "output format (pretty|json|short); defaults to [check].format or pretty")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=config or auto)")
	checkCmd.Flags().StringSlice("stubs", nil, "annotation stub files, applied after those listed in signcheck.toml")
	checkCmd.Flags().String("emit-quals", "", "write the final qualifier of every expression to this file (msgpack)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("show-quals", false, "list the qualifiers involved in each diagnostic")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("cache", false, "reuse results of unchanged files from the disk cache")
	checkCmd.Flags().Int("max-loop-iterations", 0, "fixpoint passes per loop before falling back to declared qualifiers (0=default)")
	checkCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
}

// checkFlags holds the parsed flags of the check command.
type checkFlags struct {
	format        string
	jobs          int
	stubs         []string
	emitQuals     string
	withNotes     bool
	suggest       bool
	showQuals     bool
	fullPath      bool
	cache         bool
	maxLoopIters  int
	ui            uiMode
	quiet         bool
	timings       bool
	maxDiagnostic int
	color         bool
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var (
		f   checkFlags
		err error
	)
	flags := cmd.Flags()
	if f.format, err = flags.GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.stubs, err = flags.GetStringSlice("stubs"); err != nil {
		return f, fmt.Errorf("failed to get stubs flag: %w", err)
	}
	if f.emitQuals, err = flags.GetString("emit-quals"); err != nil {
		return f, fmt.Errorf("failed to get emit-quals flag: %w", err)
	}
	if f.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.suggest, err = flags.GetBool("suggest"); err != nil {
		return f, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if f.showQuals, err = flags.GetBool("show-quals"); err != nil {
		return f, fmt.Errorf("failed to get show-quals flag: %w", err)
	}
	if f.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if f.cache, err = flags.GetBool("cache"); err != nil {
		return f, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if f.maxLoopIters, err = flags.GetInt("max-loop-iterations"); err != nil {
		return f, fmt.Errorf("failed to get max-loop-iterations flag: %w", err)
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiFlag); err != nil {
		return f, err
	}
	if f.quiet, err = flags.GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if f.timings, err = flags.GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if f.maxDiagnostic, err = flags.GetInt("max-diagnostics"); err != nil {
		return f, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if f.color, err = colorEnabled(cmd); err != nil {
		return f, err
	}
	if f.jobs < 0 {
		return f, fmt.Errorf("--jobs must not be negative")
	}
	return f, nil
}

// checkConfig is the result of merging signcheck.toml with the flags.
type checkConfig struct {
	manifest *project.Manifest
	paths    []string
	format   string
	jobs     int
	maxDiags int
	store    annot.MapStore
	cacheKey project.Digest
}

func runCheck(cmd *cobra.Command, args []string) error {
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	exitCode, err := checkAndReport(cmd.Context(), args, flags)
	cleanup()
	if err != nil {
		return err
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

// checkAndReport runs the checker and prints its results, returning the
// process exit code.
func checkAndReport(ctx context.Context, args []string, flags checkFlags) (int, error) {
	cfg, cfgDiag, err := resolveCheckConfig(args, flags)
	if err != nil {
		return 0, err
	}
	if cfgDiag != nil {
		// конфигурация сломана: показываем диагностику и выходим
		bag := diag.NewBag(1)
		bag.Add(cfgDiag.diagnostic)
		if err := writeDiagnostics(os.Stdout, bag, cfgDiag.fs, cfg.format, flags); err != nil {
			return 0, err
		}
		return 1, nil
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return 0, fmt.Errorf("failed to get working directory: %w", err)
	}

	timer := observ.NewTimer()
	opts := driver.Options{
		Jobs:              cfg.jobs,
		Store:             cfg.store,
		MaxLoopIterations: flags.maxLoopIters,
		BaseDir:           baseDir,
		Logger:            logger,
		Timer:             timer,
		CacheKey:          cfg.cacheKey,
	}
	if flags.cache {
		cache, err := driver.OpenDiskCache("signcheck")
		if err != nil {
			logger.Warn("disk cache unavailable", "err", err)
		} else {
			opts.Cache = cache
		}
	}

	report, err := runChecks(ctx, cfg.paths, opts, flags)
	if err != nil {
		return 0, fmt.Errorf("check failed: %w", err)
	}

	bag := report.Bag()
	if flags.timings && cfg.format == "json" {
		if d, ok := driver.TimingDiagnostic(timer); ok {
			bag.Add(d)
		}
	}
	flags.maxDiagnostic = cfg.maxDiags
	if err := writeDiagnostics(os.Stdout, bag, report.FileSet, cfg.format, flags); err != nil {
		return 0, err
	}

	if flags.emitQuals != "" {
		if err := emitQualifiers(flags.emitQuals, report); err != nil {
			return 0, err
		}
	}

	if flags.timings && cfg.format != "json" {
		printStageTimings(os.Stderr, report.Timings)
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	if !flags.quiet && cfg.format == "pretty" {
		printSummary(os.Stderr, report, bag)
	}

	if report.HasErrors() {
		return 1, nil
	}
	return 0, nil
}

func runChecks(ctx context.Context, paths []string, opts driver.Options, flags checkFlags) (*driver.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !shouldUseTUI(flags.ui) {
		return driver.CheckPaths(ctx, paths, opts)
	}
	files, err := driver.CollectFiles(paths)
	if err != nil {
		return nil, err
	}
	display := make([]string, len(files))
	for i, f := range files {
		display[i] = (&source.File{Path: f}).RelPath(opts.BaseDir)
	}
	return runCheckWithUI(ctx, "checking", display, paths, opts)
}

// configFailure is a signcheck.toml or stub file that could not be loaded.
type configFailure struct {
	fs         *source.FileSet
	diagnostic diag.Diagnostic
}

func resolveCheckConfig(args []string, flags checkFlags) (checkConfig, *configFailure, error) {
	cfg := checkConfig{format: flags.format, jobs: flags.jobs, maxDiags: flags.maxDiagnostic}

	start := "."
	if len(args) > 0 {
		start = args[0]
		if info, err := os.Stat(start); err == nil && !info.IsDir() {
			start = filepath.Dir(start)
		}
	}
	manifestPath, ok, err := project.FindManifest(start)
	if err != nil {
		return cfg, nil, err
	}
	if ok {
		m, err := project.ReadManifest(manifestPath)
		if err != nil {
			if cfg.format == "" {
				cfg.format = "pretty"
			}
			fs := source.NewFileSet()
			d := project.ConfigDiagnostic(fs, diag.ProjInvalidManifest, manifestPath, err)
			return cfg, &configFailure{fs: fs, diagnostic: d}, nil
		}
		cfg.manifest = m
		logger.Debug("loaded manifest", "path", m.Path)
	}

	var stubPaths []string
	if cfg.manifest != nil {
		c := cfg.manifest.Config.Check
		if cfg.format == "" {
			cfg.format = c.Format
		}
		if cfg.jobs == 0 {
			cfg.jobs = c.Jobs
		}
		if cfg.maxDiags == 0 {
			cfg.maxDiags = c.MaxDiagnostics
		}
		stubPaths = cfg.manifest.StubPaths()
	}
	if cfg.format == "" {
		cfg.format = "pretty"
	}
	switch cfg.format {
	case "pretty", "json", "short":
	default:
		return cfg, nil, fmt.Errorf("unknown format: %s", cfg.format)
	}
	stubPaths = append(stubPaths, flags.stubs...)

	switch {
	case len(args) > 0:
		cfg.paths = args
	case cfg.manifest != nil:
		cfg.paths = cfg.manifest.CheckPaths()
	default:
		cfg.paths = []string{"."}
	}

	cfg.store = annot.NewMapStore()
	digests := []project.Digest{project.FileDigest([]byte(version.Version))}
	for _, path := range stubPaths {
		store, err := annot.LoadStubFile(path)
		if err != nil {
			fs := source.NewFileSet()
			d := project.ConfigDiagnostic(fs, diag.ProjInvalidStub, path, err)
			return cfg, &configFailure{fs: fs, diagnostic: d}, nil
		}
		cfg.store.Merge(store)
		content, err := os.ReadFile(path)
		if err != nil {
			return cfg, nil, fmt.Errorf("failed to read stub %q: %w", path, err)
		}
		digests = append(digests, project.FileDigest(content))
		logger.Debug("loaded stubs", "path", path, "units", len(store.Units()))
	}
	// the cache key covers everything besides file content that changes results
	cfg.cacheKey = project.Combine(digests[0], digests[1:]...)
	return cfg, nil, nil
}

func writeDiagnostics(out io.Writer, bag *diag.Bag, fs *source.FileSet, format string, flags checkFlags) error {
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch format {
	case "pretty":
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     flags.color,
			PathMode:  pathMode,
			ShowNotes: flags.withNotes,
			ShowFixes: flags.suggest,
			ShowQuals: flags.showQuals,
			Max:       flags.maxDiagnostic,
		})
		return nil
	case "short":
		return diagfmt.Short(out, bag, fs, flags.withNotes)
	case "json":
		err := diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              flags.maxDiagnostic,
			IncludeNotes:     flags.withNotes,
			IncludeFixes:     flags.suggest,
			IncludePreviews:  flags.suggest,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func emitQualifiers(path string, report *driver.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return driver.WriteQualifiers(f, report)
}

func printSummary(out io.Writer, report *driver.Report, bag *diag.Bag) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch {
		case d.Severity >= diag.SevError:
			errs++
		case d.Severity == diag.SevWarning:
			warns++
		}
	}
	var cached int
	for i := range report.Files {
		if report.Files[i].Cached {
			cached++
		}
	}

	parts := []string{fmt.Sprintf("%d file(s)", len(report.Files)), fmt.Sprintf("%d function(s)", report.UnitCount())}
	if cached > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", cached))
	}
	status := color.New(color.FgGreen, color.Bold).Sprint("ok")
	if errs > 0 {
		status = color.New(color.FgRed, color.Bold).Sprintf("%d error(s)", errs)
	}
	line := fmt.Sprintf("checked %s: %s", strings.Join(parts, ", "), status)
	if warns > 0 {
		line += fmt.Sprintf(", %d warning(s)", warns)
	}
	fmt.Fprintln(out, line)
}
