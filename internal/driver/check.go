// Package driver runs the signedness check over files: it loads them, parses
// them and checks every unit in parallel, then gathers results in file and
// unit order so output does not depend on scheduling.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"signcheck/internal/annot"
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/lexer"
	"signcheck/internal/observ"
	"signcheck/internal/parser"
	"signcheck/internal/pipeline"
	"signcheck/internal/project"
	"signcheck/internal/sema"
	"signcheck/internal/source"
)

// Options configure a check run.
type Options struct {
	// Jobs caps the number of files parsed or units checked at once; 0 means GOMAXPROCS.
	Jobs int
	// MaxErrors stops parsing a file after that many syntax errors; 0 means no limit.
	MaxErrors uint
	// Store supplies qualifiers for unannotated declarations.
	Store annot.Store
	// MaxLoopIterations is passed to sema.
	MaxLoopIterations int
	// BaseDir is the directory paths are displayed relative to.
	BaseDir string

	Progress pipeline.ProgressSink
	Logger   *slog.Logger
	Timer    *observ.Timer

	// Cache, when set, replays results of files whose content and CacheKey
	// did not change since they were last checked.
	Cache    *DiskCache
	CacheKey project.Digest
}

func (o Options) jobs(n int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Source is an in-memory input file.
type Source struct {
	Path    string
	Content []byte
}

// fileTask is one file moving through the pipeline.
type fileTask struct {
	path    string
	id      source.FileID
	loadErr error
}

// CheckPaths checks every file named by paths (directories are walked for
// *.sgn files). Unreadable files become IO diagnostics; err is only returned
// for unusable paths or a cancelled context.
func CheckPaths(ctx context.Context, paths []string, opts Options) (*Report, error) {
	files, err := CollectFiles(paths)
	if err != nil {
		return nil, err
	}
	logger := opts.logger()
	done := opts.Timer.Track("load")
	started := time.Now()

	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	tasks := make([]fileTask, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			logger.Warn("cannot read file", "path", path, "err", err)
			// keep a placeholder so the diagnostic has a file to point at
			id = fileSet.AddVirtual(path, nil)
		}
		tasks[i] = fileTask{path: path, id: id, loadErr: err}
	}
	done(fmt.Sprintf("%d files", len(files)))
	loadTime := time.Since(started)

	report, err := run(ctx, fileSet, tasks, opts)
	if report != nil {
		report.Timings.Add(pipeline.StageLoad, loadTime)
	}
	return report, err
}

// CheckSources checks in-memory files.
func CheckSources(ctx context.Context, sources []Source, opts Options) (*Report, error) {
	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	tasks := make([]fileTask, len(sources))
	for i, src := range sources {
		tasks[i] = fileTask{path: src.Path, id: fileSet.AddVirtual(src.Path, src.Content)}
	}
	return run(ctx, fileSet, tasks, opts)
}

func run(ctx context.Context, fileSet *source.FileSet, tasks []fileTask, opts Options) (*Report, error) {
	logger := opts.logger()
	report := &Report{
		FileSet: fileSet,
		Files:   make([]FileResult, len(tasks)),
	}
	if len(tasks) == 0 {
		return report, nil
	}

	display := make([]string, len(tasks))
	for i, t := range tasks {
		display[i] = fileSet.Get(t.id).RelPath(fileSet.BaseDir())
	}
	pipeline.EmitQueued(opts.Progress, display)

	// parse: один файл на горутину
	parseStart := time.Now()
	endParse := opts.Timer.Track("parse")
	pipeline.EmitStage(opts.Progress, pipeline.StageParse, pipeline.StatusWorking, 0)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(tasks)))
	for i := range tasks {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Сохраняем результат (мьютекс не нужен, индекс i уникален)
			report.Files[i] = parseOne(fileSet, tasks[i], display[i], opts, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	report.Timings.Add(pipeline.StageParse, time.Since(parseStart))
	endParse("")

	// check: every unit of every file is an independent task
	type unitTask struct {
		file int
		slot int
		unit ast.UnitID
	}
	var units []unitTask
	remaining := make([]atomic.Int32, len(tasks))
	for i := range report.Files {
		fr := &report.Files[i]
		if fr.Builder == nil {
			continue
		}
		ids := fr.Builder.UnitIDs()
		fr.Units = make([]*sema.Result, len(ids))
		remaining[i].Store(int32(len(ids)))
		for slot, id := range ids {
			units = append(units, unitTask{file: i, slot: slot, unit: id})
		}
		if len(ids) == 0 {
			finishFile(report, i, display[i], opts)
		}
	}

	checkStart := time.Now()
	endCheck := opts.Timer.Track("check")
	pipeline.EmitStage(opts.Progress, pipeline.StageCheck, pipeline.StatusWorking, 0)
	semaOpts := sema.Options{Store: opts.Store, MaxLoopIterations: opts.MaxLoopIterations}
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(max(len(units), 1)))
	for _, ut := range units {
		ut := ut
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr := &report.Files[ut.file]
			res := sema.CheckUnit(fr.Builder, ut.unit, semaOpts)
			fr.Units[ut.slot] = res
			logger.Debug("checked unit", "path", fr.Path, "unit", res.Name, "diagnostics", len(res.Diagnostics))
			if remaining[ut.file].Add(-1) == 0 {
				finishFile(report, ut.file, display[ut.file], opts)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	report.Timings.Add(pipeline.StageCheck, time.Since(checkStart))
	endCheck(fmt.Sprintf("%d units", len(units)))
	pipeline.EmitStage(opts.Progress, pipeline.StageCheck, pipeline.StatusDone, time.Since(parseStart))

	storeInCache(report, tasks, opts, logger)
	return report, nil
}

func parseOne(fileSet *source.FileSet, task fileTask, display string, opts Options, logger *slog.Logger) FileResult {
	file := fileSet.Get(task.id)
	fr := FileResult{
		Path:   task.path,
		FileID: task.id,
		Digest: project.FileDigest(file.Content),
		Bag:    diag.NewBag(4),
	}

	if task.loadErr != nil {
		fr.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: task.id},
			"failed to load file: "+task.loadErr.Error()))
		pipeline.Emit(opts.Progress, pipeline.Event{File: display, Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: task.loadErr})
		return fr
	}

	if cached, ok := loadFromCache(&fr, opts, logger); ok {
		pipeline.Emit(opts.Progress, pipeline.Event{File: display, Stage: pipeline.StageCheck, Status: pipeline.StatusCached})
		return cached
	}

	started := time.Now()
	pipeline.Emit(opts.Progress, pipeline.Event{File: display, Stage: pipeline.StageParse, Status: pipeline.StatusWorking})
	reporter := diag.BagReporter{Bag: fr.Bag}
	builder := ast.NewBuilder(task.id, ast.Hints{})
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	parser.ParseFile(lx, builder, parser.Options{Reporter: reporter, MaxErrors: opts.MaxErrors})
	fr.Builder = builder

	logger.Debug("parsed file", "path", task.path, "units", len(builder.UnitIDs()), "diagnostics", fr.Bag.Len(), "elapsed", time.Since(started))
	pipeline.Emit(opts.Progress, pipeline.Event{File: display, Stage: pipeline.StageCheck, Status: pipeline.StatusQueued, Elapsed: time.Since(started)})
	return fr
}

func finishFile(report *Report, i int, display string, opts Options) {
	status := pipeline.StatusDone
	if report.Files[i].HasErrors() {
		status = pipeline.StatusError
	}
	pipeline.Emit(opts.Progress, pipeline.Event{File: display, Stage: pipeline.StageCheck, Status: status})
}
