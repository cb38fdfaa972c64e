package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signcheck/internal/annot"
	"signcheck/internal/diag"
	"signcheck/internal/pipeline"
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

func TestGoldenDiagnostics(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))

	for _, name := range []string{"arith", "casts", "loops"} {
		t.Run(name, func(t *testing.T) {
			report, err := CheckPaths(context.Background(), []string{filepath.Join("testdata", name+".sgn")}, Options{})
			require.NoError(t, err)

			got := diag.FormatShortDiagnostics(report.Bag().Items(), report.FileSet, false)
			g.Assert(t, name, []byte(got))
		})
	}
}

func TestCheckPathsOrdersFilesAndUnits(t *testing.T) {
	report, err := CheckPaths(context.Background(), []string{"testdata"}, Options{Jobs: 2})
	require.NoError(t, err)

	var paths []string
	for _, f := range report.Files {
		paths = append(paths, filepath.ToSlash(f.Path))
	}
	assert.Equal(t, []string{"testdata/arith.sgn", "testdata/casts.sgn", "testdata/loops.sgn"}, paths)

	arith, ok := report.File(filepath.Join("testdata", "arith.sgn"))
	require.True(t, ok)
	require.Len(t, arith.Units, 2)
	assert.Equal(t, "mix", arith.Units[0].Name)
	assert.Equal(t, "cmp", arith.Units[1].Name)
	assert.Equal(t, 4, report.UnitCount())
	assert.True(t, report.HasErrors())
}

func TestCheckIsDeterministicAcrossJobs(t *testing.T) {
	var outputs []string
	for _, jobs := range []int{1, 4} {
		report, err := CheckPaths(context.Background(), []string{"testdata"}, Options{Jobs: jobs})
		require.NoError(t, err)
		outputs = append(outputs, diag.FormatShortDiagnostics(report.Bag().Items(), report.FileSet, true))
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestUnreadableFileBecomesDiagnostic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.sgn")
	require.NoError(t, os.WriteFile(path, []byte("fn f() {}"), 0o644))

	files, err := CollectFiles([]string{path})
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	// CollectFiles stats inputs, so remove the file between collection and load
	fileSet := source.NewFileSet()
	_, loadErr := fileSet.Load(files[0])
	require.Error(t, loadErr)

	var rec pipeline.RecordingSink
	tasks := []fileTask{{path: files[0], id: fileSet.AddVirtual(files[0], nil), loadErr: loadErr}}
	report, err := run(context.Background(), fileSet, tasks, Options{Progress: &rec})
	require.NoError(t, err)

	ds := report.Files[0].Diagnostics()
	require.Len(t, ds, 1)
	assert.Equal(t, diag.IOLoadFileError, ds[0].Code)
	assert.Contains(t, ds[0].Message, "failed to load file")
	assert.Nil(t, report.Files[0].Builder)

	var sawError bool
	for _, ev := range rec.Events() {
		if ev.Status == pipeline.StatusError && ev.Stage == pipeline.StageLoad {
			sawError = true
		}
	}
	assert.True(t, sawError, "expected a load error event")
}

func TestProgressEvents(t *testing.T) {
	var rec pipeline.RecordingSink
	sources := []Source{
		{Path: "ok.sgn", Content: []byte("fn f(a: @signed) { a + 1; }")},
		{Path: "bad.sgn", Content: []byte("fn f(a: @signed, b: @unsigned) { a < b; }")},
		{Path: "empty.sgn", Content: []byte("")},
	}
	_, err := CheckSources(context.Background(), sources, Options{Progress: &rec})
	require.NoError(t, err)

	final := make(map[string]pipeline.Status)
	queued := make(map[string]bool)
	for _, ev := range rec.Events() {
		if ev.File == "" {
			continue
		}
		if ev.Status == pipeline.StatusQueued && ev.Stage == pipeline.StageParse {
			queued[ev.File] = true
		}
		final[ev.File] = ev.Status
	}
	for _, src := range sources {
		assert.True(t, queued[src.Path], "file %s never queued", src.Path)
	}
	assert.Equal(t, pipeline.StatusDone, final["ok.sgn"])
	assert.Equal(t, pipeline.StatusError, final["bad.sgn"])
	assert.Equal(t, pipeline.StatusDone, final["empty.sgn"])

	events := rec.Events()
	last := events[len(events)-1]
	assert.Equal(t, pipeline.Event{Stage: pipeline.StageCheck, Status: pipeline.StatusDone, Elapsed: last.Elapsed}, last)
}

func TestParseErrorsStayInFileBag(t *testing.T) {
	report, err := CheckSources(context.Background(), []Source{
		{Path: "broken.sgn", Content: []byte("fn f(a: @signed) { let x = ; }\nfn g(a: @bitpattern) { a + 1; }")},
	}, Options{})
	require.NoError(t, err)

	fr := &report.Files[0]
	assert.True(t, fr.Bag.HasErrors())
	var syntax, violations int
	for _, d := range fr.Diagnostics() {
		if d.Code.IsViolation() {
			violations++
		} else {
			syntax++
		}
	}
	assert.Positive(t, syntax)
	assert.Equal(t, 1, violations, "units after a syntax error are still checked")
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(rel string) {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
	write("b.sgn")
	write("a.sgn")
	write("notes.txt")
	write("nested/c.sgn")
	write(".hidden/d.sgn")

	explicit := filepath.Join(dir, "notes.txt")
	files, err := CollectFiles([]string{dir, explicit, filepath.Join(dir, "a.sgn")})
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"a.sgn", "b.sgn", "nested/c.sgn", "notes.txt"}, rel)

	_, err = CollectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CheckSources(ctx, []Source{{Path: "a.sgn", Content: []byte("fn f() {}")}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreReachesUnits(t *testing.T) {
	store, err := annot.DecodeStub("stubs.toml", "[units.f]\nx = \"bitpattern\"\n")
	require.NoError(t, err)

	report, err := CheckSources(context.Background(), []Source{
		{Path: "s.sgn", Content: []byte("fn f(x: int) { x + 1; }")},
	}, Options{Store: store})
	require.NoError(t, err)

	res, ok := report.Files[0].Unit("f")
	require.True(t, ok)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.SgnArithmeticOnBitPattern, res.Diagnostics[0].Code)
	assert.Equal(t, []qual.Qualifier{qual.BitPattern, qual.BitPattern}, res.Diagnostics[0].Quals)
}

func TestReportBagKeepsFileOrder(t *testing.T) {
	report, err := CheckSources(context.Background(), []Source{
		{Path: "z.sgn", Content: []byte("fn f(a: @signed, b: @unsigned) { a < b; }")},
		{Path: "a.sgn", Content: []byte("fn f(a: @bitpattern) { a + a; }")},
	}, Options{})
	require.NoError(t, err)

	items := report.Bag().Items()
	require.Len(t, items, 2)
	assert.Equal(t, diag.SgnMixedSignednessComparison, items[0].Code)
	assert.Equal(t, diag.SgnArithmeticOnBitPattern, items[1].Code)

	short := diag.FormatShortDiagnostics(items, report.FileSet, false)
	assert.True(t, strings.HasPrefix(short, "error SGN3001"), "short output is sorted by path: %s", short)
}
