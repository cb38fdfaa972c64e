package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"signcheck/internal/diag"
	"signcheck/internal/project"
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки файлов на диске, по ключу
// Combine(CacheKey, content digest). Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached outcome of checking one file. Spans are stored
// as offsets only; the file id is reattached on load.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path   string
	Digest project.Digest

	Diagnostics []CachedDiagnostic
	Units       []UnitQualifiers
}

type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Quals    []string
	Notes    []CachedNote
	Fixes    []CachedFix
}

type CachedNote struct {
	Start, End uint32
	Msg        string
}

type CachedFix struct {
	Title string
	Edits []CachedEdit
}

type CachedEdit struct {
	Start, End       uint32
	NewText, OldText string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache uses dir as the cache directory, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Для удобства читаемости/очистки подкаталог "files".
	return filepath.Join(c.dir, "files", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. Entries written
// with another schema are misses.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func loadFromCache(fr *FileResult, opts Options, logger *slog.Logger) (FileResult, bool) {
	if opts.Cache == nil {
		return FileResult{}, false
	}
	var payload DiskPayload
	ok, err := opts.Cache.Get(project.Combine(opts.CacheKey, fr.Digest), &payload)
	if err != nil {
		logger.Warn("cache read failed", "path", fr.Path, "err", err)
		return FileResult{}, false
	}
	if !ok || payload.Digest != fr.Digest {
		return FileResult{}, false
	}
	ds, err := decodeDiagnostics(fr.FileID, payload.Diagnostics)
	if err != nil {
		logger.Warn("cache entry unusable", "path", fr.Path, "err", err)
		return FileResult{}, false
	}
	out := *fr
	out.Bag = diag.NewBag(len(ds))
	out.Bag.AddAll(ds)
	out.Cached = true
	out.cachedQuals = payload.Units
	logger.Debug("cache hit", "path", fr.Path)
	return out, true
}

func storeInCache(report *Report, tasks []fileTask, opts Options, logger *slog.Logger) {
	if opts.Cache == nil {
		return
	}
	for i := range report.Files {
		fr := &report.Files[i]
		if fr.Cached || tasks[i].loadErr != nil || fr.Builder == nil {
			continue
		}
		payload := &DiskPayload{
			Path:        fr.Path,
			Digest:      fr.Digest,
			Diagnostics: encodeDiagnostics(fr.Diagnostics()),
			Units:       fr.Qualifiers(),
		}
		if err := opts.Cache.Put(project.Combine(opts.CacheKey, fr.Digest), payload); err != nil {
			logger.Warn("cache write failed", "path", fr.Path, "err", err)
		}
	}
}

func encodeDiagnostics(ds []diag.Diagnostic) []CachedDiagnostic {
	out := make([]CachedDiagnostic, 0, len(ds))
	for _, d := range ds {
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, q := range d.Quals {
			cd.Quals = append(cd.Quals, q.String())
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		for _, fix := range d.Fixes {
			cf := CachedFix{Title: fix.Title}
			for _, e := range fix.Edits {
				cf.Edits = append(cf.Edits, CachedEdit{Start: e.Span.Start, End: e.Span.End, NewText: e.NewText, OldText: e.OldText})
			}
			cd.Fixes = append(cd.Fixes, cf)
		}
		out = append(out, cd)
	}
	return out
}

func decodeDiagnostics(file source.FileID, cached []CachedDiagnostic) ([]diag.Diagnostic, error) {
	span := func(start, end uint32) source.Span { return source.Span{File: file, Start: start, End: end} }
	out := make([]diag.Diagnostic, 0, len(cached))
	for _, cd := range cached {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code), span(cd.Start, cd.End), cd.Message)
		for _, name := range cd.Quals {
			q, ok := qual.Parse(name)
			if !ok {
				return nil, fmt.Errorf("unknown qualifier %q", name)
			}
			d.Quals = append(d.Quals, q)
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: span(n.Start, n.End), Msg: n.Msg})
		}
		for _, cf := range cd.Fixes {
			fix := diag.Fix{Title: cf.Title}
			for _, e := range cf.Edits {
				fix.Edits = append(fix.Edits, diag.FixEdit{Span: span(e.Start, e.End), NewText: e.NewText, OldText: e.OldText})
			}
			d.Fixes = append(d.Fixes, fix)
		}
		out = append(out, d)
	}
	return out, nil
}
