package diagfmt

import (
	"path/filepath"

	"signcheck/internal/source"
)

func displayPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return filepath.ToSlash(f.Path)
	case PathModeBasename:
		return filepath.Base(f.Path)
	default:
		return f.RelPath(fs.BaseDir())
	}
}
