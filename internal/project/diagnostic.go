package project

import (
	"errors"

	"github.com/BurntSushi/toml"

	"signcheck/internal/diag"
	"signcheck/internal/source"
)

// ConfigDiagnostic turns a failure to load the TOML file at path into an
// error diagnostic. The file is added to fs so the diagnostic can point at
// the offending bytes when the decoder reports a position.
func ConfigDiagnostic(fs *source.FileSet, code diag.Code, path string, err error) diag.Diagnostic {
	id, loadErr := fs.Load(path)
	if loadErr != nil {
		id = fs.AddVirtual(path, nil)
	}
	span := source.Span{File: id}

	msg := err.Error()
	var perr toml.ParseError
	if errors.As(err, &perr) {
		msg = perr.Message
		if loadErr == nil {
			size := uint32(len(fs.Get(id).Content))
			start := min(uint32(max(perr.Position.Start, 0)), size)
			end := min(start+uint32(max(perr.Position.Len, 0)), size)
			span = source.Span{File: id, Start: start, End: end}
		}
	}
	return diag.NewError(code, span, msg)
}
