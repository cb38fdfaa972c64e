package diag

import (
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(append([]Note(nil), d.Notes...), Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithQuals(qs ...qual.Qualifier) Diagnostic {
	d.Quals = append(append([]qual.Qualifier(nil), d.Quals...), qs...)
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(append([]Fix(nil), d.Fixes...), Fix{Title: title, Edits: edits})
	return d
}
