package diag

import (
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type FixEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is immutable once reported.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Quals lists the qualifiers involved, in operand order.
	Quals []qual.Qualifier
	Notes []Note
	Fixes []Fix
}
