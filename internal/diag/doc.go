// Package diag defines the diagnostic model shared by the front-end and the
// signedness checker.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – numeric identifier with a stable ID (SGN3001). Signedness findings
//     additionally expose a violation tag via Code.Kind (ArithmeticOnBitPattern,
//     MixedSignednessComparison, UncheckedNarrowingCast, IllegalShiftOperand,
//     SubtypeViolation) meant for tests, suppression layers and editors.
//   - Message – short human text.
//   - Primary – the source.Span the finding points at.
//   - Quals – the qualifiers involved, in operand order.
//   - Notes, Fixes – optional context and structured edits.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. ReportError/ReportWarning return a
// ReportBuilder that collects qualifiers, notes and fixes before Emit.
// Bag is the append-only accumulator of one run; Drain hands its contents to
// the caller and clears it. The package never deduplicates or suppresses;
// anything like that belongs to layers built on top of the raw sequence.
//
// Rendering lives in internal/diagfmt. FormatShortDiagnostics here is the
// stable one-line form used by golden files.
package diag
