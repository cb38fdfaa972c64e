package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo           Code = 1000
	LexUnknownChar    Code = 1001
	LexBadNumber      Code = 1002
	LexTokenTooLong   Code = 1003
	LexBadAnnotation  Code = 1004
	LexUnterminatedCm Code = 1005

	// Синтаксис фикстур
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynExpectIdentifier Code = 2002
	SynExpectExpression Code = 2003
	SynExpectType       Code = 2004
	SynUnknownQualifier Code = 2005
	SynExpectSemicolon  Code = 2006
	SynUnclosedBrace    Code = 2007
	SynUnclosedParen    Code = 2008
	SynUnresolvedName   Code = 2009
	SynDuplicateName    Code = 2010
	SynAssignTarget     Code = 2011
	SynBreakOutsideLoop Code = 2012

	// Signedness violations: the ViolationKind taxonomy.
	SgnInfo                      Code = 3000
	SgnArithmeticOnBitPattern    Code = 3001
	SgnMixedSignednessComparison Code = 3002
	SgnUncheckedNarrowingCast    Code = 3003
	SgnIllegalShiftOperand       Code = 3004
	SgnSubtypeViolation          Code = 3005

	// I/O
	IOLoadFileError Code = 4001

	// Project / configuration
	ProjInvalidManifest Code = 5001
	ProjInvalidStub     Code = 5002

	// Observability
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                  "Unknown error",
		LexInfo:                      "Lexical information",
		LexUnknownChar:               "Unknown character",
		LexBadNumber:                 "Malformed integer literal",
		LexTokenTooLong:              "Token too long",
		LexBadAnnotation:             "Malformed annotation",
		LexUnterminatedCm:            "Unterminated block comment",
		SynInfo:                      "Syntax information",
		SynUnexpectedToken:           "Unexpected token",
		SynExpectIdentifier:          "Expected identifier",
		SynExpectExpression:          "Expected expression",
		SynExpectType:                "Expected type",
		SynUnknownQualifier:          "Unknown signedness qualifier",
		SynExpectSemicolon:           "Expected semicolon",
		SynUnclosedBrace:             "Unclosed brace",
		SynUnclosedParen:             "Unclosed parenthesis",
		SynUnresolvedName:            "Unresolved name",
		SynDuplicateName:             "Duplicate declaration",
		SynAssignTarget:              "Invalid assignment target",
		SynBreakOutsideLoop:          "break or continue outside of a loop",
		SgnInfo:                      "Signedness information",
		SgnArithmeticOnBitPattern:    "Arithmetic or comparison on a bit pattern",
		SgnMixedSignednessComparison: "Signed and unsigned operands mixed",
		SgnUncheckedNarrowingCast:    "Narrowing cast without acknowledgment",
		SgnIllegalShiftOperand:       "Shift does not match operand signedness",
		SgnSubtypeViolation:          "Qualifier is not a subtype of the expected one",
		IOLoadFileError:              "I/O load file error",
		ProjInvalidManifest:          "Invalid signcheck.toml",
		ProjInvalidStub:              "Invalid annotation stub",
		ObsTimings:                   "Pipeline timings",
	}

	// violationKinds holds the machine-readable tags of checking-time findings.
	violationKinds = map[Code]string{
		SgnArithmeticOnBitPattern:    "ArithmeticOnBitPattern",
		SgnMixedSignednessComparison: "MixedSignednessComparison",
		SgnUncheckedNarrowingCast:    "UncheckedNarrowingCast",
		SgnIllegalShiftOperand:       "IllegalShiftOperand",
		SgnSubtypeViolation:          "SubtypeViolation",
	}
)

// Violations lists the signedness violation codes in a stable order.
var Violations = [...]Code{
	SgnArithmeticOnBitPattern,
	SgnMixedSignednessComparison,
	SgnUncheckedNarrowingCast,
	SgnIllegalShiftOperand,
	SgnSubtypeViolation,
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SGN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Kind returns the stable violation tag (e.g. "SubtypeViolation"), or the ID
// for codes outside the signedness taxonomy.
func (c Code) Kind() string {
	if k, ok := violationKinds[c]; ok {
		return k
	}
	return c.ID()
}

// IsViolation reports whether c belongs to the signedness taxonomy.
func (c Code) IsViolation() bool {
	_, ok := violationKinds[c]
	return ok
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseKind maps a violation tag back to its code.
func ParseKind(kind string) (Code, bool) {
	for code, k := range violationKinds {
		if k == kind {
			return code, true
		}
	}
	return UnknownCode, false
}
