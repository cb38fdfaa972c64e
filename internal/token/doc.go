// Package token defines lexical token kinds for signcheck fixture files.
// Invariants:
//   - Token.Text is the original source slice, except identifiers, which are
//     NFC-normalised by the lexer.
//   - Token.Span always covers the original bytes.
//   - Annotations are lexed as '@' (Kind: At) + Ident; the parser maps the
//     identifier to a qualifier.
//   - Type names (int, u32, ...) are identifiers; the checker ignores them.
package token
