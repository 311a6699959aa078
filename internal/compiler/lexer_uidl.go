// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"strings"
	"unicode"

	"gopkg.microglot.org/uidlc/internal/exc"
	"gopkg.microglot.org/uidlc/internal/idl"
	"gopkg.microglot.org/uidlc/internal/iter"
	"gopkg.microglot.org/uidlc/internal/optional"
)

const (
	lexerUIDLLookahead = 2
)

// LexerUIDL implements a tokenizer for the UIDL document syntax.
type LexerUIDL struct {
	reporter exc.Reporter
}

func NewLexerUIDL(reporter exc.Reporter) *LexerUIDL {
	return &LexerUIDL{reporter: reporter}
}

func (self *LexerUIDL) Lex(ctx context.Context, f idl.File) (idl.LexerFile, error) {
	return &lexerFileUIDL{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileUIDL struct {
	idl.File
	reporter exc.Reporter
}

func (self *lexerFileUIDL) Tokens(ctx context.Context) (idl.Iterator[*idl.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerUIDLLookahead)
	return &lexerFileUIDLTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      0,
		offset:   0,
	}, nil
}

type lexerFileUIDLTokens struct {
	uri      string
	body     idl.Lookahead[idl.CodePoint]
	reporter exc.Reporter
	line     int32
	col      int32
	offset   int64
	hasBOM   bool
}

func (self *lexerFileUIDLTokens) Next(ctx context.Context) optional.Optional[*idl.Token] {
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		if r == '\uFEFF' {
			if self.offset != int64(len(string(r))) {
				e := self.exc(exc.CodeUnsupportedFileFormat, "invalid UTF-8 BOM location")
				_ = self.reporter.Report(e)
				return optional.None[*idl.Token]()
			}
			if self.hasBOM {
				e := self.exc(exc.CodeUnsupportedFileFormat, "duplicate UTF-8 BOM location")
				_ = self.reporter.Report(e)
				return optional.None[*idl.Token]()
			}
			self.hasBOM = true
			self.offset = 0
			self.col = 0
			continue
		}
		switch r {
		case 0x00:
			return optional.None[*idl.Token]() // Treat null byte as EOF as it's not allowed.
		case 0x0009, 0x0020:
			continue // Generally ignore space and tab.
		case '\n':
			return self.newLineToken("\n", 1)
		case '\r':
			if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '\n' {
				_ = self.next(ctx)
				return self.newLineToken("\r\n", 2)
			}
			return self.newLineToken("\r", 1)
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return self.readNumber(ctx, string(r))
		case '"':
			return self.readText(ctx)
		case '{':
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypeCurlyOpen, "{")
			return optional.Some(t)
		case '}':
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypeCurlyClose, "}")
			return optional.Some(t)
		case '(':
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypeParenOpen, "(")
			return optional.Some(t)
		case ')':
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypeParenClose, ")")
			return optional.Some(t)
		case '@':
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypeAt, "@")
			return optional.Some(t)
		case '=':
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypeEqual, "=")
			return optional.Some(t)
		case '-':
			// A hyphen only ever appears inside an identifier value, where
			// readIdentifier consumes it. A free-standing one is lexed so the
			// parser can point at it.
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypeMinus, "-")
			return optional.Some(t)
		case '%':
			// Same as '-': a % that doesn't immediately follow a number.
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypePercent, "%")
			return optional.Some(t)
		case '_':
			return self.readIdentifier(ctx, string(r))
		default:
			if r == 'd' {
				// d" introduces an interpolated text literal. This has to be
				// checked before generic identifier lexing or the d would be
				// consumed as the start of an identifier.
				if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '"' {
					_ = self.next(ctx)
					return self.readTextInterpolated(ctx)
				}
			}
			if unicode.IsLetter(r) {
				return self.readIdentifier(ctx, string(r))
			}
			t := newToken(self.line, self.col-1, self.offset-1, self.line, self.col, self.offset, idl.TokenTypeUnknown, string(r))
			return optional.Some(t)
		}
	}
	return optional.None[*idl.Token]()
}

// readIdentifier consumes letters, digits, and underscores. A hyphen is
// included when the next code point could start another identifier segment,
// which joins forms like left-to-right into a single token.
func (self *lexerFileUIDLTokens) readIdentifier(ctx context.Context, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeIdentifier, builder.String())
			return optional.Some(t)
		}
		r := rune(n.Value())
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(r)
			continue
		}
		if r == '-' {
			nn := self.body.Lookahead(ctx, 2)
			if nn.IsPresent() && (unicode.IsLetter(rune(nn.Value())) || nn.Value() == '_') {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(r)
				continue
			}
		}
		t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeIdentifier, builder.String())
		return optional.Some(t)
	}
}

// readText consumes a quote-delimited literal. There is no escape handling:
// the body runs to the next quote character, so a literal quote cannot be
// embedded. Newlines inside the body are kept verbatim.
func (self *lexerFileUIDLTokens) readText(ctx context.Context) optional.Optional[*idl.Token] {
	var builder strings.Builder
	startLine := self.line
	startCol := self.col - 1       // span begins at the opening quotation
	startOffset := self.offset - 1 // span begins at the opening quotation
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnterminatedText, "EOF while reading text literal"))
			return optional.None[*idl.Token]()
		}
		switch n.Value() {
		case '\n':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			self.newLine()
		case '\r':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			nn := self.body.Lookahead(ctx, 1)
			if nn.IsPresent() && nn.Value() == '\n' {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(nn.Value()))
			}
			self.newLine()
		case '"':
			_ = self.next(ctx)
			t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeText, builder.String())
			return optional.Some(t)
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

func (self *lexerFileUIDLTokens) readTextInterpolated(ctx context.Context) optional.Optional[*idl.Token] {
	t := self.readText(ctx)
	if !t.IsPresent() {
		return t
	}
	tok := t.Value()
	tok.Type = idl.TokenTypeTextInterpolated
	return optional.Some(tok)
}

// readNumber consumes a digit run with an optional fractional part. An
// immediately following % (no whitespace) reclassifies the token as a
// percentage; the % is part of the span but not the value.
func (self *lexerFileUIDLTokens) readNumber(ctx context.Context, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	seenDot := false
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			break
		}
		switch n.Value() {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			continue
		case '.':
			if seenDot {
				break
			}
			nn := self.body.Lookahead(ctx, 2)
			if !nn.IsPresent() || nn.Value() < '0' || nn.Value() > '9' {
				break
			}
			seenDot = true
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			continue
		}
		break
	}
	if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '%' {
		_ = self.next(ctx)
		t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len()+1, idl.TokenTypePercentage, builder.String())
		return optional.Some(t)
	}
	t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeNumber, builder.String())
	return optional.Some(t)
}

func (self *lexerFileUIDLTokens) next(ctx context.Context) optional.Optional[idl.CodePoint] {
	n := self.body.Next(ctx)
	if n.IsPresent() {
		self.addCol(rune(n.Value()))
	}
	return n
}

func (self *lexerFileUIDLTokens) exc(code string, message string) exc.Exception {
	return exc.New(exc.Location{URI: self.uri, Location: idl.Location{Line: self.line, Column: self.col, Offset: self.offset}}, code, message)
}

func (self *lexerFileUIDLTokens) newLine() {
	self.line = self.line + 1
	self.col = 0
}

func (self *lexerFileUIDLTokens) newLineToken(v string, size int) optional.Optional[*idl.Token] {
	t := newToken(self.line, self.col-int32(size), self.offset-int64(size), self.line+1, 0, self.offset, idl.TokenTypeNewline, v)
	self.newLine()
	return optional.Some(t)
}

func (self *lexerFileUIDLTokens) addCol(r rune) {
	self.col = self.col + 1
	self.offset = self.offset + int64(len(string(r)))
}

func (self *lexerFileUIDLTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func newTokenLineSpan(line int32, col int32, offset int64, size int, kind idl.TokenType, value string) *idl.Token {
	return &idl.Token{
		Span: &idl.Span{
			Start: &idl.Location{
				Line:   line,
				Column: col - int32(size),
				Offset: offset - int64(size),
			},
			End: &idl.Location{
				Line:   line,
				Column: col,
				Offset: offset,
			},
		},
		Type:  kind,
		Value: value,
	}
}

func newToken(startLine int32, startCol int32, startOffset int64, endLine int32, endCol int32, endOffset int64, kind idl.TokenType, value string) *idl.Token {
	return &idl.Token{
		Span: &idl.Span{
			Start: &idl.Location{
				Line:   startLine,
				Column: startCol,
				Offset: startOffset,
			},
			End: &idl.Location{
				Line:   endLine,
				Column: endCol,
				Offset: endOffset,
			},
		},
		Type:  kind,
		Value: value,
	}
}
