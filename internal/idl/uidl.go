package idl

import (
	"context"
	"fmt"

	"gopkg.microglot.org/uidlc/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindUIDL
)

func (k FileKind) String() string {
	switch k {
	case FileKindUIDL:
		return "uidl"
	case FileKindNone:
		return "none"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error)
}

type CompileRequest struct {
	Files      []string
	DumpTokens bool
	DumpTree   bool
}

type CompileResponse struct {
	Documents []*Document
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

type Parser interface {
	Parse(ctx context.Context, f LexerFile) (*Document, error)
}

type Location struct {
	Line   int32
	Column int32
	Offset int64
}

type Span struct {
	Start *Location
	End   *Location
}

type Token struct {
	Span  *Span
	Type  TokenType
	Value string
}

type TokenType uint16

const (
	TokenTypeUnknown          TokenType = 0
	TokenTypeIdentifier       TokenType = 1
	TokenTypeNumber           TokenType = 2
	TokenTypePercentage       TokenType = 3
	TokenTypeText             TokenType = 4
	TokenTypeTextInterpolated TokenType = 5
	TokenTypeAt               TokenType = 6
	TokenTypeEqual            TokenType = 7
	TokenTypeCurlyOpen        TokenType = 8
	TokenTypeCurlyClose       TokenType = 9
	TokenTypeParenOpen        TokenType = 10
	TokenTypeParenClose       TokenType = 11
	TokenTypeMinus            TokenType = 12
	TokenTypePercent          TokenType = 13
	TokenTypeNewline          TokenType = 14
	TokenTypeEOF              TokenType = 15
)

func (t TokenType) String() string {
	switch t {
	case TokenTypeIdentifier:
		return "identifier"
	case TokenTypeNumber:
		return "number"
	case TokenTypePercentage:
		return "percentage"
	case TokenTypeText:
		return "text"
	case TokenTypeTextInterpolated:
		return "interpolated text"
	case TokenTypeAt:
		return "'@'"
	case TokenTypeEqual:
		return "'='"
	case TokenTypeCurlyOpen:
		return "'{'"
	case TokenTypeCurlyClose:
		return "'}'"
	case TokenTypeParenOpen:
		return "'('"
	case TokenTypeParenClose:
		return "')'"
	case TokenTypeMinus:
		return "'-'"
	case TokenTypePercent:
		return "'%'"
	case TokenTypeNewline:
		return "newline"
	case TokenTypeEOF:
		return "EOF"
	default:
		return fmt.Sprintf("unknown-%d", uint16(t))
	}
}
