// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/uidlc/internal/exc"
	"gopkg.microglot.org/uidlc/internal/fs"
	"gopkg.microglot.org/uidlc/internal/idl"
)

// token builds an expectation without a span. The test harness only
// compares Type and Value for these.
func token(kind idl.TokenType, value string) *idl.Token {
	return &idl.Token{Type: kind, Value: value}
}

func TestLexerUIDL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		input        string
		expected     []*idl.Token
		expectedCode string
	}{
		{
			name:  "single characters",
			input: "{}()@=",
			expected: []*idl.Token{
				newToken(1, 0, 0, 1, 1, 1, idl.TokenTypeCurlyOpen, "{"),
				newToken(1, 1, 1, 1, 2, 2, idl.TokenTypeCurlyClose, "}"),
				newToken(1, 2, 2, 1, 3, 3, idl.TokenTypeParenOpen, "("),
				newToken(1, 3, 3, 1, 4, 4, idl.TokenTypeParenClose, ")"),
				newToken(1, 4, 4, 1, 5, 5, idl.TokenTypeAt, "@"),
				newToken(1, 5, 5, 1, 6, 6, idl.TokenTypeEqual, "="),
			},
		},
		{
			name:  "identifier",
			input: "layout",
			expected: []*idl.Token{
				newTokenLineSpan(1, 6, 6, 6, idl.TokenTypeIdentifier, "layout"),
			},
		},
		{
			name:  "hyphenated identifier",
			input: "left-to-right",
			expected: []*idl.Token{
				newTokenLineSpan(1, 13, 13, 13, idl.TokenTypeIdentifier, "left-to-right"),
			},
		},
		{
			name:  "identifier stops at a trailing hyphen",
			input: "pad- x",
			expected: []*idl.Token{
				newTokenLineSpan(1, 3, 3, 3, idl.TokenTypeIdentifier, "pad"),
				newToken(1, 3, 3, 1, 4, 4, idl.TokenTypeMinus, "-"),
				newTokenLineSpan(1, 6, 6, 1, idl.TokenTypeIdentifier, "x"),
			},
		},
		{
			name:  "hyphen before a digit is not joined",
			input: "grid-2",
			expected: []*idl.Token{
				newTokenLineSpan(1, 4, 4, 4, idl.TokenTypeIdentifier, "grid"),
				newToken(1, 4, 4, 1, 5, 5, idl.TokenTypeMinus, "-"),
				newTokenLineSpan(1, 6, 6, 1, idl.TokenTypeNumber, "2"),
			},
		},
		{
			name:  "number",
			input: "1234",
			expected: []*idl.Token{
				newTokenLineSpan(1, 4, 4, 4, idl.TokenTypeNumber, "1234"),
			},
		},
		{
			name:  "decimal number",
			input: "98.6",
			expected: []*idl.Token{
				newTokenLineSpan(1, 4, 4, 4, idl.TokenTypeNumber, "98.6"),
			},
		},
		{
			name:  "second dot ends the number",
			input: "1.2.3",
			expected: []*idl.Token{
				newTokenLineSpan(1, 3, 3, 3, idl.TokenTypeNumber, "1.2"),
				newToken(1, 3, 3, 1, 4, 4, idl.TokenTypeUnknown, "."),
				newTokenLineSpan(1, 5, 5, 1, idl.TokenTypeNumber, "3"),
			},
		},
		{
			name:  "dot without a following digit ends the number",
			input: "7. ",
			expected: []*idl.Token{
				newTokenLineSpan(1, 1, 1, 1, idl.TokenTypeNumber, "7"),
				newToken(1, 1, 1, 1, 2, 2, idl.TokenTypeUnknown, "."),
			},
		},
		{
			name:  "percentage",
			input: "50%",
			expected: []*idl.Token{
				newTokenLineSpan(1, 3, 3, 3, idl.TokenTypePercentage, "50"),
			},
		},
		{
			name:  "decimal percentage",
			input: "12.5%",
			expected: []*idl.Token{
				newTokenLineSpan(1, 5, 5, 5, idl.TokenTypePercentage, "12.5"),
			},
		},
		{
			name:  "detached percent is not a percentage",
			input: "50 %",
			expected: []*idl.Token{
				newTokenLineSpan(1, 2, 2, 2, idl.TokenTypeNumber, "50"),
				newToken(1, 3, 3, 1, 4, 4, idl.TokenTypePercent, "%"),
			},
		},
		{
			name:  "text",
			input: `"hello"`,
			expected: []*idl.Token{
				newToken(1, 0, 0, 1, 7, 7, idl.TokenTypeText, "hello"),
			},
		},
		{
			name:  "text has no escapes",
			input: `"a\"`,
			expected: []*idl.Token{
				newToken(1, 0, 0, 1, 4, 4, idl.TokenTypeText, `a\`),
			},
		},
		{
			name:  "interpolated text",
			input: `d"Hello, {name}"`,
			expected: []*idl.Token{
				newToken(1, 1, 1, 1, 16, 16, idl.TokenTypeTextInterpolated, "Hello, {name}"),
			},
		},
		{
			name:  "text spanning lines",
			input: "\"a\nb\"",
			expected: []*idl.Token{
				newToken(1, 0, 0, 2, 2, 5, idl.TokenTypeText, "a\nb"),
			},
		},
		{
			name:  "new lines",
			input: "\n\r\r\n",
			expected: []*idl.Token{
				newToken(1, 0, 0, 2, 0, 1, idl.TokenTypeNewline, "\n"),
				newToken(2, 0, 1, 3, 0, 2, idl.TokenTypeNewline, "\r"),
				newToken(3, 0, 2, 4, 0, 4, idl.TokenTypeNewline, "\r\n"),
			},
		},
		{
			name:  "spaces and tabs are skipped",
			input: " \ta",
			expected: []*idl.Token{
				newTokenLineSpan(1, 3, 3, 1, idl.TokenTypeIdentifier, "a"),
			},
		},
		{
			name:  "unknown character",
			input: "#",
			expected: []*idl.Token{
				newToken(1, 0, 0, 1, 1, 1, idl.TokenTypeUnknown, "#"),
			},
		},
		{
			name:  "d alone is an identifier",
			input: "d x",
			expected: []*idl.Token{
				newTokenLineSpan(1, 1, 1, 1, idl.TokenTypeIdentifier, "d"),
				newTokenLineSpan(1, 3, 3, 1, idl.TokenTypeIdentifier, "x"),
			},
		},
		{
			name:  "byte order mark is skipped",
			input: "\uFEFFa",
			expected: []*idl.Token{
				newTokenLineSpan(1, 1, 1, 1, idl.TokenTypeIdentifier, "a"),
			},
		},
		{
			name:         "misplaced byte order mark",
			input:        "a\uFEFFb",
			expected:     []*idl.Token{newTokenLineSpan(1, 1, 1, 1, idl.TokenTypeIdentifier, "a")},
			expectedCode: exc.CodeUnsupportedFileFormat,
		},
		{
			name:         "duplicate byte order mark",
			input:        "\uFEFF\uFEFFa",
			expected:     []*idl.Token{},
			expectedCode: exc.CodeUnsupportedFileFormat,
		},
		{
			name:         "unterminated text",
			input:        `"abc`,
			expected:     []*idl.Token{},
			expectedCode: exc.CodeUnterminatedText,
		},
		{
			name:  "null byte ends the stream",
			input: "a\x00b",
			expected: []*idl.Token{
				newTokenLineSpan(1, 1, 1, 1, idl.TokenTypeIdentifier, "a"),
			},
		},
		{
			name:  "document fragment",
			input: "@Form login {\n  title = \"Sign in\"\n  width = 80%\n}",
			expected: []*idl.Token{
				token(idl.TokenTypeAt, "@"),
				token(idl.TokenTypeIdentifier, "Form"),
				token(idl.TokenTypeIdentifier, "login"),
				token(idl.TokenTypeCurlyOpen, "{"),
				token(idl.TokenTypeNewline, "\n"),
				token(idl.TokenTypeIdentifier, "title"),
				token(idl.TokenTypeEqual, "="),
				token(idl.TokenTypeText, "Sign in"),
				token(idl.TokenTypeNewline, "\n"),
				token(idl.TokenTypeIdentifier, "width"),
				token(idl.TokenTypeEqual, "="),
				token(idl.TokenTypePercentage, "80"),
				token(idl.TokenTypeNewline, "\n"),
				token(idl.TokenTypeCurlyClose, "}"),
			},
		},
		{
			name:  "directive with url",
			input: `@language custom("https://example.com/schema")`,
			expected: []*idl.Token{
				token(idl.TokenTypeAt, "@"),
				token(idl.TokenTypeIdentifier, "language"),
				token(idl.TokenTypeIdentifier, "custom"),
				token(idl.TokenTypeParenOpen, "("),
				token(idl.TokenTypeText, "https://example.com/schema"),
				token(idl.TokenTypeParenClose, ")"),
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		name := testCase.name
		if name == "" {
			name = testCase.input
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			input := fs.NewFileString("/test", testCase.input, idl.FileKindUIDL)
			rep := exc.NewReporter(nil)
			lexer := NewLexerUIDL(rep)

			lexerFile, err := lexer.Lex(ctx, input)
			require.Nil(t, err)
			stream, err := lexerFile.Tokens(ctx)
			require.Nil(t, err)

			tokens := []*idl.Token{}
			for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
				tokens = append(tokens, tok.Value())
			}
			require.Nil(t, stream.Close(ctx))

			if testCase.expectedCode == "" {
				require.Empty(t, rep.Reported())
			} else {
				reported := rep.Reported()
				require.NotEmpty(t, reported)
				require.Equal(t, testCase.expectedCode, reported[0].Code())
			}

			require.Len(t, tokens, len(testCase.expected))
			for i, expectation := range testCase.expected {
				require.Equal(t, expectation.Type, tokens[i].Type, "token %d type", i)
				require.Equal(t, expectation.Value, tokens[i].Value, "token %d value", i)
				if expectation.Span != nil {
					require.Equal(t, expectation.Span, tokens[i].Span, "token %d span", i)
				}
			}
		})
	}
}

func BenchmarkLexerUIDL(b *testing.B) {
	ctx := context.Background()
	input := fs.NewFileString(
		"/test",
		"@language forms\n@Form login {\n  title = d\"Sign in, {user}\"\n  width = 80%\n  @Input user (\n    align = left-to-right\n  )\n}\n",
		idl.FileKindUIDL,
	)
	rep := exc.NewReporter(nil)
	lexer := NewLexerUIDL(rep)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		lexerFile, err := lexer.Lex(ctx, input)
		if err != nil {
			b.Fatal(err)
		}
		stream, err := lexerFile.Tokens(ctx)
		if err != nil {
			b.Fatal(err)
		}
		for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
		}
		_ = stream.Close(ctx)
	}
}
