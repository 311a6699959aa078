package compiler

import (
	"context"
	"fmt"
	"strconv"

	"gopkg.microglot.org/uidlc/internal/exc"
	"gopkg.microglot.org/uidlc/internal/idl"
	"gopkg.microglot.org/uidlc/internal/iter"
	"gopkg.microglot.org/uidlc/internal/optional"
)

// parserUIDLMaxDepth caps element recursion so that adversarially nested
// input reports an error instead of exhausting the stack.
const parserUIDLMaxDepth = 256

type ParserUIDL struct {
	reporter exc.Reporter
}

func NewParserUIDL(reporter exc.Reporter) *ParserUIDL {
	return &ParserUIDL{reporter: reporter}
}

// Parse consumes the entire token stream of f and returns the document, or
// nil after reporting at least one exception. There is no error recovery:
// the first failure wins and no partial document is ever returned.
func (self *ParserUIDL) Parse(ctx context.Context, f idl.LexerFile) (*idl.Document, error) {
	p, err := self.PrepareParse(ctx, f)
	if err != nil {
		return nil, err
	}
	return p.parseDocument(), nil
}

func (self *ParserUIDL) PrepareParse(ctx context.Context, f idl.LexerFile) (*parserUIDLTokens, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	// newlines are insignificant outside of text literals, so the parser
	// never needs to see them.
	filteredTokens := iter.NewIteratorFilter(ft, idl.Filter[*idl.Token](iter.FilterFunc[*idl.Token](func(ctx context.Context, t *idl.Token) bool {
		return t.Type != idl.TokenTypeNewline
	})))

	tokens := iter.NewLookahead(filteredTokens, 8)

	return &parserUIDLTokens{
		reporter: self.reporter,
		ctx:      ctx,
		tokens:   tokens,
		uri:      f.Path(ctx),
	}, nil
}

type parserUIDLTokens struct {
	reporter exc.Reporter
	ctx      context.Context
	uri      string
	// this is the .Span.End of the last successfully parsed token; we keep track of it
	// so that we can give a meaningful location to "unexpected EOF" errors.
	loc    idl.Location
	tokens idl.Lookahead[*idl.Token]
}

func (p *parserUIDLTokens) report(code string, message string) {
	p.reportAt(p.loc, code, message)
}

func (p *parserUIDLTokens) reportAt(loc idl.Location, code string, message string) {
	_ = p.reporter.Report(exc.New(exc.Location{
		URI:      p.uri,
		Location: loc,
	}, code, message))
}

func (p *parserUIDLTokens) advance() {
	maybeToken := p.tokens.Lookahead(p.ctx, 0)
	if maybeToken.IsPresent() {
		p.loc = *maybeToken.Value().Span.End
	}
	_ = p.tokens.Next(p.ctx)
}

func (p *parserUIDLTokens) peekN(n uint8) *idl.Token {
	maybeToken := p.tokens.Lookahead(p.ctx, n)
	if !maybeToken.IsPresent() {
		return nil
	}
	return maybeToken.Value()
}

func (p *parserUIDLTokens) peek() *idl.Token {
	return p.peekN(0)
}

// reports an error if there is no current token, or the current token isn't of the expected type
// advances on success
func (p *parserUIDLTokens) expectOne(expectedType idl.TokenType) *idl.Token {
	return p.expectOneOf([]idl.TokenType{expectedType})
}

// reports an error if current token isn't one of the given expected types.
// advances on success
func (p *parserUIDLTokens) expectOneOf(expectedTypes []idl.TokenType) *idl.Token {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected EOF (expecting %v)", expectedTypes))
		return nil
	}
	for _, expectedType := range expectedTypes {
		if maybeToken.Type == expectedType {
			p.advance()
			return maybeToken
		}
	}
	p.reportAt(*maybeToken.Span.Start, exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting %v)", maybeToken.Value, expectedTypes))
	return nil
}

// element bodies accumulate a single ordered list of mixed items; the list
// is partitioned into properties and children when the body closes.
type elementItem interface {
	elementItem()
}

type itemProperty struct {
	property idl.Property
}

type itemElement struct {
	element idl.Element
}

func (itemProperty) elementItem() {}
func (itemElement) elementItem()  {}

// Document = Language Element
func (p *parserUIDLTokens) parseDocument() *idl.Document {
	language := p.parseLanguage()
	if language == nil {
		return nil
	}
	root := p.parseElement(0)
	if root == nil {
		return nil
	}
	maybeToken := p.peek()
	if maybeToken != nil {
		p.reportAt(*maybeToken.Span.Start, exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s after the root element", maybeToken.Value))
		return nil
	}
	return &idl.Document{
		URI:      p.uri,
		Language: *language,
		Root:     *root,
	}
}

// Language = at identifier identifier [paren_open text paren_close]
func (p *parserUIDLTokens) parseLanguage() *idl.Language {
	if p.expectOne(idl.TokenTypeAt) == nil {
		return nil
	}
	name := p.expectOne(idl.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	value := p.expectOne(idl.TokenTypeIdentifier)
	if value == nil {
		return nil
	}
	this := idl.Language{
		Name:  name.Value,
		Value: value.Value,
		URL:   optional.None[string](),
	}

	// The URL form has to be committed to before accepting the simple form,
	// so that @language custom("url") isn't read as a simple directive with
	// a dangling parenthesis. Looking one token past the paren is enough: an
	// element body never opens with a text literal.
	maybeToken := p.peek()
	if maybeToken != nil && maybeToken.Type == idl.TokenTypeParenOpen {
		maybeText := p.peekN(1)
		if maybeText != nil && maybeText.Type == idl.TokenTypeText {
			p.advance()
			p.advance()
			if p.expectOne(idl.TokenTypeParenClose) == nil {
				return nil
			}
			this.URL = optional.Some(maybeText.Value)
		}
	}

	return &this
}

// Property = identifier equal Value
func (p *parserUIDLTokens) parseProperty() *idl.Property {
	name := p.expectOne(idl.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeEqual) == nil {
		return nil
	}
	value := p.parseValue()
	if value == nil {
		return nil
	}
	return &idl.Property{
		Name:  name.Value,
		Value: value,
	}
}

// Value = interpolated_text | text | number | percentage | identifier
func (p *parserUIDLTokens) parseValue() idl.Value {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a value)")
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeTextInterpolated:
		p.advance()
		return idl.ValueTextInterpolated{Text: maybeToken.Value}
	case idl.TokenTypeText:
		p.advance()
		return idl.ValueText{Text: maybeToken.Value}
	case idl.TokenTypeNumber, idl.TokenTypePercentage:
		p.advance()
		// the lexer guarantees the token text is a digit run with at most
		// one fractional part, so this conversion can't fail.
		v, err := strconv.ParseFloat(maybeToken.Value, 64)
		if err != nil {
			p.report(exc.CodeInvalidNumber, fmt.Sprintf("invalid number literal %s", maybeToken.Value))
			return nil
		}
		if maybeToken.Type == idl.TokenTypePercentage {
			return idl.ValuePercentage{Value: v}
		}
		return idl.ValueNumber{Value: v}
	case idl.TokenTypeIdentifier:
		p.advance()
		return idl.ValueIdentifier{Name: maybeToken.Value}
	default:
		p.reportAt(*maybeToken.Span.Start, exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting a value)", maybeToken.Value))
		return nil
	}
}

// Element = at identifier identifier delimited_body
// delimited_body = curly_open { Property | Element } curly_close
//                | paren_open { Property | Element } paren_close
func (p *parserUIDLTokens) parseElement(depth int) *idl.Element {
	if depth >= parserUIDLMaxDepth {
		p.report(exc.CodeNestingTooDeep, fmt.Sprintf("element nesting exceeds %d levels", parserUIDLMaxDepth))
		return nil
	}
	if p.expectOne(idl.TokenTypeAt) == nil {
		return nil
	}
	kind := p.expectOne(idl.TokenTypeIdentifier)
	if kind == nil {
		return nil
	}
	name := p.expectOne(idl.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	open := p.expectOneOf([]idl.TokenType{
		idl.TokenTypeCurlyOpen,
		idl.TokenTypeParenOpen,
	})
	if open == nil {
		return nil
	}
	tClose := idl.TokenTypeCurlyClose
	if open.Type == idl.TokenTypeParenOpen {
		tClose = idl.TokenTypeParenClose
	}

	items := []elementItem{}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected EOF (expecting %v to close the element body)", tClose))
			return nil
		}
		if maybeToken.Type == tClose {
			p.advance()
			break
		}
		switch maybeToken.Type {
		case idl.TokenTypeAt:
			maybeElement := p.parseElement(depth + 1)
			if maybeElement == nil {
				return nil
			}
			items = append(items, itemElement{element: *maybeElement})
		case idl.TokenTypeIdentifier:
			maybeProperty := p.parseProperty()
			if maybeProperty == nil {
				return nil
			}
			items = append(items, itemProperty{property: *maybeProperty})
		default:
			// a mismatched closing delimiter lands here as well.
			p.reportAt(*maybeToken.Span.Start, exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting a property, a nested element, or %v)", maybeToken.Value, tClose))
			return nil
		}
	}

	this := idl.Element{
		Kind: kind.Value,
		Name: name.Value,
	}
	for _, item := range items {
		switch it := item.(type) {
		case itemProperty:
			this.Properties = append(this.Properties, it.property)
		case itemElement:
			this.Children = append(this.Children, it.element)
		}
	}
	return &this
}
