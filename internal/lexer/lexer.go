// Package lexer turns Rasp source text into a token.Token tree. The
// scanner is a recursive descent over raw bytes: comments and
// whitespace are trivia, parenthesized lists nest, string literals
// decode their escapes in place, and every other run of characters is
// classified as a keyword, number, declaration, or identifier.
package lexer

import (
	"strconv"
	"strings"

	"github.com/rasp-lang/rasp/internal/escape"
	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/source"
	"github.com/rasp-lang/rasp/internal/token"
)

var keywords = map[string]bool{
	"if": true, "else": true, "var": true, "set": true, "inc": true,
	"nil": true, "type": true, "true": true, "false": true,
	"defun": true, "while": true,
}

// Lexer scans one source unit into a token tree.
type Lexer struct {
	file  string
	input string
	pos   int // byte offset of the current character
	line  int
}

// New constructs a Lexer over input, labelling every produced
// Location with file.
func New(file, input string) *Lexer {
	return &Lexer{file: file, input: input, pos: 0, line: 1}
}

// Lex scans the entire input and returns the root list token
// containing every top-level form, or the first LexError encountered.
func Lex(file, input string) (token.Token, error) {
	return New(file, input).Lex()
}

func (l *Lexer) Lex() (token.Token, error) {
	root := token.List(l.loc())
	for !l.atEnd() {
		if err := l.skipTrivia(); err != nil {
			return token.Token{}, err
		}
		if l.atEnd() {
			break
		}
		child, err := l.next()
		if err != nil {
			return token.Token{}, err
		}
		root.AddChild(child)
	}
	return root, nil
}

func (l *Lexer) loc() source.Location {
	return source.At(l.file, l.line)
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) current() byte {
	return l.input[l.pos]
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos+1 >= len(l.input) {
		return 0, false
	}
	return l.input[l.pos+1], true
}

func (l *Lexer) advance() byte {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

func (l *Lexer) consumeWhitespace() {
	for !l.atEnd() && isSpace(l.current()) {
		l.advance()
	}
}

// consumeComment swallows a `//...` or `/* ... */` run starting at the
// current position. It is a no-op if the current character is not the
// start of a comment.
func (l *Lexer) consumeComment() error {
	if l.atEnd() || l.current() != '/' {
		return nil
	}
	next, ok := l.peek()
	if !ok {
		// A trailing '/' with nothing after it is the identifier '/',
		// not an error; let literal() scan it.
		return nil
	}
	switch next {
	case '/':
		for !l.atEnd() && l.current() != '\n' {
			l.advance()
		}
		return nil
	case '*':
		startLoc := l.loc()
		l.advance() // consume '/'
		l.advance() // consume '*'
		for {
			if l.atEnd() {
				return rasperrors.NewLexError(startLoc, "Cannot find end of block comment")
			}
			if l.current() == '*' {
				l.advance()
				if !l.atEnd() && l.current() == '/' {
					l.advance()
					return nil
				}
				continue
			}
			l.advance()
		}
	default:
		return nil
	}
}

// skipTrivia repeatedly consumes whitespace and comments, so runs like
// "/* */ /* */ ..." are swallowed in one call.
func (l *Lexer) skipTrivia() error {
	for {
		before := l.pos
		l.consumeWhitespace()
		if err := l.consumeComment(); err != nil {
			return err
		}
		if l.pos == before {
			return nil
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	if err := l.skipTrivia(); err != nil {
		return token.Token{}, err
	}
	if l.atEnd() {
		return token.Token{}, rasperrors.NewLexError(l.loc(), "Unexpected end of input")
	}

	c := l.current()
	switch {
	case c == ')':
		return token.Token{}, rasperrors.NewLexError(l.loc(), "Stray ) in program")
	case c == '(':
		l.advance()
		return l.list()
	case c == '"':
		l.advance()
		return l.stringLiteral()
	default:
		return l.literal()
	}
}

func (l *Lexer) list() (token.Token, error) {
	loc := l.loc()
	result := token.List(loc)
	depth := 1
	for {
		if err := l.skipTrivia(); err != nil {
			return token.Token{}, err
		}
		if l.atEnd() {
			return token.Token{}, rasperrors.NewLexError(loc, "Unterminated list")
		}
		if l.current() == ')' {
			depth--
			l.advance()
			if depth == 0 {
				return result, nil
			}
			continue
		}
		child, err := l.next()
		if err != nil {
			return token.Token{}, err
		}
		result.AddChild(child)
	}
}

func (l *Lexer) stringLiteral() (token.Token, error) {
	loc := l.loc()
	var text strings.Builder
	for !l.atEnd() {
		c := l.advance()
		switch c {
		case '"':
			return token.String(loc, text.String()), nil
		case '\\':
			if l.atEnd() {
				return token.Token{}, rasperrors.NewLexError(l.loc(), "String literal never closed")
			}
			esc := l.advance()
			if !escape.NeedsEscaping(esc) {
				return token.Token{}, rasperrors.NewLexError(loc,
					"Invalid escape sequence '\\"+string(esc)+"' found in string literal")
			}
			text.WriteByte(escape.Unescape(esc))
		default:
			text.WriteByte(c)
		}
	}
	return token.Token{}, rasperrors.NewLexError(loc, "String literal never closed")
}

// literal scans a run of non-whitespace, non-paren characters and
// classifies it as keyword, number, declaration, or identifier.
func (l *Lexer) literal() (token.Token, error) {
	loc := l.loc()
	start := l.pos
	for !l.atEnd() && !isSpace(l.current()) && l.current() != '(' && l.current() != ')' {
		l.advance()
	}
	text := l.input[start:l.pos]
	if text == "" {
		return token.Token{}, rasperrors.NewLexError(loc, "Unexpected character")
	}

	if keywords[text] {
		return token.Keyword(loc, text), nil
	}
	if n, ok := parseSignedInt(text); ok {
		return token.Number(loc, strconv.FormatInt(n, 10)), nil
	}
	if idx := strings.IndexByte(text, ':'); idx >= 0 && !strings.ContainsRune(text[:idx], '.') {
		name, typeName := text[:idx], text[idx+1:]
		if !ident.IsValid(name) || !ident.IsValid(typeName) {
			return token.Token{}, rasperrors.NewLexError(loc, "Malformed declaration '"+text+"'")
		}
		return token.Declaration(loc, token.Identifier(loc, name), token.Identifier(loc, typeName)), nil
	}
	if strings.ContainsRune(text, '.') {
		parts := strings.Split(text, ".")
		for _, p := range parts {
			if !ident.IsValid(p) {
				return token.Token{}, rasperrors.NewLexError(loc, "Malformed identifier '"+text+"'")
			}
		}
		id := token.Identifier(loc, parts[0])
		for _, p := range parts[1:] {
			id.Children = append(id.Children, token.Identifier(loc, p))
		}
		return id, nil
	}
	// Anything else is an identifier token; whether the name is actually
	// a legal identifier is the compiler's check, not the lexer's.
	return token.Identifier(loc, text), nil
}

func parseSignedInt(text string) (int64, bool) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
