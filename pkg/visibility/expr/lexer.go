package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenIn
	tokenComma
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

type lexer struct {
	input  string
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	lx := &lexer{input: input}
	for lx.pos < len(lx.input) {
		if err := lx.step(); err != nil {
			return nil, err
		}
	}
	return lx.tokens, nil
}

func (lx *lexer) peek(offset int) byte {
	if lx.pos+offset >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos+offset]
}

func (lx *lexer) emit(kind tokenKind, raw string, width int) {
	lx.tokens = append(lx.tokens, token{kind: kind, raw: raw})
	lx.pos += width
}

func (lx *lexer) step() error {
	ch := lx.peek(0)
	switch {
	case isSpace(ch):
		lx.pos++
		return nil
	case ch == '(':
		lx.emit(tokenLParen, "(", 1)
	case ch == ')':
		lx.emit(tokenRParen, ")", 1)
	case ch == ',':
		lx.emit(tokenComma, ",", 1)
	case ch == '!' && lx.peek(1) == '=':
		lx.emit(tokenNeq, "!=", 2)
	case ch == '!':
		lx.emit(tokenNot, "!", 1)
	case ch == '=':
		if lx.peek(1) != '=' {
			return errors.New("visibility/expr: unexpected '='; use '=='")
		}
		lx.emit(tokenEq, "==", 2)
	case ch == '&':
		if lx.peek(1) != '&' {
			return errors.New("visibility/expr: unexpected '&'; use '&&'")
		}
		lx.emit(tokenAnd, "&&", 2)
	case ch == '|':
		if lx.peek(1) != '|' {
			return errors.New("visibility/expr: unexpected '|'; use '||'")
		}
		lx.emit(tokenOr, "||", 2)
	case ch == '"' || ch == '\'':
		return lx.quoted(ch)
	default:
		lx.word()
	}
	return nil
}

func (lx *lexer) quoted(quote byte) error {
	start := lx.pos
	i := lx.pos + 1
	for i < len(lx.input) {
		c := lx.input[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == quote {
			body := lx.input[start+1 : i]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			lx.tokens = append(lx.tokens, token{kind: tokenString, raw: value})
			lx.pos = i + 1
			return nil
		}
		i++
	}
	return errors.New("visibility/expr: unterminated string literal")
}

func (lx *lexer) word() {
	start := lx.pos
	for lx.pos < len(lx.input) && !isDelimiter(lx.input[lx.pos]) {
		lx.pos++
	}
	raw := lx.input[start:lx.pos]

	switch strings.ToLower(raw) {
	case "true", "false":
		lx.tokens = append(lx.tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
	case "null", "nil":
		lx.tokens = append(lx.tokens, token{kind: tokenNull, raw: "null"})
	case "in":
		lx.tokens = append(lx.tokens, token{kind: tokenIn, raw: "in"})
	default:
		if looksLikeNumber(raw) {
			lx.tokens = append(lx.tokens, token{kind: tokenNumber, raw: raw})
			return
		}
		lx.tokens = append(lx.tokens, token{kind: tokenIdentifier, raw: raw})
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	if isSpace(ch) {
		return true
	}
	switch ch {
	case '(', ')', '!', '=', '&', '|', ',', '"', '\'':
		return true
	}
	return false
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}
