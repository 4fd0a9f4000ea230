package expr

import (
	"errors"
	"fmt"
)

// Grammar, lowest precedence first:
//
//	or      := and ("||" and)*
//	and     := unary ("&&" unary)*
//	unary   := "!" unary | primary
//	primary := "(" or ")" | ident [("==" | "!=") literal | "in" "(" literal ("," literal)* ")"]
type parser struct {
	tokens []token
	pos    int
	deps   []string
	seen   map[string]struct{}
}

func parse(tokens []token) (node, []string, error) {
	p := &parser{tokens: tokens, seen: make(map[string]struct{})}
	root, err := p.parseOr()
	if err != nil {
		return nil, nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, nil, fmt.Errorf("visibility/expr: unexpected token %q", p.tokens[p.pos].raw)
	}
	return root, p.deps, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(tokenOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(tokenAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.match(tokenNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.match(tokenLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := p.consume(tokenIdentifier)
	if !ok {
		if p.pos >= len(p.tokens) {
			return nil, errors.New("visibility/expr: empty expression")
		}
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", p.tokens[p.pos].raw)
	}
	p.track(ident.raw)

	switch {
	case p.match(tokenEq):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return compareNode{identifier: ident.raw, negate: false, literal: lit}, nil
	case p.match(tokenNeq):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return compareNode{identifier: ident.raw, negate: true, literal: lit}, nil
	case p.match(tokenIn):
		return p.parseIn(ident.raw)
	}
	return truthyNode{identifier: ident.raw}, nil
}

func (p *parser) parseIn(identifier string) (node, error) {
	if !p.match(tokenLParen) {
		return nil, errors.New("visibility/expr: 'in' expects a parenthesised list")
	}
	var set []literal
	for {
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		set = append(set, lit)
		if p.match(tokenComma) {
			continue
		}
		if p.match(tokenRParen) {
			break
		}
		return nil, errors.New("visibility/expr: missing closing ')' in list")
	}
	return inNode{identifier: identifier, set: set}, nil
}

func (p *parser) track(identifier string) {
	if _, ok := p.seen[identifier]; ok {
		return
	}
	p.seen[identifier] = struct{}{}
	p.deps = append(p.deps, identifier)
}

func (p *parser) match(kind tokenKind) bool {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *parser) consume(kind tokenKind) (token, bool) {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != kind {
		return token{}, false
	}
	out := p.tokens[p.pos]
	p.pos++
	return out, true
}

func (p *parser) literal() (literal, error) {
	if p.pos >= len(p.tokens) {
		return literal{}, errors.New("visibility/expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case tokenString:
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		return literal{kind: litNumber, raw: tok.raw}, nil
	case tokenBool:
		return literal{kind: litBool, raw: tok.raw}, nil
	case tokenNull:
		return literal{kind: litNull, raw: "null"}, nil
	case tokenIdentifier:
		// bare words compare as strings: tourType == International
		return literal{kind: litString, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.raw)
	}
}
