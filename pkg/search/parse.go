package search

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenWord
	tokenString
	tokenOp
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		case c == '"' || c == '\'':
			end, err := quoteEnd(input, i)
			if err != nil {
				return nil, err
			}
			text := input[i:end]
			if c == '"' {
				unquoted, err := strconv.Unquote(text)
				if err != nil {
					return nil, &PredicateError{Reason: fmt.Sprintf("bad string at %d: %v", i, err)}
				}
				text = unquoted
			} else {
				text = text[1 : len(text)-1]
			}
			tokens = append(tokens, token{kind: tokenString, text: text, pos: i})
			i = end
		case strings.ContainsRune("=!<>~", rune(c)):
			j := i + 1
			if j < len(input) && input[j] == '=' && c != '~' {
				j++
			}
			text := input[i:j]
			if text == "!" {
				return nil, &PredicateError{Reason: fmt.Sprintf("unexpected '!' at %d", i)}
			}
			tokens = append(tokens, token{kind: tokenOp, text: text, pos: i})
			i = j
		case isWordByte(c):
			end, err := wordEnd(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenWord, text: input[i:end], pos: i})
			i = end
		default:
			return nil, &PredicateError{Reason: fmt.Sprintf("unexpected %q at %d", c, i)}
		}
	}
	return append(tokens, token{kind: tokenEOF, pos: len(input)}), nil
}

func isWordByte(c byte) bool {
	return c >= 0x80 || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || strings.IndexByte("_.-+:/*@#$%&", c) >= 0
}

func quoteEnd(input string, start int) (int, error) {
	q := input[start]
	for i := start + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			if q == '"' {
				i++
			}
		case q:
			return i + 1, nil
		}
	}
	return 0, &PredicateError{Reason: fmt.Sprintf("unterminated string at %d", start)}
}

// wordEnd scans a bare word. A bracketed attribute key directly after the
// word is part of it, so attribute["a b"] stays a single token.
func wordEnd(input string, start int) (int, error) {
	i := start
	for i < len(input) && isWordByte(input[i]) {
		i++
	}
	if i < len(input) && input[i] == '[' {
		j := i + 1
		for j < len(input) && input[j] != ']' {
			if input[j] == '"' || input[j] == '\'' {
				end, err := quoteEnd(input, j)
				if err != nil {
					return 0, err
				}
				j = end
				continue
			}
			j++
		}
		if j >= len(input) {
			return 0, &PredicateError{Reason: fmt.Sprintf("unterminated '[' at %d", i)}
		}
		i = j + 1
	}
	return i, nil
}

type parser struct {
	tokens []token
	pos    int
}

// Parse compiles a textual query such as
//
//	name == "checkout" and (attribute[http.status_code] >= 500 or status == error)
//
// into a Predicate. An empty query matches every span.
func Parse(query string) (Predicate, error) {
	tokens, err := lex(query)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokenEOF {
		return All(), nil
	}
	pred, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokenEOF {
		return nil, &PredicateError{Reason: fmt.Sprintf("unexpected %q at %d", t.text, t.pos)}
	}
	return pred, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	if t.kind == tokenWord && strings.EqualFold(t.text, word) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expr() (Predicate, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	children := []Predicate{first}
	for p.keyword("or") {
		next, err := p.term()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return Or(children...), nil
}

func (p *parser) term() (Predicate, error) {
	first, err := p.factor()
	if err != nil {
		return nil, err
	}
	children := []Predicate{first}
	for p.keyword("and") {
		next, err := p.factor()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return And(children...), nil
}

func (p *parser) factor() (Predicate, error) {
	if p.keyword("not") {
		child, err := p.factor()
		if err != nil {
			return nil, err
		}
		return Not(child), nil
	}
	t := p.next()
	switch t.kind {
	case tokenLParen:
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, &PredicateError{Reason: fmt.Sprintf("expected ')' at %d", closing.pos)}
		}
		return inner, nil
	case tokenWord:
		return p.comparison(t)
	case tokenEOF:
		return nil, &PredicateError{Reason: "unexpected end of query"}
	}
	return nil, &PredicateError{Reason: fmt.Sprintf("unexpected %q at %d", t.text, t.pos)}
}

func (p *parser) comparison(fieldTok token) (Predicate, error) {
	field, err := ParseField(fieldTok.text)
	if err != nil {
		return nil, err
	}
	opTok := p.next()
	if opTok.kind != tokenOp && opTok.kind != tokenWord {
		return nil, &PredicateError{Field: fieldTok.text, Reason: fmt.Sprintf("expected an operator at %d", opTok.pos)}
	}
	op, err := ParseOp(opTok.text)
	if err != nil {
		return nil, &PredicateError{Field: fieldTok.text, Reason: err.Error()}
	}
	if op == OpExists {
		return NewLeaf(fieldTok.text, op, model.AttributeValue{})
	}
	litTok := p.next()
	var lit model.AttributeValue
	switch litTok.kind {
	case tokenString:
		lit = model.StringValue(litTok.text)
	case tokenWord:
		if field.isAttribute() {
			lit = InferLiteral(litTok.text)
		} else {
			lit = model.StringValue(litTok.text)
		}
	default:
		return nil, &PredicateError{Field: fieldTok.text, Reason: fmt.Sprintf("expected a value at %d", litTok.pos)}
	}
	return NewLeaf(fieldTok.text, op, lit)
}

// InferLiteral types a bare word compared against an attribute: booleans,
// then integers, then floats, otherwise a string.
func InferLiteral(word string) model.AttributeValue {
	if word == "" {
		return model.StringValue(word)
	}
	switch strings.ToLower(word) {
	case "true":
		return model.BoolValue(true)
	case "false":
		return model.BoolValue(false)
	}
	if !strings.ContainsRune("0123456789+-.", rune(word[0])) {
		return model.StringValue(word)
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return model.IntValue(i)
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return model.DoubleValue(f)
	}
	return model.StringValue(word)
}
