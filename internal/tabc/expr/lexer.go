package expr

import (
	"strconv"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdentifier
	tokenNumber
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPercent
	tokenComma
	tokenLParen
	tokenRParen
)

type token struct {
	typ     tokenType
	literal string
	pos     int
}

var punctuation = map[byte]tokenType{
	'+': tokenPlus,
	'-': tokenMinus,
	'*': tokenStar,
	'/': tokenSlash,
	'%': tokenPercent,
	',': tokenComma,
	'(': tokenLParen,
	')': tokenRParen,
}

func lex(input string) ([]token, error) {
	tokens := make([]token, 0, len(input)/2)
	pos := 0

	for pos < len(input) {
		r := rune(input[pos])
		if unicode.IsSpace(r) {
			pos++
			continue
		}

		if isIdentifierStart(r) {
			start := pos
			pos++
			for pos < len(input) && isIdentifierPart(rune(input[pos])) {
				pos++
			}
			tokens = append(tokens, token{typ: tokenIdentifier, literal: input[start:pos], pos: start})
			continue
		}

		if isNumberStart(input, pos) {
			numberToken, nextPos, err := lexNumber(input, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, numberToken)
			pos = nextPos
			continue
		}

		typ, ok := punctuation[input[pos]]
		if !ok {
			return nil, expressionError("unexpected character %q at position %d", input[pos], pos)
		}
		tokens = append(tokens, token{typ: typ, literal: input[pos : pos+1], pos: pos})
		pos++
	}

	tokens = append(tokens, token{typ: tokenEOF, pos: len(input)})
	return tokens, nil
}

func isIdentifierStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || (r >= '0' && r <= '9')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumberStart(input string, pos int) bool {
	if isDigit(input[pos]) {
		return true
	}
	return input[pos] == '.' && pos+1 < len(input) && isDigit(input[pos+1])
}

func lexNumber(input string, start int) (token, int, error) {
	pos := start
	for pos < len(input) && isDigit(input[pos]) {
		pos++
	}

	if pos < len(input) && input[pos] == '.' {
		pos++
		for pos < len(input) && isDigit(input[pos]) {
			pos++
		}
	}

	if pos < len(input) && (input[pos] == 'e' || input[pos] == 'E') {
		pos++
		if pos < len(input) && (input[pos] == '+' || input[pos] == '-') {
			pos++
		}
		expStart := pos
		for pos < len(input) && isDigit(input[pos]) {
			pos++
		}
		if pos == expStart {
			return token{}, 0, expressionError("invalid exponent at position %d", start)
		}
	}

	if pos < len(input) && isIdentifierStart(rune(input[pos])) {
		return token{}, 0, expressionError("invalid number suffix at position %d", pos)
	}

	literal := input[start:pos]
	if _, err := strconv.ParseFloat(literal, 64); err != nil {
		return token{}, 0, expressionError("invalid number %q at position %d", literal, start)
	}

	return token{typ: tokenNumber, literal: literal, pos: start}, pos, nil
}
