package parse

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	line int
}

const punctChars = "{}[]()*;,:"

// lex splits header source into tokens. Comments and preprocessor lines are
// discarded; everything the parser sees is a declaration token.
func lex(src string) ([]token, error) {
	var toks []token

	line := 1
	i := 0

	for i < len(src) {
		c := src[i]

		switch {
		case c == '\n':
			line++
			i++

		case c == ' ' || c == '\t' || c == '\r':
			i++

		case c == '#':
			// Preprocessor directive: skip to end of line.
			for i < len(src) && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("line %d: unterminated block comment", line)
			}

			line += strings.Count(src[i:i+2+end+2], "\n")
			i += 2 + end + 2

		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}

			toks = append(toks, token{kind: tokIdent, text: src[start:i], line: line})

		case c >= '0' && c <= '9':
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}

			toks = append(toks, token{kind: tokNumber, text: src[start:i], line: line})

		case strings.IndexByte(punctChars, c) >= 0:
			toks = append(toks, token{kind: tokPunct, text: string(c), line: line})
			i++

		default:
			return nil, fmt.Errorf("line %d: unexpected character %q", line, c)
		}
	}

	toks = append(toks, token{kind: tokEOF, line: line})

	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
