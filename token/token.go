// Package token defines the lexical token set and source-position type
// shared by the lexer, parser, and resolver.
package token

import (
	"fmt"
	"math"
)

// SourcePosition locates a single point in a named source buffer.
// Lines and columns are 1-based. NoPos marks a synthesized position that
// does not correspond to any byte the tokenizer read.
type SourcePosition struct {
	SourceName string
	Line       uint32
	Column     uint32
}

// NoPos is the sentinel SourcePosition for synthesized nodes (e.g. the
// implicit zero-initializer the resolver inserts for an uninitialized
// variable declaration).
var NoPos = SourcePosition{Line: math.MaxUint32, Column: math.MaxUint32}

// IsNoPos reports whether p is the NoPos sentinel.
func (p SourcePosition) IsNoPos() bool {
	return p.Line == math.MaxUint32 && p.Column == math.MaxUint32
}

func (p SourcePosition) String() string {
	if p.IsNoPos() {
		return "(???)"
	}
	return fmt.Sprintf("(ln %d, col %d)", p.Line, p.Column)
}

// Type classifies a Token.
type Type int

const (
	EOF Type = iota
	ERROR
	NEWLINE

	IDENTIFIER
	UNDERSCORE

	INT_CONSTANT
	FLOAT_CONSTANT

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	COMMA
	COLON
	COLON_EQUALS
	ARROW
	LEFT_PAREN
	RIGHT_PAREN

	VOID_TYPE
	INT_TYPE
	FLOAT_TYPE
	VAR
	EXTERN
	RETURN
)

var typeNames = map[Type]string{
	EOF:            "EOF",
	ERROR:          "ERROR",
	NEWLINE:        "NEWLINE",
	IDENTIFIER:     "IDENTIFIER",
	UNDERSCORE:     "UNDERSCORE",
	INT_CONSTANT:   "INT_CONSTANT",
	FLOAT_CONSTANT: "FLOAT_CONSTANT",
	PLUS:           "PLUS",
	MINUS:          "MINUS",
	STAR:           "STAR",
	SLASH:          "SLASH",
	PERCENT:        "PERCENT",
	COMMA:          "COMMA",
	COLON:          "COLON",
	COLON_EQUALS:   "COLON_EQUALS",
	ARROW:          "ARROW",
	LEFT_PAREN:     "LEFT_PAREN",
	RIGHT_PAREN:    "RIGHT_PAREN",
	VOID_TYPE:      "Void",
	INT_TYPE:       "Int",
	FLOAT_TYPE:     "Float",
	VAR:            "var",
	EXTERN:         "extern",
	RETURN:         "return",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Keywords maps the fixed keyword table to their token types, matched by
// exact equality against an identifier-shaped run of bytes. "_" is its own
// entry rather than a generic identifier.
var Keywords = map[string]Type{
	"Void":   VOID_TYPE,
	"Int":    INT_TYPE,
	"Float":  FLOAT_TYPE,
	"var":    VAR,
	"extern": EXTERN,
	"return": RETURN,
	"_":      UNDERSCORE,
}

// Token is one lexical unit: a type, the source text it was matched from,
// and the position of its first byte. ERROR tokens carry their diagnostic
// in Text.
type Token struct {
	Type     Type
	Text     string
	Position SourcePosition
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s %q %s}", t.Type, t.Text, t.Position)
}
