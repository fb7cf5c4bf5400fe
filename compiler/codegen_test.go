package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumenscript/lexer"
	"lumenscript/parser"
	"lumenscript/resolver"
)

func compileSource(t *testing.T, source string) *Bytecode {
	t.Helper()
	p := parser.New(lexer.New("<test>", source))
	tree := p.Parse()
	require.False(t, p.HasErrors(), p.ErrorMessage())

	r := resolver.New()
	resolved := r.Resolve(tree)
	require.False(t, r.HasErrors(), r.ErrorMessage())

	bc, err := Generate(resolved)
	require.NoError(t, err)
	return bc
}

func opcodes(bc *Bytecode) []Opcode {
	out := make([]Opcode, len(bc.Code))
	for i, instr := range bc.Code {
		out[i] = instr.Opcode()
	}
	return out
}

func TestGenerateUnaryThenBinary(t *testing.T) {
	bc := compileSource(t, "return -3 + 4")
	got := opcodes(bc)
	want := []Opcode{RESERVE, LOAD_CONSTANT, NEGATION_INT, LOAD_CONSTANT, ADD_INT, RETURN_VALUE}
	assert.Equal(t, want, got)
}

func TestGenerateDeduplicatesConstants(t *testing.T) {
	bc := compileSource(t, "return 1 + 1")
	assert.Len(t, bc.Constants, 1)
	assert.Equal(t, uint64(1), bc.Constants[0].AsInt())
}

func TestGenerateEmitsReserveForDeclaredVariables(t *testing.T) {
	bc := compileSource(t, "var x := 1\nvar y := 2\nreturn x + y")
	require.NotEmpty(t, bc.Code)
	assert.Equal(t, RESERVE, bc.Code[0].Opcode())
	assert.Equal(t, uint32(2), bc.Code[0].OpLong())
}

func TestGenerateAppendsTrailingReturnWhenSourceHasNone(t *testing.T) {
	bc := compileSource(t, "var x := 1")
	got := opcodes(bc)
	require.NotEmpty(t, got)
	assert.Equal(t, RETURN, got[len(got)-1])
}

func TestGenerateAppendsTrailingReturnForEmptySource(t *testing.T) {
	bc := compileSource(t, "")
	got := opcodes(bc)
	require.NotEmpty(t, got)
	assert.Equal(t, RETURN, got[len(got)-1])
}

func TestGenerateDoesNotDoubleUpTrailingReturn(t *testing.T) {
	bc := compileSource(t, "return 1")
	got := opcodes(bc)
	want := []Opcode{RESERVE, LOAD_CONSTANT, RETURN_VALUE}
	assert.Equal(t, want, got)
}

func TestGenerateNumericConversionEmitsIntToFloat(t *testing.T) {
	bc := compileSource(t, "return 1 + 2.0")
	got := opcodes(bc)
	assert.Contains(t, got, INT_TO_FLOAT)
	assert.Contains(t, got, ADD_FLOAT)
}

func TestLineAtUsesLargestOffsetAtOrBeforeIP(t *testing.T) {
	bc := &Bytecode{
		LineInfo: []LineInfo{{Offset: 0, Line: 1}, {Offset: 3, Line: 2}},
	}
	assert.Equal(t, uint16(1), bc.LineAt(0))
	assert.Equal(t, uint16(1), bc.LineAt(2))
	assert.Equal(t, uint16(2), bc.LineAt(3))
	assert.Equal(t, uint16(2), bc.LineAt(10))
}
