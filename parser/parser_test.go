package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumenscript/ast"
	"lumenscript/lexer"
)

func parse(t *testing.T, source string) (*ast.StatementBlock, *Parser) {
	t.Helper()
	p := New(lexer.New("<test>", source))
	block := p.Parse()
	return block, p
}

func TestParsePrecedenceClimbing(t *testing.T) {
	block, p := parse(t, "return 1 + 2 * 3")
	require.False(t, p.HasErrors(), p.ErrorMessage())
	require.Len(t, block.Statements, 1)

	ret := block.Statements[0].(*ast.Return)
	add := ret.Value.(*ast.BinaryOp)
	assert.Equal(t, ast.BinAdd, add.Op)

	_, ok := add.Left.(*ast.Constant)
	require.True(t, ok)

	mul := add.Right.(*ast.BinaryOp)
	assert.Equal(t, ast.BinMultiply, mul.Op)
}

func TestParseUnaryBeforeBinary(t *testing.T) {
	block, p := parse(t, "return -3 + 4")
	require.False(t, p.HasErrors(), p.ErrorMessage())

	ret := block.Statements[0].(*ast.Return)
	add := ret.Value.(*ast.BinaryOp)
	assert.Equal(t, ast.BinAdd, add.Op)

	neg, ok := add.Left.(*ast.UnaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.UnaryMinus, neg.Op)
}

func TestParseGroupingIgnoresNewlinesInside(t *testing.T) {
	block, p := parse(t, "return (1 +\n2)")
	require.False(t, p.HasErrors(), p.ErrorMessage())
	ret := block.Statements[0].(*ast.Return)
	_, ok := ret.Value.(*ast.BinaryOp)
	assert.True(t, ok)
}

func TestParseGroupingIgnoresNewlineImmediatelyAfterOpenParen(t *testing.T) {
	block, p := parse(t, "return (\n1 + 2)")
	require.False(t, p.HasErrors(), p.ErrorMessage())
	ret := block.Statements[0].(*ast.Return)
	_, ok := ret.Value.(*ast.BinaryOp)
	assert.True(t, ok)
}

func TestParseVariableDeclarationRequiresTypeOrInitializer(t *testing.T) {
	_, p := parse(t, "var x")
	assert.True(t, p.HasErrors())
	assert.Contains(t, p.ErrorMessage(), "Expected a ':'")
}

func TestParseVariableDeclarationWithTypeAndInitializer(t *testing.T) {
	block, p := parse(t, "var x: Int := 1")
	require.False(t, p.HasErrors(), p.ErrorMessage())
	decl := block.Statements[0].(*ast.VariableDeclaration)
	assert.Equal(t, "x", decl.Name)
	require.NotNil(t, decl.StorageType)
	assert.Equal(t, ast.Int, decl.StorageType.Type)
	require.NotNil(t, decl.Initializer)
}

func TestParseMultipleStatementsRequireNewlines(t *testing.T) {
	_, p := parse(t, "var x := 1 var y := 2")
	assert.True(t, p.HasErrors())
	assert.Contains(t, p.ErrorMessage(), "Expected a newline.")
}

func TestParseUnmatchedParenthesis(t *testing.T) {
	_, p := parse(t, "return (1 + 2")
	assert.True(t, p.HasErrors())
	assert.Contains(t, p.ErrorMessage(), "Expected a ')'")
}

func TestParseBareReturn(t *testing.T) {
	block, p := parse(t, "return")
	require.False(t, p.HasErrors(), p.ErrorMessage())
	ret := block.Statements[0].(*ast.Return)
	assert.Nil(t, ret.Value)
}
