package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumenscript/ast"
	"lumenscript/vm"
)

func TestCompileAndRunArithmeticPrecedence(t *testing.T) {
	eng := New(2)
	require.NoError(t, eng.Compile(0, "<test>", "return 1 + 2 * 3"))
	require.NoError(t, eng.Call(0, 1))
	typ, ok := eng.ResultType(0)
	require.True(t, ok)
	assert.Equal(t, ast.Int, typ)
	assert.Equal(t, int64(7), eng.GetInt(1))
}

func TestIntDivisionTruncatesVsFloatDivisionIsExact(t *testing.T) {
	eng := New(2)

	require.NoError(t, eng.Compile(0, "<test>", "return 5 / 2"))
	require.NoError(t, eng.Call(0, 1))
	assert.Equal(t, int64(2), eng.GetInt(1))

	require.NoError(t, eng.Compile(0, "<test>", "return 5.0 / 2"))
	require.NoError(t, eng.Call(0, 1))
	assert.Equal(t, 2.5, eng.GetFloat(1))
}

func TestIntModuloByZeroIsARuntimeError(t *testing.T) {
	eng := New(2)
	require.NoError(t, eng.Compile(0, "<test>", "return 7 % 0"))
	err := eng.Call(0, 1)
	require.Error(t, err)
	rErr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "Cannot divide an integer by 0.", rErr.Message)
}

func TestRedeclarationIsACompileError(t *testing.T) {
	eng := New(2)
	err := eng.Compile(0, "<test>", "var x := 1\nvar x := 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'x' was already defined")
}

func TestModuloRequiresIntOperandsIsACompileError(t *testing.T) {
	eng := New(2)
	err := eng.Compile(0, "<test>", "return 1.0 % 2.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot perform '%' with operands of type 'Float' and 'Float'")
}

func TestUnaryMinusThenAdd(t *testing.T) {
	eng := New(2)
	require.NoError(t, eng.Compile(0, "<test>", "return -3 + 4"))
	require.NoError(t, eng.Call(0, 1))
	assert.Equal(t, int64(1), eng.GetInt(1))

	text, err := eng.Disassemble(0)
	require.NoError(t, err)
	assert.Contains(t, text, "unmi")
	assert.Contains(t, text, "addi")
}

func TestHostStoreAndGetRoundTrip(t *testing.T) {
	eng := New(4)
	eng.StoreInt(2, -42)
	assert.Equal(t, int64(-42), eng.GetInt(2))

	eng.StoreFloat(2, 3.25)
	assert.Equal(t, 3.25, eng.GetFloat(2))

	eng.StoreBool(2, true)
	assert.True(t, eng.GetBool(2))

	eng.StoreString(2, "hi")
	assert.Equal(t, "hi", eng.GetString(2))
}

func TestVariableDeclarationAndAccessAcrossStatements(t *testing.T) {
	eng := New(2)
	require.NoError(t, eng.Compile(0, "<test>", "var x := 10\nvar y := 20\nreturn x + y"))
	require.NoError(t, eng.Call(0, 1))
	assert.Equal(t, int64(30), eng.GetInt(1))
}

func TestCompileAndRunProgramWithNoExplicitReturn(t *testing.T) {
	eng := New(2)
	require.NoError(t, eng.Compile(0, "<test>", "var x := 1"))
	require.NoError(t, eng.Call(0, 1))
	_, ok := eng.ResultType(0)
	assert.False(t, ok)
}

func TestCompileAndRunEmptySource(t *testing.T) {
	eng := New(2)
	require.NoError(t, eng.Compile(0, "<test>", ""))
	require.NoError(t, eng.Call(0, 1))
}

func TestGroupingAcrossLeadingNewline(t *testing.T) {
	eng := New(2)
	require.NoError(t, eng.Compile(0, "<test>", "return (\n1 + 2)"))
	require.NoError(t, eng.Call(0, 1))
	assert.Equal(t, int64(3), eng.GetInt(1))
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantInt     *int64
		wantFloat   *float64
		wantErrLike string
	}{
		{name: "precedence", source: "return 1 + 2 * 3", wantInt: intPtr(7)},
		{name: "grouping overrides precedence", source: "return (1 + 2) * 3", wantInt: intPtr(9)},
		{name: "int division truncates", source: "return 5 / 2", wantInt: intPtr(2)},
		{name: "float division is exact", source: "return 5.0 / 2", wantFloat: floatPtr(2.5)},
		{name: "variable declarations chain", source: "var x: Int := 10\nvar y := x + 5\nreturn y", wantInt: intPtr(15)},
		{name: "modulo of two ints", source: "return 7 % 3", wantInt: intPtr(1)},
		{name: "modulo by zero is a runtime error", source: "return 7 % 0", wantErrLike: "Cannot divide an integer by 0."},
		{name: "redeclaration is a compile error", source: "var x := 1\nvar x := 2", wantErrLike: "'x' was already defined"},
		{name: "modulo requires int operands", source: "return 1.0 % 2.0", wantErrLike: "Cannot perform '%' with operands of type 'Float' and 'Float'"},
		{name: "unary then binary", source: "return -3 + 4", wantInt: intPtr(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := New(2)
			compileErr := eng.Compile(0, "<test>", tt.source)

			if tt.wantErrLike != "" && compileErr != nil {
				assert.Contains(t, compileErr.Error(), tt.wantErrLike)
				return
			}
			require.NoError(t, compileErr)

			runErr := eng.Call(0, 1)
			if tt.wantErrLike != "" {
				require.Error(t, runErr)
				assert.Contains(t, runErr.Error(), tt.wantErrLike)
				return
			}
			require.NoError(t, runErr)

			if tt.wantInt != nil {
				assert.Equal(t, *tt.wantInt, eng.GetInt(1))
			}
			if tt.wantFloat != nil {
				assert.Equal(t, *tt.wantFloat, eng.GetFloat(1))
			}
		})
	}
}

func intPtr(v int64) *int64       { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCallOnNonCompiledRegisterIsAnError(t *testing.T) {
	eng := New(2)
	err := eng.Call(0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not hold compiled bytecode")
}
