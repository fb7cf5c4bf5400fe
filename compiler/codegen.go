package compiler

import (
	"fmt"
	"math"

	"lumenscript/action"
	"lumenscript/ast"
	"lumenscript/token"
)

// CodeGen lowers an action tree into a Bytecode object. It tracks a
// bump-allocated "next available register" counter over expression
// evaluation, a last-emitted-line cache for the sparse line-info table,
// and per-type constant deduplication maps.
type CodeGen struct {
	output *Bytecode

	nextRegister uint32
	lastLine     uint32

	intConstants   map[uint64]uint32
	floatConstants map[uint64]uint32
}

// NewCodeGen returns a CodeGen writing into a fresh Bytecode.
func NewCodeGen() *CodeGen {
	return &CodeGen{
		output:         &Bytecode{},
		intConstants:   make(map[uint64]uint32),
		floatConstants: make(map[uint64]uint32),
	}
}

// Generate lowers root and returns the finished Bytecode. It recovers
// from internal invariant violations (e.g. an action tree the resolver
// should never have produced) and reports them as a plain error instead
// of letting a panic escape the package.
func Generate(root *action.StatementBlock) (bc *Bytecode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compiler: %v", r)
		}
	}()

	gen := NewCodeGen()
	gen.genStatementBlock(root)
	return gen.output, nil
}

func (g *CodeGen) pushConstantInt(value uint64) uint32 {
	if idx, ok := g.intConstants[value]; ok {
		return idx
	}
	idx := uint32(len(g.output.Constants))
	g.intConstants[value] = idx
	g.output.Constants = append(g.output.Constants, IntValue(value))
	g.output.ConstantKinds = append(g.output.ConstantKinds, ConstantInt)
	return idx
}

func (g *CodeGen) pushConstantFloat(value float64) uint32 {
	bits := math.Float64bits(value)
	if idx, ok := g.floatConstants[bits]; ok {
		return idx
	}
	idx := uint32(len(g.output.Constants))
	g.floatConstants[bits] = idx
	g.output.Constants = append(g.output.Constants, FloatValue(value))
	g.output.ConstantKinds = append(g.output.ConstantKinds, ConstantFloat)
	return idx
}

func (g *CodeGen) recordLine(position token.SourcePosition) {
	if position.IsNoPos() || uint32(position.Line) == g.lastLine {
		return
	}
	g.lastLine = uint32(position.Line)
	g.output.LineInfo = append(g.output.LineInfo, LineInfo{
		Offset: uint32(len(g.output.Code)),
		Line:   uint16(position.Line),
	})
}

func (g *CodeGen) push(opcode Opcode, position token.SourcePosition) {
	g.recordLine(position)
	g.output.Code = append(g.output.Code, MakeInstruction(opcode))
}

func (g *CodeGen) pushTwoOp(opcode Opcode, opA, opB uint32, position token.SourcePosition) {
	g.recordLine(position)
	g.output.Code = append(g.output.Code, MakeTwoOpInstruction(opcode, opA, opB))
}

func (g *CodeGen) pushLongOp(opcode Opcode, opLong uint32, position token.SourcePosition) {
	g.recordLine(position)
	g.output.Code = append(g.output.Code, MakeLongOpInstruction(opcode, opLong))
}

func (g *CodeGen) genStatementBlock(block *action.StatementBlock) {
	g.pushLongOp(RESERVE, block.RegisterCount, token.NoPos)
	for _, stmt := range block.Statements {
		g.genStatement(stmt)
	}
	if !endsInReturn(block) {
		g.push(RETURN, token.NoPos)
	}
}

// endsInReturn reports whether block's last statement is a Return
// action. The VM's interpreter loop never checks its instruction
// pointer against the code length, so every compiled unit must end in
// RETURN or RETURN_VALUE even when the source has no trailing "return".
func endsInReturn(block *action.StatementBlock) bool {
	if len(block.Statements) == 0 {
		return false
	}
	_, ok := block.Statements[len(block.Statements)-1].(*action.Return)
	return ok
}

func (g *CodeGen) genStatement(a action.Action) {
	switch n := a.(type) {
	case *action.CreateStackVariable:
		g.genCreateStackVariable(n)
	case *action.Return:
		g.genReturn(n)
	case action.Expr:
		// A bare expression statement: evaluate it and discard the value.
		mark := g.nextRegister
		g.genExpr(n)
		g.nextRegister = mark
	default:
		panic(fmt.Sprintf("codegen: unexpected statement action %T", a))
	}
}

func (g *CodeGen) genCreateStackVariable(n *action.CreateStackVariable) {
	dest := g.nextRegister
	g.genExpr(n.Initializer)
	if dest != n.Address {
		g.pushTwoOp(MOVE, n.Address, dest, n.Pos())
	}
	g.nextRegister = n.Address + 1
}

func (g *CodeGen) genReturn(n *action.Return) {
	if n.Value == nil {
		g.push(RETURN, n.Pos())
		return
	}
	valuePosition := g.nextRegister
	g.genExpr(n.Value)
	g.pushLongOp(RETURN_VALUE, valuePosition, n.Pos())
}

func (g *CodeGen) genExpr(e action.Expr) {
	switch n := e.(type) {
	case *action.IntBinary:
		g.genIntBinary(n)
	case *action.FloatBinary:
		g.genFloatBinary(n)
	case *action.IntUnary:
		g.genIntUnary(n)
	case *action.FloatUnary:
		g.genFloatUnary(n)
	case *action.NumericConversion:
		g.genNumericConversion(n)
	case *action.IntConstant:
		g.genIntConstant(n)
	case *action.FloatConstant:
		g.genFloatConstant(n)
	case *action.StackVariableAccess:
		g.genStackVariableAccess(n)
	default:
		panic(fmt.Sprintf("codegen: unexpected expression action %T", e))
	}
}

var intBinaryOpcodes = map[action.IntBinaryOp]Opcode{
	action.IntAdd:      ADD_INT,
	action.IntSubtract: SUBTRACT_INT,
	action.IntMultiply: MULTIPLY_INT,
	action.IntDivide:   DIVIDE_INT,
	action.IntModulo:   MODULO_INT,
}

var floatBinaryOpcodes = map[action.FloatBinaryOp]Opcode{
	action.FloatAdd:      ADD_FLOAT,
	action.FloatSubtract: SUBTRACT_FLOAT,
	action.FloatMultiply: MULTIPLY_FLOAT,
	action.FloatDivide:   DIVIDE_FLOAT,
}

func (g *CodeGen) genIntBinary(n *action.IntBinary) {
	leftReg := g.nextRegister
	g.genExpr(n.Left)
	rightReg := g.nextRegister
	g.genExpr(n.Right)

	g.pushTwoOp(intBinaryOpcodes[n.Op], leftReg, rightReg, n.Pos())
	g.nextRegister--
}

func (g *CodeGen) genFloatBinary(n *action.FloatBinary) {
	leftReg := g.nextRegister
	g.genExpr(n.Left)
	rightReg := g.nextRegister
	g.genExpr(n.Right)

	g.pushTwoOp(floatBinaryOpcodes[n.Op], leftReg, rightReg, n.Pos())
	g.nextRegister--
}

func (g *CodeGen) genIntUnary(n *action.IntUnary) {
	operandReg := g.nextRegister
	g.genExpr(n.Operand)
	g.pushLongOp(NEGATION_INT, operandReg, n.Pos())
}

func (g *CodeGen) genFloatUnary(n *action.FloatUnary) {
	operandReg := g.nextRegister
	g.genExpr(n.Operand)
	g.pushLongOp(NEGATION_FLOAT, operandReg, n.Pos())
}

func (g *CodeGen) genNumericConversion(n *action.NumericConversion) {
	operandReg := g.nextRegister
	g.genExpr(n.Operand)

	if n.From == ast.Int && n.ResultType() == ast.Float {
		g.pushLongOp(INT_TO_FLOAT, operandReg, n.Pos())
	} else if n.From == ast.Float && n.ResultType() == ast.Int {
		g.pushLongOp(FLOAT_TO_INT, operandReg, n.Pos())
	}
}

func (g *CodeGen) genIntConstant(n *action.IntConstant) {
	g.pushTwoOp(LOAD_CONSTANT, g.nextRegister, g.pushConstantInt(n.Value), n.Pos())
	g.nextRegister++
}

func (g *CodeGen) genFloatConstant(n *action.FloatConstant) {
	g.pushTwoOp(LOAD_CONSTANT, g.nextRegister, g.pushConstantFloat(n.Value), n.Pos())
	g.nextRegister++
}

func (g *CodeGen) genStackVariableAccess(n *action.StackVariableAccess) {
	if n.Address != g.nextRegister {
		g.pushTwoOp(MOVE, g.nextRegister, n.Address, n.Pos())
	}
	g.nextRegister++
}
