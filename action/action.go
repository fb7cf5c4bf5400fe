// Package action defines the typed action tree produced by the resolver
// and consumed by the code generator.
//
// Like ast, this is a tagged variant dispatched by type switch: one
// struct per variant, no behavior attached to the nodes themselves.
package action

import (
	"lumenscript/ast"
	"lumenscript/token"
)

// Action is implemented by every typed action tree node.
type Action interface {
	Pos() token.SourcePosition
}

type base struct {
	Position token.SourcePosition
}

func (b base) Pos() token.SourcePosition { return b.Position }

// Expr is implemented by every expression-shaped action; every
// expression action carries a concrete, non-Void result type (data
// model invariant (a)).
type Expr interface {
	Action
	ResultType() ast.TypeId
}

type exprBase struct {
	base
	Type ast.TypeId
}

func (e exprBase) ResultType() ast.TypeId { return e.Type }

// StatementBlock is a resolved sequence of statements, annotated with the
// number of stack registers it needs live at once.
type StatementBlock struct {
	base
	Statements    []Action
	RegisterCount uint32
}

// CreateStackVariable reserves a stack slot and optionally initializes
// it.
type CreateStackVariable struct {
	base
	Address     uint32
	Initializer Expr
}

// Return evaluates an optional value and returns it from the current
// call frame.
type Return struct {
	base
	Value Expr
}

// UnaryOpKind is the single numeric-unary operation this core supports.
type UnaryOpKind int

const (
	Negation UnaryOpKind = iota
)

// IntUnary is a unary operation over an Int-typed operand.
type IntUnary struct {
	exprBase
	Op      UnaryOpKind
	Operand Expr
}

// FloatUnary is a unary operation over a Float-typed operand.
type FloatUnary struct {
	exprBase
	Op      UnaryOpKind
	Operand Expr
}

// IntBinaryOp enumerates the int-binary operations.
type IntBinaryOp int

const (
	IntAdd IntBinaryOp = iota
	IntSubtract
	IntMultiply
	IntDivide
	IntModulo
)

// FloatBinaryOp enumerates the float-binary operations (no modulo).
type FloatBinaryOp int

const (
	FloatAdd FloatBinaryOp = iota
	FloatSubtract
	FloatMultiply
	FloatDivide
)

// IntBinary is a binary operation over two Int-typed operands.
type IntBinary struct {
	exprBase
	Op    IntBinaryOp
	Left  Expr
	Right Expr
}

// FloatBinary is a binary operation over two Float-typed operands.
type FloatBinary struct {
	exprBase
	Op    FloatBinaryOp
	Left  Expr
	Right Expr
}

// NumericConversion wraps an operand whose type the resolver needs to
// promote to make an operation's operand types agree (invariant (b)).
type NumericConversion struct {
	exprBase
	From    ast.TypeId
	Operand Expr
}

// IntConstant is a resolved unsigned 64-bit integer literal.
type IntConstant struct {
	exprBase
	Value uint64
}

// FloatConstant is a resolved IEEE-754 double literal.
type FloatConstant struct {
	exprBase
	Value float64
}

// StackVariableAccess reads a previously created stack variable
// (invariant (c): Address always names an earlier CreateStackVariable in
// the same block).
type StackVariableAccess struct {
	exprBase
	Address uint32
}

func NewStatementBlock(pos token.SourcePosition, statements []Action, registerCount uint32) *StatementBlock {
	return &StatementBlock{base{pos}, statements, registerCount}
}

func NewCreateStackVariable(pos token.SourcePosition, address uint32, initializer Expr) *CreateStackVariable {
	return &CreateStackVariable{base{pos}, address, initializer}
}

func NewReturn(pos token.SourcePosition, value Expr) *Return {
	return &Return{base{pos}, value}
}

func NewIntUnary(pos token.SourcePosition, op UnaryOpKind, operand Expr) *IntUnary {
	return &IntUnary{exprBase{base{pos}, ast.Int}, op, operand}
}

func NewFloatUnary(pos token.SourcePosition, op UnaryOpKind, operand Expr) *FloatUnary {
	return &FloatUnary{exprBase{base{pos}, ast.Float}, op, operand}
}

func NewIntBinary(pos token.SourcePosition, op IntBinaryOp, left, right Expr) *IntBinary {
	return &IntBinary{exprBase{base{pos}, ast.Int}, op, left, right}
}

func NewFloatBinary(pos token.SourcePosition, op FloatBinaryOp, left, right Expr) *FloatBinary {
	return &FloatBinary{exprBase{base{pos}, ast.Float}, op, left, right}
}

func NewNumericConversion(pos token.SourcePosition, to, from ast.TypeId, operand Expr) *NumericConversion {
	return &NumericConversion{exprBase{base{pos}, to}, from, operand}
}

func NewIntConstant(pos token.SourcePosition, value uint64) *IntConstant {
	return &IntConstant{exprBase{base{pos}, ast.Int}, value}
}

func NewFloatConstant(pos token.SourcePosition, value float64) *FloatConstant {
	return &FloatConstant{exprBase{base{pos}, ast.Float}, value}
}

func NewStackVariableAccess(pos token.SourcePosition, typ ast.TypeId, address uint32) *StackVariableAccess {
	return &StackVariableAccess{exprBase{base{pos}, typ}, address}
}
