// Package resolver lowers an ast.Node tree into a typed action.Action
// tree: it performs name resolution, type checking, and implicit numeric
// promotion.
package resolver

import (
	"strconv"

	"lumenscript/action"
	"lumenscript/ast"
	"lumenscript/errs"
	"lumenscript/symtab"
	"lumenscript/token"
)

// Resolver walks one ast.StatementBlock and produces its action tree.
type Resolver struct {
	errs    errs.Manager
	symbols *symtab.Table
}

// New returns a Resolver with a fresh, empty symbol table.
func New() *Resolver {
	return &Resolver{symbols: symtab.New()}
}

// Resolve resolves root. It returns nil if any error was recorded; call
// ErrorMessage to read the accumulated diagnostics in that case.
func (r *Resolver) Resolve(root *ast.StatementBlock) *action.StatementBlock {
	result := r.resolveStatementBlock(root)
	if r.errs.HasErrors() {
		return nil
	}
	return result
}

// HasErrors reports whether Resolve recorded any diagnostic.
func (r *Resolver) HasErrors() bool {
	return r.errs.HasErrors()
}

// ErrorMessage returns the accumulated diagnostic text.
func (r *Resolver) ErrorMessage() string {
	return r.errs.Message()
}

func isNumeric(t ast.TypeId) bool {
	return t == ast.Int || t == ast.Float
}

func numericPromote(a, b ast.TypeId) ast.TypeId {
	if a == b {
		return a
	}
	return ast.Float
}

func isImplicitlyConvertible(from, to ast.TypeId) bool {
	return from == to || (from == ast.Int && to == ast.Float)
}

// promote wraps expr in a NumericConversion unless its type already
// equals to. Promotion is idempotent by construction: promoting an
// already-Float expression to Float is a no-op, never double-wrapped.
func promote(expr action.Expr, to ast.TypeId) action.Expr {
	if expr.ResultType() == to {
		return expr
	}
	return action.NewNumericConversion(expr.Pos(), to, expr.ResultType(), expr)
}

func (r *Resolver) resolveNode(node ast.Node) action.Action {
	switch n := node.(type) {
	case *ast.StatementBlock:
		return r.resolveStatementBlock(n)
	case *ast.VariableDeclaration:
		return r.resolveVariableDeclaration(n)
	case *ast.Return:
		return r.resolveReturn(n)
	default:
		return r.resolveExpr(node)
	}
}

func (r *Resolver) resolveExpr(node ast.Node) action.Expr {
	if node == nil {
		return nil
	}
	switch n := node.(type) {
	case *ast.BinaryOp:
		return r.resolveBinaryOp(n)
	case *ast.UnaryOp:
		return r.resolveUnaryOp(n)
	case *ast.Constant:
		return r.resolveConstant(n)
	case *ast.VariableAccess:
		return r.resolveVariableAccess(n)
	default:
		return nil
	}
}

func (r *Resolver) resolveStatementBlock(node *ast.StatementBlock) *action.StatementBlock {
	var statements []action.Action
	for _, stmt := range node.Statements {
		resolved := r.resolveNode(stmt)
		if resolved != nil {
			statements = append(statements, resolved)
		}
	}
	return action.NewStatementBlock(node.Pos(), statements, uint32(r.symbols.Count()))
}

func evaluateType(node *ast.BuiltinType) ast.TypeId {
	return node.Type
}

func (r *Resolver) resolveVariableDeclaration(node *ast.VariableDeclaration) action.Action {
	if _, exists := r.symbols.Find(node.Name); exists {
		r.errs.Push(node.Pos(), "'%s' was already defined when redefined here.", node.Name)
		return nil
	}

	storageType := ast.Void
	if node.StorageType != nil {
		storageType = evaluateType(node.StorageType)
	}

	// Reserve the entry before resolving the initializer, so a
	// self-referencing initializer (`var x := x + 1`) finds a Void-typed
	// entry and fails silently per resolveVariableAccess's documented
	// unresolved-type branch, rather than "not defined".
	entry := r.symbols.CreateVariable(node.Name, storageType)

	var initializer action.Expr
	if node.Initializer != nil {
		initializer = r.resolveExpr(node.Initializer)
		if initializer == nil {
			return nil
		}

		if storageType == ast.Void {
			storageType = initializer.ResultType()
			entry.StorageType = storageType
		} else if !isImplicitlyConvertible(initializer.ResultType(), storageType) {
			r.errs.Push(node.Pos(), "'%s' can not be implicitly converted to '%s'.", initializer.ResultType(), storageType)
			return nil
		} else {
			initializer = promote(initializer, storageType)
		}
	} else {
		initializer = zeroValue(storageType)
	}

	return action.NewCreateStackVariable(node.Pos(), entry.Address, initializer)
}

func zeroValue(t ast.TypeId) action.Expr {
	switch t {
	case ast.Float:
		return action.NewFloatConstant(token.NoPos, 0.0)
	default:
		return action.NewIntConstant(token.NoPos, 0)
	}
}

func (r *Resolver) resolveReturn(node *ast.Return) action.Action {
	var value action.Expr
	if node.Value != nil {
		value = r.resolveExpr(node.Value)
		if value == nil {
			return nil
		}
	}
	return action.NewReturn(node.Pos(), value)
}

func (r *Resolver) resolveBinaryOp(node *ast.BinaryOp) action.Expr {
	left := r.resolveExpr(node.Left)
	right := r.resolveExpr(node.Right)
	if left == nil || right == nil {
		return nil
	}

	if node.Op == ast.BinModulo {
		if left.ResultType() != ast.Int || right.ResultType() != ast.Int {
			r.errs.Push(node.Pos(), "Cannot perform '%%' with operands of type '%s' and '%s'", left.ResultType(), right.ResultType())
			return nil
		}
		return action.NewIntBinary(node.Pos(), action.IntModulo, left, right)
	}

	if !isNumeric(left.ResultType()) || !isNumeric(right.ResultType()) {
		r.errs.Push(node.Pos(), "Cannot perform '%s' with operands of type '%s' and '%s'", binaryOpSymbol(node.Op), left.ResultType(), right.ResultType())
		return nil
	}

	resultType := numericPromote(left.ResultType(), right.ResultType())
	left = promote(left, resultType)
	right = promote(right, resultType)

	if resultType == ast.Int {
		return action.NewIntBinary(node.Pos(), intBinaryOp(node.Op), left, right)
	}
	return action.NewFloatBinary(node.Pos(), floatBinaryOp(node.Op), left, right)
}

func binaryOpSymbol(op ast.BinaryOpKind) string {
	switch op {
	case ast.BinAdd:
		return "+"
	case ast.BinSubtract:
		return "-"
	case ast.BinMultiply:
		return "*"
	case ast.BinDivide:
		return "/"
	case ast.BinModulo:
		return "%"
	default:
		return "?"
	}
}

func intBinaryOp(op ast.BinaryOpKind) action.IntBinaryOp {
	switch op {
	case ast.BinAdd:
		return action.IntAdd
	case ast.BinSubtract:
		return action.IntSubtract
	case ast.BinMultiply:
		return action.IntMultiply
	case ast.BinDivide:
		return action.IntDivide
	default:
		return action.IntModulo
	}
}

func floatBinaryOp(op ast.BinaryOpKind) action.FloatBinaryOp {
	switch op {
	case ast.BinAdd:
		return action.FloatAdd
	case ast.BinSubtract:
		return action.FloatSubtract
	case ast.BinMultiply:
		return action.FloatMultiply
	default:
		return action.FloatDivide
	}
}

func (r *Resolver) resolveUnaryOp(node *ast.UnaryOp) action.Expr {
	operand := r.resolveExpr(node.Operand)
	if operand == nil {
		return nil
	}

	if node.Op == ast.UnaryPlus {
		return operand
	}

	if operand.ResultType() == ast.Int {
		return action.NewIntUnary(node.Pos(), action.Negation, operand)
	}
	return action.NewFloatUnary(node.Pos(), action.Negation, operand)
}

func (r *Resolver) resolveConstant(node *ast.Constant) action.Expr {
	switch node.Kind {
	case ast.IntLiteral:
		value, _ := strconv.ParseUint(node.Text, 10, 64)
		return action.NewIntConstant(node.Pos(), value)
	default:
		value, _ := strconv.ParseFloat(node.Text, 64)
		return action.NewFloatConstant(node.Pos(), value)
	}
}

func (r *Resolver) resolveVariableAccess(node *ast.VariableAccess) action.Expr {
	entry, ok := r.symbols.Find(node.Name)
	if !ok {
		r.errs.Push(node.Pos(), "'%s' is not defined when referenced here.", node.Name)
		return nil
	}
	if entry.StorageType == ast.Void {
		return nil
	}
	return action.NewStackVariableAccess(node.Pos(), entry.StorageType, entry.Address)
}
