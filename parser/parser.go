// Package parser implements the Pratt expression parser and the
// statement grammar built on top of it, turning a token stream into an
// ast.Node tree.
package parser

import (
	"fmt"

	"lumenscript/ast"
	"lumenscript/errs"
	"lumenscript/lexer"
	"lumenscript/token"
)

// precedence orders the grammar's infix binding strengths, lowest first.
type precedence int

const (
	precNone precedence = iota
	precAdditive
	precMultiplicative
	precSign
	precPrimary
)

type prefixFunc func(p *Parser) ast.Node
type infixFunc func(p *Parser, left ast.Node) ast.Node

type exprRule struct {
	prefix     prefixFunc
	infix      infixFunc
	precedence precedence
}

var rules map[token.Type]exprRule

func init() {
	rules = map[token.Type]exprRule{
		token.INT_CONSTANT:   {prefix: (*Parser).parseConstant},
		token.FLOAT_CONSTANT: {prefix: (*Parser).parseConstant},
		token.IDENTIFIER:     {prefix: (*Parser).parseVariableAccess},
		token.PLUS:           {prefix: (*Parser).parseUnaryOp, infix: (*Parser).parseBinaryOp, precedence: precAdditive},
		token.MINUS:          {prefix: (*Parser).parseUnaryOp, infix: (*Parser).parseBinaryOp, precedence: precAdditive},
		token.STAR:           {infix: (*Parser).parseBinaryOp, precedence: precMultiplicative},
		token.SLASH:          {infix: (*Parser).parseBinaryOp, precedence: precMultiplicative},
		token.PERCENT:        {infix: (*Parser).parseBinaryOp, precedence: precMultiplicative},
		token.LEFT_PAREN:     {prefix: (*Parser).parseGrouping},
	}
}

func getRule(t token.Type) exprRule {
	return rules[t]
}

// Parser holds the tokenizer, the shared error sink, a newline-ignore
// mode stack for nested grouping, one token of lookahead, and a panic
// bit so that one syntactic failure produces at most one diagnostic.
type Parser struct {
	tokenizer *lexer.Tokenizer
	errs      errs.Manager

	newlineIgnoreStack []bool
	panicking          bool

	current token.Token
}

// New creates a Parser reading tokens from tokenizer.
func New(tokenizer *lexer.Tokenizer) *Parser {
	p := &Parser{tokenizer: tokenizer}
	p.advance()
	return p
}

// Parse parses a full source unit: a top-level statement block followed
// by EOF. It returns nil if any error was recorded; call ErrorMessage to
// read the accumulated diagnostics in that case.
func (p *Parser) Parse() *ast.StatementBlock {
	p.pushNewlineIgnore(false)
	block := p.parseStatementBlock()
	if !p.errs.HasErrors() && p.current.Type != token.EOF {
		p.pushError(p.current.Position, "Expected a newline.")
	}
	p.popNewlineIgnore()

	if p.errs.HasErrors() {
		return nil
	}
	return block
}

// HasErrors reports whether Parse recorded any diagnostic.
func (p *Parser) HasErrors() bool {
	return p.errs.HasErrors()
}

// ErrorMessage returns the accumulated diagnostic text.
func (p *Parser) ErrorMessage() string {
	return p.errs.Message()
}

func (p *Parser) pushError(position token.SourcePosition, format string, args ...any) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.errs.Push(position, format, args...)
}

func (p *Parser) advance() {
	p.current = p.tokenizer.Next()
	for p.current.Type == token.ERROR {
		p.pushError(p.current.Position, "%s", p.current.Text)
		p.current = p.tokenizer.Next()
	}
}

func (p *Parser) pushNewlineIgnore(value bool) {
	p.newlineIgnoreStack = append(p.newlineIgnoreStack, value)
	p.tokenizer.SetNewlineIgnore(value)
}

func (p *Parser) popNewlineIgnore() {
	p.newlineIgnoreStack = p.newlineIgnoreStack[:len(p.newlineIgnoreStack)-1]
	ignore := false
	if len(p.newlineIgnoreStack) > 0 {
		ignore = p.newlineIgnoreStack[len(p.newlineIgnoreStack)-1]
	}
	p.tokenizer.SetNewlineIgnore(ignore)
}

func (p *Parser) skipNewlines() {
	for p.current.Type == token.NEWLINE {
		p.advance()
	}
}

// parseStatementBlock parses statements until EOF, skipping blank lines
// between them and recovering to the next NEWLINE or EOF on error.
func (p *Parser) parseStatementBlock() *ast.StatementBlock {
	start := p.current.Position
	var statements []ast.Node

	p.skipNewlines()
	for p.current.Type != token.EOF {
		stmt := p.parseStatement()
		if stmt == nil {
			for p.current.Type != token.NEWLINE && p.current.Type != token.EOF {
				p.advance()
			}
		} else {
			statements = append(statements, stmt)
			if p.current.Type != token.NEWLINE && p.current.Type != token.EOF {
				p.pushError(p.current.Position, "Expected a newline.")
				for p.current.Type != token.NEWLINE && p.current.Type != token.EOF {
					p.advance()
				}
			}
		}
		p.panicking = false
		p.skipNewlines()
	}

	return ast.NewStatementBlock(start, statements)
}

func (p *Parser) parseStatement() ast.Node {
	switch p.current.Type {
	case token.VAR:
		return p.parseVariableDeclaration()
	case token.RETURN:
		return p.parseReturn()
	default:
		return p.parseExpression(precAdditive)
	}
}

func (p *Parser) parseBuiltinType() *ast.BuiltinType {
	pos := p.current.Position
	var t ast.TypeId
	switch p.current.Type {
	case token.VOID_TYPE:
		t = ast.Void
	case token.INT_TYPE:
		t = ast.Int
	case token.FLOAT_TYPE:
		t = ast.Float
	default:
		p.pushError(pos, "Expected a storage type.")
		return nil
	}
	p.advance()
	return ast.NewBuiltinType(pos, t)
}

func (p *Parser) parseVariableDeclaration() ast.Node {
	pos := p.current.Position
	p.advance()

	if p.current.Type != token.IDENTIFIER {
		p.pushError(p.current.Position, "Expected an identifier.")
		return nil
	}
	name := p.current.Text
	p.advance()

	var storageType *ast.BuiltinType
	if p.current.Type == token.COLON {
		p.advance()
		storageType = p.parseBuiltinType()
		if storageType == nil {
			return nil
		}
	}

	var initializer ast.Node
	if p.current.Type == token.COLON_EQUALS {
		p.advance()
		exprPos := p.current.Position
		initializer = p.parseExpression(precAdditive)
		if initializer == nil {
			p.pushError(exprPos, "Expected an expression.")
			return nil
		}
	}

	if storageType == nil && initializer == nil {
		p.pushError(pos, "Expected a ':'")
		return nil
	}

	return ast.NewVariableDeclaration(pos, name, storageType, initializer)
}

func (p *Parser) parseReturn() ast.Node {
	pos := p.current.Position
	p.advance()

	var value ast.Node
	if p.current.Type != token.NEWLINE && p.current.Type != token.EOF {
		value = p.parseExpression(precAdditive)
	}
	return ast.NewReturn(pos, value)
}

// parseExpression implements precedence climbing: it dispatches to the
// current token's prefix parselet, then repeatedly consumes infix
// operators whose precedence is at least minPrec.
func (p *Parser) parseExpression(minPrec precedence) ast.Node {
	rule := getRule(p.current.Type)
	if rule.prefix == nil {
		p.pushError(p.current.Position, "Expected an expression.")
		return nil
	}

	left := rule.prefix(p)
	if left == nil {
		return nil
	}

	for {
		rule = getRule(p.current.Type)
		if rule.infix == nil || rule.precedence < minPrec {
			return left
		}
		left = rule.infix(p, left)
		if left == nil {
			return nil
		}
	}
}

func (p *Parser) parseBinaryOp(left ast.Node) ast.Node {
	opToken := p.current
	rule := getRule(opToken.Type)
	p.advance()

	rightPos := p.current.Position
	right := p.parseExpression(rule.precedence + 1)
	if right == nil {
		p.pushError(rightPos, "Expected an expression.")
		return nil
	}

	var op ast.BinaryOpKind
	switch opToken.Type {
	case token.PLUS:
		op = ast.BinAdd
	case token.MINUS:
		op = ast.BinSubtract
	case token.STAR:
		op = ast.BinMultiply
	case token.SLASH:
		op = ast.BinDivide
	case token.PERCENT:
		op = ast.BinModulo
	default:
		panic(fmt.Sprintf("parser: parseBinaryOp reached an unexpected token %s", opToken.Type))
	}

	return ast.NewBinaryOp(opToken.Position, op, left, right)
}

func (p *Parser) parseUnaryOp() ast.Node {
	opToken := p.current
	var op ast.UnaryOpKind
	switch opToken.Type {
	case token.PLUS:
		op = ast.UnaryPlus
	case token.MINUS:
		op = ast.UnaryMinus
	default:
		panic(fmt.Sprintf("parser: parseUnaryOp reached an unexpected token %s", opToken.Type))
	}
	p.advance()

	operandPos := p.current.Position
	operand := p.parseExpression(precSign)
	if operand == nil {
		p.pushError(operandPos, "Expected an expression.")
		return nil
	}

	return ast.NewUnaryOp(opToken.Position, op, operand)
}

func (p *Parser) parseConstant() ast.Node {
	tok := p.current
	var kind ast.ConstantKind
	switch tok.Type {
	case token.INT_CONSTANT:
		kind = ast.IntLiteral
	case token.FLOAT_CONSTANT:
		kind = ast.FloatLiteral
	default:
		panic(fmt.Sprintf("parser: parseConstant reached an unexpected token %s", tok.Type))
	}
	p.advance()
	return ast.NewConstant(tok.Position, kind, tok.Text)
}

func (p *Parser) parseVariableAccess() ast.Node {
	tok := p.current
	p.advance()
	return ast.NewVariableAccess(tok.Position, tok.Text)
}

func (p *Parser) parseGrouping() ast.Node {
	parenPos := p.current.Position
	p.pushNewlineIgnore(true)
	defer p.popNewlineIgnore()
	p.advance()

	exprPos := p.current.Position
	expr := p.parseExpression(precAdditive)
	if expr == nil {
		p.pushError(exprPos, "Expected an expression.")
		return nil
	}

	if p.current.Type != token.RIGHT_PAREN {
		p.pushError(exprPos, "Expected a ')' to match the '( at %s", parenPos)
		return nil
	}
	p.advance()

	return expr
}
