// Package engine is the host-facing register-window runtime: it owns
// one VM, one string interner, and the register window the embedding
// application reads and writes directly. Compile drives the tokenizer →
// parser → resolver → code generator pipeline; Call runs the resulting
// bytecode.
//
// An Engine is not safe for concurrent use — a host that needs
// concurrency creates one Engine per goroutine, the same discipline the
// core's own single-threaded design assumes.
package engine

import (
	"fmt"

	"lumenscript/action"
	"lumenscript/ast"
	"lumenscript/compiler"
	"lumenscript/lexer"
	"lumenscript/parser"
	"lumenscript/resolver"
	"lumenscript/vm"
)

// Engine is the host-facing runtime.
type Engine struct {
	vm          *vm.VM
	interner    *compiler.Interner
	resultTypes map[uint32]ast.TypeId
}

// New returns an Engine with window registers [0, initialWindow)
// reserved for the host.
func New(initialWindow uint32) *Engine {
	e := &Engine{vm: vm.New(), interner: compiler.NewInterner(), resultTypes: make(map[uint32]ast.TypeId)}
	e.vm.PushTopFrame(initialWindow)
	return e
}

// Reserve grows the host's register window by count cells.
func (e *Engine) Reserve(count uint32) { e.vm.Reserve(count) }

// Release shrinks the host's register window by count cells.
func (e *Engine) Release(count uint32) { e.vm.Release(count) }

// Compile runs the full pipeline over source and, on success, stores the
// resulting *compiler.Bytecode in register idx. On failure it returns
// the accumulated diagnostic text and writes nothing.
func (e *Engine) Compile(idx uint32, name, source string) error {
	tokenizer := lexer.New(name, source)
	p := parser.New(tokenizer)
	tree := p.Parse()
	if p.HasErrors() {
		return fmt.Errorf("%s", p.ErrorMessage())
	}

	r := resolver.New()
	actions := r.Resolve(tree)
	if r.HasErrors() {
		return fmt.Errorf("%s", r.ErrorMessage())
	}

	bc, err := compiler.Generate(actions)
	if err != nil {
		return err
	}

	*e.vm.Index(idx) = compiler.Value{Obj: bc}
	if typ, ok := finalReturnType(actions); ok {
		e.resultTypes[idx] = typ
	} else {
		delete(e.resultTypes, idx)
	}
	return nil
}

// finalReturnType finds the value type of the first return statement in a
// resolved top-level block — with no control flow in the language, that
// is the return execution stops at — letting a host format a Call's
// result without already knowing the script's shape. It reports false
// when the block has no return or that return carries no value.
func finalReturnType(block *action.StatementBlock) (ast.TypeId, bool) {
	for _, stmt := range block.Statements {
		if ret, ok := stmt.(*action.Return); ok {
			if ret.Value == nil {
				return ast.Void, false
			}
			return ret.Value.ResultType(), true
		}
	}
	return ast.Void, false
}

// ResultType reports the value type the compiled unit at idx returns, if
// Compile found a terminal "return <expr>" statement.
func (e *Engine) ResultType(idx uint32) (ast.TypeId, bool) {
	typ, ok := e.resultTypes[idx]
	return typ, ok
}

func bytecodeAt(e *Engine, idx uint32) (*compiler.Bytecode, error) {
	bc, ok := e.vm.Index(idx).Obj.(*compiler.Bytecode)
	if !ok {
		return nil, fmt.Errorf("engine: register %d does not hold compiled bytecode", idx)
	}
	return bc, nil
}

// Call executes the bytecode stored at calleeIdx. If returnIdx is
// present, the callee's RETURN_VALUE target is placed there; a RuntimeError
// flows back to the caller unchanged so it can be type-asserted.
func (e *Engine) Call(calleeIdx uint32, returnIdx ...uint32) error {
	bc, err := bytecodeAt(e, calleeIdx)
	if err != nil {
		return err
	}
	var target uint32
	if len(returnIdx) > 0 {
		target = returnIdx[0]
	}
	return e.vm.Call(bc, target)
}

// Disassemble renders the bytecode stored at codeIdx as text.
func (e *Engine) Disassemble(codeIdx uint32) (string, error) {
	bc, err := bytecodeAt(e, codeIdx)
	if err != nil {
		return "", err
	}
	return compiler.Disassemble(bc), nil
}

func (e *Engine) StoreInt(idx uint32, value int64)    { *e.vm.Index(idx) = compiler.IntValue(uint64(value)) }
func (e *Engine) StoreUint(idx uint32, value uint64)  { *e.vm.Index(idx) = compiler.IntValue(value) }
func (e *Engine) StoreFloat(idx uint32, value float64) {
	*e.vm.Index(idx) = compiler.FloatValue(value)
}
func (e *Engine) StoreBool(idx uint32, value bool) { *e.vm.Index(idx) = compiler.BoolValue(value) }
func (e *Engine) StoreString(idx uint32, value string) {
	*e.vm.Index(idx) = compiler.StringValue(e.interner.Intern(value))
}

func (e *Engine) GetInt(idx uint32) int64     { return int64(e.vm.Index(idx).AsInt()) }
func (e *Engine) GetUint(idx uint32) uint64   { return e.vm.Index(idx).AsInt() }
func (e *Engine) GetFloat(idx uint32) float64 { return e.vm.Index(idx).AsFloat() }
func (e *Engine) GetBool(idx uint32) bool     { return e.vm.Index(idx).AsBool() }
func (e *Engine) GetString(idx uint32) string {
	s := e.vm.Index(idx).AsString()
	if s == nil {
		return ""
	}
	return s.Text
}

// SetDebug toggles per-instruction disassembly tracing for subsequent
// Call invocations.
func (e *Engine) SetDebug(debug bool, trace interface {
	Write([]byte) (int, error)
}) {
	e.vm.Debug = debug
	e.vm.Trace = trace
}
