package vm

import (
	"fmt"
	"io"

	"lumenscript/compiler"
)

// VM is the register-window virtual machine. It is single-threaded and
// not safe for concurrent use — a host that needs concurrency creates
// one VM per goroutine.
type VM struct {
	stack Stack
	ip    uint32

	// Debug, when set and Trace is non-nil, writes the offset and mnemonic
	// of every instruction to Trace before it executes; operands are not
	// printed.
	Debug bool
	Trace io.Writer
}

// New returns a VM with an empty register-window stack.
func New() *VM {
	return &VM{}
}

// Call pushes a new frame for function on top of the current one and
// executes it, returning when it reaches RETURN or RETURN_VALUE. A
// RETURN_VALUE writes its value to register returnIdx of the caller's
// window. Looking up the *compiler.Bytecode the host stored in a register
// is left to the caller (the engine package).
func (vm *VM) Call(function *compiler.Bytecode, returnIdx uint32) error {
	vm.stack.PushFrame(function, vm.ip, returnIdx)
	return vm.run()
}

func (vm *VM) run() error {
	vm.ip = 0
	frame := vm.stack.TopFrame()
	code := frame.Function.Code

	for {
		instr := code[vm.ip]
		vm.ip++

		if vm.Debug && vm.Trace != nil {
			fmt.Fprintf(vm.Trace, "%04d %s\n", vm.ip-1, instr.Opcode())
		}

		switch instr.Opcode() {
		case compiler.NO_OP:
			// nothing

		case compiler.RESERVE:
			vm.stack.Reserve(instr.OpLong())

		case compiler.RETURN:
			vm.ip = frame.SavedIP
			vm.stack.PopFrame()
			return nil

		case compiler.RETURN_VALUE:
			returnIdx := frame.ReturnIdx
			value := *vm.stack.Index(instr.OpLong())
			vm.ip = frame.SavedIP
			vm.stack.PopFrame()
			*vm.stack.Index(returnIdx) = value
			return nil

		case compiler.MOVE:
			*vm.stack.Index(instr.OpA()) = *vm.stack.Index(instr.OpB())

		case compiler.LOAD_CONSTANT:
			*vm.stack.Index(instr.OpA()) = frame.Function.Constants[instr.OpB()]

		case compiler.NEGATION_INT:
			v := vm.stack.Index(instr.OpLong())
			*v = compiler.IntValue(uint64(-int64(v.AsInt())))

		case compiler.NEGATION_FLOAT:
			v := vm.stack.Index(instr.OpLong())
			*v = compiler.FloatValue(-v.AsFloat())

		case compiler.INT_TO_FLOAT:
			v := vm.stack.Index(instr.OpLong())
			*v = compiler.FloatValue(float64(int64(v.AsInt())))

		case compiler.FLOAT_TO_INT:
			v := vm.stack.Index(instr.OpLong())
			*v = compiler.IntValue(uint64(int64(v.AsFloat())))

		case compiler.ADD_INT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			*a = compiler.IntValue(a.AsInt() + b.AsInt())

		case compiler.SUBTRACT_INT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			*a = compiler.IntValue(a.AsInt() - b.AsInt())

		case compiler.MULTIPLY_INT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			*a = compiler.IntValue(a.AsInt() * b.AsInt())

		case compiler.DIVIDE_INT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			if b.AsInt() == 0 {
				return &RuntimeError{Message: "Cannot divide an integer by 0.", Line: frame.Function.LineAt(vm.ip - 1)}
			}
			*a = compiler.IntValue(a.AsInt() / b.AsInt())

		case compiler.MODULO_INT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			if b.AsInt() == 0 {
				return &RuntimeError{Message: "Cannot divide an integer by 0.", Line: frame.Function.LineAt(vm.ip - 1)}
			}
			*a = compiler.IntValue(a.AsInt() % b.AsInt())

		case compiler.ADD_FLOAT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			*a = compiler.FloatValue(a.AsFloat() + b.AsFloat())

		case compiler.SUBTRACT_FLOAT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			*a = compiler.FloatValue(a.AsFloat() - b.AsFloat())

		case compiler.MULTIPLY_FLOAT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			*a = compiler.FloatValue(a.AsFloat() * b.AsFloat())

		case compiler.DIVIDE_FLOAT:
			a := vm.stack.Index(instr.OpA())
			b := vm.stack.Index(instr.OpB())
			*a = compiler.FloatValue(a.AsFloat() / b.AsFloat())

		default:
			return fmt.Errorf("vm: unknown opcode %v at ip %d", instr.Opcode(), vm.ip-1)
		}
	}
}

// Index exposes a register in the top frame's window to the host-facing
// engine package for Reserve/Store*/Get* operations.
func (vm *VM) Index(position uint32) *compiler.Value {
	return vm.stack.Index(position)
}

// Reserve grows the top frame's register window — used by the host
// before a Call to make room for arguments, and once at startup for the
// top-level call frame.
func (vm *VM) Reserve(count uint32) {
	vm.stack.Reserve(count)
}

// Release shrinks the top frame's register window.
func (vm *VM) Release(count uint32) {
	vm.stack.Release(count)
}

// PushTopFrame installs the initial, host-owned frame before any Call —
// register 0 onward is then addressable by the host via Index.
func (vm *VM) PushTopFrame(window uint32) {
	vm.stack.PushFrame(&compiler.Bytecode{}, 0, 0)
	vm.stack.Reserve(window)
}
