package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders bc as human-readable text: one line per
// instruction, prefixed with its offset and source line (a tick mark
// when the line repeats the previous instruction's).
func Disassemble(bc *Bytecode) string {
	var b strings.Builder
	var lastLine uint16
	haveLine := false

	for offset, instr := range bc.Code {
		line := bc.LineAt(uint32(offset))
		lineText := fmt.Sprintf("%4d", line)
		if haveLine && line == lastLine {
			lineText = "   |"
		}
		haveLine = true
		lastLine = line

		fmt.Fprintf(&b, "%04d %s %s\n", offset, lineText, disassembleInstruction(bc, instr))
	}
	return b.String()
}

func disassembleInstruction(bc *Bytecode, instr Instruction) string {
	op := instr.Opcode()
	switch op {
	case NO_OP, RETURN:
		return op.String()
	case RESERVE, RETURN_VALUE, NEGATION_INT, NEGATION_FLOAT, INT_TO_FLOAT, FLOAT_TO_INT:
		return fmt.Sprintf("%-6s %d", op, instr.OpLong())
	case LOAD_CONSTANT:
		idx := instr.OpB()
		return fmt.Sprintf("%-6s r%d, %s", op, instr.OpA(), formatConstant(bc, idx))
	default:
		return fmt.Sprintf("%-6s r%d, r%d", op, instr.OpA(), instr.OpB())
	}
}

func formatConstant(bc *Bytecode, idx uint32) string {
	if int(idx) >= len(bc.Constants) {
		return fmt.Sprintf("<%d>", idx)
	}
	value := bc.Constants[idx]
	switch bc.ConstantKinds[idx] {
	case ConstantFloat:
		return fmt.Sprintf("%g", value.AsFloat())
	case ConstantString:
		if s := value.AsString(); s != nil {
			return fmt.Sprintf("%q", s.Text)
		}
		return `""`
	default:
		return fmt.Sprintf("%d", value.AsInt())
	}
}
