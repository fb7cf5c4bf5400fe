package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwoOpInstructionRoundTrips(t *testing.T) {
	instr := MakeTwoOpInstruction(ADD_INT, 3, 7)
	assert.Equal(t, ADD_INT, instr.Opcode())
	assert.Equal(t, uint32(3), instr.OpA())
	assert.Equal(t, uint32(7), instr.OpB())
}

func TestLongOpInstructionRoundTrips(t *testing.T) {
	instr := MakeLongOpInstruction(RESERVE, 1<<20|42)
	assert.Equal(t, RESERVE, instr.Opcode())
	assert.Equal(t, uint32(1<<20|42), instr.OpLong())
}

func TestBareInstructionHasZeroOperands(t *testing.T) {
	instr := MakeInstruction(RETURN)
	assert.Equal(t, RETURN, instr.Opcode())
	assert.Equal(t, uint32(0), instr.OpA())
	assert.Equal(t, uint32(0), instr.OpB())
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "addi", ADD_INT.String())
	assert.Equal(t, "???", Opcode(255).String())
}
