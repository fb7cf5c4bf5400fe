package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"lumenscript/engine"
)

// emitBytecodeCmd compiles a source file and prints its disassembly
// instead of running it.
type emitBytecodeCmd struct {
	outPath string
}

func (*emitBytecodeCmd) Name() string     { return "emit-bytecode" }
func (*emitBytecodeCmd) Synopsis() string { return "Print the disassembled bytecode for a source file" }
func (*emitBytecodeCmd) Usage() string {
	return `emit-bytecode <file>:
  Compile a source file and print its disassembly instead of running it.
`
}
func (cmd *emitBytecodeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.outPath, "o", "", "write the disassembly to this file instead of stdout")
}

func (cmd *emitBytecodeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "file not provided")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	const codeReg uint32 = 0
	eng := engine.New(1)
	if err := eng.Compile(codeReg, filename, string(data)); err != nil {
		fmt.Fprintf(os.Stderr, "compile error:%s\n", err)
		return subcommands.ExitFailure
	}

	text, err := eng.Disassemble(codeReg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "disassemble error: %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.outPath == "" {
		fmt.Print(text)
		return subcommands.ExitSuccess
	}

	if err := os.WriteFile(cmd.outPath, []byte(text), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write disassembly: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
