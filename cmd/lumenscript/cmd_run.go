package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"lumenscript/ast"
	"lumenscript/engine"
	"lumenscript/vm"
)

// runCmd compiles and runs a single source file, printing the register
// the top-level "return" stored its value into.
type runCmd struct {
	window uint32
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Compile and execute a source file, printing its return value.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.Var((*uintFlag)(&r.window), "window", "number of host registers to reserve")
}

func (r *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	window := r.window
	if window == 0 {
		window = 2
	}
	eng := engine.New(window)

	const codeReg, resultReg uint32 = 0, 1
	if err := eng.Compile(codeReg, filename, string(data)); err != nil {
		fmt.Fprintf(os.Stderr, "compile error:%s\n", err)
		return subcommands.ExitFailure
	}

	if err := eng.Call(codeReg, resultReg); err != nil {
		if rErr, ok := err.(*vm.RuntimeError); ok {
			fmt.Fprintln(os.Stderr, rErr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return subcommands.ExitFailure
	}

	printResult(eng, codeReg, resultReg)
	return subcommands.ExitSuccess
}

// printResult formats the value Call left at valueReg according to the
// compiled unit at codeReg's resolved return type, printing nothing for
// scripts with no terminal return.
func printResult(eng *engine.Engine, codeReg, valueReg uint32) {
	typ, ok := eng.ResultType(codeReg)
	if !ok {
		return
	}
	switch typ {
	case ast.Float:
		fmt.Println(eng.GetFloat(valueReg))
	case ast.Int:
		fmt.Println(eng.GetInt(valueReg))
	}
}

// uintFlag implements flag.Value over a *uint32.
type uintFlag uint32

func (u *uintFlag) String() string { return fmt.Sprintf("%d", *u) }
func (u *uintFlag) Set(s string) error {
	var v uint64
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return err
	}
	*u = uintFlag(v)
	return nil
}
