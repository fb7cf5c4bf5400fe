package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"lumenscript/ast"
	"lumenscript/engine"
	"lumenscript/vm"
)

// replCmd implements the interactive REPL command.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session. Each line is compiled and run as its
  own top-level unit.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Println("failed to start line editor:", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	runREPL(rl)
	return subcommands.ExitSuccess
}

func runREPL(rl *readline.Instance) {
	const codeReg, resultReg uint32 = 0, 1
	eng := engine.New(2)

	for n := 1; ; n++ {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if line == "" {
			continue
		}

		name := fmt.Sprintf("<repl:%d>", n)
		if err := eng.Compile(codeReg, name, line); err != nil {
			fmt.Println(err)
			continue
		}

		if err := eng.Call(codeReg, resultReg); err != nil {
			if rErr, ok := err.(*vm.RuntimeError); ok {
				fmt.Println(rErr.Error())
			} else {
				fmt.Println(err.Error())
			}
			continue
		}

		if typ, ok := eng.ResultType(codeReg); ok {
			switch typ {
			case ast.Int:
				fmt.Println(eng.GetInt(resultReg))
			case ast.Float:
				fmt.Println(eng.GetFloat(resultReg))
			}
		}
	}
}
