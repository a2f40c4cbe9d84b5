// Package eventctl implements the eventctl operator CLI.
package eventctl

import (
	"fmt"
	"io"
	"os"
)

// MainWithArgs runs the CLI with args and returns the process exit code:
// 0 on success, 1 on command errors, 2 on usage errors.
func MainWithArgs(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, out, errOut io.Writer) int {
	root := buildRootCmdWith(DefaultConfig(), out)
	root.SetOut(out)
	root.SetErr(errOut)
	if len(args) == 0 {
		_ = root.Usage()
		return 2
	}
	root.SetArgs(args)
	ctx, cancel := runContext()
	defer cancel()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/eventctl.
func Main() int { return MainWithArgs(os.Args[1:]) }
