package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/flarebyte/jsoncsv/cmd/jsoncsv/root"
	"github.com/flarebyte/jsoncsv/internal/project"
)

type exitCoder interface {
	ExitCode() int
}

type silencer interface {
	Silent() bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the CLI and returns the process exit code. Any failure,
// including a panic, ends with project.ExitCodeBad.
func run(args []string, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "jsoncsv: panic: %v\n%s", r, debug.Stack())
			code = project.ExitCodeBad
		}
	}()
	err := root.Execute(args)
	if err == nil {
		return 0
	}
	var s silencer
	if !errors.As(err, &s) || !s.Silent() {
		// Full error chain for unexpected faults.
		fmt.Fprintf(stderr, "jsoncsv: %+v\n", err)
	}
	code = project.ExitCodeBad
	var ec exitCoder
	if errors.As(err, &ec) {
		if c := ec.ExitCode(); c != 0 {
			code = c
		}
	}
	return code
}
