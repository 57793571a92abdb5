// Command examiner checks FHIR Patient resources against the built-in
// patient rules and any FHIRPath invariants from its configuration.
//
// Usage:
//
//	examiner examine patient.json
//	examiner examine --format json *.json
//	cat patient.json | examiner examine -
//	examiner rules --config examiner.yaml
//
// Exit status is 0 when every patient is clean, 1 when any patient has
// ailments and 2 when a patient could not be examined.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	exitClean    = 0
	exitAilments = 1
	exitFault    = 2
)

// exitError carries a non-zero exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return exitClean
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFault
}
