// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is implemented by errors that carry their own exit status.
type ExitCoder interface {
	ExitCode() int
}

// Fatal writes "error: err" to stderr and exits. The status is taken
// from the first ExitCoder in err's chain, or 1.
func Fatal(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes "error: err" to writer and returns the exit status
// Fatal would use.
func Report(writer io.Writer, err error) int {
	fmt.Fprintf(writer, "error: %v\n", err)
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
