// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestInfoDefaults(t *testing.T) {
	if got, want := Info(), "0.1.0-dev (unknown, unknown)"; got != want {
		t.Errorf("Info: got %q, want %q", got, want)
	}
}

func TestInfoDirty(t *testing.T) {
	saved := GitDirty
	GitDirty = "true"
	defer func() { GitDirty = saved }()

	if got := Info(); !strings.Contains(got, "unknown-dirty") {
		t.Errorf("Info with dirty tree: got %q, want the commit marked -dirty", got)
	}
}

func TestFprint(t *testing.T) {
	var output bytes.Buffer
	Fprint(&output, "bureau-mirror")
	if !strings.HasPrefix(output.String(), "bureau-mirror 0.1.0-dev") {
		t.Errorf("Fprint: got %q", output.String())
	}
	if !strings.Contains(output.String(), "Platform: ") {
		t.Errorf("Fprint: platform missing from %q", output.String())
	}
}
