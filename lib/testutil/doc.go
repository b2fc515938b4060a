// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [SocketDir] creates a short temporary directory in /tmp for Unix
// domain sockets, whose paths are limited to 108 bytes; t.TempDir()
// paths under a build system's TEST_TMPDIR can exceed that.
//
// [RequireReceive] wraps the select-with-timeout pattern so tests that
// wait on a goroutine never call time.After directly.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
