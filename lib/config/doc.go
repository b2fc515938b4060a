// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the mirror
// client.
//
// Configuration is loaded from a single file specified by either the
// BUREAU_MIRROR_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no automatic file search. Without a
// file, the client runs on [Default] plus its command-line flags.
//
// The file may contain development and production sections that
// override base values when [Config].Environment matches. Production
// defaults to JSON logs at info level.
//
// ${HOME}, ${XDG_STATE_HOME} and ${VAR:-default} patterns are expanded
// in the connection address and the recording path after loading.
package config
