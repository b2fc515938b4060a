// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"reflect"
	"testing"
)

func TestSnapshot(t *testing.T) {
	t.Parallel()
	mirror := New(Options{})
	mustDispatch(t, mirror, SyncWindow{ID: 4, Name: "logs", Width: 80, Height: 24,
		Panes: []PaneSpec{pane(8, 80, 24, 0, 0)}, ActivePaneID: 8})
	mustDispatch(t, mirror, SyncWindow{ID: 1, Name: "shell", Width: 100, Height: 40,
		Panes: []PaneSpec{pane(2, 50, 40, 0, 0), pane(3, 49, 40, 51, 0)}, ActivePaneID: 3})
	mustDispatch(t, mirror, SyncWindow{ID: 4, Name: "logs", Width: 100, Height: 40, ActivePaneID: 8})

	want := Snapshot{
		Width: 100, Height: 40, CurrentWindow: 1,
		Windows: []WindowSnapshot{
			{
				ID: 1, Name: "shell", Width: 100, Height: 40, ActivePane: 3,
				Panes: []PaneSnapshot{
					{ID: 2, Geometry: Geometry{Width: 50, Height: 40}},
					{ID: 3, Geometry: Geometry{Width: 49, Height: 40, XOffset: 51}},
				},
			},
			{ID: 4, Name: "logs", Width: 100, Height: 40, ActivePane: -1, Panes: []PaneSnapshot{}},
		},
	}
	if got := mirror.Session().Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("Snapshot:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSnapshotDigestTracksStructure(t *testing.T) {
	t.Parallel()
	mirror := New(Options{})
	mustDispatch(t, mirror, SyncWindow{ID: 0, Name: "shell", Width: 80, Height: 24,
		Panes: []PaneSpec{pane(0, 80, 24, 0, 0)}, ActivePaneID: 0})

	before, err := mirror.Session().Snapshot().Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	// Output does not change the structure.
	mustDispatch(t, mirror, PtyData{PaneID: 0, Data: []byte("output")})
	afterOutput, err := mirror.Session().Snapshot().Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if afterOutput != before {
		t.Error("pane output changed the snapshot digest")
	}

	mustDispatch(t, mirror, SyncWindow{ID: 0, Name: "shell", Width: 80, Height: 24,
		Panes: []PaneSpec{pane(0, 40, 24, 0, 0), pane(1, 39, 24, 41, 0)}, ActivePaneID: 0})
	afterSplit, err := mirror.Session().Snapshot().Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if afterSplit == before {
		t.Error("splitting a pane did not change the snapshot digest")
	}

	formatted := FormatDigest(afterSplit)
	if len(formatted) != 64 {
		t.Errorf("FormatDigest: got %d characters, want 64", len(formatted))
	}
}
