// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

// WindowPanes is the reconciliation input describing a window's current
// panes.
type WindowPanes struct {
	// IDs lists the window's panes in window order.
	IDs []int

	// Active is the id of the active pane. Ignored unless HasActive.
	Active    int
	HasActive bool
}

// PanePlan is the set of changes that brings a window's panes into
// agreement with a window sync.
type PanePlan struct {
	// Resize lists panes that already exist, with their new geometry,
	// in the order the sync listed them.
	Resize []PaneSpec

	// Create lists panes to add, in the order the sync listed them.
	Create []PaneSpec

	// Destroy lists panes to remove, in window order.
	Destroy []int

	// Active is the pane that is active once the plan is applied.
	// HasActive is false only when the window ends up with no panes.
	Active    int
	HasActive bool
}

// FinalIDs lists every pane id present after the plan is applied:
// surviving panes in window order followed by created panes.
func (plan PanePlan) FinalIDs(current WindowPanes) []int {
	destroyed := make(map[int]bool, len(plan.Destroy))
	for _, id := range plan.Destroy {
		destroyed[id] = true
	}
	ids := make([]int, 0, len(current.IDs)+len(plan.Create))
	for _, id := range current.IDs {
		if !destroyed[id] {
			ids = append(ids, id)
		}
	}
	for _, spec := range plan.Create {
		ids = append(ids, spec.ID)
	}
	return ids
}

// PlanPanes computes the changes that make a window hold exactly the
// panes in specs. It does not touch any live state.
//
// Every current pane starts as a removal candidate. Each spec either
// clears the candidate flag of an existing pane (and schedules a
// resize) or schedules a new pane, which becomes the provisional
// active pane. Candidates left over are destroyed. Finally, if a pane
// with activePaneID is present after the sweep, it becomes active.
//
// A spec id that appears twice takes the geometry of its last
// occurrence. If the active pane is destroyed and nothing else claims
// the active slot, the first surviving pane in window order becomes
// active.
func PlanPanes(current WindowPanes, specs []PaneSpec, activePaneID int) PanePlan {
	candidates := make(map[int]bool, len(current.IDs))
	existing := make(map[int]bool, len(current.IDs))
	for _, id := range current.IDs {
		candidates[id] = true
		existing[id] = true
	}

	plan := PanePlan{Active: current.Active, HasActive: current.HasActive}
	resizeIndex := make(map[int]int)
	createIndex := make(map[int]int)

	for _, spec := range specs {
		switch {
		case existing[spec.ID]:
			delete(candidates, spec.ID)
			if index, ok := resizeIndex[spec.ID]; ok {
				plan.Resize[index] = spec
				continue
			}
			resizeIndex[spec.ID] = len(plan.Resize)
			plan.Resize = append(plan.Resize, spec)
		default:
			if index, ok := createIndex[spec.ID]; ok {
				plan.Create[index] = spec
				continue
			}
			createIndex[spec.ID] = len(plan.Create)
			plan.Create = append(plan.Create, spec)
			plan.Active, plan.HasActive = spec.ID, true
		}
	}

	for _, id := range current.IDs {
		if candidates[id] {
			plan.Destroy = append(plan.Destroy, id)
		}
	}

	final := plan.FinalIDs(current)
	present := make(map[int]bool, len(final))
	for _, id := range final {
		present[id] = true
	}

	switch {
	case present[activePaneID]:
		plan.Active, plan.HasActive = activePaneID, true
	case plan.HasActive && present[plan.Active]:
	case len(final) > 0:
		plan.Active, plan.HasActive = final[0], true
	default:
		plan.Active, plan.HasActive = 0, false
	}
	return plan
}
