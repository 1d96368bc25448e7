package reconcile

import (
	"fmt"
	"strings"

	"formation-hq/timeline/pkg/timeline"
)

// Mode selects how the desired list relates to the volume's current policies.
type Mode string

const (
	// ModeEdit diffs the desired list against the attached policies.
	ModeEdit Mode = "edit"

	// ModeCreate applies the desired list to a volume that has no policies yet.
	ModeCreate Mode = "create"

	// ModeClone copies another volume's policies onto a new volume. Every
	// entry is created afresh regardless of its id or use flag.
	ModeClone Mode = "clone"
)

// ParseMode parses a mode name. The empty string means ModeEdit.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeEdit, "":
		return ModeEdit, nil
	case ModeCreate:
		return ModeCreate, nil
	case ModeClone:
		return ModeClone, nil
	default:
		return "", fmt.Errorf("unknown reconcile mode %q (want edit, create or clone)", s)
	}
}

// Plan is the set of store operations that moves a volume from its current
// policies to the desired ones.
type Plan struct {
	// Deletes are current policies absent from the desired list. Each is
	// detached and then deleted.
	Deletes []timeline.RetentionPolicy `json:"deletes" yaml:"deletes"`

	// Edits are desired policies whose id is attached and whose content changed.
	Edits []timeline.RetentionPolicy `json:"edits" yaml:"edits"`

	// Creates are selected desired policies without an id. Each is created
	// and then attached.
	Creates []timeline.RetentionPolicy `json:"creates" yaml:"creates"`

	// Skipped are desired entries that produce no operation: unselected new
	// entries and entries whose id is not attached to the volume.
	Skipped []timeline.DesiredPolicy `json:"skipped" yaml:"skipped"`
}

// Empty reports whether the plan issues no store operation.
func (p Plan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Edits) == 0 && len(p.Creates) == 0
}

// Operations returns the number of store calls the plan issues when every
// call succeeds.
func (p Plan) Operations() int {
	return 2*len(p.Deletes) + len(p.Edits) + 2*len(p.Creates)
}

// NewPlan diffs current against desired. Unchanged policies produce no
// operation, so a converged volume yields an empty plan.
func NewPlan(current []timeline.RetentionPolicy, desired []timeline.DesiredPolicy) Plan {
	attached := make(map[timeline.PolicyID]timeline.RetentionPolicy, len(current))
	for _, p := range current {
		attached[p.ID] = p
	}

	var plan Plan
	kept := make(map[timeline.PolicyID]bool, len(desired))
	for _, d := range desired {
		if !d.HasID() {
			if d.Use {
				plan.Creates = append(plan.Creates, d.RetentionPolicy)
			} else {
				plan.Skipped = append(plan.Skipped, d)
			}
			continue
		}

		old, ok := attached[d.ID]
		if !ok || kept[d.ID] {
			plan.Skipped = append(plan.Skipped, d)
			continue
		}
		kept[d.ID] = true
		if !old.SameContent(d.RetentionPolicy) {
			plan.Edits = append(plan.Edits, d.RetentionPolicy)
		}
	}

	for _, p := range current {
		if !kept[p.ID] {
			plan.Deletes = append(plan.Deletes, p)
		}
	}
	return plan
}

// PlanFor builds the plan for mode. Create and Clone ignore current; Clone
// also drops ids and selects every entry.
func PlanFor(mode Mode, current []timeline.RetentionPolicy, desired []timeline.DesiredPolicy) Plan {
	switch mode {
	case ModeCreate:
		return NewPlan(nil, desired)
	case ModeClone:
		return NewPlan(nil, cloneEntries(desired))
	default:
		return NewPlan(current, desired)
	}
}

func cloneEntries(desired []timeline.DesiredPolicy) []timeline.DesiredPolicy {
	out := make([]timeline.DesiredPolicy, len(desired))
	for i, d := range desired {
		d.ID = timeline.NoID
		d.Use = true
		out[i] = d
	}
	return out
}
