package reconcile

import "formation-hq/timeline/pkg/timeline"

// OutcomeReport is the encoded form of an Outcome.
type OutcomeReport struct {
	Op       string            `json:"op" yaml:"op"`
	PolicyID timeline.PolicyID `json:"policy_id,omitempty" yaml:"policy_id,omitempty"`
	Name     string            `json:"name" yaml:"name"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the encoded form of a Result, as returned by the API and
// printed by the CLI.
type Report struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	VolumeID   string          `json:"volume_id" yaml:"volume_id"`
	Mode       Mode            `json:"mode" yaml:"mode"`
	Plan       Plan            `json:"plan" yaml:"plan"`
	Outcomes   []OutcomeReport `json:"outcomes" yaml:"outcomes"`
	Failed     int             `json:"failed" yaml:"failed"`
	DurationMS int64           `json:"duration_ms" yaml:"duration_ms"`
}

// Report encodes the result.
func (r Result) Report() Report {
	rep := Report{
		RunID:      r.RunID,
		VolumeID:   string(r.VolumeID),
		Mode:       r.Mode,
		Plan:       r.Plan,
		Outcomes:   make([]OutcomeReport, 0, len(r.Outcomes)),
		DurationMS: r.Duration.Milliseconds(),
	}
	for _, o := range r.Outcomes {
		or := OutcomeReport{Op: o.Op, PolicyID: o.PolicyID, Name: o.Name}
		if o.Err != nil {
			or.Error = o.Err.Error()
			rep.Failed++
		}
		rep.Outcomes = append(rep.Outcomes, or)
	}
	return rep
}
