package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"formation-hq/timeline/pkg/timeline"
	"formation-hq/timeline/pkg/timeline/preset"
	"formation-hq/timeline/pkg/timeline/reconcile"
)

// policyTable prints policies one per row.
type policyTable []timeline.RetentionPolicy

func (t policyTable) WriteText(w io.Writer) error {
	if len(t) == 0 {
		_, err := fmt.Fprintln(w, "No policies.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSCHEDULE\tRETENTION")
	for _, p := range t {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", idText(p.ID), p.Name, timeline.Describe(p.Rule), timeline.FormatRetention(p.RetentionSeconds))
	}
	return tw.Flush()
}

// templateList prints each template with its rules.
type templateList []preset.Template

func (l templateList) WriteText(w io.Writer) error {
	for i, t := range l {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := templateView(t).WriteText(w); err != nil {
			return err
		}
	}
	return nil
}

type templateView preset.Template

func (t templateView) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "%s\n", t.Label)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range t.Rules {
		fmt.Fprintf(tw, "  %s\t%s\n", timeline.Describe(r.Rule), timeline.FormatRetention(r.RetentionSeconds))
	}
	return tw.Flush()
}

// reportView prints a reconcile report: the plan, then what happened.
type reportView reconcile.Report

func (r reportView) WriteText(w io.Writer) error {
	plan := r.Plan
	fmt.Fprintf(w, "Volume %s (%s)", r.VolumeID, r.Mode)
	if r.RunID != "" {
		fmt.Fprintf(w, " run %s", r.RunID)
	}
	fmt.Fprintln(w)

	if plan.Empty() && len(plan.Skipped) == 0 {
		_, err := fmt.Fprintln(w, "  up to date")
		return err
	}
	for _, p := range plan.Deletes {
		fmt.Fprintf(w, "  - delete %s %s\n", idText(p.ID), p.Name)
	}
	for _, p := range plan.Edits {
		fmt.Fprintf(w, "  ~ edit   %s %s\n", idText(p.ID), p.Name)
	}
	for _, p := range plan.Creates {
		fmt.Fprintf(w, "  + create %s\n", p.Name)
	}
	for _, d := range plan.Skipped {
		fmt.Fprintf(w, "    skip   %s %s\n", idText(d.ID), d.Name)
	}

	// Dry runs carry no run id and no outcomes.
	if r.RunID == "" {
		_, err := fmt.Fprintf(w, "%d operations planned\n", plan.Operations())
		return err
	}

	for _, o := range r.Outcomes {
		if o.Error != "" {
			fmt.Fprintf(w, "  ✗ %s %s %s: %s\n", o.Op, idText(o.PolicyID), o.Name, o.Error)
		}
	}
	_, err := fmt.Fprintf(w, "%d operations, %d failed in %dms\n", len(r.Outcomes), r.Failed, r.DurationMS)
	return err
}

func idText(id timeline.PolicyID) string {
	if id == timeline.NoID {
		return "-"
	}
	return "#" + id.String()
}
