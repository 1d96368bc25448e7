package preset

import (
	"fmt"
	"time"

	"formation-hq/timeline/pkg/timeline"
)

// CustomLabel is the label of the template synthesized for rule lists that
// match no named template.
const CustomLabel = "Custom"

// Built-in template labels.
const (
	LabelStandard = "Standard"
	LabelSparse   = "Sparse"
	LabelDense    = "Dense"
)

// Template is a named bundle of retention policies. Only rule shape and
// retention take part in matching; ids and names are ignored.
type Template struct {
	Label string                     `json:"label" yaml:"label"`
	Rules []timeline.RetentionPolicy `json:"rules" yaml:"rules"`
}

// IsCustom reports whether the template was synthesized by Match.
func (t Template) IsCustom() bool {
	return t.Label == CustomLabel
}

// Validate checks every rule and that no frequency appears twice.
func (t Template) Validate() error {
	if t.Label == "" {
		return fmt.Errorf("template label is required")
	}
	if t.Label == CustomLabel {
		return fmt.Errorf("template label %q is reserved", CustomLabel)
	}
	if len(t.Rules) == 0 {
		return fmt.Errorf("template %q has no rules", t.Label)
	}
	seen := make(map[timeline.Frequency]bool)
	for _, r := range t.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("template %q: %w", t.Label, err)
		}
		f := r.Rule.Frequency()
		if seen[f] {
			return fmt.Errorf("template %q has more than one %s rule", t.Label, f)
		}
		seen[f] = true
	}
	return nil
}

var midnight = timeline.TimeOfDay{Hour: 0, Minute: 0}

// builtin builds a template with one rule per frequency, all firing at
// midnight: daily, weekly on Monday, monthly on the 1st and yearly on
// January 1st.
func builtin(label string, daily, weekly, monthly, yearly int64) Template {
	return Template{
		Label: label,
		Rules: []timeline.RetentionPolicy{
			{Name: "daily", Rule: timeline.Daily{At: midnight}, RetentionSeconds: daily},
			{Name: "weekly", Rule: timeline.Weekly{At: midnight, Day: timeline.Monday}, RetentionSeconds: weekly},
			{Name: "monthly", Rule: timeline.Monthly{At: midnight, Day: 1}, RetentionSeconds: monthly},
			{Name: "yearly", Rule: timeline.Yearly{At: midnight, Day: 1, Month: time.January}, RetentionSeconds: yearly},
		},
	}
}

// Standard keeps dailies for a week, weeklies for 30 days, monthlies for
// 180 days and yearlies for five years.
func Standard() Template {
	return builtin(LabelStandard,
		timeline.ToSeconds(1, timeline.Week),
		timeline.ToSeconds(30, timeline.Day),
		timeline.ToSeconds(180, timeline.Day),
		timeline.ToSeconds(5, timeline.Year),
	)
}

// Sparse keeps dailies for two days, weeklies for a week, monthlies for 30
// days and yearlies for two years.
func Sparse() Template {
	return builtin(LabelSparse,
		timeline.ToSeconds(2, timeline.Day),
		timeline.ToSeconds(1, timeline.Week),
		timeline.ToSeconds(30, timeline.Day),
		timeline.ToSeconds(2, timeline.Year),
	)
}

// Dense keeps dailies for two weeks, weeklies for 60 days, monthlies for
// 365 days and yearlies for ten years.
func Dense() Template {
	return builtin(LabelDense,
		timeline.ToSeconds(2, timeline.Week),
		timeline.ToSeconds(60, timeline.Day),
		timeline.ToSeconds(365, timeline.Day),
		timeline.ToSeconds(10, timeline.Year),
	)
}

// Builtins returns the built-in templates in match order.
func Builtins() []Template {
	return []Template{Standard(), Sparse(), Dense()}
}

// matches reports whether every input rule pairs with the template rule of
// the same frequency and each pair has an equal rule and retention. Template
// frequencies absent from the input are not required. An empty input never
// matches, nor does an input repeating a frequency.
func matches(template Template, rules []timeline.RetentionPolicy) bool {
	if len(rules) == 0 {
		return false
	}

	byFreq := make(map[timeline.Frequency]timeline.RetentionPolicy, len(template.Rules))
	for _, r := range template.Rules {
		byFreq[r.Rule.Frequency()] = r
	}

	seen := make(map[timeline.Frequency]bool, len(rules))
	for _, got := range rules {
		if got.Rule == nil {
			return false
		}
		f := got.Rule.Frequency()
		if seen[f] {
			return false
		}
		seen[f] = true

		want, ok := byFreq[f]
		if !ok {
			return false
		}
		if !timeline.Equal(got.Rule, want.Rule) || got.RetentionSeconds != want.RetentionSeconds {
			return false
		}
	}
	return true
}
