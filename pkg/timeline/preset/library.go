package preset

import (
	"fmt"

	"formation-hq/timeline/pkg/timeline"
)

// Library is an ordered, immutable set of templates. The first template
// that matches a rule list wins.
type Library struct {
	templates []Template
}

// NewLibrary creates a library from templates, rejecting invalid templates
// and duplicate labels.
func NewLibrary(templates ...Template) (*Library, error) {
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.Label] {
			return nil, fmt.Errorf("duplicate template label %q", t.Label)
		}
		seen[t.Label] = true
	}
	return &Library{templates: cloneTemplates(templates)}, nil
}

// DefaultLibrary returns a library holding the built-in templates.
func DefaultLibrary() *Library {
	return &Library{templates: Builtins()}
}

// Templates returns a copy of the templates in match order.
func (l *Library) Templates() []Template {
	return cloneTemplates(l.templates)
}

// Get returns the template with the given label.
func (l *Library) Get(label string) (Template, bool) {
	for _, t := range l.templates {
		if t.Label == label {
			return cloneTemplate(t), true
		}
	}
	return Template{}, false
}

// Match returns the first template that has, for every rule in rules, a
// rule of the same frequency with equal recurrence and retention. When no
// template matches it returns a Custom template wrapping rules unchanged.
func (l *Library) Match(rules []timeline.RetentionPolicy) Template {
	for _, t := range l.templates {
		if matches(t, rules) {
			return cloneTemplate(t)
		}
	}
	return Template{Label: CustomLabel, Rules: rules}
}

// Merge returns a new library where templates replace same-labelled
// templates in place and new labels are appended.
func (l *Library) Merge(templates ...Template) (*Library, error) {
	merged := cloneTemplates(l.templates)
	for _, t := range templates {
		replaced := false
		for i := range merged {
			if merged[i].Label == t.Label {
				merged[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, t)
		}
	}
	return NewLibrary(merged...)
}

// Desired expands a template into desired policies that are all in use and
// carry no id, ready to be created on a volume.
func (l *Library) Desired(label string) ([]timeline.DesiredPolicy, error) {
	t, ok := l.Get(label)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", label)
	}
	out := make([]timeline.DesiredPolicy, 0, len(t.Rules))
	for _, r := range t.Rules {
		r.ID = timeline.NoID
		out = append(out, timeline.DesiredPolicy{RetentionPolicy: r, Use: true})
	}
	return out, nil
}

func cloneTemplate(t Template) Template {
	rules := make([]timeline.RetentionPolicy, len(t.Rules))
	copy(rules, t.Rules)
	return Template{Label: t.Label, Rules: rules}
}

func cloneTemplates(ts []Template) []Template {
	out := make([]Template, len(ts))
	for i, t := range ts {
		out[i] = cloneTemplate(t)
	}
	return out
}
