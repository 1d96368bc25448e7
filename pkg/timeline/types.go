package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// PolicyID identifies a persisted retention policy.
type PolicyID int64

// NoID marks a policy that has not been persisted yet.
const NoID PolicyID = 0

// String returns the decimal form of the id.
func (id PolicyID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParsePolicyID parses a decimal policy id.
func ParsePolicyID(s string) (PolicyID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NoID, fmt.Errorf("invalid policy id %q: %w", s, err)
	}
	return PolicyID(n), nil
}

// VolumeID identifies a volume.
type VolumeID string

// RetentionPolicy is a recurrence rule plus how long the snapshots it
// produces are kept.
type RetentionPolicy struct {
	ID               PolicyID
	Name             string
	Rule             Rule
	RetentionSeconds int64
}

// HasID reports whether the policy already exists in a store.
func (p RetentionPolicy) HasID() bool {
	return p.ID != NoID
}

// SameContent reports whether two policies carry the same name, rule and
// retention, ignoring ids.
func (p RetentionPolicy) SameContent(other RetentionPolicy) bool {
	return p.Name == other.Name &&
		p.RetentionSeconds == other.RetentionSeconds &&
		Equal(p.Rule, other.Rule)
}

// Validate checks the rule and that retention is not negative.
func (p RetentionPolicy) Validate() error {
	if err := Validate(p.Rule); err != nil {
		return err
	}
	if p.RetentionSeconds < 0 {
		return fmt.Errorf("policy %q: retention %d must not be negative", p.Name, p.RetentionSeconds)
	}
	return nil
}

// policyDoc is the encoded form of a RetentionPolicy, shared by JSON and YAML.
type policyDoc struct {
	ID             PolicyID `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string   `json:"name" yaml:"name"`
	RecurrenceRule string   `json:"recurrence_rule" yaml:"recurrence_rule"`
	Retention      int64    `json:"retention" yaml:"retention"`
}

func (p RetentionPolicy) doc() policyDoc {
	return policyDoc{
		ID:             p.ID,
		Name:           p.Name,
		RecurrenceRule: FormatRule(p.Rule),
		Retention:      p.RetentionSeconds,
	}
}

func (p *RetentionPolicy) fromDoc(d policyDoc) error {
	rule, err := ParseRule(d.RecurrenceRule)
	if err != nil {
		return err
	}
	*p = RetentionPolicy{
		ID:               d.ID,
		Name:             d.Name,
		Rule:             rule,
		RetentionSeconds: d.Retention,
	}
	return nil
}

// MarshalJSON encodes the rule as RRULE text.
func (p RetentionPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.doc())
}

// UnmarshalJSON decodes a policy whose rule is RRULE text.
func (p *RetentionPolicy) UnmarshalJSON(data []byte) error {
	var d policyDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	return p.fromDoc(d)
}

// MarshalYAML encodes the rule as RRULE text.
func (p RetentionPolicy) MarshalYAML() (interface{}, error) {
	return p.doc(), nil
}

// UnmarshalYAML decodes a policy whose rule is RRULE text.
func (p *RetentionPolicy) UnmarshalYAML(value *yaml.Node) error {
	var d policyDoc
	if err := value.Decode(&d); err != nil {
		return err
	}
	return p.fromDoc(d)
}

// DesiredPolicy is one entry of a user-edited policy list. Entries without
// an id are only created when Use is set; unselected entries are
// placeholders for policies that are available but not chosen.
type DesiredPolicy struct {
	RetentionPolicy
	Use bool
}

type desiredDoc struct {
	policyDoc `yaml:",inline"`
	Use       bool `json:"use" yaml:"use"`
}

// MarshalJSON encodes the entry with its use flag.
func (d DesiredPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		policyDoc
		Use bool `json:"use"`
	}{d.doc(), d.Use})
}

// UnmarshalJSON decodes an entry with its use flag.
func (d *DesiredPolicy) UnmarshalJSON(data []byte) error {
	var doc struct {
		policyDoc
		Use bool `json:"use"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	d.Use = doc.Use
	return d.fromDoc(doc.policyDoc)
}

// MarshalYAML encodes the entry with its use flag.
func (d DesiredPolicy) MarshalYAML() (interface{}, error) {
	return desiredDoc{policyDoc: d.doc(), Use: d.Use}, nil
}

// UnmarshalYAML decodes an entry with its use flag.
func (d *DesiredPolicy) UnmarshalYAML(value *yaml.Node) error {
	var doc desiredDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	d.Use = doc.Use
	return d.fromDoc(doc.policyDoc)
}

// Store persists retention policies and their attachment to volumes.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create persists a new policy and returns it with its assigned id.
	Create(ctx context.Context, policy RetentionPolicy) (RetentionPolicy, error)

	// Edit overwrites the name, rule and retention of an existing policy.
	Edit(ctx context.Context, policy RetentionPolicy) error

	// Delete removes a detached policy.
	Delete(ctx context.Context, id PolicyID) error

	// Attach associates a policy with a volume.
	Attach(ctx context.Context, id PolicyID, volume VolumeID) error

	// Detach dissociates a policy from a volume.
	Detach(ctx context.Context, id PolicyID, volume VolumeID) error

	// ListAttached returns the policies attached to a volume, ordered by id.
	ListAttached(ctx context.Context, volume VolumeID) ([]RetentionPolicy, error)
}
