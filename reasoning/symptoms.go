package reasoning

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	apperrors "techsupport-agent/errors"
	"techsupport-agent/types"

	"gopkg.in/yaml.v3"
)

// EmergencySymptom is detected for informational overlap only; it never
// carries an advice template.
const EmergencySymptom = "emergency"

//go:embed symptoms.yaml
var defaultRegistryYAML []byte

// PredicateKind tags the shape of a Predicate.
type PredicateKind string

const (
	PredicateWords PredicateKind = "words"
	PredicateAll   PredicateKind = "all"
	PredicateAny   PredicateKind = "any"
	PredicateNot   PredicateKind = "not"
)

// Predicate is a boolean test over the query word set.
//
//	words: any of Words is a member of the set
//	all:   every term holds
//	any:   at least one term holds
//	not:   the single term does not hold
type Predicate struct {
	Kind  PredicateKind `yaml:"kind"`
	Words []string      `yaml:"words,omitempty"`
	Terms []Predicate   `yaml:"terms,omitempty"`
}

// Eval interprets p against words.
func (p Predicate) Eval(words map[string]struct{}) bool {
	switch p.Kind {
	case PredicateWords:
		for _, w := range p.Words {
			if _, ok := words[w]; ok {
				return true
			}
		}
		return false
	case PredicateAll:
		for _, t := range p.Terms {
			if !t.Eval(words) {
				return false
			}
		}
		return len(p.Terms) > 0
	case PredicateAny:
		for _, t := range p.Terms {
			if t.Eval(words) {
				return true
			}
		}
		return false
	case PredicateNot:
		return len(p.Terms) == 1 && !p.Terms[0].Eval(words)
	}
	return false
}

func (p Predicate) validate(path string) error {
	switch p.Kind {
	case PredicateWords:
		if len(p.Words) == 0 {
			return fmt.Errorf("%s: words predicate has no words", path)
		}
	case PredicateAll, PredicateAny:
		if len(p.Terms) == 0 {
			return fmt.Errorf("%s: %s predicate has no terms", path, p.Kind)
		}
	case PredicateNot:
		if len(p.Terms) != 1 {
			return fmt.Errorf("%s: not predicate needs exactly one term, got %d", path, len(p.Terms))
		}
	default:
		return fmt.Errorf("%s: unknown predicate kind %q", path, p.Kind)
	}
	for i, t := range p.Terms {
		if err := t.validate(fmt.Sprintf("%s.terms[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// SymptomDefinition describes one detectable condition.
type SymptomDefinition struct {
	Name     string        `yaml:"name"`
	Patterns []string      `yaml:"patterns,omitempty"`
	Check    *Predicate    `yaml:"check,omitempty"`
	Advice   *types.Answer `yaml:"advice,omitempty"`
}

// Detect reports whether the definition fires for q.
func (d SymptomDefinition) Detect(q Query) bool {
	for _, p := range d.Patterns {
		if strings.Contains(q.Normalized, p) {
			return true
		}
	}
	return d.Check != nil && d.Check.Eval(q.Words)
}

// Registry is the ordered, read-only set of symptom definitions.
type Registry struct {
	defs  []SymptomDefinition
	index map[string]int
}

// DefaultRegistry parses the embedded registry.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultRegistryYAML)
}

// LoadRegistry reads a registry file. An empty path selects the embedded
// registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.Join(apperrors.ErrRegistry, err), "read %s", path)
	}
	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, apperrors.WrapErrorf(err, "parse %s", path)
	}
	return reg, nil
}

// ParseRegistry decodes and validates a YAML list of definitions.
func ParseRegistry(data []byte) (*Registry, error) {
	var defs []SymptomDefinition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, apperrors.Join(apperrors.ErrRegistry, err)
	}
	return NewRegistry(defs)
}

// NewRegistry validates defs and keeps them in the given order.
func NewRegistry(defs []SymptomDefinition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, apperrors.Join(apperrors.ErrRegistry, fmt.Errorf("no symptom definitions"))
	}
	r := &Registry{
		defs:  make([]SymptomDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		if err := validateDefinition(d); err != nil {
			return nil, apperrors.Join(apperrors.ErrRegistry, fmt.Errorf("definition %d: %w", i, err))
		}
		if _, dup := r.index[d.Name]; dup {
			return nil, apperrors.Join(apperrors.ErrRegistry, fmt.Errorf("duplicate symptom %q", d.Name))
		}
		r.index[d.Name] = len(r.defs)
		r.defs = append(r.defs, cloneDefinition(d))
	}
	return r, nil
}

func validateDefinition(d SymptomDefinition) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if len(d.Patterns) == 0 && d.Check == nil {
		return fmt.Errorf("%s: needs patterns or a check", d.Name)
	}
	if d.Check != nil {
		if err := d.Check.validate(d.Name + ".check"); err != nil {
			return err
		}
	}
	if d.Advice == nil {
		return nil
	}
	if d.Name == EmergencySymptom {
		return fmt.Errorf("%s: must not carry advice", d.Name)
	}
	if !d.Advice.Type.Valid() {
		return fmt.Errorf("%s: unknown advice type %q", d.Name, d.Advice.Type)
	}
	if d.Advice.Priority.Rank() == 0 {
		return fmt.Errorf("%s: unknown advice priority %q", d.Name, d.Advice.Priority)
	}
	if d.Advice.Confidence.Rank() == 0 {
		return fmt.Errorf("%s: unknown advice confidence %q", d.Name, d.Advice.Confidence)
	}
	if strings.TrimSpace(d.Advice.Content) == "" {
		return fmt.Errorf("%s: advice has no content", d.Name)
	}
	return nil
}

func cloneDefinition(d SymptomDefinition) SymptomDefinition {
	out := d
	out.Patterns = append([]string(nil), d.Patterns...)
	if d.Advice != nil {
		a := d.Advice.Clone()
		out.Advice = &a
	}
	return out
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Names lists symptom names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.Name
	}
	return out
}

// Lookup returns a copy of the named definition.
func (r *Registry) Lookup(name string) (SymptomDefinition, bool) {
	i, ok := r.index[name]
	if !ok {
		return SymptomDefinition{}, false
	}
	return cloneDefinition(r.defs[i]), true
}

// Extract evaluates every definition against q, in registry order.
func (r *Registry) Extract(q Query) Symptoms {
	out := make(Symptoms, len(r.defs))
	for i, d := range r.defs {
		out[i] = SymptomFlag{Name: d.Name, Detected: d.Detect(q)}
	}
	return out
}

// Advice returns clones of the advice templates of every detected symptom,
// in registry order. Emergency never contributes.
func (r *Registry) Advice(symptoms Symptoms) []types.Answer {
	var out []types.Answer
	for _, s := range symptoms {
		if !s.Detected || s.Name == EmergencySymptom {
			continue
		}
		i, ok := r.index[s.Name]
		if !ok || r.defs[i].Advice == nil {
			continue
		}
		out = append(out, r.defs[i].Advice.Clone())
	}
	return out
}

// SymptomFlag is the detection result for one registered symptom.
type SymptomFlag struct {
	Name     string `json:"name"`
	Detected bool   `json:"detected"`
}

// Symptoms covers every registered symptom, in registry order.
type Symptoms []SymptomFlag

// Has reports whether name was detected.
func (s Symptoms) Has(name string) bool {
	for _, f := range s {
		if f.Name == name {
			return f.Detected
		}
	}
	return false
}

// Active lists detected symptom names in registry order.
func (s Symptoms) Active() []string {
	out := []string{}
	for _, f := range s {
		if f.Detected {
			out = append(out, f.Name)
		}
	}
	return out
}

// Salient is the first detected symptom other than emergency, or "".
func (s Symptoms) Salient() string {
	for _, f := range s {
		if f.Detected && f.Name != EmergencySymptom {
			return f.Name
		}
	}
	return ""
}
