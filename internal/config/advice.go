package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"deepthink/internal/values"
)

// DefaultAdviceYAML is written by `deepthink init` and used when no advice file is configured.
const DefaultAdviceYAML = `version: 1
values:
  - name: Autonomy
    high: Consider freelance, contract or remote-first roles that let you set your own direction.
    medium: Ask for ownership of one project end to end.
    low: Your current setup already gives you room to decide.
  - name: Growth
    high: Look for roles with structured mentorship or a learning budget.
    medium: Pick one skill to build deliberately over the next quarter.
    low: Keep investing in the learning habits that are working.
  - name: Security
    high: Build an emergency fund and favour stable employers while you plan your move.
    medium: Review your savings rate and benefits.
    low: Your financial footing supports taking measured risks.
  - name: Balance
    high: Set firm working hours and raise workload with your manager.
    medium: Protect one evening a week for yourself.
    low: Keep the boundaries you already have.
  - name: Impact
    high: Seek mission-driven organisations or volunteer where your skills count.
    medium: Connect your daily work to the outcomes it serves.
    low: You are seeing the effect of your work; share it with others.
default:
  high: This value is under-served. Make it an explicit criterion in your next decision.
  medium: There is some room to honour this value more.
  low: This value is well aligned with your current situation.
`

type Advice struct {
	Version int           `yaml:"version"`
	Values  []ValueAdvice `yaml:"values"`
	Default BucketAdvice  `yaml:"default"`

	index map[string]*ValueAdvice
}

type BucketAdvice struct {
	High   string `yaml:"high"`
	Medium string `yaml:"medium"`
	Low    string `yaml:"low"`
}

type ValueAdvice struct {
	Name         string `yaml:"name"`
	BucketAdvice `yaml:",inline"`
}

var _ values.AdviceSource = (*Advice)(nil)

// LoadAdvice reads the advice table at path. An empty path yields DefaultAdviceYAML.
func LoadAdvice(path string) (*Advice, error) {
	data := []byte(DefaultAdviceYAML)
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading advice: %w", err)
		}
	}
	return ParseAdvice(data)
}

func ParseAdvice(data []byte) (*Advice, error) {
	var advice Advice
	if err := yaml.Unmarshal(data, &advice); err != nil {
		return nil, fmt.Errorf("loading advice: %w", err)
	}
	if err := validateAdvice(&advice); err != nil {
		return nil, fmt.Errorf("loading advice: %w", err)
	}

	advice.index = make(map[string]*ValueAdvice, len(advice.Values))
	for i := range advice.Values {
		entry := &advice.Values[i]
		advice.index[adviceKey(entry.Name)] = entry
	}
	return &advice, nil
}

func adviceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validateAdvice(a *Advice) error {
	if a.Version != 1 {
		return fmt.Errorf("unsupported version: %d", a.Version)
	}
	seen := make(map[string]struct{})
	for i, entry := range a.Values {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("advice entry %d name is required", i)
		}
		key := adviceKey(entry.Name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("duplicate advice entry: %s", entry.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Advice returns the text for a value name and bucket, falling back to the
// default entry when the value has none.
func (a *Advice) Advice(valueName string, bucket values.Bucket) (string, bool) {
	if a == nil {
		return "", false
	}
	if entry, ok := a.index[adviceKey(valueName)]; ok {
		if text := entry.forBucket(bucket); text != "" {
			return text, true
		}
	}
	text := a.Default.forBucket(bucket)
	return text, text != ""
}

func (b BucketAdvice) forBucket(bucket values.Bucket) string {
	switch bucket {
	case values.BucketHigh:
		return b.High
	case values.BucketMedium:
		return b.Medium
	case values.BucketLow:
		return b.Low
	}
	return ""
}
