package gridsearch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GridFile is the YAML layout of a grid file.
//
// Example:
//
//	train_type: cv
//	kernel: rbf
//	repeats: 5
//	folds: 10
//	train_file: data/iris.train
//	lambdas: [0.0001, 0.001, 0.01]
//	kappas: [-0.9, 0.5, 5.0]
//	ps: [1.0, 1.5, 2.0]
//	epsilons: [1e-6]
//	weight_idxs: [1, 2]
//	gammas: [0.1, 1, 10]
//	search:
//	  workers: 4
//	  policy: penalize
//	  tolerance: 0.005
//	  spread: range
//	  shortlist: 5
//	  seed: 42
type GridFile struct {
	Settings `yaml:",inline"`
	Ranges   `yaml:",inline"`

	// Search overrides fields of DefaultConfig.
	Search *SearchFile `yaml:"search"`
}

// SearchFile holds the optional search settings of a grid file. Unset fields
// keep their DefaultConfig value.
type SearchFile struct {
	Workers           *int           `yaml:"workers"`
	Policy            *FailurePolicy `yaml:"policy"`
	PenaltyScore      *float64       `yaml:"penalty_score"`
	Tolerance         *float64       `yaml:"tolerance"`
	Spread            *SpreadMeasure `yaml:"spread"`
	StopOnTaskFailure *bool          `yaml:"stop_on_task_failure"`
	Shortlist         *int           `yaml:"shortlist"`
	Seed              *int64         `yaml:"seed"`
}

// apply overlays the set fields on config.
func (f *SearchFile) apply(config *SearchConfig) {
	if f == nil {
		return
	}

	if f.Workers != nil {
		config.Workers = *f.Workers
	}

	if f.Policy != nil {
		config.Policy = *f.Policy
	}

	if f.PenaltyScore != nil {
		config.PenaltyScore = *f.PenaltyScore
	}

	if f.Tolerance != nil {
		config.Tolerance = *f.Tolerance
	}

	if f.Spread != nil {
		config.Spread = *f.Spread
	}

	if f.StopOnTaskFailure != nil {
		config.StopOnTaskFailure = *f.StopOnTaskFailure
	}

	if f.Shortlist != nil {
		config.Shortlist = *f.Shortlist
	}

	if f.Seed != nil {
		config.BaseSeed = *f.Seed
	}
}

// ParseGridYAML parses a grid file and validates it. Repeats defaults to 1
// and folds to 10 when omitted. Unknown keys are rejected.
//
// Returns:
// - *GridSpec: the validated grid; the caller releases it
// - SearchConfig: DefaultConfig overlaid with the file's search section
// - error: a parse error, or one wrapping ErrInvalidSpec
func ParseGridYAML(data []byte) (*GridSpec, SearchConfig, error) {
	config := DefaultConfig()

	file := GridFile{
		Settings: Settings{Repeats: 1, Folds: 10},
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, config, invalidSpec("grid file is empty")
		}

		return nil, config, fmt.Errorf("failed to parse grid yaml: %w", err)
	}

	if file.Search != nil && file.Search.Tolerance != nil && *file.Search.Tolerance < 0 {
		return nil, config, invalidSpec("tolerance cannot be negative")
	}

	if file.Search != nil && file.Search.Shortlist != nil && *file.Search.Shortlist < 0 {
		return nil, config, invalidSpec("shortlist cannot be negative")
	}

	grid, err := NewGridSpec(file.Ranges, file.Settings)
	if err != nil {
		return nil, config, fmt.Errorf("invalid grid: %w", err)
	}

	file.Search.apply(&config)

	return grid, config, nil
}

// ParseGridYAMLString parses a grid file from a string.
func ParseGridYAMLString(yamlText string) (*GridSpec, SearchConfig, error) {
	return ParseGridYAML([]byte(yamlText))
}

// LoadGridFile reads and parses a grid file.
func LoadGridFile(path string) (*GridSpec, SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, DefaultConfig(), fmt.Errorf("failed to read grid file %s: %w", path, err)
	}

	grid, config, err := ParseGridYAML(data)
	if err != nil {
		return nil, config, fmt.Errorf("failed to parse grid file %s: %w", path, err)
	}

	return grid, config, nil
}

//////
// Enum parsing.
//////

// ParseTrainType parses "cv" or "tt".
func ParseTrainType(s string) (TrainType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cv", "cross_validation":
		return TrainCV, nil
	case "tt", "train_test":
		return TrainTT, nil
	default:
		return 0, fmt.Errorf("unknown train type %q", s)
	}
}

// ParseKernelType parses a kernel family name.
func ParseKernelType(s string) (KernelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return KernelLinear, nil
	case "poly", "polynomial":
		return KernelPoly, nil
	case "rbf", "radial":
		return KernelRBF, nil
	case "sigmoid":
		return KernelSigmoid, nil
	default:
		return 0, fmt.Errorf("unknown kernel %q", s)
	}
}

// ParseFailurePolicy parses "abort" or "penalize".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort":
		return PolicyAbort, nil
	case "penalize":
		return PolicyPenalize, nil
	default:
		return 0, fmt.Errorf("unknown failure policy %q", s)
	}
}

// ParseSpreadMeasure parses "stddev", "variance" or "range".
func ParseSpreadMeasure(s string) (SpreadMeasure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stddev", "std":
		return SpreadStdDev, nil
	case "variance", "var":
		return SpreadVariance, nil
	case "range":
		return SpreadRange, nil
	default:
		return 0, fmt.Errorf("unknown spread measure %q", s)
	}
}

// decodeEnum decodes a scalar node with parse.
func decodeEnum[T any](value *yaml.Node, parse func(string) (T, error), dst *T) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	v, err := parse(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*dst = v

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TrainType) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, ParseTrainType, t)
}

// MarshalYAML implements yaml.Marshaler.
func (t TrainType) MarshalYAML() (any, error) { return t.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *KernelType) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, ParseKernelType, k)
}

// MarshalYAML implements yaml.Marshaler.
func (k KernelType) MarshalYAML() (any, error) { return k.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *FailurePolicy) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, ParseFailurePolicy, p)
}

// MarshalYAML implements yaml.Marshaler.
func (p FailurePolicy) MarshalYAML() (any, error) { return p.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SpreadMeasure) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, ParseSpreadMeasure, s)
}

// MarshalYAML implements yaml.Marshaler.
func (s SpreadMeasure) MarshalYAML() (any, error) { return s.String(), nil }
