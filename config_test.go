package gridsearch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testGridYAML = `
train_type: cv
kernel: poly
repeats: 5
folds: 4
train_file: data/iris.train
lambdas: [0.0001, 0.001, 0.01]
kappas: [-0.9, 0.5]
ps: [1.0, 2.0]
epsilons: [1e-6]
weight_idxs: [1, 2]
gammas: [0.5, 1]
coefs: [0, 1]
degrees: [2, 3]
search:
  workers: 4
  policy: penalize
  penalty_score: -1
  tolerance: 0.005
  spread: range
  stop_on_task_failure: true
  shortlist: 5
  seed: 42
`

func TestParseGridYAML(t *testing.T) {
	grid, config, err := ParseGridYAMLString(testGridYAML)
	require.NoError(t, err)
	defer grid.Release()

	assert.Equal(t, KernelPoly, grid.Kernel())
	assert.Equal(t, TrainCV, grid.TrainType())
	assert.Equal(t, 5, grid.Repeats())
	assert.Equal(t, 4, grid.Folds())
	assert.Equal(t, "data/iris.train", grid.Settings().TrainFile)
	assert.Equal(t, []float64{-0.9, 0.5}, grid.Values(ParamKappa))
	assert.Equal(t, []float64{1, 2}, grid.Values(ParamWeightIdx))

	count, err := grid.TaskCount()
	require.NoError(t, err)
	assert.Equal(t, 3*2*2*1*2*2*2*2, count)

	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, PolicyPenalize, config.Policy)
	assert.Equal(t, -1.0, config.PenaltyScore)
	assert.Equal(t, 0.005, config.Tolerance)
	assert.Equal(t, SpreadRange, config.Spread)
	assert.True(t, config.StopOnTaskFailure)
	assert.Equal(t, 5, config.Shortlist)
	assert.Equal(t, int64(42), config.BaseSeed)
}

func TestParseGridYAMLDefaults(t *testing.T) {
	grid, config, err := ParseGridYAMLString(`
kernel: linear
train_file: train.txt
lambdas: [1]
kappas: [0]
ps: [1]
epsilons: [1e-6]
weight_idxs: [1]
`)
	require.NoError(t, err)
	defer grid.Release()

	assert.Equal(t, TrainCV, grid.TrainType())
	assert.Equal(t, 1, grid.Repeats())
	assert.Equal(t, 10, grid.Folds())

	assert.Equal(t, DefaultConfig().Tolerance, config.Tolerance)
	assert.Equal(t, PolicyAbort, config.Policy)
	assert.Equal(t, 1, config.Workers)
}

func TestParseGridYAMLInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
	}{
		{"empty document", ``, true},
		{"unknown key", "kernel: rbf\ntrain_file: x\nlambda: [1]\n", false},
		{"unknown kernel", "kernel: cubic\ntrain_file: x\n", false},
		{"unknown policy", "train_file: x\nsearch:\n  policy: retry\n", false},
		{"folds below 2", "train_file: x\nfolds: 1\n", true},
		{"train/test without test file", "train_type: tt\ntrain_file: x\n", true},
		{"negative tolerance", "train_file: x\nsearch:\n  tolerance: -0.1\n", true},
		{"negative shortlist", "train_file: x\nsearch:\n  shortlist: -2\n", true},
		{"bad lambda", "train_file: x\nlambdas: [-1]\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, _, err := ParseGridYAMLString(tt.yaml)
			require.Error(t, err)
			assert.Nil(t, grid)

			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidSpec)
			}
		})
	}
}

func TestLoadGridFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testGridYAML), 0o600))

	grid, config, err := LoadGridFile(path)
	require.NoError(t, err)
	defer grid.Release()

	assert.Equal(t, KernelPoly, grid.Kernel())
	assert.Equal(t, 4, config.Workers)

	_, _, err = LoadGridFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read grid file")
}

func TestEnumYAMLRoundTrip(t *testing.T) {
	type doc struct {
		Train  TrainType     `yaml:"train"`
		Kernel KernelType    `yaml:"kernel"`
		Policy FailurePolicy `yaml:"policy"`
		Spread SpreadMeasure `yaml:"spread"`
	}

	in := doc{TrainTT, KernelSigmoid, PolicyPenalize, SpreadVariance}

	out, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, "train: tt\nkernel: sigmoid\npolicy: penalize\nspread: variance\n", string(out))

	var back doc
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, in, back)
}

func TestParseEnums(t *testing.T) {
	k, err := ParseKernelType(" Radial ")
	require.NoError(t, err)
	assert.Equal(t, KernelRBF, k)

	k, err = ParseKernelType("polynomial")
	require.NoError(t, err)
	assert.Equal(t, KernelPoly, k)

	_, err = ParseTrainType("loo")
	assert.Error(t, err)

	s, err := ParseSpreadMeasure("std")
	require.NoError(t, err)
	assert.Equal(t, SpreadStdDev, s)

	assert.Equal(t, "KernelType(9)", KernelType(9).String())
}
