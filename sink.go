package gridsearch

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// YAMLSink writes each verdict it receives as a YAML document.
type YAMLSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewYAMLSink returns a sink writing to w.
func NewYAMLSink(w io.Writer) *YAMLSink {
	return &YAMLSink{w: w}
}

// reportDoc is the YAML layout of a verdict.
type reportDoc struct {
	SearchID string      `yaml:"search_id"`
	Selected Task        `yaml:"selected"`
	Mean     float64     `yaml:"mean"`
	Spread   float64     `yaml:"spread"`
	Scores   []float64   `yaml:"scores"`
	Dropped  []int       `yaml:"dropped_repeats,omitempty"`
	Repeats  []repeatDoc `yaml:"repeats"`
}

type repeatDoc struct {
	Repeat    int         `yaml:"repeat"`
	Seed      int64       `yaml:"seed"`
	BestIndex int         `yaml:"best_index"`
	Failed    int         `yaml:"failed"`
	Results   []resultDoc `yaml:"results"`
}

type resultDoc struct {
	Index      int       `yaml:"index"`
	Params     Params    `yaml:"params"`
	Score      float64   `yaml:"score"`
	FoldScores []float64 `yaml:"fold_scores,flow"`
	Penalized  int       `yaml:"penalized,omitempty"`
	Error      string    `yaml:"error,omitempty"`
}

func newReportDoc(v Verdict) reportDoc {
	doc := reportDoc{
		SearchID: v.SearchID,
		Selected: v.Task,
		Mean:     v.Mean,
		Spread:   v.Spread,
		Scores:   v.Scores,
		Dropped:  v.Dropped,
		Repeats:  make([]repeatDoc, len(v.Outcomes)),
	}

	for i, o := range v.Outcomes {
		rd := repeatDoc{
			Repeat:    o.Repeat,
			Seed:      o.Seed,
			BestIndex: o.Best.Index,
			Failed:    o.Failed,
			Results:   make([]resultDoc, len(o.Results)),
		}

		for j, r := range o.Results {
			rd.Results[j] = resultDoc{
				Index:      r.Index,
				Params:     r.Task.Params,
				Score:      r.Score,
				FoldScores: r.FoldScores,
				Penalized:  r.Penalized,
			}

			if r.Err != nil {
				rd.Results[j].Error = r.Err.Error()
			}
		}

		doc.Repeats[i] = rd
	}

	return doc
}

// Report implements ResultSink.
func (s *YAMLSink) Report(_ context.Context, verdict Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := yaml.NewEncoder(s.w)
	enc.SetIndent(2)

	if err := enc.Encode(newReportDoc(verdict)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return enc.Close()
}
