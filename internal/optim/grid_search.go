package optim

import (
	"context"
	"fmt"
	"maps"
	"math"
)

// Evaluate scores one parameter combination; lower is better.
type Evaluate func(ctx context.Context, params map[string]float64) (float64, error)

type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type Outcome struct {
	Best   map[string]float64
	Score  float64
	Trials []Trial
}

// GridSearch tries every combination of the given values, in order, with the
// last parameter varying fastest.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d parameters for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of combinations.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates the whole grid. A failed trial is recorded and skipped;
// cancellation stops the search and returns what was found so far.
func (g *GridSearch) Search(ctx context.Context, eval Evaluate) (*Outcome, error) {
	out := &Outcome{Score: math.Inf(1), Trials: make([]Trial, 0, g.Size())}
	pos := make([]int, len(g.ranges))

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		current := make(map[string]float64, len(g.paramNames))
		for i, name := range g.paramNames {
			current[name] = g.ranges[i][pos[i]]
		}

		score, err := eval(ctx, current)
		out.Trials = append(out.Trials, Trial{Params: current, Score: score, Err: err})
		if err == nil && score < out.Score {
			out.Score = score
			out.Best = maps.Clone(current)
		}

		i := len(pos) - 1
		for ; i >= 0; i-- {
			pos[i]++
			if pos[i] < len(g.ranges[i]) {
				break
			}
			pos[i] = 0
		}
		if i < 0 {
			break
		}
	}

	if out.Best == nil {
		return out, fmt.Errorf("grid search: every trial failed")
	}
	return out, nil
}
