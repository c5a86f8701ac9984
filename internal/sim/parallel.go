package sim

import (
	"context"
	"sync"
)

// Ensemble runs the same graph from several random placements and keeps the
// calmest layout. It is the multi-start counterpart of Simulation.Run.
type Ensemble[N, E any] struct {
	base      *Simulation[N, E]
	numRuns   int
	seedStart int64
}

// EnsembleResult holds every run; Best is the simulation with the lowest final
// kinetic energy, ties going to the lower seed.
type EnsembleResult[N, E any] struct {
	Best      *Simulation[N, E]
	BestIndex int
	Results   []*Result
}

func NewEnsemble[N, E any](s *Simulation[N, E], numRuns int, seedStart int64) *Ensemble[N, E] {
	return &Ensemble[N, E]{base: s, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble[N, E]) Run(ctx context.Context, cfg RunConfig) (*EnsembleResult[N, E], error) {
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}

	sims := make([]*Simulation[N, E], e.numRuns)
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			params := e.base.params
			params.Seed = e.seedStart + int64(idx)

			s, err := New(e.base.graph.Clone(), params)
			if err != nil {
				errs[idx] = err
				return
			}
			s.ResetNodePlacement()
			sims[idx] = s
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := &EnsembleResult[N, E]{BestIndex: -1, Results: results}
	for i, r := range results {
		if out.BestIndex < 0 || r.Final.KineticEnergy < results[out.BestIndex].Final.KineticEnergy {
			out.BestIndex = i
		}
	}
	if out.BestIndex >= 0 {
		out.Best = sims[out.BestIndex]
	}
	return out, nil
}
