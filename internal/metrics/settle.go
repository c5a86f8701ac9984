package metrics

import "github.com/san-kum/fdgsim/internal/sim"

// Settle decides when a layout has stabilised: the per-step maximum
// displacement must stay below the threshold for the given number of
// consecutive steps.
type Settle struct {
	name      string
	threshold float64
	window    int
	calm      int
	settledAt int
	samples   int
}

func NewSettle(threshold float64, window int) *Settle {
	if window < 1 {
		window = 1
	}
	return &Settle{
		name:      "settled_at",
		threshold: threshold,
		window:    window,
		settledAt: -1,
	}
}

func (s *Settle) Name() string {
	return s.name
}

func (s *Settle) Observe(st sim.Stats) {
	s.samples++
	if st.MaxDisplacement < s.threshold {
		s.calm++
	} else {
		s.calm = 0
		s.settledAt = -1
	}
	if s.calm >= s.window && s.settledAt < 0 {
		s.settledAt = st.Step
	}
}

// OnStep lets a Settle be registered as an observer.
func (s *Settle) OnStep(st sim.Stats) { s.Observe(st) }

func (s *Settle) Settled() bool { return s.settledAt >= 0 }

// Value is the step at which the layout settled, or -1.
func (s *Settle) Value() float64 {
	return float64(s.settledAt)
}

func (s *Settle) Reset() {
	s.calm = 0
	s.settledAt = -1
	s.samples = 0
}

// Displacement averages the per-step maximum displacement.
type Displacement struct {
	name    string
	sum     float64
	samples int
}

func NewDisplacement() *Displacement {
	return &Displacement{
		name: "mean_max_displacement",
	}
}

func (d *Displacement) Name() string {
	return d.name
}

func (d *Displacement) Observe(st sim.Stats) {
	d.sum += st.MaxDisplacement
	d.samples++
}

func (d *Displacement) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

func (d *Displacement) Reset() {
	d.sum = 0
	d.samples = 0
}

// Defaults is the metric set the CLI attaches to every run.
func Defaults(threshold float64, window int) []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewForceBalance(),
		NewSettle(threshold, window),
		NewDisplacement(),
	}
}
