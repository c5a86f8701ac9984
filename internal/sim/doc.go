// Package sim provides the force-directed layout engine.
//
// A [Simulation] owns one graph and one [Parameters] value. Each call to
// [Simulation.Advance] runs the full force pass over a snapshot of the graph
// and only then integrates the unpinned nodes, so the result never depends on
// iteration order:
//
//	g := graph.Ring(6)
//	s, _ := sim.New(g, sim.DefaultParameters())
//	s.ResetNodePlacement()
//	for {
//	    st := s.Advance()
//	    if st.MaxDisplacement < 1e-3 {
//	        break
//	    }
//	}
//
// [Simulation.Run] wraps that loop with a step budget, a settle detector and
// context cancellation; [Ensemble] runs several seeds in parallel.
//
// # Thread Safety
//
// Simulation instances are NOT thread-safe. Callers driving one engine from
// several goroutines must serialise Advance and graph mutation themselves.
package sim
