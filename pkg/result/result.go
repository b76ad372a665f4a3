// Package result holds the solution containers the analysis layer
// returns: an operating point, a Gmin-consistency check report, and a
// DC sweep's accumulated per-point solutions. Grounded on ahkab's
// results.op_solution/results.dc_solution and the teacher's
// OperatingPoint.storeResults/DCSweep.StoreResult shape.
package result

import "fmt"

// OpSolution is the solved state of a single operating point: node
// voltages, voltage-defined branch currents, and the iteration count
// the Newton-Raphson kernel needed.
type OpSolution struct {
	Voltages   map[string]float64
	Currents   map[string]float64
	Iterations int
}

// Get returns a named variable's value, looking name up among the
// voltages and then the currents; name is the full label, e.g. "V(2)"
// or "I(V1)".
func (s *OpSolution) Get(name string) (float64, bool) {
	if v, ok := s.Voltages[name]; ok {
		return v, ok
	}
	v, ok := s.Currents[name]
	return v, ok
}

// GminCheck reports the Gmin-consistency cross-check of spec.md §4.8:
// every variable whose Gmin-on and Gmin-off solutions disagree by more
// than tolerance.
type GminCheck struct {
	Offending []string
}

func (g *GminCheck) Passed() bool { return len(g.Offending) == 0 }

// compare adds name to Offending if a and b differ by more than
// rel*|b|+abs, following ahkab's gmin_check tolerance shape.
func (g *GminCheck) compare(name string, a, b, rel, abs float64) {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	limit := rel*absf(b) + abs
	if diff > limit {
		g.Offending = append(g.Offending, name)
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// CheckGmin compares a Gmin-on and a Gmin-off OpSolution and reports
// every variable whose values disagree beyond tolerance.
func CheckGmin(withGmin, withoutGmin *OpSolution, voltageRelTol, voltageAbsTol, currentRelTol, currentAbsTol float64) *GminCheck {
	check := &GminCheck{}
	for name, v := range withGmin.Voltages {
		check.compare(name, v, withoutGmin.Voltages[name], voltageRelTol, voltageAbsTol)
	}
	for name, v := range withGmin.Currents {
		check.compare(name, v, withoutGmin.Currents[name], currentRelTol, currentAbsTol)
	}
	return check
}

// DCSolution accumulates one OpSolution per sweep point.
type DCSolution struct {
	SweepVariable string
	SweepValues   []float64
	Points        []*OpSolution
}

func (d *DCSolution) Add(sweepValue float64, op *OpSolution) {
	d.SweepValues = append(d.SweepValues, sweepValue)
	d.Points = append(d.Points, op)
}

// Series returns a named variable's value across every swept point, in
// sweep order.
func (d *DCSolution) Series(name string) []float64 {
	out := make([]float64, 0, len(d.Points))
	for _, p := range d.Points {
		v, _ := p.Get(name)
		out = append(out, v)
	}
	return out
}

func (d *DCSolution) String() string {
	return fmt.Sprintf("DC sweep of %s: %d points", d.SweepVariable, len(d.Points))
}
