// Package analysis implements the Operating Point and DC Sweep
// controllers (spec.md §4.8, §4.9) on top of pkg/mna and pkg/solver,
// plus the convergence-aid driver (§4.7) and initial-condition assembly
// (§4.10) they share.
package analysis

import (
	"github.com/edp1096/dcsim/pkg/circuit"
)

// Analysis is the contract both OperatingPoint and DCSweep satisfy,
// following the teacher's Setup/Execute/GetResults shape.
type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

// BaseAnalysis holds the result accumulator shared by OperatingPoint
// and DCSweep.
type BaseAnalysis struct {
	Circuit *circuit.Circuit
	results map[string][]float64
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

func (a *BaseAnalysis) appendResult(name string, value float64) {
	a.results[name] = append(a.results[name], value)
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
