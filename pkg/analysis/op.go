package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/config"
	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/mna"
	"github.com/edp1096/dcsim/pkg/result"
)

// OperatingPoint runs the controller of spec.md §4.8: assemble, solve
// with Gmin, then re-solve without Gmin using the Gmin-on solution as
// the initial guess, and cross-check the two. Grounded on ahkab's
// op_analysis and the teacher's OperatingPoint/storeResults shape.
type OperatingPoint struct {
	*BaseAnalysis
	Config config.Config

	Warnings []string
	Solution *result.OpSolution
	GminOn   *result.OpSolution
	GminOff  *result.OpSolution
	Check    *result.GminCheck

	// LastX is the solved reduced-system vector, kept so DCSweep can
	// seed the next sweep point's initial guess from it.
	LastX *mat.VecDense
}

func NewOperatingPoint(cfg config.Config) *OperatingPoint {
	return &OperatingPoint{BaseAnalysis: NewBaseAnalysis(), Config: cfg}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	op.Circuit = ckt
	return nil
}

// Execute assembles the circuit and solves it, starting from the DC
// initial guess provider's estimate when Config.DCUseGuess is set, or
// the all-zeros guess otherwise.
func (op *OperatingPoint) Execute() error {
	return op.ExecuteFrom(nil)
}

// ExecuteFrom is Execute with an explicit initial guess, used by
// DCSweep to seed each new sweep point from the previous one. A nil x0
// still goes through the DCUseGuess collaborator before falling back
// to zero.
func (op *OperatingPoint) ExecuteFrom(x0 *mat.VecDense) error {
	circ := op.Circuit
	status := &device.Status{Temp: 300.15}

	sys, err := mna.Assemble(circ, status)
	if err != nil {
		return fmt.Errorf("assembling circuit %s: %w", circ.Name(), err)
	}
	op.Warnings = mna.CheckGroundPaths(circ, sys)

	if x0 == nil && op.Config.DCUseGuess {
		x0 = dcGuess(sys)
	}

	gmin := gminLadder(circ.NumNodes(), sys.Size, op.Config.Gmin)

	resOn, err := DCSolve(sys, gmin, circ, x0, status, op.Config)
	if err != nil {
		return fmt.Errorf("solving %s with Gmin: %w", circ.Name(), err)
	}
	op.GminOn = extractSolution(circ, resOn.X, resOn.Iterations)
	op.LastX = resOn.X

	resOff, err := DCSolve(sys, nil, circ, resOn.X, status, op.Config)
	if err != nil {
		op.Solution = op.GminOn
		return fmt.Errorf("solving %s without Gmin: %w", circ.Name(), err)
	}
	op.GminOff = extractSolution(circ, resOff.X, resOn.Iterations+resOff.Iterations)
	op.Solution = op.GminOff
	op.LastX = resOff.X

	op.Check = result.CheckGmin(op.GminOn, op.GminOff,
		op.Config.VoltageRelTol, op.Config.VoltageAbsTol,
		op.Config.CurrentRelTol, op.Config.CurrentAbsTol)

	op.storeResult(op.Solution)
	return nil
}

func (op *OperatingPoint) storeResult(sol *result.OpSolution) {
	for name, v := range sol.Voltages {
		op.appendResult(name, v)
	}
	for name, i := range sol.Currents {
		op.appendResult(name, i)
	}
}

// extractSolution reads node voltages and voltage-defined branch
// currents out of a solved reduced-system vector.
func extractSolution(circ *circuit.Circuit, x *mat.VecDense, iterations int) *result.OpSolution {
	sol := &result.OpSolution{
		Voltages:   make(map[string]float64),
		Currents:   make(map[string]float64),
		Iterations: iterations,
	}
	for _, name := range circ.NodeNames() {
		idx, _ := circ.ExtNodeToInt(name)
		sol.Voltages[fmt.Sprintf("V(%s)", name)] = x.AtVec(idx)
	}
	for name, idx := range circ.BranchNames() {
		sol.Currents[fmt.Sprintf("I(%s)", name)] = x.AtVec(idx)
	}
	return sol
}
