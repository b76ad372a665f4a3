// Package solver implements the Device Contribution Engine and the
// damped Newton-Raphson kernel that drives a nonlinear DC system to a
// solution, following ahkab's build_J_and_Tx/update_J_and_Tx/
// mdn_solver/get_td/convergence_check.
package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/edp1096/dcsim/internal/consts"
	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/matrix"
)

var (
	// ErrSingularJacobian is returned when the per-iteration Jacobian
	// cannot be factored.
	ErrSingularJacobian = errors.New("solver: singular jacobian")
	// ErrOverflow is returned when an iterate diverges to a non-finite
	// value.
	ErrOverflow = errors.New("solver: overflow in newton iteration")
	// ErrMaxIterationsExceeded is returned when the kernel exhausts its
	// iteration budget without converging.
	ErrMaxIterationsExceeded = errors.New("solver: maximum iterations exceeded")
)

// Options bundles the Newton-Raphson kernel's tunables, pulled out of
// pkg/config.Config by the analysis layer so this package stays
// independent of it.
type Options struct {
	MaxIter int

	DampFirstIters bool
	VoltagesLock   bool
	LockFactor     float64

	VoltageRelTol float64
	VoltageAbsTol float64
	CurrentRelTol float64
	CurrentAbsTol float64
}

// VariableConvergence names one unknown and whether its last iteration
// passed the per-variable convergence check, for diagnostics when a
// solve fails to converge.
type VariableConvergence struct {
	Name   string
	Passed bool
}

// Result is the outcome of a Newton-Raphson solve.
type Result struct {
	X           *mat.VecDense
	Residual    *mat.VecDense
	Converged   bool
	Iterations  int
	Diagnostics []VariableConvergence
}

// Solve runs the damped Newton-Raphson kernel on sys starting from x0
// (or the zero vector if x0 is nil). For a purely linear circuit this
// reduces to a single direct solve, the way mdn_solver short-circuits
// when circ.is_nonlinear() is false.
func Solve(sys *matrix.System, circ *circuit.Circuit, x0 *mat.VecDense, status *device.Status, opts Options) (*Result, error) {
	n := sys.Size
	x := mat.NewVecDense(n, nil)
	if x0 != nil {
		x.CopyVec(x0)
	}

	nonlinear := circ.NonlinearElements()
	isNonlinear := len(nonlinear) > 0
	lockedNodes := circ.GetLockedNodes()

	var lastDX, lastResidual *mat.VecDense
	converged := false
	iteration := 0

	for iteration < opts.MaxIter {
		iteration++

		var J *mat.Dense
		var Tx *mat.VecDense
		if isNonlinear {
			J, Tx = buildJAndTx(x, n, nonlinear, status.Time)
			J.Add(J, sys.A)
		} else {
			J = sys.A
			Tx = mat.NewVecDense(n, nil)
		}

		residual := mat.NewVecDense(n, nil)
		residual.MulVec(sys.A, x)
		residual.SubVec(residual, sys.B)
		residual.AddVec(residual, Tx)

		var dx mat.VecDense
		neg := mat.NewVecDense(n, nil)
		neg.ScaleVec(-1, residual)
		if err := dx.SolveVec(J, neg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
		}
		if hasNonFinite(&dx) {
			return nil, ErrOverflow
		}

		td := 1.0
		if isNonlinear {
			td = dampingFactor(&dx, lockedNodes, iteration, status.Temp, opts)
		}
		step := mat.NewVecDense(n, nil)
		step.ScaleVec(td, &dx)
		x.AddVec(x, step)

		lastDX = &dx
		lastResidual = residual

		if !isNonlinear {
			converged = true
			break
		}
		ok, _ := convergenceCheck(x, &dx, residual, circ.NumNodes(), opts, false)
		if ok {
			converged = true
			break
		}
	}

	result := &Result{X: x, Residual: lastResidual, Converged: converged, Iterations: iteration}

	if !converged && isNonlinear && lastDX != nil {
		_, diag := convergenceCheck(x, lastDX, lastResidual, circ.NumNodes(), opts, true)
		result.Diagnostics = labelDiagnostics(circ, diag)
	}

	if !converged {
		return result, ErrMaxIterationsExceeded
	}
	return result, nil
}

// buildJAndTx is the Device Contribution Engine: it evaluates every
// nonlinear element's current and conductance at the present guess and
// stamps them into a fresh Jacobian contribution and current vector,
// following ahkab's build_J_and_Tx/update_J_and_Tx exactly, adapted to
// this package's -1-for-ground indexing.
func buildJAndTx(x *mat.VecDense, size int, elems []device.NonlinearElement, t float64) (*mat.Dense, *mat.VecDense) {
	J := mat.NewDense(size, size, nil)
	Tx := mat.NewVecDense(size, nil)

	portVoltage := func(p device.Port) float64 {
		v := 0.0
		if p.Pos >= 0 {
			v += x.AtVec(p.Pos)
		}
		if p.Neg >= 0 {
			v -= x.AtVec(p.Neg)
		}
		return v
	}

	for _, elem := range elems {
		outputs := elem.OutputPorts()
		for k, out := range outputs {
			drives := elem.DrivePorts(k)
			vd := make([]float64, len(drives))
			for i, p := range drives {
				vd[i] = portVoltage(p)
			}

			n1, n2 := out.Pos, out.Neg
			if n1 >= 0 || n2 >= 0 {
				iel := elem.I(k, vd, t)
				if n1 >= 0 {
					Tx.SetVec(n1, Tx.AtVec(n1)+iel)
				}
				if n2 >= 0 {
					Tx.SetVec(n2, Tx.AtVec(n2)-iel)
				}
			}

			for j, drive := range drives {
				if n1 < 0 && n2 < 0 {
					continue
				}
				g := elem.G(k, vd, j, t)
				if n1 >= 0 {
					if drive.Pos >= 0 {
						J.Set(n1, drive.Pos, J.At(n1, drive.Pos)+g)
					}
					if drive.Neg >= 0 {
						J.Set(n1, drive.Neg, J.At(n1, drive.Neg)-g)
					}
				}
				if n2 >= 0 {
					if drive.Pos >= 0 {
						J.Set(n2, drive.Pos, J.At(n2, drive.Pos)-g)
					}
					if drive.Neg >= 0 {
						J.Set(n2, drive.Neg, J.At(n2, drive.Neg)+g)
					}
				}
			}
		}
	}

	return J, Tx
}

// dampingFactor computes the Newton update's damping coefficient,
// following ahkab's get_td: a schedule based on the raw iteration count,
// tightened further so no locked-node pair swings by more than
// LockFactor thermal voltages in one step.
func dampingFactor(dx *mat.VecDense, lockedNodes []device.Port, iteration int, temp float64, opts Options) float64 {
	td := 1.0
	if opts.DampFirstIters {
		switch {
		case iteration < 10:
			td = 1e-2
		case iteration < 20:
			td = 0.1
		default:
			td = 1
		}
	}

	if !opts.VoltagesLock {
		return td
	}

	vth := consts.ThermalVoltage(temp)
	limit := opts.LockFactor * vth

	for _, p := range lockedNodes {
		var d float64
		switch {
		case p.Pos >= 0 && p.Neg >= 0:
			d = math.Abs(dx.AtVec(p.Pos) - dx.AtVec(p.Neg))
		case p.Pos >= 0:
			d = math.Abs(dx.AtVec(p.Pos))
		case p.Neg >= 0:
			d = math.Abs(dx.AtVec(p.Neg))
		default:
			continue
		}
		if d > limit {
			tdNew := limit / d
			if tdNew < td {
				td = tdNew
			}
		}
	}

	return td
}

// convergenceCheck splits x/dx/residual into the voltage block (node
// unknowns) and the current block (branch unknowns) and applies
// ahkab's cross-over tolerances: the voltage block's residual tolerance
// is the current block's absolute tolerance, and vice versa.
func convergenceCheck(x, dx, residual *mat.VecDense, numNodes int, opts Options, debug bool) (bool, []bool) {
	n := x.Len()

	vOK, vDiag := customConvergenceCheck(x, dx, residual, 0, numNodes, opts.VoltageRelTol, opts.VoltageAbsTol, opts.CurrentAbsTol, debug)
	iOK, iDiag := customConvergenceCheck(x, dx, residual, numNodes, n, opts.CurrentRelTol, opts.CurrentAbsTol, opts.VoltageAbsTol, debug)

	if !debug {
		return vOK && iOK, nil
	}
	return vOK && iOK, append(vDiag, iDiag...)
}

func customConvergenceCheck(x, dx, residual *mat.VecDense, from, to int, er, ea, eresiduum float64, debug bool) (bool, []bool) {
	if to <= from {
		return true, nil
	}
	if !debug {
		for i := from; i < to; i++ {
			if math.Abs(dx.AtVec(i)) >= er*math.Abs(x.AtVec(i))+ea {
				return false, nil
			}
			if math.Abs(residual.AtVec(i)) >= eresiduum {
				return false, nil
			}
		}
		return true, nil
	}

	diag := make([]bool, 0, to-from)
	ok := true
	for i := from; i < to; i++ {
		passed := math.Abs(dx.AtVec(i)) < er*math.Abs(x.AtVec(i))+ea && math.Abs(residual.AtVec(i)) < eresiduum
		diag = append(diag, passed)
		if !passed {
			ok = false
		}
	}
	return ok, diag
}

func labelDiagnostics(circ *circuit.Circuit, diag []bool) []VariableConvergence {
	out := make([]VariableConvergence, 0, len(diag))
	numNodes := circ.NumNodes()
	for i, passed := range diag {
		var name string
		if i < numNodes {
			name = fmt.Sprintf("V(%s)", circ.IntNodeToExt(i))
		} else if vde := circ.FindVDE(i); vde != nil {
			name = fmt.Sprintf("I(%s)", vde.Name())
		} else {
			name = fmt.Sprintf("I(branch %d)", i)
		}
		out = append(out, VariableConvergence{Name: name, Passed: passed})
	}
	return out
}

func hasNonFinite(v *mat.VecDense) bool {
	for i := 0; i < v.Len(); i++ {
		f := v.AtVec(i)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}
