package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/config"
	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/matrix"
	"github.com/edp1096/dcsim/pkg/solver"
)

// ErrConvergenceFailed is returned once every enabled convergence-aid
// strategy has failed.
var ErrConvergenceFailed = errors.New("analysis: circuit did not converge")

// sourceStepFactors is ahkab's source-stepping ramp with an explicit
// final 1.0 factor appended: the literal ahkab ramp stops at 0.9 and
// accepts that as the final answer, which never actually solves the
// real circuit. This core performs one further solve at the true
// source value after the ramp converges.
var sourceStepFactors = []float64{0.001, 0.005, 0.01, 0.03, 0.1, 0.3, 0.5, 0.7, 0.8, 0.9, 1.0}

// gminStepExponents is ahkab's Gmin-stepping ladder: ten rungs from
// 10^-1 down to 10^-10, regardless of the circuit's nominal Gmin.
var gminStepExponents = []float64{-1, -2, -3, -4, -5, -6, -7, -8, -9, -10}

type strategy struct {
	enabled bool
	failed  bool
}

type solveMethods struct {
	standard strategy
	gmin     strategy
	source   strategy

	gminIndex   int
	sourceIndex int
}

func (m *solveMethods) setNext(cfg config.Config) {
	switch {
	case m.standard.enabled:
		m.standard.enabled = false
		m.standard.failed = true
	case m.gmin.enabled:
		m.gmin.enabled = false
		m.gmin.failed = true
	case m.source.enabled:
		m.source.enabled = false
		m.source.failed = true
	}

	switch {
	case !m.standard.failed && cfg.UseStandardSolveMethod:
		m.standard.enabled = true
	case !m.gmin.failed && cfg.UseGminStepping:
		m.gmin.enabled = true
	case !m.source.failed && cfg.UseSourceStepping:
		m.source.enabled = true
	}
}

func (m *solveMethods) moreAvailable(cfg config.Config) bool {
	standardDone := m.standard.failed || !cfg.UseStandardSolveMethod
	gminDone := m.gmin.failed || !cfg.UseGminStepping
	sourceDone := m.source.failed || !cfg.UseSourceStepping
	return !(standardDone && gminDone && sourceDone)
}

// DCSolve tries to bring sys to a converged Newton-Raphson solution,
// falling back through the standard / Gmin-stepping / source-stepping
// strategies in order as each one fails, following ahkab's dc_solve.
//
// extGmin, if non-nil, is added to sys for every attempt except
// Gmin-stepping ones, which build their own ladder. Pass nil for a
// Gmin-free solve.
func DCSolve(sys *matrix.System, extGmin *matrix.System, circ *circuit.Circuit, x0 *mat.VecDense, status *device.Status, cfg config.Config) (*solver.Result, error) {
	opts := solverOptionsFromConfig(cfg)

	methods := &solveMethods{}
	methods.setNext(cfg)

	x := x0
	var last *solver.Result

	for {
		if !methods.standard.enabled && !methods.gmin.enabled && !methods.source.enabled {
			return last, ErrConvergenceFailed
		}

		var trySys *matrix.System
		switch {
		case methods.standard.enabled:
			trySys = withExternalGmin(sys, extGmin)
		case methods.gmin.enabled:
			ladder := gminLadder(circ.NumNodes(), sys.Size, math.Pow(10, gminStepExponents[methods.gminIndex]))
			trySys = sys.Add(ladder)
		case methods.source.enabled:
			scaled := sys.ScaleRHS(sourceStepFactors[methods.sourceIndex])
			trySys = withExternalGmin(scaled, extGmin)
		}

		result, err := solver.Solve(trySys, circ, x, status, opts)
		last = result

		if err != nil {
			if methods.moreAvailable(cfg) {
				methods.setNext(cfg)
				continue
			}
			return last, err
		}

		x = result.X

		switch {
		case methods.source.enabled && methods.sourceIndex != len(sourceStepFactors)-1:
			methods.sourceIndex++
		case methods.gmin.enabled && methods.gminIndex != len(gminStepExponents)-1:
			methods.gminIndex++
		default:
			return last, nil
		}
	}
}

func withExternalGmin(sys, ext *matrix.System) *matrix.System {
	if ext == nil {
		return sys.Clone()
	}
	return sys.Add(ext)
}

func gminLadder(numNodes, size int, value float64) *matrix.System {
	g := matrix.New(size)
	for i := 0; i < numNodes; i++ {
		g.AddDiag(i, value)
	}
	return g
}

func solverOptionsFromConfig(cfg config.Config) solver.Options {
	return solver.Options{
		MaxIter:        cfg.DCMaxNRIter,
		DampFirstIters: cfg.NRDampFirstIters,
		VoltagesLock:   cfg.NLVoltagesLock,
		LockFactor:     cfg.NLVoltagesLockFactor,
		VoltageRelTol:  cfg.VoltageRelTol,
		VoltageAbsTol:  cfg.VoltageAbsTol,
		CurrentRelTol:  cfg.CurrentRelTol,
		CurrentAbsTol:  cfg.CurrentAbsTol,
	}
}
