package solver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/mna"
	"github.com/edp1096/dcsim/pkg/solver"
)

func defaultOptions() solver.Options {
	return solver.Options{
		MaxIter:        100,
		DampFirstIters: true,
		VoltagesLock:   true,
		LockFactor:     4,
		VoltageRelTol:  1e-3,
		VoltageAbsTol:  1e-6,
		CurrentRelTol:  1e-3,
		CurrentAbsTol:  1e-9,
	}
}

func TestSolve_LinearCircuitShortCircuitsToSingleSolve(t *testing.T) {
	circ, err := circuit.New("divider", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 10),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewResistor("R2", []string{"2", "0"}, 1000),
	})
	require.NoError(t, err)

	status := &device.Status{Temp: 300.15}
	sys, err := mna.Assemble(circ, status)
	require.NoError(t, err)

	result, err := solver.Solve(sys, circ, nil, status, defaultOptions())
	require.NoError(t, err)
	require.True(t, result.Converged)
	require.Equal(t, 1, result.Iterations)

	n2, _ := circ.ExtNodeToInt("2")
	require.InDelta(t, 5.0, result.X.AtVec(n2), 1e-9)
}

func TestSolve_DiodeClampConverges(t *testing.T) {
	circ, err := circuit.New("clamp", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 5),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewDiode("D1", []string{"2", "0"}),
	})
	require.NoError(t, err)
	require.True(t, circ.IsNonlinear())

	status := &device.Status{Temp: 300.15}
	sys, err := mna.Assemble(circ, status)
	require.NoError(t, err)

	result, err := solver.Solve(sys, circ, nil, status, defaultOptions())
	require.NoError(t, err)
	require.True(t, result.Converged)

	n2, _ := circ.ExtNodeToInt("2")
	v2 := result.X.AtVec(n2)
	// A forward-biased silicon diode clamps well below the 5V rail.
	require.Greater(t, v2, 0.0)
	require.Less(t, v2, 1.0)
}

func TestSolve_MaxIterationsExceededCarriesDiagnostics(t *testing.T) {
	circ, err := circuit.New("clamp", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 5),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewDiode("D1", []string{"2", "0"}),
	})
	require.NoError(t, err)

	status := &device.Status{Temp: 300.15}
	sys, err := mna.Assemble(circ, status)
	require.NoError(t, err)

	opts := defaultOptions()
	opts.MaxIter = 1
	opts.DampFirstIters = false

	result, err := solver.Solve(sys, circ, nil, status, opts)
	require.ErrorIs(t, err, solver.ErrMaxIterationsExceeded)
	require.False(t, result.Converged)
	require.NotEmpty(t, result.Diagnostics)
}

func TestSolve_DampingLimitsLockedNodeSwing(t *testing.T) {
	circ, err := circuit.New("clamp", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 5),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewDiode("D1", []string{"2", "0"}),
	})
	require.NoError(t, err)

	status := &device.Status{Temp: 300.15}
	sys, err := mna.Assemble(circ, status)
	require.NoError(t, err)

	// With LockFactor 0.1 node 2 may move by at most 0.1*Vth (about
	// 2.6 mV) per iteration, so climbing to the ~0.7 V junction voltage
	// takes a few hundred iterations; the budget has to allow for that.
	opts := defaultOptions()
	opts.LockFactor = 0.1
	opts.MaxIter = 1000

	result, err := solver.Solve(sys, circ, nil, status, opts)
	require.NoError(t, err)
	require.True(t, result.Converged)
	require.Greater(t, result.Iterations, 100)
}
