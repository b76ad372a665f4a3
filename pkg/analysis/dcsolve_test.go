package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/dcsim/pkg/analysis"
	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/config"
	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/mna"
)

func TestDCSolve_StandardStrategySolvesLinearCircuit(t *testing.T) {
	circ, err := circuit.New("divider", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 10),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewResistor("R2", []string{"2", "0"}, 1000),
	})
	require.NoError(t, err)

	status := &device.Status{Temp: 300.15}
	sys, err := mna.Assemble(circ, status)
	require.NoError(t, err)

	result, err := analysis.DCSolve(sys, nil, circ, nil, status, config.Default())
	require.NoError(t, err)
	require.True(t, result.Converged)

	n2, _ := circ.ExtNodeToInt("2")
	require.InDelta(t, 5.0, result.X.AtVec(n2), 1e-9)
}

func TestDCSolve_ConvergesOnHighImpedanceDiodeCircuit(t *testing.T) {
	circ, err := circuit.New("clamp", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 5),
		device.NewResistor("R1", []string{"1", "2"}, 1e9),
		device.NewDiode("D1", []string{"2", "0"}),
	})
	require.NoError(t, err)

	status := &device.Status{Temp: 300.15}
	sys, err := mna.Assemble(circ, status)
	require.NoError(t, err)

	cfg := config.Default()
	result, err := analysis.DCSolve(sys, nil, circ, nil, status, cfg)
	require.NoError(t, err)
	require.True(t, result.Converged)
}

func TestDCSolve_ReturnsErrConvergenceFailedWhenEveryStrategyDisabled(t *testing.T) {
	circ, err := circuit.New("clamp", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 5),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewDiode("D1", []string{"2", "0"}),
	})
	require.NoError(t, err)

	status := &device.Status{Temp: 300.15}
	sys, err := mna.Assemble(circ, status)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.UseStandardSolveMethod = false
	cfg.UseGminStepping = false
	cfg.UseSourceStepping = false

	_, err = analysis.DCSolve(sys, nil, circ, nil, status, cfg)
	require.ErrorIs(t, err, analysis.ErrConvergenceFailed)
}
