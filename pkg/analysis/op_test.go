package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/dcsim/pkg/analysis"
	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/config"
	"github.com/edp1096/dcsim/pkg/device"
)

func TestOperatingPoint_ResistiveDivider(t *testing.T) {
	circ, err := circuit.New("divider", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 10),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewResistor("R2", []string{"2", "0"}, 1000),
	})
	require.NoError(t, err)

	op := analysis.NewOperatingPoint(config.Default())
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	require.NotNil(t, op.Solution)
	require.InDelta(t, 10.0, op.Solution.Voltages["V(1)"], 1e-9)
	require.InDelta(t, 5.0, op.Solution.Voltages["V(2)"], 1e-9)
	require.Empty(t, op.Warnings)

	results := op.GetResults()
	require.Contains(t, results, "V(1)")
	require.Len(t, results["V(1)"], 1)
}

func TestOperatingPoint_DiodeClamp(t *testing.T) {
	circ, err := circuit.New("clamp", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 5),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewDiode("D1", []string{"2", "0"}),
	})
	require.NoError(t, err)

	op := analysis.NewOperatingPoint(config.Default())
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	require.NotNil(t, op.Solution)
	v2 := op.Solution.Voltages["V(2)"]
	require.Greater(t, v2, 0.0)
	require.Less(t, v2, 1.0)
}

func TestOperatingPoint_GminCheckPassesOnWellConditionedCircuit(t *testing.T) {
	circ, err := circuit.New("divider", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 10),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewResistor("R2", []string{"2", "0"}, 1000),
	})
	require.NoError(t, err)

	op := analysis.NewOperatingPoint(config.Default())
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	require.NotNil(t, op.Check)
	require.True(t, op.Check.Passed())
}

func TestOperatingPoint_DCUseGuessDisabledStillConverges(t *testing.T) {
	circ, err := circuit.New("divider", []device.Device{
		device.NewDCVoltageSource("V1", []string{"1", "0"}, 10),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewResistor("R2", []string{"2", "0"}, 1000),
	})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.DCUseGuess = false

	op := analysis.NewOperatingPoint(cfg)
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	require.NotNil(t, op.Solution)
	require.InDelta(t, 5.0, op.Solution.Voltages["V(2)"], 1e-9)
}

func TestOperatingPoint_GroundPathWarningOnFloatingNode(t *testing.T) {
	circ, err := circuit.New("floating", []device.Device{
		device.NewCapacitor("C1", []string{"1", "2"}, 1e-6),
		device.NewResistor("R1", []string{"2", "0"}, 1000),
	})
	require.NoError(t, err)

	op := analysis.NewOperatingPoint(config.Default())
	require.NoError(t, op.Setup(circ))
	// Node 1 floats on the capacitor alone, so the bare system is
	// singular until Gmin is added; the warning is produced regardless
	// of whether the solve itself succeeds.
	_ = op.Execute()
	require.NotEmpty(t, op.Warnings)
}
