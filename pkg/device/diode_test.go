package device_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/dcsim/internal/consts"
	"github.com/edp1096/dcsim/pkg/device"
)

func TestDiode_PanicsOnWrongNodeCount(t *testing.T) {
	require.Panics(t, func() {
		device.NewDiode("D1", []string{"1"})
	})
}

func TestDiode_CurrentMatchesShockleyEquation(t *testing.T) {
	d := device.NewDiode("D1", []string{"1", "0"})
	d.SetNodes([]int{0, -1})

	vt := consts.ThermalVoltage(d.Temp)
	v := 0.6
	got := d.I(0, []float64{v}, 0)
	want := d.Is * (math.Exp(v/(d.N*vt)) - 1)
	require.InDelta(t, want, got, math.Abs(want)*1e-9+1e-18)
}

func TestDiode_ConductanceIsPositive(t *testing.T) {
	d := device.NewDiode("D1", []string{"1", "0"})
	d.SetNodes([]int{0, -1})

	g := d.G(0, []float64{0.6}, 0, 0)
	require.Greater(t, g, 0.0)
}

func TestDiode_ReverseBiasFloorsNearMinusIs(t *testing.T) {
	d := device.NewDiode("D1", []string{"1", "0"})
	d.SetNodes([]int{0, -1})

	vt := consts.ThermalVoltage(d.Temp)
	got := d.I(0, []float64{-10 * vt}, 0)
	require.InDelta(t, -d.Is, got, d.Is*0.5)
}

func TestDiode_SetICRecordsInitialCondition(t *testing.T) {
	d := device.NewDiode("D1", []string{"1", "0"})
	require.False(t, d.HasIC)

	d.SetIC(0.6)
	require.True(t, d.HasIC)
	require.Equal(t, 0.6, d.IC)
}

func TestDiode_OutputAndDrivePortsMatch(t *testing.T) {
	d := device.NewDiode("D1", []string{"1", "2"})
	d.SetNodes([]int{3, 4})

	outs := d.OutputPorts()
	require.Len(t, outs, 1)
	require.Equal(t, device.Port{Pos: 3, Neg: 4}, outs[0])
	require.Equal(t, []device.Port{{Pos: 3, Neg: 4}}, d.DrivePorts(0))
}
