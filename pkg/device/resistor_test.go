package device_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/matrix"
)

func TestResistor_StampIsSymmetric(t *testing.T) {
	r := device.NewResistor("R1", []string{"1", "2"}, 1000)
	r.SetNodes([]int{0, 1})

	sys := matrix.New(2)
	require.NoError(t, r.Stamp(sys, &device.Status{Temp: 300.15}))

	g := 1.0 / 1000.0
	require.InDelta(t, g, sys.A.At(0, 0), 1e-12)
	require.InDelta(t, g, sys.A.At(1, 1), 1e-12)
	require.InDelta(t, -g, sys.A.At(0, 1), 1e-12)
	require.InDelta(t, -g, sys.A.At(1, 0), 1e-12)
}

func TestResistor_GroundedNodeIgnored(t *testing.T) {
	r := device.NewResistor("R1", []string{"1", "0"}, 500)
	r.SetNodes([]int{0, -1})

	sys := matrix.New(1)
	require.NoError(t, r.Stamp(sys, &device.Status{Temp: 300.15}))

	require.InDelta(t, 1.0/500.0, sys.A.At(0, 0), 1e-12)
}

func TestResistor_TemperatureCoefficient(t *testing.T) {
	r := device.NewResistor("R1", []string{"1", "2"}, 1000)
	r.SetNodes([]int{0, 1})
	r.Tc1 = 0.01
	r.Tnom = 300.15

	sys := matrix.New(2)
	require.NoError(t, r.Stamp(sys, &device.Status{Temp: 310.15}))

	wantR := 1000 * (1 + 0.01*10)
	require.InDelta(t, 1.0/wantR, sys.A.At(0, 0), 1e-9)
}
