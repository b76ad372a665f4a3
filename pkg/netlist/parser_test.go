package netlist_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/netlist"
)

func TestParse_OpDirective(t *testing.T) {
	ckt, err := netlist.Parse("* title\nV1 1 0 DC 5\nR1 1 0 1k\n.op\n")
	require.NoError(t, err)
	require.Equal(t, netlist.AnalysisOP, ckt.Analysis)
	require.Len(t, ckt.Elements, 2)
}

func TestParse_DcDirective(t *testing.T) {
	ckt, err := netlist.Parse("title\nV1 1 0 DC 5\nR1 1 0 1k\n.dc V1 0 10 1\n")
	require.NoError(t, err)
	require.Equal(t, netlist.AnalysisDC, ckt.Analysis)
	require.Equal(t, "V1", ckt.DCParam.Source)
	require.Equal(t, 0.0, ckt.DCParam.Start)
	require.Equal(t, 10.0, ckt.DCParam.Stop)
	require.Equal(t, 1.0, ckt.DCParam.Step)
	require.False(t, ckt.DCParam.Logarithmic)
}

func TestParse_DcDirectiveLogFlag(t *testing.T) {
	ckt, err := netlist.Parse("title\nV1 1 0 DC 5\n.dc V1 1 100 1 log\n")
	require.NoError(t, err)
	require.True(t, ckt.DCParam.Logarithmic)
}

func TestParse_DcDirectiveRejectsTooFewParams(t *testing.T) {
	_, err := netlist.Parse("title\nV1 1 0 DC 5\n.dc V1 0 10\n")
	require.Error(t, err)
}

func TestParse_IcDirective(t *testing.T) {
	ckt, err := netlist.Parse("title\nC1 1 0 1u\n.ic V(1)=3.3 I(L1)=0.01\n")
	require.NoError(t, err)
	require.InDelta(t, 3.3, ckt.ICValues["V(1)"], 1e-12)
	require.InDelta(t, 0.01, ckt.ICValues["I(L1)"], 1e-12)
}

func TestParse_RejectsTranDirective(t *testing.T) {
	_, err := netlist.Parse("title\nR1 1 0 1k\n.tran 1u 1m\n")
	require.Error(t, err)
}

func TestParse_RejectsAcDirective(t *testing.T) {
	_, err := netlist.Parse("title\nR1 1 0 1k\n.ac dec 10 1 1meg\n")
	require.Error(t, err)
}

func TestParse_ResistorCard(t *testing.T) {
	ckt, err := netlist.Parse("title\nR1 1 2 1k\n")
	require.NoError(t, err)
	require.Len(t, ckt.Elements, 1)
	require.Equal(t, "R", ckt.Elements[0].Type)
	require.Equal(t, 1000.0, ckt.Elements[0].Value)
}

func TestParse_CapacitorWithIC(t *testing.T) {
	ckt, err := netlist.Parse("title\nC1 1 0 1u ic=2.5\n")
	require.NoError(t, err)
	require.Equal(t, "2.5", ckt.Elements[0].Params["ic"])
	require.Equal(t, 1e-6, ckt.Elements[0].Value)
}

func TestParse_VcvsAndVccsAndMutualCards(t *testing.T) {
	ckt, err := netlist.Parse("title\nE1 1 0 2 0 2\nG1 1 0 2 0 0.5\nL1 3 0 1m\nL2 4 0 1m\nK1 L1 L2 0.8\n")
	require.NoError(t, err)
	require.Equal(t, "E", ckt.Elements[0].Type)
	require.Equal(t, "G", ckt.Elements[1].Type)
	require.Equal(t, "K", ckt.Elements[4].Type)
	require.Equal(t, []string{"L1", "L2"}, ckt.Elements[4].Nodes)
	require.Equal(t, 0.8, ckt.Elements[4].Value)
}

func TestParse_DiodeCardWithOptionalModel(t *testing.T) {
	ckt, err := netlist.Parse("title\nD1 1 0 1N4148\n")
	require.NoError(t, err)
	require.Equal(t, "D", ckt.Elements[0].Type)
	require.Equal(t, "1N4148", ckt.Elements[0].Params["model"])
}

func TestParse_DiodeCardWithInitialCondition(t *testing.T) {
	ckt, err := netlist.Parse("title\nD1 1 0 1N4148 ic=0.65\n")
	require.NoError(t, err)
	require.Equal(t, "1N4148", ckt.Elements[0].Params["model"])
	require.Equal(t, "0.65", ckt.Elements[0].Params["ic"])

	dev, err := netlist.CreateDevice(ckt.Elements[0])
	require.NoError(t, err)
	d, ok := dev.(*device.Diode)
	require.True(t, ok)
	require.True(t, d.HasIC)
	require.InDelta(t, 0.65, d.IC, 1e-12)
}

func TestParse_VoltageSourceWaveforms(t *testing.T) {
	ckt, err := netlist.Parse("title\n" +
		"V1 1 0 DC 5\n" +
		"V2 2 0 SIN(0 1 60)\n" +
		"V3 3 0 PULSE(0 5 0 1n 1n 1m 2m)\n" +
		"V4 4 0 PWL(0 0 1m 5)\n")
	require.NoError(t, err)
	require.Equal(t, "dc", ckt.Elements[0].Params["type"])
	require.Equal(t, "sin", ckt.Elements[1].Params["type"])
	require.Equal(t, "pulse", ckt.Elements[2].Params["type"])
	require.Equal(t, "pwl", ckt.Elements[3].Params["type"])
}

func TestParse_InvalidElementCardErrors(t *testing.T) {
	_, err := netlist.Parse("title\nR1 1\n")
	require.Error(t, err)
}

func TestCreateDevice_DispatchesByType(t *testing.T) {
	cases := []netlist.Element{
		{Type: "R", Name: "R1", Nodes: []string{"1", "0"}, Value: 1000},
		{Type: "L", Name: "L1", Nodes: []string{"1", "0"}, Value: 1e-3},
		{Type: "C", Name: "C1", Nodes: []string{"1", "0"}, Value: 1e-6},
		{Type: "D", Name: "D1", Nodes: []string{"1", "0"}},
		{Type: "E", Name: "E1", Nodes: []string{"1", "0", "2", "0"}, Value: 2},
		{Type: "G", Name: "G1", Nodes: []string{"1", "0", "2", "0"}, Value: 0.5},
		{Type: "K", Name: "K1", Nodes: []string{"L1", "L2"}, Value: 0.8},
		{Type: "H", Name: "H1", Nodes: []string{"1", "0"}},
		{Type: "V", Name: "V1", Nodes: []string{"1", "0"}, Value: 5, Params: map[string]string{"type": "dc"}},
		{Type: "I", Name: "I1", Nodes: []string{"1", "0"}, Value: 1e-3, Params: map[string]string{"type": "dc"}},
	}
	for _, c := range cases {
		if c.Params == nil {
			c.Params = map[string]string{}
		}
		d, err := netlist.CreateDevice(c)
		require.NoError(t, err, c.Type)
		require.Equal(t, c.Name, d.Name())
	}
}

func TestCreateDevice_VcvsRejectsWrongNodeCount(t *testing.T) {
	_, err := netlist.CreateDevice(netlist.Element{Type: "E", Name: "E1", Nodes: []string{"1", "0"}, Value: 2})
	require.Error(t, err)
}

func TestCreateDevice_UnsupportedTypeErrors(t *testing.T) {
	_, err := netlist.CreateDevice(netlist.Element{Type: "Z", Name: "Z1"})
	require.Error(t, err)
}

func TestResolveMutualInductors_LinksByName(t *testing.T) {
	l1 := device.NewInductor("L1", []string{"1", "0"}, 1e-3)
	l2 := device.NewInductor("L2", []string{"2", "0"}, 1e-3)
	m := device.NewMutual("K1", []string{"L1", "L2"}, 0.5)

	err := netlist.ResolveMutualInductors([]device.Device{l1, l2, m})
	require.NoError(t, err)
}

func TestResolveMutualInductors_UnknownInductorErrors(t *testing.T) {
	l1 := device.NewInductor("L1", []string{"1", "0"}, 1e-3)
	m := device.NewMutual("K1", []string{"L1", "L2"}, 0.5)

	err := netlist.ResolveMutualInductors([]device.Device{l1, m})
	require.Error(t, err)
}

func TestParseValue_UnitSuffixes(t *testing.T) {
	cases := map[string]float64{
		"1k":   1000,
		"1meg": 1e6,
		"1u":   1e-6,
		"1n":   1e-9,
		"2.5":  2.5,
		"-3m":  -3e-3,
		"1M":   1e-3,
	}
	for in, want := range cases {
		got, err := netlist.ParseValue(in)
		require.NoError(t, err, in)
		require.InDelta(t, want, got, 1e-15, in)
	}
}

func TestParseValue_UppercaseMMatchesLowercaseMilli(t *testing.T) {
	lower, err := netlist.ParseValue("2.2m")
	require.NoError(t, err)
	upper, err := netlist.ParseValue("2.2M")
	require.NoError(t, err)
	require.Equal(t, lower, upper)
}

func TestParseValue_RejectsGarbage(t *testing.T) {
	_, err := netlist.ParseValue("abc")
	require.Error(t, err)
}
