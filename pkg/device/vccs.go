package device

// VCCS is a linear voltage-controlled current source (ahkab's
// gisource): alpha amps of output current per volt across the control
// port. It needs four node names: output+, output-, control+, control-.
type VCCS struct {
	BaseDevice
	Alpha float64
}

func NewVCCS(name string, nodeNames []string, alpha float64) *VCCS {
	return &VCCS{BaseDevice: NewBaseDevice(name, alpha, nodeNames, "G"), Alpha: alpha}
}

func (g *VCCS) Stamp(m Stamper, status *Status) error {
	n1, n2 := g.NodesV[0], g.NodesV[1]
	sn1, sn2 := g.NodesV[2], g.NodesV[3]

	m.AddElement(n1, sn1, g.Alpha)
	m.AddElement(n1, sn2, -g.Alpha)
	m.AddElement(n2, sn1, -g.Alpha)
	m.AddElement(n2, sn2, g.Alpha)

	return nil
}
