package device

// VCVS is a linear voltage-controlled voltage source (ahkab's
// evsource): output voltage = alpha times the control-port voltage. It
// is voltage-defined, contributing a branch current unknown and a KVL
// row, the way a vsource does. Node names: output+, output-,
// control+, control-.
type VCVS struct {
	BranchDevice
	Alpha float64
}

func NewVCVS(name string, nodeNames []string, alpha float64) *VCVS {
	return &VCVS{BranchDevice: BranchDevice{BaseDevice: NewBaseDevice(name, alpha, nodeNames, "E")}, Alpha: alpha}
}

func (e *VCVS) Stamp(m Stamper, status *Status) error {
	n1, n2 := e.NodesV[0], e.NodesV[1]
	sn1, sn2 := e.NodesV[2], e.NodesV[3]
	b := e.Branch

	m.AddElement(n1, b, 1)
	m.AddElement(n2, b, -1)
	m.AddElement(b, n1, 1)
	m.AddElement(b, n2, -1)
	m.AddElement(b, sn1, -e.Alpha)
	m.AddElement(b, sn2, e.Alpha)

	return nil
}
