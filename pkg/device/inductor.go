package device

// Inductor is a short circuit at DC: a voltage-defined element whose
// KVL row pins v1 - v2 = 0. IC is the optional user-supplied initial
// branch current, consumed directly by pkg/analysis's IC assembly.
type Inductor struct {
	BranchDevice
	IC    float64
	HasIC bool
}

func NewInductor(name string, nodeNames []string, value float64) *Inductor {
	return &Inductor{BranchDevice: BranchDevice{BaseDevice: NewBaseDevice(name, value, nodeNames, "L")}}
}

func (l *Inductor) SetIC(i float64) {
	l.IC = i
	l.HasIC = true
}

func (l *Inductor) Stamp(m Stamper, status *Status) error {
	n1, n2 := l.NodesV[0], l.NodesV[1]
	b := l.Branch

	m.AddElement(n1, b, 1)
	m.AddElement(b, n1, 1)
	m.AddElement(n2, b, -1)
	m.AddElement(b, n2, -1)

	return nil
}
