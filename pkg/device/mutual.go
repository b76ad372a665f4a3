package device

import "fmt"

// Mutual names a coupling coefficient between two inductors. It has no
// DC contribution (mutual inductance only couples di/dt terms), but is
// kept as a topology-validating element so a netlist referencing
// unknown inductor names fails (netlist.ResolveMutualInductors rejects
// the name, and Stamp rejects an unresolved coupling at assembly time)
// rather than silently doing nothing.
type Mutual struct {
	BaseDevice
	names       []string
	inductors   []*Inductor
	coefficient float64
}

func NewMutual(name string, indNames []string, k float64) *Mutual {
	return &Mutual{
		BaseDevice:  NewBaseDevice(name, k, nil, "K"),
		names:       indNames,
		coefficient: k,
		inductors:   make([]*Inductor, len(indNames)),
	}
}

func (m *Mutual) InductorNames() []string { return m.names }

func (m *Mutual) SetInductor(index int, ind *Inductor) error {
	if index < 0 || index >= len(m.inductors) {
		return fmt.Errorf("mutual %s: invalid inductor index %d", m.DeviceName, index)
	}
	m.inductors[index] = ind
	return nil
}

func (m *Mutual) Coefficient() float64 { return m.coefficient }

func (m *Mutual) Stamp(s Stamper, status *Status) error {
	if len(m.inductors) < 2 {
		return fmt.Errorf("mutual coupling %s requires at least two inductors", m.DeviceName)
	}
	for i, ind := range m.inductors {
		if ind == nil {
			return fmt.Errorf("mutual coupling %s: inductor %q not resolved", m.DeviceName, m.names[i])
		}
	}
	return nil
}
