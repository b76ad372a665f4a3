package device

import "fmt"

// Resistor is a linear two-terminal element with an optional linear and
// quadratic temperature coefficient, following the teacher's
// temperature-adjusted resistor.
type Resistor struct {
	BaseDevice
	Tc1  float64
	Tc2  float64
	Tnom float64
}

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{
		BaseDevice: NewBaseDevice(name, value, nodeNames, "R"),
		Tc1:        0.0,
		Tc2:        0.0,
		Tnom:       300.15,
	}
}

func (r *Resistor) Stamp(m Stamper, status *Status) error {
	if len(r.NodesV) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.DeviceName)
	}

	n1, n2 := r.NodesV[0], r.NodesV[1]
	g := 1.0 / r.temperatureAdjustedValue(status.Temp)

	m.AddElement(n1, n1, g)
	m.AddElement(n1, n2, -g)
	m.AddElement(n2, n1, -g)
	m.AddElement(n2, n2, g)

	return nil
}

func (r *Resistor) temperatureAdjustedValue(temp float64) float64 {
	if temp == 0 {
		temp = r.Tnom
	}
	dt := temp - r.Tnom
	factor := 1.0 + r.Tc1*dt + r.Tc2*dt*dt
	return r.DeviceValue * factor
}
