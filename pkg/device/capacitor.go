package device

// Capacitor is an open circuit at DC: it contributes no stamp beyond an
// optional user-supplied initial condition, which pkg/analysis's IC
// assembly consumes directly rather than through Stamp.
type Capacitor struct {
	BaseDevice
	IC      float64
	HasIC   bool
}

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: NewBaseDevice(name, value, nodeNames, "C")}
}

func (c *Capacitor) SetIC(v float64) {
	c.IC = v
	c.HasIC = true
}

func (c *Capacitor) Stamp(m Stamper, status *Status) error {
	return nil
}
