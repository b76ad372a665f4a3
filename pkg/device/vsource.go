package device

import "math"

// WaveformType selects the time-variant shape of an independent source.
type WaveformType int

const (
	DC WaveformType = iota
	SIN
	PULSE
	PWL
)

// VoltageSource is a voltage-defined element: it contributes one extra
// branch-current unknown and one KVL row. Scale multiplies the waveform
// value at stamp time and defaults to 1; the source-stepping convergence
// aid does not change it, it scales the assembled right-hand side
// instead (matrix.System.ScaleRHS).
type VoltageSource struct {
	BranchDevice
	wtype WaveformType
	Scale float64

	dcValue float64

	amplitude float64
	freq      float64
	phase     float64

	v1, v2          float64
	delay           float64
	rise, fall      float64
	pWidth          float64
	period          float64

	times  []float64
	values []float64
}

func NewDCVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return &VoltageSource{
		BranchDevice: BranchDevice{BaseDevice: NewBaseDevice(name, value, nodeNames, "V")},
		wtype:        DC,
		dcValue:      value,
		Scale:        1.0,
	}
}

func NewSinVoltageSource(name string, nodeNames []string, offset, amplitude, freq, phase float64) *VoltageSource {
	return &VoltageSource{
		BranchDevice: BranchDevice{BaseDevice: NewBaseDevice(name, offset, nodeNames, "V")},
		wtype:        SIN,
		dcValue:      offset,
		amplitude:    amplitude,
		freq:         freq,
		phase:        phase,
		Scale:        1.0,
	}
}

func NewPulseVoltageSource(name string, nodeNames []string, v1, v2, delay, rise, fall, pWidth, period float64) *VoltageSource {
	return &VoltageSource{
		BranchDevice: BranchDevice{BaseDevice: NewBaseDevice(name, v1, nodeNames, "V")},
		wtype:        PULSE,
		v1:           v1,
		v2:           v2,
		delay:        delay,
		rise:         rise,
		fall:         fall,
		pWidth:       pWidth,
		period:       period,
		Scale:        1.0,
	}
}

func NewPWLVoltageSource(name string, nodeNames []string, times, values []float64) *VoltageSource {
	return &VoltageSource{
		BranchDevice: BranchDevice{BaseDevice: NewBaseDevice(name, values[0], nodeNames, "V")},
		wtype:        PWL,
		times:        times,
		values:       values,
		Scale:        1.0,
	}
}

// Voltage returns the source's unscaled waveform value at time t.
func (v *VoltageSource) Voltage(t float64) float64 {
	switch v.wtype {
	case DC:
		return v.dcValue
	case SIN:
		phaseRad := v.phase * math.Pi / 180.0
		return v.dcValue + v.amplitude*math.Sin(2.0*math.Pi*v.freq*t+phaseRad)
	case PULSE:
		return v.pulseValue(t)
	case PWL:
		return v.pwlValue(t)
	default:
		return 0
	}
}

func (v *VoltageSource) Stamp(m Stamper, status *Status) error {
	n1, n2 := v.NodesV[0], v.NodesV[1]
	b := v.Branch

	m.AddElement(b, n1, 1)
	m.AddElement(n1, b, 1)
	m.AddElement(b, n2, -1)
	m.AddElement(n2, b, -1)

	m.AddRHS(b, v.Scale*v.Voltage(status.Time))
	return nil
}

func (v *VoltageSource) pulseValue(t float64) float64 {
	if t < v.delay {
		return v.v1
	}
	t -= v.delay
	if v.period > 0 {
		t = math.Mod(t, v.period)
	}
	if t < v.rise {
		if v.rise == 0 {
			return v.v2
		}
		return v.v1 + (v.v2-v.v1)*t/v.rise
	}
	if t < v.rise+v.pWidth {
		return v.v2
	}
	fallStart := v.rise + v.pWidth
	if t < fallStart+v.fall {
		if v.fall == 0 {
			return v.v1
		}
		return v.v2 - (v.v2-v.v1)*(t-fallStart)/v.fall
	}
	return v.v1
}

func (v *VoltageSource) pwlValue(t float64) float64 {
	if t <= v.times[0] {
		return v.values[0]
	}
	last := len(v.times) - 1
	if t >= v.times[last] {
		return v.values[last]
	}
	for idx := 1; idx < len(v.times); idx++ {
		if t <= v.times[idx] {
			t1, t2 := v.times[idx-1], v.times[idx]
			i1, i2 := v.values[idx-1], v.values[idx]
			slope := (i2 - i1) / (t2 - t1)
			return i1 + slope*(t-t1)
		}
	}
	return v.values[last]
}

func (v *VoltageSource) SetValue(value float64) {
	v.DeviceValue = value
	v.dcValue = value
}
