package device

import "math"

// CurrentSource is an independent current source. Scale multiplies the
// waveform value at stamp time and defaults to 1, the same as
// VoltageSource.Scale; source stepping scales the assembled right-hand
// side rather than this field.
type CurrentSource struct {
	BaseDevice
	ctype WaveformType
	Scale float64

	dcValue float64

	amplitude float64
	freq      float64
	phase     float64

	i1, i2     float64
	delay      float64
	rise, fall float64
	pWidth     float64
	period     float64

	times  []float64
	values []float64
}

func NewDCCurrentSource(name string, nodeNames []string, value float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: NewBaseDevice(name, value, nodeNames, "I"),
		ctype:      DC,
		dcValue:    value,
		Scale:      1.0,
	}
}

func NewSinCurrentSource(name string, nodeNames []string, offset, amplitude, freq, phase float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: NewBaseDevice(name, offset, nodeNames, "I"),
		ctype:      SIN,
		dcValue:    offset,
		amplitude:  amplitude,
		freq:       freq,
		phase:      phase,
		Scale:      1.0,
	}
}

func NewPulseCurrentSource(name string, nodeNames []string, i1, i2, delay, rise, fall, pWidth, period float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: NewBaseDevice(name, i1, nodeNames, "I"),
		ctype:      PULSE,
		i1:         i1,
		i2:         i2,
		delay:      delay,
		rise:       rise,
		fall:       fall,
		pWidth:     pWidth,
		period:     period,
		Scale:      1.0,
	}
}

func NewPWLCurrentSource(name string, nodeNames []string, times, values []float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: NewBaseDevice(name, values[0], nodeNames, "I"),
		ctype:      PWL,
		times:      times,
		values:     values,
		Scale:      1.0,
	}
}

// Current returns the source's unscaled waveform value at time t.
func (i *CurrentSource) Current(t float64) float64 {
	switch i.ctype {
	case DC:
		return i.dcValue
	case SIN:
		phaseRad := i.phase * math.Pi / 180.0
		return i.dcValue + i.amplitude*math.Sin(2.0*math.Pi*i.freq*t+phaseRad)
	case PULSE:
		return i.pulseValue(t)
	case PWL:
		return i.pwlValue(t)
	default:
		return 0
	}
}

func (i *CurrentSource) Stamp(m Stamper, status *Status) error {
	n1, n2 := i.NodesV[0], i.NodesV[1]
	current := i.Scale * i.Current(status.Time)

	m.AddRHS(n1, current)
	m.AddRHS(n2, -current)

	return nil
}

func (i *CurrentSource) pulseValue(t float64) float64 {
	if t < i.delay {
		return i.i1
	}
	t -= i.delay
	if i.period > 0 {
		t = math.Mod(t, i.period)
	}
	if t < i.rise {
		if i.rise == 0 {
			return i.i2
		}
		return i.i1 + (i.i2-i.i1)*t/i.rise
	}
	if t < i.rise+i.pWidth {
		return i.i2
	}
	fallStart := i.rise + i.pWidth
	if t < fallStart+i.fall {
		if i.fall == 0 {
			return i.i1
		}
		return i.i2 - (i.i2-i.i1)*(t-fallStart)/i.fall
	}
	return i.i1
}

func (i *CurrentSource) pwlValue(t float64) float64 {
	if t <= i.times[0] {
		return i.values[0]
	}
	last := len(i.times) - 1
	if t >= i.times[last] {
		return i.values[last]
	}
	for idx := 1; idx < len(i.times); idx++ {
		if t <= i.times[idx] {
			t1, t2 := i.times[idx-1], i.times[idx]
			i1, i2 := i.values[idx-1], i.values[idx]
			slope := (i2 - i1) / (t2 - t1)
			return i1 + slope*(t-t1)
		}
	}
	return i.values[last]
}

func (i *CurrentSource) SetValue(value float64) {
	i.DeviceValue = value
	i.dcValue = value
}
