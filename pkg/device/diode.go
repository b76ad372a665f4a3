package device

import (
	"fmt"
	"math"

	"github.com/edp1096/dcsim/internal/consts"
)

// Diode is the nonlinear two-terminal element the Device Contribution
// Engine exercises through the four-method NonlinearElement contract
// instead of a bespoke load pair, following the Shockley equation the
// teacher's diode used.
type Diode struct {
	BaseDevice

	Is   float64
	N    float64
	Bv   float64
	Gmin float64
	Temp float64

	IC    float64
	HasIC bool
}

var _ NonlinearElement = (*Diode)(nil)

func NewDiode(name string, nodeNames []string) *Diode {
	if len(nodeNames) != 2 {
		panic(fmt.Sprintf("diode %s: requires exactly 2 nodes", name))
	}
	d := &Diode{BaseDevice: NewBaseDevice(name, 0, nodeNames, "D")}
	d.setDefaultParameters()
	return d
}

func (d *Diode) setDefaultParameters() {
	d.Is = 1e-14
	d.N = 1.0
	d.Bv = 100.0
	d.Gmin = 1e-12
	d.Temp = consts.RoomTemp
}

func (d *Diode) Stamp(m Stamper, status *Status) error {
	return nil
}

// SetIC records a user-supplied initial junction voltage, consumed by
// pkg/analysis's IC assembly the same way a capacitor's is.
func (d *Diode) SetIC(v float64) {
	d.IC = v
	d.HasIC = true
}

func (d *Diode) OutputPorts() []Port {
	return []Port{{Pos: d.NodesV[0], Neg: d.NodesV[1]}}
}

func (d *Diode) DrivePorts(k int) []Port {
	return []Port{{Pos: d.NodesV[0], Neg: d.NodesV[1]}}
}

func (d *Diode) I(k int, vd []float64, t float64) float64 {
	return d.current(vd[0], d.vth())
}

func (d *Diode) G(k int, vd []float64, j int, t float64) float64 {
	vt := d.vth()
	return d.conductance(vd[0], d.current(vd[0], vt), vt)
}

func (d *Diode) vth() float64 {
	return consts.ThermalVoltage(d.Temp)
}

func (d *Diode) current(v, vt float64) float64 {
	if v >= -5*vt {
		arg := v / (d.N * vt)
		if arg > 40 {
			arg = 40
		}
		return d.Is * (math.Exp(arg) - 1)
	}
	if v < -d.Bv {
		return -d.Is * (1 + (v+d.Bv)/vt)
	}
	return -d.Is
}

func (d *Diode) conductance(v, i, vt float64) float64 {
	if v >= -5*vt {
		return (i+d.Is)/(d.N*vt) + d.Gmin
	}
	if v < -d.Bv {
		return d.Is/vt + d.Gmin
	}
	return d.Gmin
}
