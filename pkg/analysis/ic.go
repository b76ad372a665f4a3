package analysis

import (
	"fmt"
	"regexp"

	"gonum.org/v1/gonum/mat"

	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/device"
)

var (
	voltageICPattern = regexp.MustCompile(`(?i)^V\s*\(\s*(\w+)\s*\)$`)
	currentICPattern = regexp.MustCompile(`(?i)^I\s*\(\s*(\w+)\s*\)$`)
)

// BuildX0FromIC assembles an initial guess vector from a dictionary of
// named initial conditions, following ahkab's
// build_x0_from_user_supplied_ic. Keys are "V(node)" for a nodal
// voltage or "I(element)" for a voltage-defined element's branch
// current; every unspecified entry defaults to zero.
func BuildX0FromIC(circ *circuit.Circuit, ic map[string]float64) (*mat.VecDense, error) {
	x0 := mat.NewVecDense(circ.Size(), nil)
	for label, value := range ic {
		if m := voltageICPattern.FindStringSubmatch(label); m != nil {
			idx, ok := circ.ExtNodeToInt(m[1])
			if !ok {
				return nil, fmt.Errorf("analysis: unknown node %q in initial condition %q", m[1], label)
			}
			if idx < 0 {
				continue
			}
			x0.SetVec(idx, value)
			continue
		}
		if m := currentICPattern.FindStringSubmatch(label); m != nil {
			idx, ok := circ.BranchIndex(m[1])
			if !ok {
				return nil, fmt.Errorf("analysis: unknown voltage-defined element %q in initial condition %q", m[1], label)
			}
			x0.SetVec(idx, value)
			continue
		}
		return nil, fmt.Errorf("analysis: unrecognized initial condition label %q", label)
	}
	return x0, nil
}

// ApplyElementIC overlays every device-level initial condition (a
// capacitor, diode, or inductor's .IC netlist parameter) onto x0,
// following ahkab's modify_x0_for_ic, which forces v(n1) = v(n2) + ic
// for both devices.capacitor and diode.diode. Device-level conditions
// take precedence over whatever BuildX0FromIC already placed at the
// same index.
func ApplyElementIC(circ *circuit.Circuit, x0 *mat.VecDense) {
	forceVoltage := func(n1, n2 int, ic float64) {
		v2 := 0.0
		if n2 >= 0 {
			v2 = x0.AtVec(n2)
		}
		if n1 >= 0 {
			x0.SetVec(n1, v2+ic)
		}
	}

	for _, elem := range circ.Elements() {
		switch d := elem.(type) {
		case *device.Capacitor:
			if !d.HasIC {
				continue
			}
			nodes := d.Nodes()
			forceVoltage(nodes[0], nodes[1], d.IC)
		case *device.Diode:
			if !d.HasIC {
				continue
			}
			nodes := d.Nodes()
			forceVoltage(nodes[0], nodes[1], d.IC)
		case *device.Inductor:
			if !d.HasIC {
				continue
			}
			x0.SetVec(d.BranchIndex(), d.IC)
		}
	}
}
