// Package mna assembles the reduced Modified Nodal Analysis system from
// a circuit's linear elements, and runs the ground-path sanity check
// ahkab performs right after assembly.
package mna

import (
	"fmt"

	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/matrix"
)

// Assemble stamps every linear element of circ into a fresh reduced
// system, following ahkab's generate_mna_and_N: nonlinear elements
// contribute nothing here — their current/conductance is added every
// Newton-Raphson iteration by pkg/solver's Device Contribution Engine.
func Assemble(circ *circuit.Circuit, status *device.Status) (*matrix.System, error) {
	sys := matrix.New(circ.Size())
	for _, d := range circ.Elements() {
		if _, nonlinear := d.(device.NonlinearElement); nonlinear {
			continue
		}
		if err := d.Stamp(sys, status); err != nil {
			return nil, fmt.Errorf("stamping %s: %w", d.Name(), err)
		}
	}
	return sys, nil
}

// CheckGroundPaths warns about nodes with no DC path to ground, through
// either linear or nonlinear elements. It never halts assembly: Gmin
// rescues most such circuits, and two series capacitors always fail
// this check harmlessly. Grounded on ahkab's check_ground_paths.
func CheckGroundPaths(circ *circuit.Circuit, sys *matrix.System) []string {
	var warnings []string

	isNonlinearOutput := make(map[int]bool)
	for _, nl := range circ.NonlinearElements() {
		for _, p := range nl.OutputPorts() {
			isNonlinearOutput[p.Pos] = true
			isNonlinearOutput[p.Neg] = true
		}
	}

	numNodes := circ.NumNodes()
	for node := 0; node < numNodes; node++ {
		if sys.A.At(node, node) != 0 {
			continue
		}
		hasBranchPath := false
		for col := numNodes; col < sys.Size; col++ {
			if sys.A.At(node, col) != 0 {
				hasBranchPath = true
				break
			}
		}
		if hasBranchPath {
			continue
		}
		if isNonlinearOutput[node] {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("no path to ground from node %s", circ.IntNodeToExt(node)))
	}

	return warnings
}
