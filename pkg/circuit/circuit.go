// Package circuit holds the topology collaborator: the node/branch
// numbering, the element list, and the small derived views (locked
// nodes, voltage-defined lookup) the MNA assembler and solver need.
package circuit

import (
	"fmt"

	"github.com/edp1096/dcsim/pkg/device"
)

// Circuit is the topology collaborator described by spec.md §6: a
// bijective external-name to internal-index node map, the ordered
// element list, and the voltage-defined branch indices, built once by
// New and then read by pkg/mna and pkg/solver.
type Circuit struct {
	name string

	nodeMap   map[string]int // external name -> 0-based index, ground excluded
	nodeNames []string       // index -> external name

	branchMap map[string]int // voltage-defined element name -> 0-based branch index

	elements   []device.Device
	nonlinear  []device.NonlinearElement
	voltageDef []device.VoltageDefined

	numNodes int // node unknowns, excludes ground
	size     int // numNodes + len(branchMap), total unknowns
}

// New builds a Circuit from an ordered element list. Node and branch
// indices are assigned in first-appearance order, the way ahkab's
// nodes_dict grows as elements are parsed.
func New(name string, elements []device.Device) (*Circuit, error) {
	c := &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
	}

	for _, elem := range elements {
		for i, nodeName := range elem.NodeNames() {
			idx := c.internNode(nodeName)
			nodes := elem.Nodes()
			nodes[i] = idx
		}
	}

	// Branch indices are assigned only after every element's nodes have
	// been interned, so they start at the circuit's final node count
	// rather than colliding with a node discovered by a later element.
	for _, elem := range elements {
		if vde, ok := elem.(device.VoltageDefined); ok {
			bIdx := c.numNodes + len(c.branchMap)
			c.branchMap[elem.Name()] = bIdx
			vde.SetBranchIndex(bIdx)
			c.voltageDef = append(c.voltageDef, vde)
		}
		if nl, ok := elem.(device.NonlinearElement); ok {
			c.nonlinear = append(c.nonlinear, nl)
		}
		c.elements = append(c.elements, elem)
	}

	c.size = c.numNodes + len(c.branchMap)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Circuit) internNode(name string) int {
	if name == "0" || name == "gnd" {
		return -1
	}
	if idx, ok := c.nodeMap[name]; ok {
		return idx
	}
	idx := c.numNodes
	c.nodeMap[name] = idx
	c.nodeNames = append(c.nodeNames, name)
	c.numNodes++
	return idx
}

// Validate runs the sanity checks ahkab's check_circuit performs before
// assembling the MNA system: at least two nodes (one being ground), at
// least two elements, and no duplicate element names.
func (c *Circuit) Validate() error {
	if c.numNodes < 1 {
		return fmt.Errorf("circuit %s: needs at least one non-ground node", c.name)
	}
	hasGround := false
	for _, e := range c.elements {
		for _, n := range e.NodeNames() {
			if n == "0" || n == "gnd" {
				hasGround = true
			}
		}
	}
	if !hasGround {
		return fmt.Errorf("circuit %s: has no ground node", c.name)
	}
	if len(c.elements) < 2 {
		return fmt.Errorf("circuit %s: needs at least two elements", c.name)
	}
	seen := make(map[string]bool, len(c.elements))
	for _, e := range c.elements {
		if seen[e.Name()] {
			return fmt.Errorf("circuit %s: duplicate element name %q", c.name, e.Name())
		}
		seen[e.Name()] = true
	}
	return nil
}

// Name returns the circuit's title.
func (c *Circuit) Name() string { return c.name }

// NumNodes returns the number of non-ground node unknowns.
func (c *Circuit) NumNodes() int { return c.numNodes }

// Size returns the total unknown count (nodes plus voltage-defined
// branch currents), the dimension of the reduced MNA system.
func (c *Circuit) Size() int { return c.size }

// Elements returns the ordered element list.
func (c *Circuit) Elements() []device.Device { return c.elements }

// NonlinearElements returns the elements the Device Contribution Engine
// must re-stamp every Newton-Raphson iteration.
func (c *Circuit) NonlinearElements() []device.NonlinearElement { return c.nonlinear }

// ExtNodeToInt maps an external node name to its reduced-system index,
// or -1 for ground. The second return is false if the name is unknown.
func (c *Circuit) ExtNodeToInt(name string) (int, bool) {
	if name == "0" || name == "gnd" {
		return -1, true
	}
	idx, ok := c.nodeMap[name]
	return idx, ok
}

// IntNodeToExt is the inverse of ExtNodeToInt. idx == -1 returns "0".
func (c *Circuit) IntNodeToExt(idx int) string {
	if idx < 0 {
		return "0"
	}
	if idx >= len(c.nodeNames) {
		return ""
	}
	return c.nodeNames[idx]
}

// NodeNames returns the non-ground node names in index order.
func (c *Circuit) NodeNames() []string { return c.nodeNames }

// BranchIndex returns the reduced-system index of a voltage-defined
// element's branch-current unknown.
func (c *Circuit) BranchIndex(name string) (int, bool) {
	idx, ok := c.branchMap[name]
	return idx, ok
}

// BranchNames returns the voltage-defined element names that own a
// branch-current unknown.
func (c *Circuit) BranchNames() map[string]int { return c.branchMap }

// FindVDE returns the voltage-defined element whose branch-current
// unknown lives at the given reduced-system index, or nil.
func (c *Circuit) FindVDE(idx int) device.VoltageDefined {
	for _, v := range c.voltageDef {
		if v.BranchIndex() == idx {
			return v
		}
	}
	return nil
}

// GetLockedNodes returns the drive ports of every nonlinear element's
// every output, the node pairs the Newton-Raphson damping policy must
// not let swing by more than a few thermal voltages per iteration
// (spec.md §4.4), grounded on ahkab's get_locked_nodes.
func (c *Circuit) GetLockedNodes() []device.Port {
	var locked []device.Port
	for _, nl := range c.nonlinear {
		for k := range nl.OutputPorts() {
			locked = append(locked, nl.DrivePorts(k)...)
		}
	}
	return locked
}

// IsNonlinear reports whether any element in the circuit requires the
// Newton-Raphson kernel instead of a single linear solve.
func (c *Circuit) IsNonlinear() bool { return len(c.nonlinear) > 0 }
