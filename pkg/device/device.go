// Package device defines the element contracts the MNA assembler and
// the Newton-Raphson device contribution engine stamp through, and the
// concrete linear and nonlinear elements built on them.
package device

import "errors"

// ErrUnsupportedElement is returned by Stamp for element kinds whose
// equations are not implemented (the hvsource stub).
var ErrUnsupportedElement = errors.New("device: element kind not supported")

// Status carries the per-solve context a device's Stamp or nonlinear
// evaluation may depend on: the current simulation time (for
// time-variant independent sources), the Gmin conductance currently in
// effect, and the circuit temperature.
type Status struct {
	Time float64
	Gmin float64
	Temp float64
}

// Stamper is the subset of pkg/matrix.System a device needs to
// contribute its linear stamp. Accepting the interface rather than the
// concrete type keeps pkg/device free of a pkg/matrix import and makes
// devices testable against a fake.
type Stamper interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
}

// Device is the contract every circuit element satisfies: enough
// identity to place it in a netlist, enough topology to place it in the
// node/branch map, and a Stamp that adds its linear contribution (for
// nonlinear elements, Stamp contributes nothing — the
// current/conductance contribution comes from NonlinearElement).
type Device interface {
	Name() string
	Type() string
	NodeNames() []string
	Nodes() []int
	SetNodes(nodes []int)
	Value() float64
	Stamp(m Stamper, status *Status) error
}

// VoltageDefined is implemented by elements that introduce an extra
// branch-current unknown and KVL row: voltage sources, the VCVS, the
// (stubbed) CCVS, and the inductor.
type VoltageDefined interface {
	Device
	BranchIndex() int
	SetBranchIndex(i int)
}

// Port identifies a two-terminal voltage across which a nonlinear
// element's current or conductance is evaluated: v = x[Pos] - x[Neg].
// A terminal of -1 denotes ground.
type Port struct {
	Pos, Neg int
}

// NonlinearElement is the four-method port contract the Device
// Contribution Engine drives: every nonlinear device exposes the output
// ports it injects current into, the drive ports each output depends
// on, and its current/conductance as functions of the drive-port
// voltages.
type NonlinearElement interface {
	Device

	// OutputPorts returns the ports this device injects current into,
	// one per independent output (a two-terminal device has exactly
	// one).
	OutputPorts() []Port

	// DrivePorts returns the ports whose voltages output k depends on.
	DrivePorts(k int) []Port

	// I returns the current injected at output k given the voltages
	// across DrivePorts(k), in the same order, at time t.
	I(k int, vd []float64, t float64) float64

	// G returns d I(k) / d vd[j], the small-signal conductance between
	// output k and drive port j, at time t.
	G(k int, vd []float64, j int, t float64) float64
}

// BaseDevice holds the identity and topology fields shared by every
// concrete element.
type BaseDevice struct {
	DeviceName  string
	DeviceType  string
	NodeNamesV  []string
	NodesV      []int
	DeviceValue float64
}

// NewBaseDevice mirrors the teacher's constructor shape.
func NewBaseDevice(name string, value float64, nodeNames []string, devType string) BaseDevice {
	return BaseDevice{
		DeviceName:  name,
		DeviceType:  devType,
		DeviceValue: value,
		NodeNamesV:  nodeNames,
		NodesV:      make([]int, len(nodeNames)),
	}
}

func (d *BaseDevice) Name() string         { return d.DeviceName }
func (d *BaseDevice) Type() string         { return d.DeviceType }
func (d *BaseDevice) NodeNames() []string  { return d.NodeNamesV }
func (d *BaseDevice) Nodes() []int         { return d.NodesV }
func (d *BaseDevice) SetNodes(nodes []int) { d.NodesV = nodes }
func (d *BaseDevice) Value() float64       { return d.DeviceValue }

// BranchDevice embeds BaseDevice and adds the branch-current index
// bookkeeping shared by every VoltageDefined element.
type BranchDevice struct {
	BaseDevice
	Branch int
}

func (d *BranchDevice) BranchIndex() int     { return d.Branch }
func (d *BranchDevice) SetBranchIndex(i int) { d.Branch = i }
