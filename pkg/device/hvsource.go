package device

import "fmt"

// HVSource (current-controlled voltage source) is not implemented, the
// way ahkab's hvsource stamping exits with an explicit "not implemented
// yet" rather than silently producing wrong equations. Stamp always
// fails with ErrUnsupportedElement so a netlist referencing one is
// rejected at assembly time instead of solving to a wrong answer.
type HVSource struct {
	BranchDevice
}

func NewHVSource(name string, nodeNames []string) *HVSource {
	return &HVSource{BranchDevice: BranchDevice{BaseDevice: NewBaseDevice(name, 0, nodeNames, "H")}}
}

func (h *HVSource) Stamp(m Stamper, status *Status) error {
	return fmt.Errorf("hvsource %s: %w", h.DeviceName, ErrUnsupportedElement)
}
