// Package netlist parses a SPICE-style deck into an ordered element
// list and the DC analysis directives (.op, .dc, .ic) spec.md's
// controllers consume. Transient and AC directives are out of scope
// and rejected explicitly rather than silently ignored.
package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/dcsim/pkg/device"
)

type AnalysisType int

const (
	AnalysisNone AnalysisType = iota
	AnalysisOP
	AnalysisDC
)

type Circuit struct {
	Elements []Element      // Circuit elements, in deck order
	Nodes    map[string]int // Node name -> first-appearance index
	Analysis AnalysisType   // Requested analysis directive
	DCParam  struct {
		Source      string
		Start       float64
		Stop        float64
		Step        float64
		Logarithmic bool
	}
	ICValues map[string]float64 // .ic initial conditions, keyed "V(node)"/"I(element)"
	Title    string
}

type Element struct {
	Type   string            // Part type (R, L, C, V, I, D, E, G, K, H)
	Name   string            // Part name
	Nodes  []string          // Node names
	Value  float64           // Part value
	Params map[string]string // Waveform/model parameters
}

// unitMap pairs each magnitude suffix ParseValue's regex accepts with
// its multiplier. "M" is milli, not mega, matching SPICE's convention
// that reserves the literal "meg" for mega to avoid ambiguity.
var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"meg": 1e6,
	"K":   1e3,
	"k":   1e3,
	"M":   1e-3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

func Parse(input string) (*Circuit, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	circuit := &Circuit{
		Nodes:    make(map[string]int),
		ICValues: make(map[string]float64),
	}

	if scanner.Scan() {
		circuit.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 || strings.HasPrefix(line, "*") {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if err := parseDirective(circuit, line); err != nil {
				return nil, err
			}
			continue
		}

		element, err := parseElement(line)
		if err != nil {
			return nil, err
		}
		circuit.Elements = append(circuit.Elements, *element)

		for _, node := range element.Nodes {
			if _, exists := circuit.Nodes[node]; !exists {
				circuit.Nodes[node] = len(circuit.Nodes)
			}
		}
	}

	return circuit, nil
}

// parseDirective handles .op, .dc, and .ic. A .tran or .ac card is
// rejected outright: this parser only feeds the DC analysis core.
func parseDirective(ckt *Circuit, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return fmt.Errorf("invalid directive")
	}

	switch strings.ToLower(fields[0]) {
	case ".op":
		ckt.Analysis = AnalysisOP

	case ".dc":
		ckt.Analysis = AnalysisDC
		if len(fields) < 5 {
			return fmt.Errorf("insufficient DC sweep parameters: %s", line)
		}
		ckt.DCParam.Source = fields[1]
		var err error
		if ckt.DCParam.Start, err = ParseValue(fields[2]); err != nil {
			return fmt.Errorf("invalid DC start value: %v", err)
		}
		if ckt.DCParam.Stop, err = ParseValue(fields[3]); err != nil {
			return fmt.Errorf("invalid DC stop value: %v", err)
		}
		if ckt.DCParam.Step, err = ParseValue(fields[4]); err != nil {
			return fmt.Errorf("invalid DC step value: %v", err)
		}
		if len(fields) > 5 && strings.EqualFold(fields[5], "log") {
			ckt.DCParam.Logarithmic = true
		}

	case ".ic":
		for _, field := range fields[1:] {
			key, value, err := parseICAssignment(field)
			if err != nil {
				return err
			}
			ckt.ICValues[key] = value
		}

	case ".tran", ".ac":
		return fmt.Errorf("%s is not supported: this deck only drives DC analysis", fields[0])

	default:
		return fmt.Errorf("unsupported directive: %s", fields[0])
	}

	return nil
}

var icAssignment = regexp.MustCompile(`^([VIvi]\s*\([^)]+\))=(.+)$`)

func parseICAssignment(field string) (string, float64, error) {
	m := icAssignment.FindStringSubmatch(field)
	if m == nil {
		return "", 0, fmt.Errorf("invalid .ic assignment: %s", field)
	}
	key := strings.ToUpper(strings.ReplaceAll(m[1], " ", ""))
	value, err := ParseValue(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid .ic value for %s: %v", key, err)
	}
	return key, value, nil
}

// parseElement dispatches on the card's leading letter. V and I
// sources get waveform parsing; D and H keep a fixed two-node shape;
// everything else (R, L, C, E, G, K) is node-list-then-value, with an
// optional trailing "ic=<value>" token for capacitor/inductor initial
// conditions.
func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Params: make(map[string]string),
	}

	switch elem.Type {
	case "V":
		return parseVoltageSource(fields)
	case "I":
		return parseCurrentSource(fields)
	case "D":
		elem.Nodes = fields[1:3]
		for _, field := range fields[3:] {
			if strings.HasPrefix(strings.ToLower(field), "ic=") {
				elem.Params["ic"] = field[len("ic="):]
				continue
			}
			elem.Params["model"] = field
		}
		return elem, nil
	case "H":
		elem.Nodes = fields[1:3]
		if len(fields) > 3 {
			elem.Params["control"] = fields[3]
		}
		return elem, nil
	default:
		valueFields := fields
		if icField := fields[len(fields)-1]; strings.HasPrefix(strings.ToLower(icField), "ic=") {
			elem.Params["ic"] = icField[len("ic="):]
			valueFields = fields[:len(fields)-1]
		}
		if len(valueFields) < 3 {
			return nil, fmt.Errorf("invalid element format: %s", line)
		}
		elem.Nodes = valueFields[1 : len(valueFields)-1]
		value, err := ParseValue(valueFields[len(valueFields)-1])
		if err != nil {
			return nil, err
		}
		elem.Value = value
		return elem, nil
	}
}

func parseVoltageSource(fields []string) (*Element, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("insufficient voltage source parameters")
	}

	elem := &Element{
		Name:   fields[0],
		Type:   "V",
		Nodes:  []string{fields[1], fields[2]},
		Params: make(map[string]string),
	}

	words := splitWaveformWords(fields[3:])
	if len(words) == 0 {
		return nil, fmt.Errorf("missing voltage source type")
	}

	switch strings.ToUpper(words[0]) {
	case "DC":
		if len(words) < 2 {
			return nil, fmt.Errorf("missing DC value")
		}
		elem.Params["type"] = "dc"
		value, err := ParseValue(words[1])
		if err != nil {
			return nil, err
		}
		elem.Value = value

	case "SIN":
		elem.Params["type"] = "sin"
		elem.Params["sin"] = strings.Trim(strings.Join(words[1:], " "), "() ")

	case "PULSE":
		elem.Params["type"] = "pulse"
		elem.Params["pulse"] = strings.Trim(strings.Join(words[1:], " "), "() ")

	case "PWL":
		elem.Params["type"] = "pwl"
		elem.Params["pwl"] = strings.Trim(strings.Join(words[1:], " "), "() ")

	default:
		return nil, fmt.Errorf("unsupported voltage source type: %s", words[0])
	}

	return elem, nil
}

func parseCurrentSource(fields []string) (*Element, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("insufficient current source parameters")
	}

	elem := &Element{
		Name:   fields[0],
		Type:   "I",
		Nodes:  []string{fields[1], fields[2]},
		Params: make(map[string]string),
	}

	words := splitWaveformWords(fields[3:])
	if len(words) == 0 {
		return nil, fmt.Errorf("missing current source type")
	}

	switch strings.ToUpper(words[0]) {
	case "DC":
		if len(words) < 2 {
			return nil, fmt.Errorf("missing DC value")
		}
		elem.Params["type"] = "dc"
		value, err := ParseValue(words[1])
		if err != nil {
			return nil, err
		}
		elem.Value = value

	case "SIN":
		elem.Params["type"] = "sin"
		elem.Params["sin"] = strings.Trim(strings.Join(words[1:], " "), "() ")

	case "PULSE":
		elem.Params["type"] = "pulse"
		elem.Params["pulse"] = strings.Trim(strings.Join(words[1:], " "), "() ")

	case "PWL":
		elem.Params["type"] = "pwl"
		elem.Params["pwl"] = strings.Trim(strings.Join(words[1:], " "), "() ")

	default:
		return nil, fmt.Errorf("unsupported current source type: %s", words[0])
	}

	return elem, nil
}

func splitWaveformWords(fields []string) []string {
	remaining := strings.Join(fields, " ")
	remaining = strings.ReplaceAll(remaining, "(", " ( ")
	remaining = strings.ReplaceAll(remaining, ")", " ) ")
	return strings.Fields(remaining)
}

// ParseValue parses a SPICE numeric literal with an optional magnitude
// suffix, e.g. "1k" -> 1000.
func ParseValue(val string) (float64, error) {
	re := regexp.MustCompile(`^([-+]?\d*\.?\d+)(meg|[TGMKkmunpf])?s?$`)
	matches := re.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	if len(matches) > 2 && matches[2] != "" {
		if multiplier, ok := unitMap[matches[2]]; ok {
			num *= multiplier
		}
	}

	return num, nil
}

// CreateDevice builds the concrete device.Device a parsed Element
// describes.
func CreateDevice(elem Element) (device.Device, error) {
	switch elem.Type {
	case "R":
		return device.NewResistor(elem.Name, elem.Nodes, elem.Value), nil

	case "L":
		l := device.NewInductor(elem.Name, elem.Nodes, elem.Value)
		if err := applyIC(elem, l.SetIC); err != nil {
			return nil, err
		}
		return l, nil

	case "C":
		c := device.NewCapacitor(elem.Name, elem.Nodes, elem.Value)
		if err := applyIC(elem, c.SetIC); err != nil {
			return nil, err
		}
		return c, nil

	case "D":
		d := device.NewDiode(elem.Name, elem.Nodes)
		if err := applyIC(elem, d.SetIC); err != nil {
			return nil, err
		}
		return d, nil

	case "E":
		if len(elem.Nodes) != 4 {
			return nil, fmt.Errorf("vcvs %s: needs 4 nodes, got %d", elem.Name, len(elem.Nodes))
		}
		return device.NewVCVS(elem.Name, elem.Nodes, elem.Value), nil

	case "G":
		if len(elem.Nodes) != 4 {
			return nil, fmt.Errorf("vccs %s: needs 4 nodes, got %d", elem.Name, len(elem.Nodes))
		}
		return device.NewVCCS(elem.Name, elem.Nodes, elem.Value), nil

	case "K":
		if len(elem.Nodes) != 2 {
			return nil, fmt.Errorf("mutual %s: needs 2 inductor names, got %d", elem.Name, len(elem.Nodes))
		}
		return device.NewMutual(elem.Name, elem.Nodes, elem.Value), nil

	case "H":
		return device.NewHVSource(elem.Name, elem.Nodes), nil

	case "V":
		switch elem.Params["type"] {
		case "dc":
			return device.NewDCVoltageSource(elem.Name, elem.Nodes, elem.Value), nil
		case "sin":
			offset, amplitude, freq, phase, err := parseSinParams(elem.Params["sin"])
			if err != nil {
				return nil, err
			}
			return device.NewSinVoltageSource(elem.Name, elem.Nodes, offset, amplitude, freq, phase), nil
		case "pulse":
			v1, v2, delay, rise, fall, pWidth, period, err := parsePulseParams(elem.Params["pulse"])
			if err != nil {
				return nil, err
			}
			return device.NewPulseVoltageSource(elem.Name, elem.Nodes, v1, v2, delay, rise, fall, pWidth, period), nil
		case "pwl":
			times, values, err := parsePWLParams(elem.Params["pwl"])
			if err != nil {
				return nil, err
			}
			return device.NewPWLVoltageSource(elem.Name, elem.Nodes, times, values), nil
		default:
			return nil, fmt.Errorf("unsupported voltage source type: %s", elem.Params["type"])
		}

	case "I":
		switch elem.Params["type"] {
		case "dc":
			return device.NewDCCurrentSource(elem.Name, elem.Nodes, elem.Value), nil
		case "sin":
			offset, amplitude, freq, phase, err := parseSinParams(elem.Params["sin"])
			if err != nil {
				return nil, err
			}
			return device.NewSinCurrentSource(elem.Name, elem.Nodes, offset, amplitude, freq, phase), nil
		case "pulse":
			i1, i2, delay, rise, fall, pWidth, period, err := parsePulseParams(elem.Params["pulse"])
			if err != nil {
				return nil, err
			}
			return device.NewPulseCurrentSource(elem.Name, elem.Nodes, i1, i2, delay, rise, fall, pWidth, period), nil
		case "pwl":
			times, values, err := parsePWLParams(elem.Params["pwl"])
			if err != nil {
				return nil, err
			}
			return device.NewPWLCurrentSource(elem.Name, elem.Nodes, times, values), nil
		default:
			return nil, fmt.Errorf("unsupported current source type: %s", elem.Params["type"])
		}
	}

	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}

func applyIC(elem Element, set func(float64)) error {
	ic, ok := elem.Params["ic"]
	if !ok {
		return nil
	}
	v, err := ParseValue(ic)
	if err != nil {
		return fmt.Errorf("%s: invalid ic=: %v", elem.Name, err)
	}
	set(v)
	return nil
}

// ResolveMutualInductors links every Mutual element to the Inductor
// instances it names, following ahkab's post-parse K-element
// resolution pass.
func ResolveMutualInductors(elements []device.Device) error {
	byName := make(map[string]*device.Inductor)
	for _, e := range elements {
		if l, ok := e.(*device.Inductor); ok {
			byName[l.Name()] = l
		}
	}
	for _, e := range elements {
		m, ok := e.(*device.Mutual)
		if !ok {
			continue
		}
		for i, name := range m.InductorNames() {
			l, found := byName[name]
			if !found {
				return fmt.Errorf("mutual %s: inductor %q not found", m.Name(), name)
			}
			if err := m.SetInductor(i, l); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseSinParams(params string) (offset, amplitude, freq, phase float64, err error) {
	sinParams := strings.Fields(params)
	if len(sinParams) < 3 {
		return 0, 0, 0, 0, fmt.Errorf("insufficient SIN parameters")
	}
	if offset, err = ParseValue(sinParams[0]); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN offset: %v", err)
	}
	if amplitude, err = ParseValue(sinParams[1]); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN amplitude: %v", err)
	}
	if freq, err = ParseValue(sinParams[2]); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN frequency: %v", err)
	}
	phase = 0.0
	if len(sinParams) > 3 {
		if phase, err = ParseValue(sinParams[3]); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid SIN phase: %v", err)
		}
	}
	return offset, amplitude, freq, phase, nil
}

func parsePulseParams(params string) (v1, v2, delay, rise, fall, pWidth, period float64, err error) {
	pulseParams := strings.Fields(params)
	if len(pulseParams) < 7 {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("insufficient PULSE parameters")
	}
	if v1, err = ParseValue(pulseParams[0]); err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE V1: %v", err)
	}
	if v2, err = ParseValue(pulseParams[1]); err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE V2: %v", err)
	}
	if delay, err = ParseValue(pulseParams[2]); err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE delay: %v", err)
	}
	if rise, err = ParseValue(pulseParams[3]); err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE rise: %v", err)
	}
	if fall, err = ParseValue(pulseParams[4]); err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE fall: %v", err)
	}
	if pWidth, err = ParseValue(pulseParams[5]); err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE width: %v", err)
	}
	if period, err = ParseValue(pulseParams[6]); err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE period: %v", err)
	}
	return v1, v2, delay, rise, fall, pWidth, period, nil
}

func parsePWLParams(params string) (times []float64, values []float64, err error) {
	pwlParams := strings.Fields(params)
	if len(pwlParams) < 4 || len(pwlParams)%2 != 0 {
		return nil, nil, fmt.Errorf("insufficient or invalid PWL parameters, need pairs of time-value")
	}

	numPoints := len(pwlParams) / 2
	times = make([]float64, numPoints)
	values = make([]float64, numPoints)

	for i := 0; i < numPoints; i++ {
		if times[i], err = ParseValue(pwlParams[2*i]); err != nil {
			return nil, nil, fmt.Errorf("invalid PWL time[%d]: %v", i, err)
		}
		if values[i], err = ParseValue(pwlParams[2*i+1]); err != nil {
			return nil, nil, fmt.Errorf("invalid PWL value[%d]: %v", i, err)
		}
		if i > 0 && times[i] <= times[i-1] {
			return nil, nil, fmt.Errorf("PWL time points must be strictly increasing")
		}
	}

	return times, values, nil
}
