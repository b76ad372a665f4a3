package main // import "dcsim"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/edp1096/dcsim/pkg/analysis"
	"github.com/edp1096/dcsim/pkg/circuit"
	"github.com/edp1096/dcsim/pkg/config"
	"github.com/edp1096/dcsim/pkg/device"
	"github.com/edp1096/dcsim/pkg/netlist"
	"github.com/edp1096/dcsim/pkg/result"
	"github.com/edp1096/dcsim/pkg/util"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: dcsim <netlist_file>")
	}

	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading netlist file: %v", err)
	}

	deck, err := netlist.Parse(string(content))
	if err != nil {
		log.Fatalf("parsing netlist: %v", err)
	}

	elements := make([]device.Device, 0, len(deck.Elements))
	for _, elem := range deck.Elements {
		dev, err := netlist.CreateDevice(elem)
		if err != nil {
			log.Fatalf("creating device %s: %v", elem.Name, err)
		}
		elements = append(elements, dev)
	}
	if err := netlist.ResolveMutualInductors(elements); err != nil {
		log.Fatalf("resolving mutual inductors: %v", err)
	}

	circ, err := circuit.New(deck.Title, elements)
	if err != nil {
		log.Fatalf("building circuit: %v", err)
	}

	cfg := config.Default()

	switch deck.Analysis {
	case netlist.AnalysisOP:
		runOperatingPoint(circ, cfg, deck.ICValues)
	case netlist.AnalysisDC:
		runDCSweep(circ, cfg, deck.DCParam)
	default:
		log.Fatal("no analysis directive in netlist: add .op or .dc")
	}
}

func runOperatingPoint(circ *circuit.Circuit, cfg config.Config, ic map[string]float64) {
	op := analysis.NewOperatingPoint(cfg)
	if err := op.Setup(circ); err != nil {
		log.Fatalf("setting up operating point: %v", err)
	}

	x0, err := initialGuess(circ, ic)
	if err != nil {
		log.Fatalf("assembling initial guess: %v", err)
	}

	if err := op.ExecuteFrom(x0); err != nil {
		log.Printf("operating point did not fully converge: %v", err)
	}
	for _, w := range op.Warnings {
		fmt.Println("warning:", w)
	}
	printOpSolution(op.Solution)
	printGminCheck(op.Check)
}

func runDCSweep(circ *circuit.Circuit, cfg config.Config, p struct {
	Source      string
	Start       float64
	Stop        float64
	Step        float64
	Logarithmic bool
}) {
	sweep := analysis.NewDCSweep(cfg, p.Source, p.Start, p.Stop, p.Step, p.Logarithmic)
	if err := sweep.Setup(circ); err != nil {
		log.Fatalf("setting up DC sweep: %v", err)
	}
	if err := sweep.Execute(); err != nil {
		log.Fatalf("running DC sweep: %v", err)
	}
	for _, w := range sweep.Warnings {
		fmt.Println("warning:", w)
	}
	printDCSolution(sweep.Solution)
}

func initialGuess(circ *circuit.Circuit, ic map[string]float64) (*mat.VecDense, error) {
	x0, err := analysis.BuildX0FromIC(circ, ic)
	if err != nil {
		return nil, err
	}
	analysis.ApplyElementIC(circ, x0)
	return x0, nil
}

func printOpSolution(sol *result.OpSolution) {
	if sol == nil {
		return
	}
	fmt.Println("\nNode Voltages:")
	for _, name := range sortedKeys(sol.Voltages) {
		fmt.Printf("%s = %s\n", name, util.FormatValueFactor(sol.Voltages[name], "V"))
	}
	fmt.Println("\nBranch Currents:")
	for _, name := range sortedKeys(sol.Currents) {
		fmt.Printf("%s = %s\n", name, util.FormatValueFactor(sol.Currents[name], "A"))
	}
}

func printGminCheck(check *result.GminCheck) {
	if check == nil {
		return
	}
	if check.Passed() {
		fmt.Println("\nGmin check: passed")
		return
	}
	fmt.Println("\nGmin check: disagreement beyond tolerance on:")
	for _, name := range check.Offending {
		fmt.Printf("  %s\n", name)
	}
}

func printDCSolution(sol *result.DCSolution) {
	if sol == nil || len(sol.Points) == 0 {
		return
	}

	var voltageNames, currentNames []string
	for name := range sol.Points[0].Voltages {
		voltageNames = append(voltageNames, name)
	}
	for name := range sol.Points[0].Currents {
		currentNames = append(currentNames, name)
	}
	sort.Strings(voltageNames)
	sort.Strings(currentNames)

	fmt.Printf("\nDC Sweep of %s (%d points):\n", sol.SweepVariable, len(sol.Points))
	for i, v := range sol.SweepValues {
		fmt.Printf("%s=%-9s  ", sol.SweepVariable, util.FormatValueFactor(v, ""))
		for _, name := range voltageNames {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(sol.Points[i].Voltages[name], "V"))
		}
		for _, name := range currentNames {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(sol.Points[i].Currents[name], "A"))
		}
		fmt.Println()
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
