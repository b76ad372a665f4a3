// Package config bundles the flags and tolerances that spec.md §6 calls
// the Configuration collaborator. It is threaded explicitly through the
// analysis entry points rather than held as global mutable state.
package config

// Config holds every knob the DC analysis core reads. Zero value is not
// meaningful; use Default() to get ahkab's historical defaults.
type Config struct {
	// Gmin is the default Gmin conductance added from every node to
	// ground to prevent singular Jacobians.
	Gmin float64

	// DCMaxNRIter bounds the Newton-Raphson kernel's iteration count.
	DCMaxNRIter int

	// DCUseGuess enables the external DC initial-guess provider.
	DCUseGuess bool

	// DCSweepSkipAllowed: when a sweep point fails, skip it instead of
	// aborting the whole sweep.
	DCSweepSkipAllowed bool

	// Convergence-aid strategy toggles (§4.7).
	UseStandardSolveMethod bool
	UseGminStepping        bool
	UseSourceStepping      bool

	// Damping policy (§4.4).
	NRDampFirstIters    bool
	NLVoltagesLock      bool
	NLVoltagesLockFactor float64

	// Convergence tolerances (§4.5).
	VoltageRelTol float64 // ver
	VoltageAbsTol float64 // vea
	CurrentRelTol float64 // ier
	CurrentAbsTol float64 // iea

	// Sweep type labels (§4.9).
	DCLinStep string
	DCLogStep string
}

// Default mirrors ahkab's options module defaults, as referenced
// throughout original_source/ahkab/dc_analysis.py.
func Default() Config {
	return Config{
		Gmin:        1e-12,
		DCMaxNRIter: 1000,
		DCUseGuess:  true,

		DCSweepSkipAllowed: false,

		UseStandardSolveMethod: true,
		UseGminStepping:        true,
		UseSourceStepping:      true,

		NRDampFirstIters:     true,
		NLVoltagesLock:       true,
		NLVoltagesLockFactor: 4,

		VoltageRelTol: 1e-3,
		VoltageAbsTol: 1e-6,
		CurrentRelTol: 1e-3,
		CurrentAbsTol: 1e-9,

		DCLinStep: "LINEAR",
		DCLogStep: "LOGARITHMIC",
	}
}
