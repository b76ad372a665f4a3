package analysis

import (
	"gonum.org/v1/gonum/mat"

	"github.com/edp1096/dcsim/pkg/matrix"
)

// dcGuess is spec.md §6's "DC initial guess provider" collaborator
// (get_dc_guess), seeding the Newton-Raphson kernel's first iterate
// with a linear-only solve instead of the zero vector, following the
// teacher's calculateInitialEstimate: stamp only the circuit's linear
// elements (exactly what sys already holds before Gmin and nonlinear
// contributions are added) and solve directly. The linear-only system
// is singular whenever a node is connected only through nonlinear
// devices, so a solve failure here just falls back to the zero vector
// rather than aborting the op.
func dcGuess(sys *matrix.System) *mat.VecDense {
	x, err := sys.Solve()
	if err != nil {
		return nil
	}
	return x
}
