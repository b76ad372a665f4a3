// Package matrix provides the dense reduced-system matrix the MNA
// assembler and the Newton-Raphson kernel stamp into. It replaces the
// teacher's sparse solver (github.com/edp1096/sparse) with
// gonum.org/v1/gonum/mat: spec.md's Non-goals state a dense solver is
// sufficient at the circuit scale this core targets.
package matrix

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned by Solve when the system matrix is numerically
// singular (spec.md §4.3's SingularJacobian).
var ErrSingular = errors.New("matrix: singular system")

// System is a square dense linear system built by additive stamps, the
// way MNA assembly accumulates device contributions into shared rows and
// columns. Indices are 0-based reduced-system indices (ground and the
// reference row/column never appear here; they are discarded before a
// System is ever built).
type System struct {
	Size int
	A    *mat.Dense
	B    *mat.VecDense
}

// New allocates a zeroed size x size system.
func New(size int) *System {
	return &System{
		Size: size,
		A:    mat.NewDense(size, size, nil),
		B:    mat.NewVecDense(size, nil),
	}
}

// AddElement accumulates value into A[i][j]. Negative indices (ground)
// are silently ignored, matching the MNA convention of simply omitting
// the reference row/column rather than special-casing every stamp site.
func (s *System) AddElement(i, j int, value float64) {
	if i < 0 || j < 0 || i >= s.Size || j >= s.Size {
		return
	}
	s.A.Set(i, j, s.A.At(i, j)+value)
}

// AddRHS accumulates value into B[i].
func (s *System) AddRHS(i int, value float64) {
	if i < 0 || i >= s.Size {
		return
	}
	s.B.SetVec(i, s.B.AtVec(i)+value)
}

// AddDiag is shorthand for AddElement(i, i, value), used by Gmin loading.
func (s *System) AddDiag(i int, value float64) {
	s.AddElement(i, i, value)
}

// Clear zeroes the system in place, reusing the allocation.
func (s *System) Clear() {
	s.A.Zero()
	s.B.Zero()
}

// Clone returns a deep, independent copy. The convergence-aid driver
// (pkg/analysis) uses this to build per-strategy variants (M+Gmin,
// N*scale) without mutating the base assembled system.
func (s *System) Clone() *System {
	c := New(s.Size)
	c.A.Copy(s.A)
	c.B.CopyVec(s.B)
	return c
}

// Add returns a new system holding the elementwise sum of s and other.
// Used to form M+Gmin without mutating either operand.
func (s *System) Add(other *System) *System {
	c := New(s.Size)
	c.A.Add(s.A, other.A)
	c.B.AddVec(s.B, other.B)
	return c
}

// ScaleRHS returns a copy of s with B scaled by factor, used by the
// source-stepping strategy (§4.7).
func (s *System) ScaleRHS(factor float64) *System {
	c := s.Clone()
	c.B.ScaleVec(factor, c.B)
	return c
}

// Solve returns x such that A*x = B, or a wrapped ErrSingular if A is
// numerically singular.
func (s *System) Solve() (*mat.VecDense, error) {
	var x mat.VecDense
	if err := x.SolveVec(s.A, s.B); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return &x, nil
}
