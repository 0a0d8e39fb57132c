package kerbmath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const (
	deg2rad = math.Pi / 180
)

// Vector is a 3-dimensional vector in the inertial reference frame of a body:
// z points north, x and y span the equatorial plane.
type Vector [3]float64

// Add returns v + w.
func (v Vector) Add(w Vector) Vector {
	return Vector{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v - w.
func (v Vector) Sub(w Vector) Vector {
	return Vector{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Scale returns v * s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v[0] * s, v[1] * s, v[2] * s}
}

// Norm returns |v|.
func (v Vector) Norm() float64 {
	return floats.Norm(v[:], 2)
}

// Unit returns the unit vector of v, or the zero vector if v has no length.
func (v Vector) Unit() Vector {
	n := v.Norm()
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return Vector{}
	}
	return v.Scale(1 / n)
}

// Dot performs the inner product via mat/BLAS.
func (v Vector) Dot(w Vector) float64 {
	return mat.Dot(mat.NewVecDense(3, v[:]), mat.NewVecDense(3, w[:]))
}

// Cross performs the cross product v x w.
func (v Vector) Cross(w Vector) Vector {
	return Vector{v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0]}
}

// IsFinite returns false if any component is NaN or infinite.
func (v Vector) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	return fmt.Sprintf("(x=%.3f, y=%.3f, z=%.3f, abs=%.3f)", v[0], v[1], v[2], v.Norm())
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// clampCos keeps a cosine computed with rounding errors inside [-1, 1].
// Values further out are left alone so that math.Acos reports NaN.
func clampCos(c float64) float64 {
	if abs := math.Abs(c); abs > 1 && scalar.EqualWithinAbs(abs, 1, 1e-9) {
		return sign(c)
	}
	return c
}

// Deg2rad converts degrees to radians.
func Deg2rad(a float64) float64 {
	return a * deg2rad
}

// Rad2deg converts radians to degrees.
func Rad2deg(a float64) float64 {
	return a / deg2rad
}
