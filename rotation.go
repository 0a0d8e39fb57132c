package kerbmath

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v Vector) Vector {
	var rVec mat.VecDense
	rVec.MulVec(m, mat.NewVecDense(3, v[:]))
	return Vector{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}

// Perifocal2IRF converts a vector from the orbital plane frame (x towards periapsis) to the inertial reference
// frame of the body. The ascending node is always on the x axis of the IRF. Angles are in degrees.
func Perifocal2IRF(incl, ω float64, v Vector) Vector {
	var m mat.Dense
	m.Mul(R1(-Deg2rad(incl)), R3(-Deg2rad(ω)))
	return MxV33(&m, v)
}

// RotateAbout rotates v by θ radians about the provided axis (Rodrigues).
func RotateAbout(v, axis Vector, θ float64) Vector {
	k := axis.Unit()
	s, c := math.Sincos(θ)
	return v.Scale(c).Add(k.Cross(v).Scale(s)).Add(k.Scale(k.Dot(v) * (1 - c)))
}
