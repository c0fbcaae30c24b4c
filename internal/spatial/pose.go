package spatial

import (
	"fmt"
	"math"
)

// Vec3 is a 3D position in Cartesian space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ApproxEqual reports whether every component of v is within tol of w.
func (v Vec3) ApproxEqual(w Vec3, tol float64) bool {
	return math.Abs(v.X-w.X) <= tol &&
		math.Abs(v.Y-w.Y) <= tol &&
		math.Abs(v.Z-w.Z) <= tol
}

// Quaternion is a rotation in xyzw component order.
//
// Quaternions produced by solvers are expected to be unit quaternions; the
// harness does not re-verify the norm (that is the solver's contract).
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// IdentityQuaternion is the no-rotation quaternion.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// Mul returns the Hamilton product q*r, i.e. the rotation r followed by q
// when rotations compose left to right in application order.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Normalize returns q scaled to unit norm. The zero quaternion normalizes
// to the identity.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Canonical resolves the double cover: q and -q encode the same rotation,
// so componentwise pose comparison needs a fixed sign convention. The
// convention is W > 0; on the W == 0 great circle the first nonzero of
// X, Y, Z is made positive.
func (q Quaternion) Canonical() Quaternion {
	switch {
	case q.W > 0:
		return q
	case q.W < 0:
		return q.negate()
	case q.X != 0:
		if q.X < 0 {
			return q.negate()
		}
		return q
	case q.Y != 0:
		if q.Y < 0 {
			return q.negate()
		}
		return q
	case q.Z < 0:
		return q.negate()
	default:
		return q
	}
}

func (q Quaternion) negate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
}

// ApproxEqual reports whether every component of q is within tol of r.
// Callers comparing independently produced quaternions should canonicalize
// both sides first.
func (q Quaternion) ApproxEqual(r Quaternion, tol float64) bool {
	return math.Abs(q.X-r.X) <= tol &&
		math.Abs(q.Y-r.Y) <= tol &&
		math.Abs(q.Z-r.Z) <= tol &&
		math.Abs(q.W-r.W) <= tol
}

// QuaternionFromEulerZYX builds the rotation yaw about Z, then pitch about
// the new Y, then roll about the new X (intrinsic Z-Y'-X''), as a canonical
// unit quaternion.
func QuaternionFromEulerZYX(yaw, pitch, roll float64) Quaternion {
	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}.Canonical()
}

// EulerZYX extracts the intrinsic Z-Y'-X'' angles (yaw, pitch, roll) from a
// unit quaternion. Pitch is the asin principal value in [-pi/2, pi/2]; at
// the |pitch| = pi/2 gimbal singularity yaw and roll are not independent and
// the extraction fixes roll = 0.
func (q Quaternion) EulerZYX() (yaw, pitch, roll float64) {
	sinPitch := 2 * (q.W*q.Y - q.Z*q.X)
	if sinPitch > 1 {
		sinPitch = 1
	} else if sinPitch < -1 {
		sinPitch = -1
	}
	pitch = math.Asin(sinPitch)

	if math.Abs(sinPitch) >= 1-1e-12 {
		// Gimbal lock: only the yaw/roll combination is observable.
		if sinPitch > 0 {
			yaw = -2 * math.Atan2(q.X, q.W)
		} else {
			yaw = 2 * math.Atan2(q.X, q.W)
		}
		roll = 0
		return yaw, pitch, roll
	}

	roll = math.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
	yaw = math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
	return yaw, pitch, roll
}

// Pose is a rigid transform: position plus orientation.
type Pose struct {
	Position    Vec3       `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// ApproxEqual reports whether p matches other within tol on all seven
// components. This is the round-trip closeness predicate: abs difference
// per position axis and per quaternion component.
func (p Pose) ApproxEqual(other Pose, tol float64) bool {
	return p.Position.ApproxEqual(other.Position, tol) &&
		p.Orientation.ApproxEqual(other.Orientation, tol)
}

// String renders the pose compactly for diagnostics.
func (p Pose) String() string {
	return fmt.Sprintf("pos=(%.6f %.6f %.6f) quat=(%.6f %.6f %.6f %.6f)",
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W)
}
