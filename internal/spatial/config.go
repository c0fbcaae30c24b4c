package spatial

import (
	"fmt"
	"math"
	"strings"
)

// JointConfiguration holds one value per joint, ordered to match the
// solver's joint name list.
type JointConfiguration []float64

// ZeroConfiguration returns a configuration of n joints, all at zero.
func ZeroConfiguration(n int) JointConfiguration {
	return make(JointConfiguration, n)
}

// Clone returns an independent copy. Callers that hand a configuration
// to a solver and later compare against it should compare against a
// clone taken beforehand.
func (c JointConfiguration) Clone() JointConfiguration {
	if c == nil {
		return nil
	}
	out := make(JointConfiguration, len(c))
	copy(out, c)
	return out
}

// Equal reports exact equality of length and every component.
func (c JointConfiguration) Equal(other JointConfiguration) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether both configurations have the same length
// and every component agrees within tol.
func (c JointConfiguration) ApproxEqual(other JointConfiguration, tol float64) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if math.Abs(c[i]-other[i]) > tol {
			return false
		}
	}
	return true
}

func (c JointConfiguration) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range c {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.6f", v)
	}
	b.WriteByte(']')
	return b.String()
}
