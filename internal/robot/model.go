// Package robot holds compiled robot-arm descriptions: the joints of a
// chain, their motion limits, and the named joint groups solvers are
// configured against. Descriptions are written in CUE and compiled into an
// immutable Model.
package robot

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/tverberg/ikconform/internal/spatial"
)

// JointType distinguishes how a joint moves.
type JointType string

const (
	// Revolute joints rotate about an axis; values are radians.
	Revolute JointType = "revolute"

	// Prismatic joints translate along an axis; values are meters.
	Prismatic JointType = "prismatic"
)

// Limit bounds a joint's motion. Min is strictly less than Max for a
// validly compiled model.
type Limit struct {
	Min float64
	Max float64
}

// Joint describes one joint of the chain.
type Joint struct {
	Name  string
	Type  JointType
	Limit Limit
}

// Group names a kinematic chain within the model: the base and tip links
// and the ordered joints between them.
type Group struct {
	Name     string
	BaseLink string
	TipLink  string
	Joints   []string
}

// Model is a compiled robot description. Joints appear in declaration
// order; groups are keyed by name.
type Model struct {
	Name   string
	Links  []string
	Joints []Joint
	Groups map[string]Group
}

// Joint looks up a joint by name.
func (m *Model) Joint(name string) (Joint, bool) {
	for _, j := range m.Joints {
		if j.Name == name {
			return j, true
		}
	}
	return Joint{}, false
}

// Group looks up a group by name.
func (m *Model) Group(name string) (Group, bool) {
	g, ok := m.Groups[name]
	return g, ok
}

// GroupNames returns all group names sorted.
func (m *Model) GroupNames() []string {
	names := make([]string, 0, len(m.Groups))
	for name := range m.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasLink reports whether the model declares the named link.
func (m *Model) HasLink(name string) bool {
	for _, l := range m.Links {
		if l == name {
			return true
		}
	}
	return false
}

// SampleGroup draws a configuration for the named group, each joint
// uniform within its limits, ordered as the group declares its joints.
func (m *Model) SampleGroup(name string, rng *rand.Rand) (spatial.JointConfiguration, error) {
	g, ok := m.Groups[name]
	if !ok {
		return nil, fmt.Errorf("unknown group %q", name)
	}
	q := make(spatial.JointConfiguration, len(g.Joints))
	for i, jointName := range g.Joints {
		j, ok := m.Joint(jointName)
		if !ok {
			return nil, fmt.Errorf("group %q references unknown joint %q", name, jointName)
		}
		q[i] = j.Limit.Min + rng.Float64()*(j.Limit.Max-j.Limit.Min)
	}
	return q, nil
}

// ZeroConfiguration returns the all-zeros configuration for the named
// group.
func (m *Model) ZeroConfiguration(name string) (spatial.JointConfiguration, error) {
	g, ok := m.Groups[name]
	if !ok {
		return nil, fmt.Errorf("unknown group %q", name)
	}
	return spatial.ZeroConfiguration(len(g.Joints)), nil
}
