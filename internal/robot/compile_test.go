package robot

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRobot = `
	robot: {
		name: "planar2"
		links: ["base_link", "upper_arm", "tool0"]
		joints: [
			{name: "shoulder", type: "revolute", limit: {min: -3.14, max: 3.14}},
			{name: "elbow", type: "revolute", limit: {min: -2.0, max: 2.0}},
		]
		groups: {
			arm: {
				base: "base_link"
				tip:  "tool0"
				joints: ["shoulder", "elbow"]
			}
		}
	}
`

func compileRobot(t *testing.T, src string) (*Model, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return Compile(v.LookupPath(cue.ParsePath("robot")))
}

func TestCompileBasic(t *testing.T) {
	m, err := compileRobot(t, validRobot)
	require.NoError(t, err)

	assert.Equal(t, "planar2", m.Name)
	assert.Equal(t, []string{"base_link", "upper_arm", "tool0"}, m.Links)

	require.Len(t, m.Joints, 2)
	assert.Equal(t, "shoulder", m.Joints[0].Name)
	assert.Equal(t, Revolute, m.Joints[0].Type)
	assert.Equal(t, Limit{Min: -3.14, Max: 3.14}, m.Joints[0].Limit)

	arm, ok := m.Group("arm")
	require.True(t, ok)
	assert.Equal(t, "base_link", arm.BaseLink)
	assert.Equal(t, "tool0", arm.TipLink)
	assert.Equal(t, []string{"shoulder", "elbow"}, arm.Joints)
}

func TestCompileMissingName(t *testing.T) {
	_, err := compileRobot(t, `
		robot: {
			links: ["base_link"]
			joints: [{name: "j1", type: "revolute", limit: {min: -1.0, max: 1.0}}]
			groups: {arm: {base: "base_link", tip: "base_link", joints: ["j1"]}}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileMissingJoints(t *testing.T) {
	_, err := compileRobot(t, `
		robot: {
			name: "empty"
			links: ["base_link"]
			groups: {arm: {base: "base_link", tip: "base_link", joints: []}}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "joint")
}

func TestCompileDuplicateJoint(t *testing.T) {
	_, err := compileRobot(t, `
		robot: {
			name: "dup"
			links: ["base_link"]
			joints: [
				{name: "j1", type: "revolute", limit: {min: -1.0, max: 1.0}},
				{name: "j1", type: "prismatic", limit: {min: 0.0, max: 1.0}},
			]
			groups: {arm: {base: "base_link", tip: "base_link", joints: ["j1"]}}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate joint")
}

func TestCompileUnknownJointType(t *testing.T) {
	_, err := compileRobot(t, `
		robot: {
			name: "bad"
			links: ["base_link"]
			joints: [{name: "j1", type: "spherical", limit: {min: -1.0, max: 1.0}}]
			groups: {arm: {base: "base_link", tip: "base_link", joints: ["j1"]}}
		}
	`)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "joints.j1.type", ce.Field)
	assert.Contains(t, ce.Message, "spherical")
}

func TestCompileInvertedLimit(t *testing.T) {
	_, err := compileRobot(t, `
		robot: {
			name: "bad"
			links: ["base_link"]
			joints: [{name: "j1", type: "revolute", limit: {min: 1.0, max: -1.0}}]
			groups: {arm: {base: "base_link", tip: "base_link", joints: ["j1"]}}
		}
	`)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "joints.j1.limit", ce.Field)
}

func TestCompileGroupUnknownBaseLink(t *testing.T) {
	_, err := compileRobot(t, `
		robot: {
			name: "bad"
			links: ["base_link"]
			joints: [{name: "j1", type: "revolute", limit: {min: -1.0, max: 1.0}}]
			groups: {arm: {base: "nowhere", tip: "base_link", joints: ["j1"]}}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `base link "nowhere"`)
}

func TestCompileGroupUnknownJoint(t *testing.T) {
	_, err := compileRobot(t, `
		robot: {
			name: "bad"
			links: ["base_link"]
			joints: [{name: "j1", type: "revolute", limit: {min: -1.0, max: 1.0}}]
			groups: {arm: {base: "base_link", tip: "base_link", joints: ["j2"]}}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `joint "j2"`)
}

func TestCompileMissingGroups(t *testing.T) {
	_, err := compileRobot(t, `
		robot: {
			name: "bad"
			links: ["base_link"]
			joints: [{name: "j1", type: "revolute", limit: {min: -1.0, max: 1.0}}]
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group")
}

func TestLoadGantry6(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "gantry6.cue"))
	require.NoError(t, err)

	assert.Equal(t, "gantry6", m.Name)
	assert.Len(t, m.Joints, 6)
	assert.Equal(t, Prismatic, m.Joints[0].Type)
	assert.Equal(t, Revolute, m.Joints[3].Type)

	arm, ok := m.Group("arm")
	require.True(t, ok)
	assert.Equal(t, []string{"x_slide", "y_slide", "z_lift", "wrist_yaw", "wrist_pitch", "wrist_roll"}, arm.Joints)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "no-such-robot.cue"))
	require.Error(t, err)
}

func TestLoadWithoutRobotField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cue")
	require.NoError(t, os.WriteFile(path, []byte(`vehicle: {wheels: 4}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no robot definition")
}
