package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidSuite(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{suitePath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Suite valid")
}

func TestValidateValidSuiteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{suitePath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateMissingSuiteFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/suite.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, buf.String(), "not found")
}

func TestValidateInvalidSuite(t *testing.T) {
	tmpDir := t.TempDir()

	// Unknown scenario names fail schema validation
	robotPath, err := filepath.Abs(filepath.Join("testdata", "gantry6.cue"))
	require.NoError(t, err)
	badSuite := `suite:
  name: bad-scenarios
robot:
  description: ` + robotPath + `
  group: arm
solver:
  plugin: gantry6
expected:
  base_frame: base_link
  tip_frame: tool0
  group: arm
  joint_names: [x_slide]
scenarios: [warp]
`
	path := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(badSuite), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, buf.String(), "✗ Suite invalid")
}

func TestValidateInvalidSuiteJSON(t *testing.T) {
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "truncated.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suite: {name: truncated}\n"), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSuiteInvalid, resp.Error.Code)
}

func TestValidateRejectsBrokenRobotDescription(t *testing.T) {
	tmpDir := t.TempDir()

	robotPath := filepath.Join(tmpDir, "broken.cue")
	require.NoError(t, os.WriteFile(robotPath, []byte("robot: {name: \"broken\"}\n"), 0o644))

	badSuite := `suite:
  name: broken-robot
robot:
  description: broken.cue
  group: arm
solver:
  plugin: gantry6
expected:
  base_frame: base_link
  tip_frame: tool0
  group: arm
  joint_names: [x_slide]
scenarios: [ik]
`
	path := filepath.Join(tmpDir, "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(badSuite), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ Suite invalid")
}
