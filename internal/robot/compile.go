package robot

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Load reads a CUE robot description from path and compiles the definition
// under the top-level "robot" field.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading robot description: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath("robot"))
	if !root.Exists() {
		return nil, &CompileError{
			Field:   "robot",
			Message: "no robot definition found",
			Pos:     v.Pos(),
		}
	}
	return Compile(root)
}

// Compile parses a CUE value into a Model.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the robot struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`robot: { name: "gantry6", ... }`)
//	model, err := robot.Compile(v.LookupPath(cue.ParsePath("robot")))
func Compile(v cue.Value) (*Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Model{Groups: make(map[string]Group)}

	// Parse name (required, nonempty)
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "robot name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if name == "" {
		return nil, &CompileError{
			Field:   "name",
			Message: "robot name must be nonempty",
			Pos:     nameVal.Pos(),
		}
	}
	m.Name = name

	// Parse links (required, at least one)
	m.Links, err = parseLinks(v)
	if err != nil {
		return nil, err
	}

	// Parse joints (required, at least one)
	m.Joints, err = parseJoints(v)
	if err != nil {
		return nil, err
	}

	// Parse groups (required, at least one) and cross-check references
	if err := parseGroups(v, m); err != nil {
		return nil, err
	}

	return m, nil
}

// parseLinks extracts the link name list.
func parseLinks(v cue.Value) ([]string, error) {
	linksVal := v.LookupPath(cue.ParsePath("links"))
	if !linksVal.Exists() {
		return nil, &CompileError{
			Field:   "links",
			Message: "at least one link is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := linksVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var links []string
	seen := make(map[string]bool)
	for iter.Next() {
		link, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if seen[link] {
			return nil, &CompileError{
				Field:   "links",
				Message: fmt.Sprintf("duplicate link %q", link),
				Pos:     iter.Value().Pos(),
			}
		}
		seen[link] = true
		links = append(links, link)
	}

	if len(links) == 0 {
		return nil, &CompileError{
			Field:   "links",
			Message: "at least one link is required",
			Pos:     linksVal.Pos(),
		}
	}
	return links, nil
}

// parseJoints extracts joint definitions in declaration order.
func parseJoints(v cue.Value) ([]Joint, error) {
	jointsVal := v.LookupPath(cue.ParsePath("joints"))
	if !jointsVal.Exists() {
		return nil, &CompileError{
			Field:   "joints",
			Message: "at least one joint is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := jointsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var joints []Joint
	seen := make(map[string]bool)
	for iter.Next() {
		jv := iter.Value()

		jointName, err := jv.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if seen[jointName] {
			return nil, &CompileError{
				Field:   "joints",
				Message: fmt.Sprintf("duplicate joint %q", jointName),
				Pos:     jv.Pos(),
			}
		}
		seen[jointName] = true

		jointType, err := parseJointType(jv, jointName)
		if err != nil {
			return nil, err
		}

		limit, err := parseLimit(jv, jointName)
		if err != nil {
			return nil, err
		}

		joints = append(joints, Joint{Name: jointName, Type: jointType, Limit: limit})
	}

	if len(joints) == 0 {
		return nil, &CompileError{
			Field:   "joints",
			Message: "at least one joint is required",
			Pos:     jointsVal.Pos(),
		}
	}
	return joints, nil
}

// parseJointType converts the CUE type field to a JointType.
func parseJointType(jv cue.Value, jointName string) (JointType, error) {
	typeVal := jv.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return "", &CompileError{
			Field:   fmt.Sprintf("joints.%s.type", jointName),
			Message: "joint type is required",
			Pos:     jv.Pos(),
		}
	}
	s, err := typeVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	switch JointType(s) {
	case Revolute, Prismatic:
		return JointType(s), nil
	default:
		return "", &CompileError{
			Field:   fmt.Sprintf("joints.%s.type", jointName),
			Message: fmt.Sprintf("unknown joint type %q (want revolute or prismatic)", s),
			Pos:     typeVal.Pos(),
		}
	}
}

// parseLimit extracts the motion limit and checks min < max.
func parseLimit(jv cue.Value, jointName string) (Limit, error) {
	limitVal := jv.LookupPath(cue.ParsePath("limit"))
	if !limitVal.Exists() {
		return Limit{}, &CompileError{
			Field:   fmt.Sprintf("joints.%s.limit", jointName),
			Message: "joint limit is required",
			Pos:     jv.Pos(),
		}
	}

	min, err := limitVal.LookupPath(cue.ParsePath("min")).Float64()
	if err != nil {
		return Limit{}, formatCUEError(err)
	}
	max, err := limitVal.LookupPath(cue.ParsePath("max")).Float64()
	if err != nil {
		return Limit{}, formatCUEError(err)
	}
	if min >= max {
		return Limit{}, &CompileError{
			Field:   fmt.Sprintf("joints.%s.limit", jointName),
			Message: fmt.Sprintf("limit min %g must be less than max %g", min, max),
			Pos:     limitVal.Pos(),
		}
	}
	return Limit{Min: min, Max: max}, nil
}

// parseGroups extracts group definitions and verifies every referenced
// link and joint is declared.
func parseGroups(v cue.Value, m *Model) error {
	groupsVal := v.LookupPath(cue.ParsePath("groups"))
	if !groupsVal.Exists() {
		return &CompileError{
			Field:   "groups",
			Message: "at least one group is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := groupsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		groupName := iter.Label()
		gv := iter.Value()

		base, err := gv.LookupPath(cue.ParsePath("base")).String()
		if err != nil {
			return formatCUEError(err)
		}
		if !m.HasLink(base) {
			return &CompileError{
				Field:   fmt.Sprintf("groups.%s.base", groupName),
				Message: fmt.Sprintf("base link %q is not declared", base),
				Pos:     gv.Pos(),
			}
		}

		tip, err := gv.LookupPath(cue.ParsePath("tip")).String()
		if err != nil {
			return formatCUEError(err)
		}
		if !m.HasLink(tip) {
			return &CompileError{
				Field:   fmt.Sprintf("groups.%s.tip", groupName),
				Message: fmt.Sprintf("tip link %q is not declared", tip),
				Pos:     gv.Pos(),
			}
		}

		jointsVal := gv.LookupPath(cue.ParsePath("joints"))
		if !jointsVal.Exists() {
			return &CompileError{
				Field:   fmt.Sprintf("groups.%s.joints", groupName),
				Message: "group joints are required",
				Pos:     gv.Pos(),
			}
		}
		jointIter, err := jointsVal.List()
		if err != nil {
			return formatCUEError(err)
		}

		var jointNames []string
		for jointIter.Next() {
			jointName, err := jointIter.Value().String()
			if err != nil {
				return formatCUEError(err)
			}
			if _, ok := m.Joint(jointName); !ok {
				return &CompileError{
					Field:   fmt.Sprintf("groups.%s.joints", groupName),
					Message: fmt.Sprintf("joint %q is not declared", jointName),
					Pos:     jointIter.Value().Pos(),
				}
			}
			jointNames = append(jointNames, jointName)
		}
		if len(jointNames) == 0 {
			return &CompileError{
				Field:   fmt.Sprintf("groups.%s.joints", groupName),
				Message: "group needs at least one joint",
				Pos:     jointsVal.Pos(),
			}
		}

		m.Groups[groupName] = Group{
			Name:     groupName,
			BaseLink: base,
			TipLink:  tip,
			Joints:   jointNames,
		}
	}

	if len(m.Groups) == 0 {
		return &CompileError{
			Field:   "groups",
			Message: "at least one group is required",
			Pos:     groupsVal.Pos(),
		}
	}
	return nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
