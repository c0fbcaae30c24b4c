package config

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed suite.schema.json
var schemaFS embed.FS

var (
	suiteSchema *jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

// compileSchema compiles the embedded suite schema once.
func compileSchema() error {
	compileOnce.Do(func() {
		data, err := schemaFS.ReadFile("suite.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("read suite schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal suite schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("suite.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add suite schema resource: %w", err)
			return
		}

		suiteSchema, err = compiler.Compile("suite.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile suite schema: %w", err)
			return
		}
	})
	return compileErr
}

// validateDocument checks a raw YAML suite document against the schema.
// yaml.v3 decodes mappings with string keys into map[string]any, which is
// the value shape the validator expects.
func validateDocument(data []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	if err := suiteSchema.Validate(doc); err != nil {
		return fmt.Errorf("suite validation failed: %w", err)
	}
	return nil
}
