package persist

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const snapshotSchemaURL = "todo://schemas/snapshot.json"

// snapshotSchema describes the value stored under the todos key.
// "completed" may be missing; it then decodes as false.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["text"],
    "properties": {
      "text": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(snapshotSchemaURL)
	})
	return schema, schemaErr
}

// validateSnapshot checks raw against the snapshot schema.
func validateSnapshot(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return describe(err)
	}
	return nil
}

// describe flattens a schema error into its first leaf cause, which is the
// line worth logging.
func describe(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("%s: %s", loc, ve.Message)
}
