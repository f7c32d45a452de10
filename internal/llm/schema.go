package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed prompts/result.schema.json
var resultSchemaJSON string

var (
	resultSchemaOnce sync.Once
	resultSchema     *gojsonschema.Schema
	resultSchemaErr  error
)

func compiledResultSchema() (*gojsonschema.Schema, error) {
	resultSchemaOnce.Do(func() {
		resultSchema, resultSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchemaJSON))
	})
	return resultSchema, resultSchemaErr
}

// Validate checks a normalized result against the result schema.
func Validate(res Result) error {
	schema, err := compiledResultSchema()
	if err != nil {
		return fmt.Errorf("load result schema: %w", err)
	}
	out, err := schema.Validate(gojsonschema.NewGoLoader(res))
	if err != nil {
		return fmt.Errorf("validate result: %w", err)
	}
	if out.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(out.Errors()))
	for _, e := range out.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
