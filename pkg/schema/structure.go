package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed form.schema.json
var formMetaSchema []byte

const formMetaSchemaURL = "https://clinicform.local/form.schema.json"

var (
	structureOnce   sync.Once
	structureSchema *jsonschema.Schema
	structureErr    error
)

// structureValidator compiles the embedded meta-schema once.
func structureValidator() (*jsonschema.Schema, error) {
	structureOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(formMetaSchema))
		if err != nil {
			structureErr = fmt.Errorf("schema: decode meta-schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(formMetaSchemaURL, doc); err != nil {
			structureErr = fmt.Errorf("schema: add meta-schema: %w", err)
			return
		}
		structureSchema, structureErr = compiler.Compile(formMetaSchemaURL)
		if structureErr != nil {
			structureErr = fmt.Errorf("schema: compile meta-schema: %w", structureErr)
		}
	})
	return structureSchema, structureErr
}

// checkStructure validates a JSON encoded document against the meta-schema.
func checkStructure(jsonDoc []byte) []Issue {
	validator, err := structureValidator()
	if err != nil {
		return []Issue{errorIssue("", "", ErrStructure, "%v", err)}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonDoc))
	if err != nil {
		return []Issue{errorIssue("", "", ErrStructure, "decode document: %v", err)}
	}
	if err := validator.Validate(instance); err != nil {
		return []Issue{errorIssue("", "", ErrStructure, "%v", err)}
	}
	return nil
}
