package api

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const todoSchemaURL = "todo.schema.json"

const todoSchemaJSON = `{
  "type": "object",
  "required": ["id", "userId", "title", "completed"],
  "properties": {
    "id":        {"type": "integer", "minimum": 1},
    "userId":    {"type": "integer"},
    "title":     {"type": "string"},
    "completed": {"type": "boolean"}
  }
}`

var todoSchema = jsonschema.MustCompileString(todoSchemaURL, todoSchemaJSON)

// validateTodo checks a single decoded record against the todo schema.
func validateTodo(raw []byte) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return schemaError(todoSchema.Validate(v))
}

// validateTodoList checks every element of a list response.
func validateTodoList(raw []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	for i, item := range items {
		if err := validateTodo(item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// schemaError flattens a jsonschema.ValidationError into one line.
func schemaError(err error) error {
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var msgs []string
	collectCauses(ve, &msgs)
	return fmt.Errorf("invalid todo: %s", strings.Join(msgs, "; "))
}

func collectCauses(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, loc+": "+ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collectCauses(c, msgs)
	}
}
