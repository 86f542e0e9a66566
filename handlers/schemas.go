package handlers

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request body shapes. Field content rules (blank names, known statuses and
// roles) are left to the services so their messages stay consistent.
var (
	createTaskSchema = jsonschema.MustCompileString("create-task.json", `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"description": {"type": "string"}
		},
		"required": ["name", "description"],
		"additionalProperties": false
	}`)

	updateTaskSchema = jsonschema.MustCompileString("update-task.json", `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"description": {"type": "string"},
			"status": {"type": "string"}
		},
		"additionalProperties": false
	}`)

	createUserSchema = jsonschema.MustCompileString("create-user.json", `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"role": {"type": "string"}
		},
		"required": ["name"],
		"additionalProperties": false
	}`)
)

// schemaMessage flattens a validation error into one line.
func schemaMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var messages []string
	collectSchemaErrors(ve, &messages)
	return strings.Join(messages, "; ")
}

func collectSchemaErrors(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		if err.InstanceLocation == "" {
			*messages = append(*messages, err.Message)
		} else {
			*messages = append(*messages, fmt.Sprintf("%s: %s", err.InstanceLocation, err.Message))
		}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, messages)
	}
}
