// ABOUTME: Tool input schemas for fields that only accept a fixed set of values
// ABOUTME: Pins those properties to the model's allowed values so clients see and obey them
package handlers

import (
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/harperreed/dealboard/models"
)

// schemaWithChoices infers the schema for In the way the MCP SDK does, then
// restricts each named property to its allowed values.
func schemaWithChoices[In any](choices map[string][]string) *jsonschema.Schema {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		panic(fmt.Sprintf("infer input schema: %v", err))
	}
	for name, values := range choices {
		prop, ok := schema.Properties[name]
		if !ok {
			panic(fmt.Sprintf("input schema has no property %q", name))
		}
		prop.Enum = make([]any, len(values))
		for i, v := range values {
			prop.Enum[i] = v
		}
		prop.Description = fmt.Sprintf("%s; one of: %s", prop.Description, strings.Join(values, ", "))
	}
	return schema
}

func AddTaskSchema() *jsonschema.Schema {
	return schemaWithChoices[AddTaskInput](map[string][]string{
		"priority": models.TaskPriorities(),
		"status":   models.TaskStatuses(),
	})
}

func ListTasksSchema() *jsonschema.Schema {
	return schemaWithChoices[ListTasksInput](map[string][]string{"status": models.TaskStatuses()})
}

func LogActivitySchema() *jsonschema.Schema {
	return schemaWithChoices[LogActivityInput](map[string][]string{"type": models.ActivityTypes()})
}

func ListActivitiesSchema() *jsonschema.Schema {
	return schemaWithChoices[ListActivitiesInput](map[string][]string{"type": models.ActivityTypes()})
}

func CreateQuoteSchema() *jsonschema.Schema {
	return schemaWithChoices[CreateQuoteInput](map[string][]string{
		"status":          models.QuoteStatuses(),
		"delivery_method": models.DeliveryMethods(),
	})
}

func ListQuotesSchema() *jsonschema.Schema {
	return schemaWithChoices[ListQuotesInput](map[string][]string{"status": models.QuoteStatuses()})
}
