package sentiment

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/invopop/jsonschema"
)

// generateSchema reflects T into a JSON schema shaped for the OpenAI strict
// structured-output mode: no additional properties, no $ref indirection, and
// every declared property required.
func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var value T
	schema := reflector.Reflect(value)

	raw, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var schemaMap map[string]interface{}
	if err := json.Unmarshal(raw, &schemaMap); err != nil {
		panic(err)
	}
	ensureStrictSchema(schemaMap)
	return schemaMap
}

func ensureStrictSchema(schema map[string]interface{}) {
	if schemaType, ok := schema["type"].(string); ok && schemaType == "object" {
		schema["additionalProperties"] = false
		if properties, ok := schema["properties"].(map[string]interface{}); ok {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}

	if properties, ok := schema["properties"].(map[string]interface{}); ok {
		for _, property := range properties {
			if propertyMap, ok := property.(map[string]interface{}); ok {
				ensureStrictSchema(propertyMap)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		ensureStrictSchema(items)
	}
}

// decodeVerdict unmarshals a model response, tolerating stray text around
// the JSON object and surrounding whitespace.
func decodeVerdict(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("unmarshal extracted JSON: %w", err)
	}
	return nil
}
