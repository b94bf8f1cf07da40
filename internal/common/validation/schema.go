package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/models"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func nonEmpty() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1}
}

var atlassianSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"baseUrl", "email", "apiToken"},
	"properties": map[string]interface{}{
		"baseUrl":  map[string]interface{}{"type": "string", "pattern": "^https?://"},
		"email":    nonEmpty(),
		"apiToken": nonEmpty(),
	},
}

// RequestSchema returns the JSON schema a request must satisfy in mode. Every
// mode needs the design reference; Atlassian credentials plus a project or
// space key are only required by the stages that use them.
func RequestSchema(mode models.GenerationMode) map[string]interface{} {
	required := []string{"figmaUrl", "figmaToken", "componentName", "mode"}
	properties := map[string]interface{}{
		"figmaUrl":      map[string]interface{}{"type": "string", "pattern": `^https?://([a-z0-9-]+\.)?figma\.com/`},
		"figmaToken":    nonEmpty(),
		"componentName": nonEmpty(),
		"mode": map[string]interface{}{
			"type": "string",
			"enum": []string{string(models.ModeBoth), string(models.ModeJira), string(models.ModeConfluence)},
		},
		"tabletUrl": map[string]interface{}{"type": "string", "pattern": `^https?://`},
		"mobileUrl": map[string]interface{}{"type": "string", "pattern": `^https?://`},
		"notifyEmails": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string", "format": "email"},
		},
	}

	if mode.IncludesTickets() || mode.IncludesDocument() {
		required = append(required, "atlassian")
		properties["atlassian"] = atlassianSchema
	}
	if mode.IncludesTickets() {
		required = append(required, "projectKey")
		properties["projectKey"] = nonEmpty()
	}
	if mode.IncludesDocument() {
		required = append(required, "spaceKey")
		properties["spaceKey"] = nonEmpty()
	}

	return map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": properties,
	}
}

// Validate checks req against the schema for its mode.
func Validate(req models.GenerationRequest) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(RequestSchema(req.Mode)),
		gojsonschema.NewGoLoader(req),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			if missing, ok := desc.Details()["property"].(string); ok {
				field = missing
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out, nil
}

// ValidateRequest returns INPUT_VALIDATION_FAILED listing every violation, or nil.
func ValidateRequest(req models.GenerationRequest) error {
	result, err := Validate(req)
	if err != nil {
		return apperrors.NewInputValidationError(err.Error())
	}
	if result.Valid {
		return nil
	}

	msgs := make([]string, len(result.Errors))
	fields := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		fields[i] = e.Field
	}
	return apperrors.NewInputValidationError(strings.Join(msgs, "; ")).
		WithMetadata("fields", fields)
}
