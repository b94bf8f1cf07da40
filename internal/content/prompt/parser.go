package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/models"
)

// ParseResponse decodes the model output into a bundle. Output that is not a
// JSON object is an error; every key that is missing or of the wrong shape
// gets its default, and array entries are read one by one.
func ParseResponse(raw string) (*models.AIContentBundle, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFences(raw)), &fields); err != nil {
		return nil, apperrors.NewAIResponseInvalidError(err, raw)
	}

	bundle := models.NewAIContentBundle()

	if v, ok := fields["description"]; ok {
		_ = json.Unmarshal(v, &bundle.Description)
	}
	bundle.EndUserRequirements = stringList(fields["endUserRequirements"])
	bundle.ContentAuthorRequirements = stringList(fields["contentAuthorRequirements"])
	bundle.DesignNotes = stringList(fields["designNotes"])
	bundle.Stories = stories(fields["stories"])
	bundle.FieldRequirements = fieldRequirements(fields["fieldRequirements"])

	return bundle, nil
}

// stripFences removes a markdown code fence around the payload, which some
// models add even in JSON mode.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func stringList(raw json.RawMessage) []string {
	out := []string{}
	var items []interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stories(raw json.RawMessage) []models.Story {
	out := []models.Story{}
	for _, item := range rawItems(raw) {
		var obj map[string]json.RawMessage
		if json.Unmarshal(item, &obj) != nil {
			if t := scalarText(item); t != "" {
				out = append(out, models.Story{Title: t, AcceptanceCriteria: []string{}})
			}
			continue
		}
		var s models.Story
		_ = json.Unmarshal(obj["title"], &s.Title)
		s.AcceptanceCriteria = stringList(obj["acceptanceCriteria"])
		out = append(out, s)
	}
	return out
}

// fieldRequirements reads entries leniently: unknown or mistyped values are
// stringified rather than rejected, and a bare value becomes the element name.
func fieldRequirements(raw json.RawMessage) []models.FieldRequirement {
	out := []models.FieldRequirement{}
	for _, item := range rawItems(raw) {
		var obj map[string]interface{}
		if json.Unmarshal(item, &obj) != nil {
			if t := scalarText(item); t != "" {
				out = append(out, models.FieldRequirement{Element: t})
			}
			continue
		}
		out = append(out, models.FieldRequirement{
			Element:    text(obj["element"]),
			FieldType:  text(obj["fieldType"]),
			Required:   truthy(obj["required"]),
			DataSource: text(obj["dataSource"]),
			Display:    text(obj["display"]),
			Notes:      text(obj["notes"]),
		})
	}
	return out
}

// rawItems splits a JSON array into its elements. Anything else is empty.
func rawItems(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	return items
}

// scalarText renders a string or number element. Anything else gives "".
func scalarText(raw json.RawMessage) string {
	var v interface{}
	if json.Unmarshal(raw, &v) != nil {
		return ""
	}
	switch v.(type) {
	case string, float64:
		return strings.TrimSpace(text(v))
	}
	return ""
}

func text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "required", "y":
			return true
		}
	case float64:
		return t != 0
	}
	return false
}
