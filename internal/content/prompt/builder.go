package prompt

import (
	"fmt"
	"strings"

	"figma-to-fsd/internal/models"
)

// SystemPrompt is sent alongside every analysis prompt.
const SystemPrompt = "You are a senior business analyst writing functional specifications for web components. " +
	"You respond with a single JSON object and nothing else."

const fieldTypeRules = `FIELD TYPE RULES
Use exactly one of these labels for fieldType:
- "Single-line text": headings, labels, short titles, button text
- "Multi-line text": plain paragraphs without formatting
- "Rich text": body copy that carries formatting, inline links or lists
- "Link": anything the user clicks to navigate (buttons, CTAs, nav entries)
- "Image": photos, banners, illustrations, logos
- "List of items": repeated groups such as cards, columns or rows; describe the sub-fields of one item in notes
- "Dropdown": a choice from a fixed set of options (themes, alignments, variants)`

const nestedExample = `EXAMPLE OF A NESTED STRUCTURE
A footer with three link columns becomes:
{"element": "Link columns", "fieldType": "List of items", "required": true, "dataSource": "CMS", "display": "Up to 3 columns side by side", "notes": "Each item: column heading (Single-line text), links (List of items: label + URL)"}`

const responseShape = `RESPONSE FORMAT
Return a JSON object with exactly these keys:
{
  "description": "2-3 sentence overview of the component and its purpose",
  "stories": [{"title": "As a <role> I want <goal> so that <benefit>", "acceptanceCriteria": ["..."]}],
  "endUserRequirements": ["what a site visitor can see and do"],
  "contentAuthorRequirements": ["what a CMS author can configure"],
  "designNotes": ["layout, spacing, colour and responsive behaviour notes"],
  "fieldRequirements": [{"element": "", "fieldType": "", "required": true, "dataSource": "", "display": "", "notes": ""}]
}`

// Build renders the analysis prompt for a component. The output depends only
// on the component, so equal components yield identical prompts.
func Build(component *models.ExtractedComponent) string {
	if component == nil {
		component = &models.ExtractedComponent{}
	}
	summary := Summarize(component)

	var parts []string
	parts = append(parts, fmt.Sprintf("Analyse the Figma component %q and produce the content for its functional specification.", component.Name))
	parts = append(parts, "")

	parts = append(parts, "COMPONENT")
	parts = append(parts, fmt.Sprintf("Name: %s", component.Name))
	parts = append(parts, fmt.Sprintf("Type: %s", component.Type))
	if component.Dimensions != nil {
		parts = append(parts, fmt.Sprintf("Size: %dx%d", component.Dimensions.Width, component.Dimensions.Height))
	}
	parts = append(parts, fmt.Sprintf("Top-level elements: %d", len(component.Children)))
	parts = append(parts, "")

	if len(summary.Hierarchy) > 0 {
		parts = append(parts, "STRUCTURE")
		parts = append(parts, summary.Hierarchy...)
		parts = append(parts, "")
	}

	if len(summary.Texts) > 0 {
		parts = append(parts, "TEXT CONTENT")
		for _, t := range summary.Texts {
			parts = append(parts, fmt.Sprintf("- %s: %q", t.Name, t.Text))
		}
		parts = append(parts, "")
	}

	if len(summary.Images) > 0 {
		parts = append(parts, "IMAGES")
		for _, img := range summary.Images {
			line := fmt.Sprintf("- %s (%s)", img.Name, img.Type)
			if img.Dimensions != nil {
				line += fmt.Sprintf(" %dx%d", img.Dimensions.Width, img.Dimensions.Height)
			}
			parts = append(parts, line)
		}
		parts = append(parts, "")
	}

	if len(summary.Logos) > 0 {
		parts = append(parts, "LOGOS: "+strings.Join(summary.Logos, ", "))
	}
	if len(summary.Icons) > 0 {
		parts = append(parts, "ICONS: "+strings.Join(summary.Icons, ", "))
	}
	if len(summary.Logos) > 0 || len(summary.Icons) > 0 {
		parts = append(parts, "")
	}

	if len(summary.Links) > 0 {
		parts = append(parts, "INTERACTIVE ELEMENTS")
		for _, l := range summary.Links {
			line := "- " + l.Name
			if len(l.Children) > 0 {
				line += " > " + strings.Join(l.Children, ", ")
			}
			parts = append(parts, line)
		}
		parts = append(parts, "")
	}

	if len(summary.Repeatables) > 0 {
		parts = append(parts, "REPEATING GROUPS")
		for _, r := range summary.Repeatables {
			parts = append(parts, fmt.Sprintf("- %s: %d children (e.g. %s)", r.Name, r.ChildCount, strings.Join(r.Samples, ", ")))
		}
		parts = append(parts, "")
	}

	parts = append(parts, fieldTypeRules, "", nestedExample, "", responseShape)

	return strings.Join(parts, "\n")
}
