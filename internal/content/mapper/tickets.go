package mapper

import (
	"fmt"
	"strings"

	"figma-to-fsd/internal/models"
)

// ToTicketPlan fills the fixed parent and sub-task templates.
func ToTicketPlan(bundle *models.AIContentBundle, componentName, figmaURL string) models.TicketPlan {
	description := bundle.Description

	parent := []string{
		description,
		"",
		fmt.Sprintf("Figma design: %s", figmaURL),
	}
	for _, s := range bundle.Stories {
		parent = append(parent, "", s.Title)
		for _, ac := range s.AcceptanceCriteria {
			parent = append(parent, "- "+ac)
		}
	}

	fed := []string{
		fmt.Sprintf("Build the front-end of the %s component to match the Figma design.", componentName),
		"",
		description,
		"",
		fmt.Sprintf("Figma design: %s", figmaURL),
		"",
		"Scope:",
		"- Semantic markup and styles for desktop, tablet and mobile breakpoints",
		"- Interactive states for links, buttons and focus",
		"- Accessibility: keyboard navigation, alt text, colour contrast",
	}

	bed := []string{
		fmt.Sprintf("Build the content model and back-end wiring of the %s component.", componentName),
		"",
		description,
		"",
		fmt.Sprintf("Authorable fields identified: %d", len(bundle.FieldRequirements)),
		"",
		"Scope:",
		"- Content model and authoring dialog for every field",
		"- Validation of required fields",
		"- Data delivery to the front-end",
	}

	qa := []string{
		fmt.Sprintf("Verify the %s component against the design and functional specification.", componentName),
		"",
		fmt.Sprintf("Figma design: %s", figmaURL),
		"",
		"Scope:",
		"- Visual comparison at desktop, tablet and mobile widths",
		"- Authoring of every field, including empty optional fields",
		"- Accessibility and cross-browser checks",
	}

	return models.TicketPlan{
		ParentSummary:     fmt.Sprintf("%s Component", componentName),
		ParentDescription: strings.Join(parent, "\n"),
		FEDSummary:        fmt.Sprintf("FED: %s", componentName),
		FEDDescription:    strings.Join(fed, "\n"),
		BEDSummary:        fmt.Sprintf("BED: %s", componentName),
		BEDDescription:    strings.Join(bed, "\n"),
		QASummary:         fmt.Sprintf("QA: %s", componentName),
		QADescription:     strings.Join(qa, "\n"),
	}
}
