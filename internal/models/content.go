// internal/models/content.go
package models

// AIContentBundle is the typed result of the model call. Every slice is
// non-nil once it leaves the parser.
type AIContentBundle struct {
	Description               string             `json:"description"`
	Stories                   []Story            `json:"stories"`
	EndUserRequirements       []string           `json:"endUserRequirements"`
	ContentAuthorRequirements []string           `json:"contentAuthorRequirements"`
	DesignNotes               []string           `json:"designNotes"`
	FieldRequirements         []FieldRequirement `json:"fieldRequirements"`
}

type Story struct {
	Title              string   `json:"title"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
}

type FieldRequirement struct {
	Element    string `json:"element"`
	FieldType  string `json:"fieldType"`
	Required   bool   `json:"required"`
	DataSource string `json:"dataSource"`
	Display    string `json:"display"`
	Notes      string `json:"notes"`
}

// NewAIContentBundle returns a bundle with every field defaulted.
func NewAIContentBundle() *AIContentBundle {
	return &AIContentBundle{
		Stories:                   []Story{},
		EndUserRequirements:       []string{},
		ContentAuthorRequirements: []string{},
		DesignNotes:               []string{},
		FieldRequirements:         []FieldRequirement{},
	}
}

// RequirementCount is the number of functional requirements across both audiences.
func (b *AIContentBundle) RequirementCount() int {
	return len(b.EndUserRequirements) + len(b.ContentAuthorRequirements)
}
