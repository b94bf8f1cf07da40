// internal/models/request.go
package models

type GenerationMode string

const (
	ModeBoth       GenerationMode = "both"
	ModeJira       GenerationMode = "jira"
	ModeConfluence GenerationMode = "confluence"
)

func (m GenerationMode) IncludesTickets() bool {
	return m == ModeBoth || m == ModeJira
}

func (m GenerationMode) IncludesDocument() bool {
	return m == ModeBoth || m == ModeConfluence
}

type AtlassianCredentials struct {
	BaseURL  string `json:"baseUrl"`
	Email    string `json:"email"`
	APIToken string `json:"apiToken"`
}

// GenerationRequest is the input of one generation run.
type GenerationRequest struct {
	FigmaURL      string               `json:"figmaUrl"`
	FigmaToken    string               `json:"figmaToken"`
	TabletURL     string               `json:"tabletUrl,omitempty"`
	MobileURL     string               `json:"mobileUrl,omitempty"`
	ComponentName string               `json:"componentName"`
	Mode          GenerationMode       `json:"mode"`
	Atlassian     AtlassianCredentials `json:"atlassian"`
	ProjectKey    string               `json:"projectKey,omitempty"`
	SpaceKey      string               `json:"spaceKey,omitempty"`
	ParentPageID  string               `json:"parentPageId,omitempty"`
	NotifyEmails  []string             `json:"notifyEmails,omitempty"`
}

// Redacted returns a copy without secrets, suitable for logs and events.
func (r GenerationRequest) Redacted() GenerationRequest {
	out := r
	if out.FigmaToken != "" {
		out.FigmaToken = "***"
	}
	if out.Atlassian.APIToken != "" {
		out.Atlassian.APIToken = "***"
	}
	return out
}
