package confluence

import (
	"context"
	"net/http"
	"strings"

	httpclient "figma-to-fsd/internal/common/http"
	"figma-to-fsd/internal/models"
)

const serviceName = "confluence"

// Client publishes pages to Confluence Cloud. It shares credentials with Jira.
type Client struct {
	creds      models.AtlassianCredentials
	baseURL    string
	httpClient *httpclient.Client
}

type PageInput struct {
	SpaceKey string
	Title    string
	Body     string // storage-format markup
	ParentID string
}

type Page struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	WebURL string `json:"webUrl"`
}

type contentResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Links struct {
		Base  string `json:"base"`
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// NewClient targets <baseURL>/wiki. A base URL already ending in /wiki is kept.
func NewClient(creds models.AtlassianCredentials, httpClient *httpclient.Client) *Client {
	base := strings.TrimRight(creds.BaseURL, "/")
	if !strings.HasSuffix(base, "/wiki") {
		base += "/wiki"
	}
	return &Client{creds: creds, baseURL: base, httpClient: httpClient}
}

// CreatePage creates a page in the space, under ParentID when given.
func (c *Client) CreatePage(ctx context.Context, in PageInput) (*Page, error) {
	payload := map[string]interface{}{
		"type":  "page",
		"title": in.Title,
		"space": map[string]string{"key": in.SpaceKey},
		"body": map[string]interface{}{
			"storage": map[string]string{
				"value":          in.Body,
				"representation": "storage",
			},
		},
	}
	if in.ParentID != "" {
		payload["ancestors"] = []map[string]string{{"id": in.ParentID}}
	}

	headers := map[string]string{"Authorization": httpclient.BasicAuth(c.creds.Email, c.creds.APIToken)}

	var resp contentResponse
	if err := c.httpClient.DoJSON(ctx, serviceName, http.MethodPost, c.baseURL+"/rest/api/content", headers, payload, &resp); err != nil {
		return nil, err
	}

	base := resp.Links.Base
	if base == "" {
		base = c.baseURL
	}
	return &Page{ID: resp.ID, Title: resp.Title, WebURL: base + resp.Links.WebUI}, nil
}
