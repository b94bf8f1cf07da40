package jira

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	httpclient "figma-to-fsd/internal/common/http"
	"figma-to-fsd/internal/models"
)

const serviceName = "jira"

// Client creates issues in Jira Cloud with basic auth.
type Client struct {
	creds      models.AtlassianCredentials
	baseURL    string
	httpClient *httpclient.Client
}

// IssueInput describes one issue to create. ParentKey makes it a sub-task.
type IssueInput struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string
	ParentKey   string
	AssigneeID  string
}

type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

func NewClient(creds models.AtlassianCredentials, httpClient *httpclient.Client) *Client {
	return &Client{
		creds:      creds,
		baseURL:    strings.TrimRight(creds.BaseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": httpclient.BasicAuth(c.creds.Email, c.creds.APIToken)}
}

// CreateIssue creates an issue. The description is sent as a one-paragraph
// Atlassian Document Format document.
func (c *Client) CreateIssue(ctx context.Context, in IssueInput) (*CreatedIssue, error) {
	fields := map[string]interface{}{
		"project":     map[string]string{"key": in.ProjectKey},
		"summary":     in.Summary,
		"description": DescriptionDocument(in.Description),
		"issuetype":   map[string]string{"name": in.IssueType},
	}
	if in.ParentKey != "" {
		fields["parent"] = map[string]string{"key": in.ParentKey}
	}
	if in.AssigneeID != "" {
		fields["assignee"] = map[string]string{"accountId": in.AssigneeID}
	}

	var created CreatedIssue
	err := c.httpClient.DoJSON(ctx, serviceName, http.MethodPost, c.baseURL+"/rest/api/3/issue",
		c.headers(), map[string]interface{}{"fields": fields}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CurrentAccountID returns the account id of the credential owner.
func (c *Client) CurrentAccountID(ctx context.Context) (string, error) {
	var me struct {
		AccountID string `json:"accountId"`
	}
	if err := c.httpClient.DoJSON(ctx, serviceName, http.MethodGet, c.baseURL+"/rest/api/3/myself", c.headers(), nil, &me); err != nil {
		return "", err
	}
	if me.AccountID == "" {
		return "", fmt.Errorf("jira returned no accountId for %s", c.creds.Email)
	}
	return me.AccountID, nil
}

// BrowseURL is the human-facing link of an issue.
func (c *Client) BrowseURL(key string) string {
	return fmt.Sprintf("%s/browse/%s", c.baseURL, key)
}

// Email identifies the credential, used as the identity cache key.
func (c *Client) Email() string {
	return c.creds.Email
}

// DescriptionDocument wraps plain text in an ADF document with a single paragraph.
func DescriptionDocument(text string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "doc",
		"version": 1,
		"content": []interface{}{
			map[string]interface{}{
				"type": "paragraph",
				"content": []interface{}{
					map[string]interface{}{"type": "text", "text": text},
				},
			},
		},
	}
}
