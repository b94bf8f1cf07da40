package figma

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	httpclient "figma-to-fsd/internal/common/http"
	"figma-to-fsd/internal/models"
)

const serviceName = "figma"

// Client talks to the Figma REST API. Tokens are supplied per call because
// they belong to the requester.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
}

type fileResponse struct {
	Name     string            `json:"name"`
	Document models.DesignNode `json:"document"`
}

type nodesResponse struct {
	Name  string `json:"name"`
	Nodes map[string]*struct {
		Document models.DesignNode `json:"document"`
	} `json:"nodes"`
}

type imagesResponse struct {
	Err    *string           `json:"err"`
	Images map[string]string `json:"images"`
}

func NewClient(baseURL string, httpClient *httpclient.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetDocument fetches the subtree rooted at nodeID, or the whole file when
// nodeID is empty.
func (c *Client) GetDocument(ctx context.Context, token, fileKey, nodeID string) (*models.DesignNode, error) {
	headers := map[string]string{"X-Figma-Token": token}

	if nodeID == "" {
		endpoint := fmt.Sprintf("%s/v1/files/%s", c.baseURL, url.PathEscape(fileKey))
		var resp fileResponse
		if err := c.httpClient.DoJSON(ctx, serviceName, http.MethodGet, endpoint, headers, nil, &resp); err != nil {
			return nil, err
		}
		return &resp.Document, nil
	}

	endpoint := fmt.Sprintf("%s/v1/files/%s/nodes?ids=%s", c.baseURL, url.PathEscape(fileKey), url.QueryEscape(nodeID))
	var resp nodesResponse
	if err := c.httpClient.DoJSON(ctx, serviceName, http.MethodGet, endpoint, headers, nil, &resp); err != nil {
		return nil, err
	}

	node, ok := resp.Nodes[nodeID]
	if !ok || node == nil {
		return nil, fmt.Errorf("node %s not found in file %s", nodeID, fileKey)
	}
	return &node.Document, nil
}

// GetImages renders the given nodes and returns their image URLs by node id.
// Nodes Figma could not render are absent from the map.
func (c *Client) GetImages(ctx context.Context, token, fileKey string, nodeIDs []string, format string, scale float64) (map[string]string, error) {
	if len(nodeIDs) == 0 {
		return map[string]string{}, nil
	}

	query := url.Values{}
	query.Set("ids", strings.Join(nodeIDs, ","))
	if format != "" {
		query.Set("format", format)
	}
	if scale > 0 {
		query.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))
	}

	endpoint := fmt.Sprintf("%s/v1/images/%s?%s", c.baseURL, url.PathEscape(fileKey), query.Encode())
	var resp imagesResponse
	if err := c.httpClient.DoJSON(ctx, serviceName, http.MethodGet, endpoint, map[string]string{"X-Figma-Token": token}, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Err != nil && *resp.Err != "" {
		return nil, fmt.Errorf("figma image export failed: %s", *resp.Err)
	}

	images := make(map[string]string, len(resp.Images))
	for id, u := range resp.Images {
		if u != "" {
			images[id] = u
		}
	}
	return images, nil
}
