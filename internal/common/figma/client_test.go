package figma

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "figma-to-fsd/internal/common/errors"
	httpclient "figma-to-fsd/internal/common/http"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", httpclient.NewClient(5*time.Second))
}

// ==========================
// URL Parsing Tests
// ==========================

func TestParseURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected DesignRef
		wantErr  bool
	}{
		{
			name:     "design link with node id",
			url:      "https://www.figma.com/design/AbC123/Website?node-id=12-34&t=x",
			expected: DesignRef{FileKey: "AbC123", NodeID: "12:34"},
		},
		{
			name:     "legacy file link encoded colon",
			url:      "https://figma.com/file/KEY9/Name?node-id=1%3A2",
			expected: DesignRef{FileKey: "KEY9", NodeID: "1:2"},
		},
		{
			name:     "proto link without node",
			url:      "https://www.figma.com/proto/PROTO/Flow",
			expected: DesignRef{FileKey: "PROTO"},
		},
		{name: "wrong host", url: "https://example.com/file/KEY", wantErr: true},
		{name: "no key", url: "https://www.figma.com/files/recent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

// ==========================
// API Tests
// ==========================

func TestClient_GetDocument_Node(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/KEY/nodes", r.URL.Path)
		assert.Equal(t, "1:2", r.URL.Query().Get("ids"))
		assert.Equal(t, "figd_token", r.Header.Get("X-Figma-Token"))

		w.Write([]byte(`{"name":"Site","nodes":{"1:2":{"document":{"id":"1:2","name":"Footer","type":"COMPONENT_SET","children":[{"id":"1:3","name":"Desktop","type":"COMPONENT"}]}}}}`))
	})

	node, err := client.GetDocument(context.Background(), "figd_token", "KEY", "1:2")

	require.NoError(t, err)
	assert.Equal(t, "Footer", node.Name)
	assert.Equal(t, "COMPONENT_SET", node.Type)
	require.Len(t, node.Children, 1)
	assert.Equal(t, "1:3", node.Children[0].ID)
}

func TestClient_GetDocument_WholeFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/KEY", r.URL.Path)
		w.Write([]byte(`{"name":"Site","document":{"id":"0:0","name":"Document","type":"DOCUMENT"}}`))
	})

	node, err := client.GetDocument(context.Background(), "t", "KEY", "")

	require.NoError(t, err)
	assert.Equal(t, "0:0", node.ID)
}

func TestClient_GetDocument_MissingNode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nodes":{"1:2":null}}`))
	})

	_, err := client.GetDocument(context.Background(), "t", "KEY", "1:2")

	assert.Error(t, err)
}

func TestClient_GetDocument_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":403,"err":"Invalid token"}`))
	})

	_, err := client.GetDocument(context.Background(), "bad", "KEY", "1:2")

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, "figma API error: 403", stdErr.Message)
	assert.Contains(t, stdErr.Details, "Invalid token")
}

func TestClient_GetImages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/KEY", r.URL.Path)
		assert.Equal(t, "1:2,1:3", r.URL.Query().Get("ids"))
		assert.Equal(t, "png", r.URL.Query().Get("format"))
		assert.Equal(t, "2", r.URL.Query().Get("scale"))

		w.Write([]byte(`{"err":null,"images":{"1:2":"https://img/1.png","1:3":null}}`))
	})

	images, err := client.GetImages(context.Background(), "t", "KEY", []string{"1:2", "1:3"}, "png", 2)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1:2": "https://img/1.png"}, images)
}

func TestClient_GetImages_NoIDs(t *testing.T) {
	client := NewClient("http://unused", httpclient.NewClient(time.Second))

	images, err := client.GetImages(context.Background(), "t", "KEY", nil, "png", 2)

	require.NoError(t, err)
	assert.Empty(t, images)
}
