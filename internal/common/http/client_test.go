package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "figma-to-fsd/internal/common/errors"
)

func TestBasicAuth(t *testing.T) {
	assert.Equal(t, "Basic dXNlckBleGFtcGxlLmNvbTpzZWNyZXQ=", BasicAuth("user@example.com", "secret"))
}

func TestClient_DoJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "token", r.Header.Get("X-Test"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["msg"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"42"}`))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	var out struct {
		ID string `json:"id"`
	}

	err := client.DoJSON(context.Background(), "test", http.MethodPost, server.URL,
		map[string]string{"X-Test": "token"}, map[string]string{"msg": "hello"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "42", out.ID)
}

func TestClient_DoJSON_ErrorStatusKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"no access"}`))
	}))
	defer server.Close()

	err := NewClient(5*time.Second).DoJSON(context.Background(), "jira", http.MethodGet, server.URL, nil, nil, nil)

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeExternalService, stdErr.Code)
	assert.Equal(t, "jira API error: 403", stdErr.Message)
	assert.Equal(t, `{"message":"no access"}`, stdErr.Details)
	assert.Equal(t, 403, stdErr.Metadata["statusCode"])
}

func TestClient_DoJSON_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewClient(time.Second).DoJSON(context.Background(), "figma", http.MethodGet, url, nil, nil, nil)

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeExternalService, stdErr.Code)
	assert.Equal(t, 0, stdErr.Metadata["statusCode"])
}

func TestClient_DoJSON_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewClient(5*time.Second).DoJSON(ctx, "figma", http.MethodGet, server.URL, nil, nil, nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
