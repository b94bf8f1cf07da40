package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpclient "figma-to-fsd/internal/common/http"
	"figma-to-fsd/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	creds := models.AtlassianCredentials{BaseURL: server.URL + "/", Email: "dev@example.com", APIToken: "tok"}
	return NewClient(creds, httpclient.NewClient(5*time.Second))
}

func TestClient_CreateIssue_Subtask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/3/issue", r.URL.Path)
		assert.Equal(t, httpclient.BasicAuth("dev@example.com", "tok"), r.Header.Get("Authorization"))

		var body struct {
			Fields map[string]interface{} `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, map[string]interface{}{"key": "WEB"}, body.Fields["project"])
		assert.Equal(t, "FED: Footer", body.Fields["summary"])
		assert.Equal(t, map[string]interface{}{"name": "Sub-task"}, body.Fields["issuetype"])
		assert.Equal(t, map[string]interface{}{"key": "WEB-1"}, body.Fields["parent"])
		assert.Equal(t, map[string]interface{}{"accountId": "acc-1"}, body.Fields["assignee"])

		desc := body.Fields["description"].(map[string]interface{})
		assert.Equal(t, "doc", desc["type"])
		paragraph := desc["content"].([]interface{})[0].(map[string]interface{})
		text := paragraph["content"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "Build it", text["text"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"10001","key":"WEB-2","self":"x"}`))
	})

	created, err := client.CreateIssue(context.Background(), IssueInput{
		ProjectKey:  "WEB",
		Summary:     "FED: Footer",
		Description: "Build it",
		IssueType:   "Sub-task",
		ParentKey:   "WEB-1",
		AssigneeID:  "acc-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "WEB-2", created.Key)
	assert.Equal(t, client.baseURL+"/browse/WEB-2", client.BrowseURL(created.Key))
}

func TestClient_CreateIssue_OmitsOptionalFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Fields map[string]interface{} `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body.Fields, "parent")
		assert.NotContains(t, body.Fields, "assignee")
		w.Write([]byte(`{"key":"WEB-1"}`))
	})

	_, err := client.CreateIssue(context.Background(), IssueInput{ProjectKey: "WEB", Summary: "s", IssueType: "Story"})

	require.NoError(t, err)
}

func TestClient_CurrentAccountID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/myself", r.URL.Path)
		w.Write([]byte(`{"accountId":"acc-7","emailAddress":"dev@example.com"}`))
	})

	id, err := client.CurrentAccountID(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "acc-7", id)
}

// ==========================
// Identity Cache Tests
// ==========================

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Email() string {
	return m.Called().String(0)
}

func (m *mockLookup) CurrentAccountID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func TestIdentityCache_ResolvesOncePerEmail(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Email").Return("dev@example.com")
	lookup.On("CurrentAccountID", mock.Anything).Return("acc-1", nil).Once()

	cache := NewIdentityCache()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := cache.AccountID(context.Background(), lookup)
			assert.NoError(t, err)
			assert.Equal(t, "acc-1", id)
		}()
	}
	wg.Wait()

	lookup.AssertNumberOfCalls(t, "CurrentAccountID", 1)
}

func TestIdentityCache_CachesErrors(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Email").Return("dev@example.com")
	lookup.On("CurrentAccountID", mock.Anything).Return("", errors.New("401")).Once()

	cache := NewIdentityCache()
	_, err1 := cache.AccountID(context.Background(), lookup)
	_, err2 := cache.AccountID(context.Background(), lookup)

	assert.Error(t, err1)
	assert.Equal(t, err1, err2)
}

func TestIdentityCache_SeparateInstancesDoNotShare(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"accountId":"acc-1"}`))
	})

	_, _ = NewIdentityCache().AccountID(context.Background(), client)
	_, _ = NewIdentityCache().AccountID(context.Background(), client)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
