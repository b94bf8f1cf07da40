package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/common/jira"
	"figma-to-fsd/internal/models"
)

// MockIssueCreator is a testify mock of the Jira client.
type MockIssueCreator struct {
	mock.Mock
}

func (m *MockIssueCreator) Email() string {
	return "dev@acme.test"
}

func (m *MockIssueCreator) CurrentAccountID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockIssueCreator) CreateIssue(ctx context.Context, in jira.IssueInput) (*jira.CreatedIssue, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*jira.CreatedIssue), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIssueCreator) BrowseURL(key string) string {
	return fmt.Sprintf("https://acme.atlassian.net/browse/%s", key)
}

func summaryIs(summary string) interface{} {
	return mock.MatchedBy(func(in jira.IssueInput) bool { return in.Summary == summary })
}

func createTestTicketRequest() TicketRequest {
	return TicketRequest{
		ProjectKey: "WEB",
		Plan: models.TicketPlan{
			ParentSummary: "Footer Component", ParentDescription: "parent",
			FEDSummary: "FED: Footer", FEDDescription: "fed",
			BEDSummary: "BED: Footer", BEDDescription: "bed",
			QASummary: "QA: Footer", QADescription: "qa",
		},
		ParentIssueType:  "Story",
		SubtaskIssueType: "Sub-task",
	}
}

func TestCreateComponentWithSubtasks_AllSucceed(t *testing.T) {
	creator := new(MockIssueCreator)
	creator.On("CreateIssue", mock.Anything, mock.MatchedBy(func(in jira.IssueInput) bool {
		return in.Summary == "Footer Component" && in.IssueType == "Story" && in.ParentKey == ""
	})).Return(&jira.CreatedIssue{Key: "WEB-1"}, nil).Once()
	for i, summary := range []string{"FED: Footer", "BED: Footer", "QA: Footer"} {
		key := fmt.Sprintf("WEB-%d", i+2)
		creator.On("CreateIssue", mock.Anything, mock.MatchedBy(func(in jira.IssueInput) bool {
			return in.Summary == summary && in.ParentKey == "WEB-1" && in.IssueType == "Sub-task"
		})).Return(&jira.CreatedIssue{Key: key}, nil).Once()
	}

	set := CreateComponentWithSubtasks(context.Background(), creator, createTestTicketRequest())

	require.NotNil(t, set.Parent)
	assert.Equal(t, "WEB-1", set.Parent.Key)
	assert.Equal(t, "https://acme.atlassian.net/browse/WEB-1", set.Parent.URL)
	assert.Equal(t, "WEB-2", set.FED.Key)
	assert.Equal(t, "WEB-3", set.BED.Key)
	assert.Equal(t, "WEB-4", set.QA.Key)
	assert.Equal(t, []string{"FED sub-task WEB-2", "BED sub-task WEB-3", "QA sub-task WEB-4"}, set.CompletedTasks)
	assert.Empty(t, set.FailedTasks)
	creator.AssertExpectations(t)
}

func TestCreateComponentWithSubtasks_ParentFails(t *testing.T) {
	creator := new(MockIssueCreator)
	creator.On("CreateIssue", mock.Anything, summaryIs("Footer Component")).
		Return(nil, apperrors.NewServiceError("jira", 400, `{"errors":{"project":"invalid"}}`)).Once()

	set := CreateComponentWithSubtasks(context.Background(), creator, createTestTicketRequest())

	assert.Nil(t, set.Parent)
	assert.Nil(t, set.FED)
	assert.Nil(t, set.BED)
	assert.Nil(t, set.QA)
	assert.Empty(t, set.CompletedTasks)
	require.Len(t, set.FailedTasks, 1)
	assert.Equal(t, "Parent story: jira API error: 400", set.FailedTasks[0])
	creator.AssertNumberOfCalls(t, "CreateIssue", 1)
}

func TestCreateComponentWithSubtasks_OneSubtaskFails(t *testing.T) {
	creator := new(MockIssueCreator)
	creator.On("CreateIssue", mock.Anything, summaryIs("Footer Component")).Return(&jira.CreatedIssue{Key: "WEB-1"}, nil)
	creator.On("CreateIssue", mock.Anything, summaryIs("FED: Footer")).Return(&jira.CreatedIssue{Key: "WEB-2"}, nil)
	creator.On("CreateIssue", mock.Anything, summaryIs("BED: Footer")).Return(nil, errors.New("connection reset"))
	creator.On("CreateIssue", mock.Anything, summaryIs("QA: Footer")).Return(&jira.CreatedIssue{Key: "WEB-4"}, nil)

	set := CreateComponentWithSubtasks(context.Background(), creator, createTestTicketRequest())

	require.NotNil(t, set.Parent)
	assert.Len(t, set.CompletedTasks, 2)
	assert.Equal(t, []string{"BED sub-task: connection reset"}, set.FailedTasks)
	require.NotNil(t, set.FED)
	require.NotNil(t, set.QA)
	assert.Nil(t, set.BED)
	assert.Equal(t, "WEB-2", set.FED.Key)
	assert.Equal(t, "WEB-4", set.QA.Key)
	assert.Equal(t, []models.Ticket{*set.FED, *set.QA}, set.Subtasks())
}

func TestCreateComponentWithSubtasks_AutoAssignLooksUpIdentityOnce(t *testing.T) {
	creator := new(MockIssueCreator)
	creator.On("CurrentAccountID", mock.Anything).Return("acc-42", nil).Once()
	creator.On("CreateIssue", mock.Anything, mock.MatchedBy(func(in jira.IssueInput) bool {
		return in.AssigneeID == "acc-42"
	})).Return(&jira.CreatedIssue{Key: "WEB-9"}, nil).Times(4)

	req := createTestTicketRequest()
	req.AutoAssign = true
	req.Identity = jira.NewIdentityCache()

	set := CreateComponentWithSubtasks(context.Background(), creator, req)

	assert.Len(t, set.CompletedTasks, 3)
	creator.AssertExpectations(t)
}

func TestCreateComponentWithSubtasks_IdentityFailureCreatesUnassigned(t *testing.T) {
	creator := new(MockIssueCreator)
	creator.On("CurrentAccountID", mock.Anything).Return("", errors.New("401")).Once()
	creator.On("CreateIssue", mock.Anything, mock.MatchedBy(func(in jira.IssueInput) bool {
		return in.AssigneeID == ""
	})).Return(&jira.CreatedIssue{Key: "WEB-9"}, nil).Times(4)

	req := createTestTicketRequest()
	req.AutoAssign = true
	req.Identity = jira.NewIdentityCache()

	set := CreateComponentWithSubtasks(context.Background(), creator, req)

	require.NotNil(t, set.Parent)
	assert.Empty(t, set.FailedTasks)
	creator.AssertExpectations(t)
}

func TestRecordSubtasks_FixedOrder(t *testing.T) {
	set := models.NewTicketSet()
	recordSubtasks(set, []subtaskResult{
		{Role: models.RoleQA, Err: errors.New("qa down")},
		{Role: models.RoleBackend, Ticket: &models.Ticket{Key: "WEB-3"}},
		{Role: models.RoleFrontend, Err: errors.New("fed down")},
	})

	assert.Equal(t, []string{"BED sub-task WEB-3"}, set.CompletedTasks)
	assert.Equal(t, []string{"FED sub-task: fed down", "QA sub-task: qa down"}, set.FailedTasks)
}
