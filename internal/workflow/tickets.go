package workflow

import (
	"context"
	"fmt"
	"sync"

	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/common/jira"
	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/common/metrics"
	"figma-to-fsd/internal/models"
)

// IssueCreator is the part of the Jira client the ticket stages need.
type IssueCreator interface {
	jira.IdentityLookup
	CreateIssue(ctx context.Context, in jira.IssueInput) (*jira.CreatedIssue, error)
	BrowseURL(key string) string
}

// TicketRequest describes one parent story and its three sub-tasks.
type TicketRequest struct {
	ProjectKey       string
	Plan             models.TicketPlan
	ParentIssueType  string
	SubtaskIssueType string
	AutoAssign       bool
	// Identity must be scoped to one run. Nil disables assignment.
	Identity *jira.IdentityCache
	Logger   logger.Logger
}

type subtaskResult struct {
	Role   models.SubtaskRole
	Ticket *models.Ticket
	Err    error
}

// CreateComponentWithSubtasks creates the parent story and, only if that
// succeeds, the FED, BED and QA sub-tasks concurrently. Sub-task failures are
// recorded in FailedTasks and never undo the others.
func CreateComponentWithSubtasks(ctx context.Context, creator IssueCreator, req TicketRequest) *models.TicketSet {
	set := models.NewTicketSet()

	parent, err := createParent(ctx, creator, req)
	if err != nil {
		recordParentFailure(set, err)
		return set
	}
	set.Parent = parent

	var results []subtaskResult
	for res := range startSubtasks(ctx, creator, req, parent.Key) {
		results = append(results, res)
	}
	recordSubtasks(set, results)
	return set
}

func createParent(ctx context.Context, creator IssueCreator, req TicketRequest) (*models.Ticket, error) {
	return createIssue(ctx, creator, req, jira.IssueInput{
		ProjectKey:  req.ProjectKey,
		Summary:     req.Plan.ParentSummary,
		Description: req.Plan.ParentDescription,
		IssueType:   req.ParentIssueType,
	})
}

// startSubtasks creates the three sub-tasks concurrently. The channel yields
// results in completion order and is closed once all calls returned.
func startSubtasks(ctx context.Context, creator IssueCreator, req TicketRequest, parentKey string) <-chan subtaskResult {
	results := make(chan subtaskResult, len(models.SubtaskRoles))

	var wg sync.WaitGroup
	for _, role := range models.SubtaskRoles {
		wg.Add(1)
		go func(role models.SubtaskRole) {
			defer wg.Done()
			summary, description := req.Plan.Subtask(role)
			ticket, err := createIssue(ctx, creator, req, jira.IssueInput{
				ProjectKey:  req.ProjectKey,
				Summary:     summary,
				Description: description,
				IssueType:   req.SubtaskIssueType,
				ParentKey:   parentKey,
			})
			results <- subtaskResult{Role: role, Ticket: ticket, Err: err}
		}(role)
	}

	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

func createIssue(ctx context.Context, creator IssueCreator, req TicketRequest, in jira.IssueInput) (*models.Ticket, error) {
	if req.AutoAssign && req.Identity != nil {
		accountID, err := req.Identity.AccountID(ctx, creator)
		if err != nil {
			if req.Logger != nil {
				req.Logger.Warn("Identity lookup failed, creating issue unassigned", map[string]interface{}{
					"summary": in.Summary,
					"error":   err.Error(),
				})
			}
		} else {
			in.AssigneeID = accountID
		}
	}

	created, err := creator.CreateIssue(ctx, in)
	if err != nil {
		return nil, err
	}
	return &models.Ticket{Key: created.Key, URL: creator.BrowseURL(created.Key), Summary: in.Summary}, nil
}

func recordParentFailure(set *models.TicketSet, err error) {
	set.FailedTasks = append(set.FailedTasks, fmt.Sprintf("Parent story: %s", describeError(err)))
}

// recordSubtasks applies results to set in role order, independent of the
// order the calls finished in.
func recordSubtasks(set *models.TicketSet, results []subtaskResult) {
	byRole := make(map[models.SubtaskRole]subtaskResult, len(results))
	for _, res := range results {
		byRole[res.Role] = res
	}

	for _, role := range models.SubtaskRoles {
		res, ok := byRole[role]
		if !ok {
			continue
		}
		if res.Err != nil {
			metrics.SubtasksFailed.WithLabelValues(string(role)).Inc()
			set.FailedTasks = append(set.FailedTasks, fmt.Sprintf("%s sub-task: %s", role, describeError(res.Err)))
			continue
		}
		set.SetSubtask(role, res.Ticket)
		set.CompletedTasks = append(set.CompletedTasks, fmt.Sprintf("%s sub-task %s", role, res.Ticket.Key))
	}
}

func describeError(err error) string {
	stdErr := apperrors.AsStandardError(err)
	if stdErr.Code == apperrors.ErrCodeInternal {
		return stdErr.Details
	}
	return stdErr.Message
}
