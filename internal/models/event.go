// internal/models/event.go
package models

import (
	"time"

	apperrors "figma-to-fsd/internal/common/errors"
)

type EventType string

const (
	EventPlan     EventType = "plan"
	EventStage    EventType = "stage"
	EventSubtask  EventType = "subtask"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

type StageStatus string

const (
	StatusPending    StageStatus = "pending"
	StatusInProgress StageStatus = "in_progress"
	StatusComplete   StageStatus = "complete"
	StatusError      StageStatus = "error"
)

type StageName string

const (
	StageFetchDesign         StageName = "fetch-design"
	StageExportScreenshots   StageName = "export-screenshots"
	StageAIAnalysis          StageName = "ai-analysis"
	StageGenerateDescription StageName = "generate-description"
	StageCreateParentTicket  StageName = "create-parent-ticket"
	StageCreateSubtasks      StageName = "create-subtasks"
	StageCreateDocument      StageName = "create-document"
)

// DataNotifyEmails is the terminal event data key holding the addresses the
// requester asked to notify.
const DataNotifyEmails = "notifyEmails"

// Event is one progress record of a run. Runs end with exactly one event of
// type complete or error.
type Event struct {
	RunID     string                   `json:"runId"`
	Sequence  int                      `json:"sequence"`
	Type      EventType                `json:"type"`
	Stage     int                      `json:"stage,omitempty"`
	StageName StageName                `json:"stageName,omitempty"`
	Status    StageStatus              `json:"status,omitempty"`
	Message   string                   `json:"message"`
	Data      map[string]interface{}   `json:"data,omitempty"`
	Result    *GenerationResult        `json:"result,omitempty"`
	Error     *apperrors.StandardError `json:"error,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

type GenerationResult struct {
	ComponentName  string            `json:"componentName"`
	Mode           GenerationMode    `json:"mode"`
	ParentKey      string            `json:"parentKey,omitempty"`
	ParentURL      string            `json:"parentUrl,omitempty"`
	SubtaskKeys    []string          `json:"subtaskKeys"`
	SubtaskURLs    []string          `json:"subtaskUrls"`
	DocumentURL    string            `json:"documentUrl,omitempty"`
	CompletedTasks []string          `json:"completedTasks"`
	FailedTasks    []string          `json:"failedTasks"`
	Summary        GenerationSummary `json:"summary"`
}

type GenerationSummary struct {
	SubtasksCreated       int `json:"subtasksCreated"`
	RequirementsGenerated int `json:"requirementsGenerated"`
	FieldsIdentified      int `json:"fieldsIdentified"`
}
