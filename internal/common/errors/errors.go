// Package errors provides the error taxonomy shared by the generation pipeline,
// its HTTP surface and the Camunda job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeLLMNotConfigured      ErrorCode = "LLM_NOT_CONFIGURED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeStageTimeout    ErrorCode = "STAGE_TIMEOUT"

	ErrCodeAIResponseInvalid ErrorCode = "AI_RESPONSE_INVALID"
	ErrCodeAICompletionEmpty ErrorCode = "AI_COMPLETION_EMPTY"

	ErrCodeSubtaskCreateFailed ErrorCode = "SUBTASK_CREATE_FAILED"

	ErrCodeRunCancelled ErrorCode = "RUN_CANCELLED"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata sets a metadata entry and returns the error for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInputValidationError reports a request that cannot start a run.
func NewInputValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMNotConfiguredError reports a missing model credential.
func NewLLMNotConfiguredError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMNotConfigured,
		Message:   "Language model is not configured",
		Details:   fmt.Sprintf("no API key set for provider %q", provider),
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceError reports a non-2xx answer from an external API. The raw body
// is kept verbatim in Details.
func NewServiceError(service string, statusCode int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("%s API error: %d", service, statusCode),
		Details:   body,
		Retryable: false,
		Metadata: map[string]interface{}{
			"service":    service,
			"statusCode": statusCode,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalServiceError reports a transport failure talking to service.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: false,
		Metadata: map[string]interface{}{
			"service":    service,
			"statusCode": 0,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewStageTimeoutError reports a stage that exceeded its deadline.
func NewStageTimeoutError(stage string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageTimeout,
		Message:   fmt.Sprintf("Stage '%s' timed out", stage),
		Details:   fmt.Sprintf("deadline of %s exceeded", timeout),
		Retryable: false,
		Metadata:  map[string]interface{}{"stage": stage},
		Timestamp: time.Now().UTC(),
	}
}

// NewAIResponseInvalidError reports model output that is not a JSON object.
func NewAIResponseInvalidError(err error, raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIResponseInvalid,
		Message:   "AI response is not a JSON object",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"responseLength": len(raw)},
		Timestamp: time.Now().UTC(),
	}
}

// NewAICompletionEmptyError reports a completion without any text.
func NewAICompletionEmptyError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAICompletionEmpty,
		Message:   "AI completion returned no content",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubtaskCreateFailedError is recorded, never raised: sub-task failures do not end a run.
func NewSubtaskCreateFailedError(role string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubtaskCreateFailed,
		Message:   fmt.Sprintf("%s sub-task could not be created", role),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"role": role},
		Timestamp: time.Now().UTC(),
	}
}

func NewRunCancelledError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRunCancelled,
		Message:   "Generation run was cancelled",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes the process
// model catches.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInputValidationFailed: "FSD_INVALID_REQUEST",
	ErrCodeLLMNotConfigured:      "FSD_CONFIGURATION_ERROR",
	ErrCodeExternalService:       "FSD_EXTERNAL_SERVICE_ERROR",
	ErrCodeStageTimeout:          "FSD_EXTERNAL_SERVICE_ERROR",
	ErrCodeAIResponseInvalid:     "FSD_AI_ERROR",
	ErrCodeAICompletionEmpty:     "FSD_AI_ERROR",
	ErrCodeRunCancelled:          "FSD_CANCELLED",
}

// GetRetryCount returns how many times the engine may retry a job that failed
// with code. Generation jobs are never retried.
func GetRetryCount(code ErrorCode) int {
	return 0
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a StandardError, wrapping unknown errors as
// INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_CONFIGURED"):
		return "CONFIGURATION"
	case strings.HasPrefix(codeStr, "AI_"):
		return "AI"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "SUBTASK"):
		return "TICKETS"
	default:
		return "OTHER"
	}
}
