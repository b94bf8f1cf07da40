package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceError(t *testing.T) {
	err := NewServiceError("jira", 400, `{"errors":{"summary":"required"}}`)

	assert.Equal(t, ErrCodeExternalService, err.Code)
	assert.Equal(t, "jira API error: 400", err.Message)
	assert.Equal(t, `{"errors":{"summary":"required"}}`, err.Details)
	assert.Equal(t, "jira", err.Metadata["service"])
	assert.Equal(t, 400, err.Metadata["statusCode"])
	assert.False(t, err.Retryable)
}

func TestAsStandardError(t *testing.T) {
	t.Run("unwraps wrapped standard error", func(t *testing.T) {
		orig := NewInputValidationError("figmaUrl is required")
		wrapped := fmt.Errorf("validate: %w", orig)

		assert.Same(t, orig, AsStandardError(wrapped))
		assert.True(t, HasCode(wrapped, ErrCodeInputValidationFailed))
	})

	t.Run("wraps plain error", func(t *testing.T) {
		stdErr := AsStandardError(fmt.Errorf("boom"))

		require.NotNil(t, stdErr)
		assert.Equal(t, ErrCodeInternal, stdErr.Code)
		assert.Equal(t, "boom", stdErr.Details)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsStandardError(nil))
	})
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name         string
		err          *StandardError
		expectedCode string
	}{
		{name: "validation", err: NewInputValidationError("x"), expectedCode: "FSD_INVALID_REQUEST"},
		{name: "llm config", err: NewLLMNotConfiguredError("openai"), expectedCode: "FSD_CONFIGURATION_ERROR"},
		{name: "service", err: NewServiceError("figma", 404, "not found"), expectedCode: "FSD_EXTERNAL_SERVICE_ERROR"},
		{name: "ai", err: NewAIResponseInvalidError(fmt.Errorf("bad"), "x"), expectedCode: "FSD_AI_ERROR"},
		{name: "unmapped keeps code", err: AsStandardError(fmt.Errorf("x")), expectedCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)

			assert.Equal(t, tt.expectedCode, bpmnErr.Code)
			assert.Equal(t, 0, bpmnErr.Retries)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, tt.err.Message, vars["errorMessage"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewServiceError("confluence", 403, "forbidden"))

	assert.Equal(t, "confluence", bpmnErr.ErrorVariables["service"])
	assert.Equal(t, 403, bpmnErr.ErrorVariables["statusCode"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputValidationFailed))
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(ErrCodeLLMNotConfigured))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeAIResponseInvalid))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeExternalService))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeStageTimeout))
	assert.Equal(t, "TICKETS", GetErrorCategory(ErrCodeSubtaskCreateFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
