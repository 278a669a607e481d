package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      string
	}{
		{ErrorTypeUnsupportedInput, "UNSUPPORTED_INPUT"},
		{ErrorTypeTemplateStructural, "TEMPLATE_STRUCTURAL"},
		{ErrorTypeCollaborator, "COLLABORATOR"},
		{ErrorTypeTimeout, "TIMEOUT"},
		{ErrorTypeInvalidPayload, "INVALID_PAYLOAD"},
		{ErrorTypeUnknown, "UNKNOWN"},
		{ErrorType(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errorType.String())
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := Wrap(ErrorTypeCollaborator, "Falha ao converter DOCX para PDF.", cause).WithContext("soffice")

	assert.Equal(t, "[COLLABORATOR] Falha ao converter DOCX para PDF.: soffice: exit status 1", err.Error())
	assert.Equal(t, "Falha ao converter DOCX para PDF.", err.UserMessage())
	assert.True(t, stderrors.Is(err, cause))
}

func TestIs(t *testing.T) {
	base := New(ErrorTypeUnsupportedInput, "Arquivo vazio.")
	wrapped := fmt.Errorf("prefill: %w", base)

	assert.True(t, Is(wrapped, ErrorTypeUnsupportedInput))
	assert.False(t, Is(wrapped, ErrorTypeTemplateStructural))
	assert.False(t, Is(fmt.Errorf("plain"), ErrorTypeUnsupportedInput))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Arquivo vazio.", UserMessage(fmt.Errorf("x: %w", New(ErrorTypeUnsupportedInput, "Arquivo vazio."))))
	assert.Equal(t, "Falha inesperada ao processar a solicitação.", UserMessage(fmt.Errorf("boom")))
}

func TestIsUserFacing(t *testing.T) {
	assert.True(t, ErrorTypeUnsupportedInput.IsUserFacing())
	assert.True(t, ErrorTypeInvalidPayload.IsUserFacing())
	assert.False(t, ErrorTypeTemplateStructural.IsUserFacing())
	assert.False(t, ErrorTypeCollaborator.IsUserFacing())
}
