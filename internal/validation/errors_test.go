package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Messages(t *testing.T) {
	ve := NewValidationError()
	assert.Equal(t, "validation error", ve.Error())
	assert.NoError(t, ve.OrNil())

	ve.AddRequiredError("title")
	assert.Equal(t, "title is required", ve.Error())

	ve.AddInvalidLengthError("title", "x", 0, 5)
	assert.Equal(t, "title is required; title must be at most 5 characters long", ve.Error())
	assert.Error(t, ve.OrNil())
}

func TestAddInvalidLengthError_Variants(t *testing.T) {
	tests := []struct {
		min, max int
		want     string
	}{
		{1, 10, "f must be between 1 and 10 characters long"},
		{3, 0, "f must be at least 3 characters long"},
		{0, 4, "f must be at most 4 characters long"},
		{0, 0, "f has invalid length"},
	}

	for _, tt := range tests {
		ve := NewValidationError()
		ve.AddInvalidLengthError("f", "", tt.min, tt.max)
		assert.Equal(t, tt.want, ve.Errors[0].Message)
	}
}

func TestIsValidationError_Wrapped(t *testing.T) {
	ve := NewValidationError()
	ve.AddInvalidFormatError("due_date", "soon", "RFC 3339")

	assert.True(t, IsValidationError(fmt.Errorf("create: %w", ve)))
	assert.False(t, IsValidationError(fmt.Errorf("plain")))
	assert.Equal(t, ErrorTypeInvalidFormat, ve.Errors[0].Type)
}
