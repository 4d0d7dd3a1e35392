package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Creation(t *testing.T) {
	message := "Validation failed"
	details := []ValidationDetail{
		{Field: "phoneNumber", Message: "Invalid Egyptian phone number"},
		{Field: "fullName", Message: "Full name is required"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestValidationError_Messages(t *testing.T) {
	err := NewValidationError("Validation failed",
		ValidationDetail{Field: "city", Message: "City is required"},
		ValidationDetail{Field: "area", Message: "Area is required"},
	)

	assert.Equal(t, []string{"City is required", "Area is required"}, err.Messages())
}

func TestValidationError_IsValidationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("placing order: %w", NewValidationError("Validation failed"))

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, "Validation failed", ve.Message)
}

func TestValidationError_IsValidationError_WithOtherError(t *testing.T) {
	ve, ok := IsValidationError(errors.New("some other error"))
	assert.False(t, ok)
	assert.Nil(t, ve)
}

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("order", "10.0.0.1")

	rle, ok := IsRateLimitError(err)
	assert.True(t, ok)
	assert.Equal(t, "order", rle.Scope)
	assert.Contains(t, err.Error(), "10.0.0.1")
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("webhook timeout")
	err := NewInternalError("failed to build order", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to build order", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to build order")
	assert.Contains(t, err.Error(), "webhook timeout")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))

	ie, ok := IsInternalError(err)
	assert.True(t, ok)
	assert.Equal(t, "wrapper", ie.Message)
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}
