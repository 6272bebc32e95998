package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/core/model/request"
)

func TestValidator_TodoRequest(t *testing.T) {
	v := New()

	due := "01/11/2025"
	err := v.ValidateStruct(request.TodoRequest{DueDate: &due, Priority: "Someday"})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "dueDate", errs[0].Field)
	assert.Equal(t, "dueDate must be a date formatted as YYYY-MM-DD", errs[0].Message)
	assert.Equal(t, "priority", errs[1].Field)
	assert.Equal(t, "priority must be one of Urgent, Important or Low", errs[1].Message)
}

func TestValidator_Valid(t *testing.T) {
	due := "2025-11-01"

	assert.NoError(t, New().ValidateStruct(request.TodoRequest{Title: "x", DueDate: &due, Priority: "low"}))
	assert.NoError(t, New().ValidateStruct(request.ProjectRequest{}))
}

func TestValidator_Required(t *testing.T) {
	err := New().ValidateStruct(request.SelectProjectRequest{})

	errs := FormatValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "id", errs[0].Field)
	assert.Equal(t, "id is a required field", errs[0].Message)
}
