package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("UNKNOWNGENE123")
	assert.Equal(t, `no protein data found for "UNKNOWNGENE123" in either UniProt or NCBI databases`, err.Error())

	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsNotFound(errors.New("something else")))
	assert.False(t, IsNotFound(ErrNoData))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("source", "cannot determine source", "ABCDE")
	assert.Contains(t, err.Error(), "source")
	assert.Contains(t, err.Error(), "cannot determine source")

	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidation(ErrNoData))
}
