package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("compare: %w", ErrInvalidSelection)

	got := FromError(wrapped)

	assert.Equal(t, "INVALID_SELECTION", got.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("boom")

	got := FromError(cause)

	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, cause)
	assert.Equal(t, "internal server error: boom", got.Error())
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	clone := Clone(ErrConflict, "range overlaps")

	assert.Equal(t, "range overlaps", clone.Message)
	assert.Equal(t, ErrConflict.Status, clone.Status)
	assert.Equal(t, "conflict", ErrConflict.Message)
	assert.Nil(t, FromError(nil))
}
