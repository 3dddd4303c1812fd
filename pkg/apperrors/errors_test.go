package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_UnwrapsToKind(t *testing.T) {
	err := New(ErrConflict, "User already exists.")

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "User already exists.", err.Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("failed to delete user: %w", New(ErrNotFound, "User not found."))

	assert.Equal(t, ErrNotFound, KindOf(wrapped))
	assert.Equal(t, ErrInternal, KindOf(errors.New("boom")))
}

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(ErrForbidden, "Access denied. Admin only."))

	assert.Equal(t, "Access denied. Admin only.", Message(wrapped))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestInternal(t *testing.T) {
	assert.Nil(t, Internal(nil))

	err := Internal(errors.New("failed to get values: 503"))
	assert.True(t, errors.Is(err, ErrInternal))

	kept := New(ErrNotFound, "User not found.")
	assert.Equal(t, kept, Internal(kept))
}
