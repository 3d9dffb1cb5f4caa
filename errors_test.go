package keel_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/keel"
)

func TestError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := keel.Errorf(keel.KindConfiguration, "User", "table name missing")
		assert.Equal(t, "keel: User: table name missing", err.Error())
	})

	t.Run("ErrorWithCause", func(t *testing.T) {
		cause := errors.New("boom")
		err := keel.Wrap(keel.KindAccess, "User", cause, "getter %s() failed", "GetName")
		assert.Equal(t, "keel: User: getter GetName() failed: boom", err.Error())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("ErrorWithoutMessage", func(t *testing.T) {
		err := &keel.Error{Kind: keel.KindSave}
		assert.Equal(t, "keel: save error", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := keel.Errorf(keel.KindMapping, "User", "field not found")
		assert.True(t, errors.Is(err, keel.ErrMapping))
		assert.False(t, errors.Is(err, keel.ErrAccess))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, errors.Is(wrapped, keel.ErrMapping))
	})

	t.Run("As", func(t *testing.T) {
		wrapped := fmt.Errorf("wrapper: %w", keel.Errorf(keel.KindConstraint, "users", "name cannot be NULL"))
		var e *keel.Error
		require.True(t, errors.As(wrapped, &e))
		assert.Equal(t, keel.KindConstraint, e.Kind)
		assert.Equal(t, "users", e.Entity)
	})
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind keel.Kind
		pred func(error) bool
	}{
		{keel.KindConfiguration, keel.IsConfigurationError},
		{keel.KindAccess, keel.IsAccessError},
		{keel.KindConstraint, keel.IsConstraintError},
		{keel.KindSave, keel.IsSaveError},
		{keel.KindMapping, keel.IsMappingError},
		{keel.KindArgument, keel.IsArgumentError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := keel.Errorf(tt.kind, "T", "x")
			assert.True(t, tt.pred(err))
			assert.True(t, tt.pred(fmt.Errorf("wrapped: %w", err)))
			assert.False(t, tt.pred(errors.New("other error")))
			assert.False(t, tt.pred(nil))
			assert.Equal(t, tt.kind, keel.KindOf(err))
		})
	}
	assert.Equal(t, "kind(42)", keel.Kind(42).String())
}

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := keel.NewNotFoundError("User")
		assert.Equal(t, "keel: User not found", err.Error())
	})

	t.Run("ErrorWithID", func(t *testing.T) {
		err := keel.NewNotFoundErrorWithID("User", 42)
		assert.Equal(t, "keel: User not found (id=42)", err.Error())
		assert.Equal(t, 42, err.ID())
		assert.Equal(t, "User", err.Label())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := keel.NewNotFoundError("Comment")
		assert.True(t, keel.IsNotFound(err))
		assert.True(t, errors.Is(err, keel.ErrNotFound))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, keel.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, keel.IsNotFound(keel.ErrNotFound))

		// Non-matching error
		assert.False(t, keel.IsNotFound(errors.New("other error")))
		assert.False(t, keel.IsNotFound(nil))
	})
}
