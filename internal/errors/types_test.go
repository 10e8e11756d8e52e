package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same code", NewDuplicateFieldError("demo.T", "k"), New(DuplicateFieldErrorCode, ""), true},
		{"different code", NewDuplicateFieldError("demo.T", "k"), New(DuplicateMethodErrorCode, ""), false},
		{"already materialized is a materialization failure", NewAlreadyMaterializedError("demo.T"), New(MaterializationErrorCode, ""), true},
		{"materialization is not already materialized", NewMaterializationError("demo.T", "x"), New(AlreadyMaterializedErrorCode, ""), false},
		{"wrapped with fmt", fmt.Errorf("outer: %w", NewFieldNotFoundError("demo.T", "x")), New(FieldNotFoundErrorCode, ""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stderrors.Is(tt.err, tt.target))
		})
	}
}

func TestBaseError_Message(t *testing.T) {
	cause := stderrors.New("unexpected token")
	err := NewCompilationError("int x =", cause)

	assert.Equal(t, "CompilationFailure: cannot compile declaration: unexpected token", err.Error())
	assert.Equal(t, "int x =", err.Context()["source"])
	assert.Same(t, cause, stderrors.Unwrap(err))
}

func TestCodeOfAndHasCode(t *testing.T) {
	err := fmt.Errorf("open: %w", NewDuplicateTypeError("demo.T"))

	assert.Equal(t, DuplicateTypeErrorCode, CodeOf(err))
	assert.True(t, HasCode(err, DuplicateTypeErrorCode))
	assert.False(t, HasCode(err, DispatchErrorCode))
	assert.Equal(t, UnknownErrorCode, CodeOf(stderrors.New("plain")))
}

func TestHasCodeJoined(t *testing.T) {
	err := stderrors.Join(
		NewFieldNotFoundError("demo.T", "a"),
		fmt.Errorf("second: %w", NewAlreadyMaterializedError("demo.T")),
	)

	assert.True(t, HasCode(err, FieldNotFoundErrorCode))
	assert.True(t, HasCode(err, MaterializationErrorCode))
	assert.False(t, HasCode(err, DispatchErrorCode))
	assert.True(t, stderrors.Is(err, New(AlreadyMaterializedErrorCode, "")))
	assert.False(t, HasCode(nil, FieldNotFoundErrorCode))
}

func TestBaseError_Builders(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrapf(DispatchErrorCode, cause, "call %s", "greet(string)").
		WithContext("type", "demo.T").
		WithSuggestion("check the dispatcher")

	require.Error(t, err)
	assert.Equal(t, "DispatchFailure: call greet(string): boom", err.Error())
	assert.Equal(t, map[string]any{"type": "demo.T"}, err.Context())
	assert.Equal(t, []string{"check the dispatcher"}, err.Suggestions())
	assert.Empty(t, New(DispatchErrorCode, "x").Context())
}
