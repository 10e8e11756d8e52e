package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseRegistry(t *testing.T) {
	r := NewBaseRegistry[string, int]("test")
	assert.Zero(t, r.Len())

	require.NoError(t, r.Register("b", 2))
	require.NoError(t, r.Register("a", 1))
	r.Set("b", 20)

	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 20, v)
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
	assert.Equal(t, []string{"b", "a"}, r.List())
	assert.Equal(t, 2, r.Len())
}

func TestBaseRegistryValidators(t *testing.T) {
	r := NewBaseRegistry[string, int]("profile")
	r.SetValidator(ChainValidators(
		NotEmptyKeyValidator[int]("key"),
		nil,
		NoDuplicateValidator[string, int]("key"),
	))

	tests := []struct {
		name    string
		key     string
		wantErr string
	}{
		{"stored", "a", ""},
		{"empty key", "", "profile registry: key cannot be empty"},
		{"duplicate", "a", "profile registry: key 'a' is already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.key, 1)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	// Set skips validation
	r.Set("a", 2)
	v, _ := r.Get("a")
	assert.Equal(t, 2, v)
}

func TestNotNilValueValidator(t *testing.T) {
	validator := NotNilValueValidator[string, int]("value")
	one := 1

	assert.NoError(t, validator("k", &one, nil))
	assert.EqualError(t, validator("k", nil, nil), "value cannot be nil")
}
