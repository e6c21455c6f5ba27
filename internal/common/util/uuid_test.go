package util

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID_IsLowerCaseAndIncreasing(t *testing.T) {
	previous := NewULID()
	for i := 0; i < 100; i++ {
		id := NewULID()
		assert.Len(t, id, 26)
		assert.Equal(t, id, strings.ToLower(id))
		assert.Greater(t, id, previous)
		previous = id
	}
}

func TestNewInvocationId(t *testing.T) {
	a := NewInvocationId()
	b := NewInvocationId()
	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
