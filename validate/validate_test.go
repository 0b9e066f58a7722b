package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrNilWhenEmpty(t *testing.T) {
	var e Error
	assert.NoError(t, e.Err())
}

func TestErrCollectsFields(t *testing.T) {
	var e Error
	e.Add("title", "too short")
	e.Addf("priority", "must be one of %s", "Low, Medium, High")

	err := e.Err()
	require.Error(t, err)

	verr, ok := err.(*Error)
	require.True(t, ok)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "title", verr.Fields[0].Field)
	assert.Equal(t, "priority: must be one of Low, Medium, High", verr.Fields[1].Error())
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "title: too short")
}

func TestLength(t *testing.T) {
	assert.False(t, Length("ab", 3, 100))
	assert.True(t, Length("abc", 3, 100))
	assert.False(t, Length("", 1, 0))
	assert.True(t, Length("anything at all", 5, 0))
	assert.False(t, Length("abcdef", 1, 5))
}
