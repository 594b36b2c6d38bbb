package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Check(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())

	v.Check(true, "title", "must be provided")
	assert.True(t, v.Valid())

	v.Check(false, "title", "must be provided")
	assert.False(t, v.Valid())
	assert.Equal(t, "must be provided", v.Errors["title"])

	// The first error for a field wins.
	v.Check(false, "title", "a different message")
	assert.Equal(t, "must be provided", v.Errors["title"])
}

func TestNotBlank(t *testing.T) {
	assert.True(t, NotBlank("hello"))
	assert.True(t, NotBlank("  hello  "))
	assert.False(t, NotBlank(""))
	assert.False(t, NotBlank("   "))
	assert.False(t, NotBlank("\t\n"))
}

func TestIn(t *testing.T) {
	assert.True(t, In("Fiction", "Fiction", "Science"))
	assert.False(t, In("Poetry", "Fiction", "Science"))
	assert.False(t, In("Poetry"))
}

func TestUnique(t *testing.T) {
	assert.True(t, Unique([]string{"a", "b", "c"}))
	assert.True(t, Unique(nil))
	assert.False(t, Unique([]string{"a", "b", "a"}))
}
