package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder_Basic(t *testing.T) {
	t.Parallel()

	base := NewStd("something broke")
	err := New(base).
		Component("fileops").
		Category(CategoryFileIO).
		Context("path", "/tmp/x").
		Build()

	assert.Equal(t, "something broke", err.Error())
	assert.Equal(t, "fileops", err.GetComponent())
	assert.Equal(t, CategoryFileIO, err.ErrorCategory())
	assert.Equal(t, "/tmp/x", err.GetContext()["path"])
	assert.False(t, err.GetTimestamp().IsZero())
}

func TestErrorBuilder_DefaultCategory(t *testing.T) {
	t.Parallel()

	err := Newf("plain failure %d", 42).Build()
	assert.Equal(t, CategoryGeneric, err.ErrorCategory())
	assert.Equal(t, "plain failure 42", err.GetMessage())
}

func TestEnhancedError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := NewStd("sentinel")
	wrapped := fmt.Errorf("outer: %w", sentinel)
	err := New(wrapped).Category(CategoryNotFound).Build()

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, wrapped, Unwrap(err))
}

func TestCategoryOf_WalksErrorTree(t *testing.T) {
	t.Parallel()

	inner := New(NewStd("missing")).Category(CategoryNotFound).Build()
	outer := fmt.Errorf("list failed: %w", inner)

	assert.Equal(t, CategoryNotFound, CategoryOf(outer))
	assert.True(t, IsNotFound(outer))
	assert.False(t, IsForbidden(outer))
}

func TestCategoryOf_PlainError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CategoryGeneric, CategoryOf(fs.ErrNotExist))
	assert.False(t, IsNotFound(fs.ErrNotExist))
}

func TestEnhancedError_IsMatchesCategory(t *testing.T) {
	t.Parallel()

	a := New(NewStd("a")).Category(CategoryForbidden).Build()
	b := New(NewStd("b")).Category(CategoryForbidden).Build()
	c := New(NewStd("c")).Category(CategoryNotFound).Build()

	assert.True(t, Is(a, b))
	assert.False(t, Is(a, c))
}

func TestComponentDetection_AtBuildTime(t *testing.T) {
	t.Parallel()

	// Errors built inside this package have no registered pattern in the
	// call stack; detection should still settle on a stable value.
	err := Newf("no component").Build()
	component := err.GetComponent()
	assert.NotEmpty(t, component)
	// Repeated calls must return the same cached value
	assert.Equal(t, component, err.GetComponent())

	// An explicit component always wins over detection
	tagged := Newf("tagged").Component("custom").Build()
	assert.Equal(t, "custom", tagged.GetComponent())
}
