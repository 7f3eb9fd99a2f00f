package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()

	// Canonical ULID encoding, unique, sorted by issue order.
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
