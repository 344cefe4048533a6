package exitcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "Partial failure", String(PartialFailure))
	assert.Equal(t, "Permission error", String(PermissionError))
	assert.Equal(t, "Unknown error", String(42))
}

func TestCodesAreDistinct(t *testing.T) {
	assert.Len(t, descriptions, PartialFailure+1, "every code from 0 to PartialFailure is described")
}
