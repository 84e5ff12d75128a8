package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentChecksum(t *testing.T) {
	a := ContentChecksum([]byte("same bytes"))
	b := ContentChecksum([]byte("same bytes"))
	c := ContentChecksum([]byte("other bytes"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestNewFileIDUnique(t *testing.T) {
	assert.NotEqual(t, NewFileID(), NewFileID())
}
