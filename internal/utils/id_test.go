package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	id := NewID("doc")
	assert.True(t, strings.HasPrefix(id, "doc_"))
	assert.Len(t, id, len("doc_")+8)

	assert.NotEqual(t, NewID("doc"), NewID("doc"))
}
