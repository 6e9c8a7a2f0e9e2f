package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a prefixed short identifier like "row_1f3a9c2e".
// The prefix keeps IDs greppable across tables; eight hex chars of a v4
// UUID is enough entropy for this dataset.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + raw[:8]
}
