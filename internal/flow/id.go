// Package flow defines the workflow canvas domain: node kinds, edges,
// ports and the persisted workflow definition.
package flow

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a random ID with the given prefix, e.g. "node-1f3a9c2e4b5d6a7f".
func GenerateID(prefix string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "-" + id[:16]
}
