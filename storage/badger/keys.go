package badger

import (
	"fmt"

	"github.com/poiesic/greenlight/core"
)

// Key prefixes for different data types
const (
	documentPrefix = "evdoc"
	entityPrefix   = "grent"
)

// makeDocumentKey generates a key for an evidence document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeEntityKey generates a key for a graph entity by its stable string key.
func makeEntityKey(key string) []byte {
	return []byte(entityPrefix + ":" + key)
}
