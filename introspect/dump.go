// Package introspect renders a decoded crunch.Message as JSON for
// debugging and logging, walking Fields() the same way
// crunch.ValidateMessage does rather than requiring a message to also
// implement json.Marshaler.
package introspect

import (
	"github.com/goccy/go-json"

	"github.com/sam-w-yellin/crunch"
)

// Dump marshals a snapshot of msg's current field values to indented
// JSON, using goccy/go-json rather than the standard library's
// encoding/json for the same throughput reasons the rest of the
// retrieved example corpus reaches for it.
func Dump(msg crunch.Message) ([]byte, error) {
	return json.MarshalIndent(crunch.MessageSnapshot(msg), "", "  ")
}
