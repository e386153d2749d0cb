// In file: internal/version/version.go

// Package version centralizes the schema versioning for data the gateway
// persists in Redis.
//
// By embedding these version strings in Redis keys, stale entries written by
// an older build simply stop being matched after a deploy that changes the
// stored shape. Bump SessionSchema whenever the serialized message format
// changes (a new field on llm.Message, a different encoding); old sessions
// then expire on their own TTL instead of being misdecoded.
package version

import "fmt"

// ComponentVersions holds the version strings for persisted data shapes.
// Manually increment a version here before deploying a change to that shape.
var ComponentVersions = struct {
	// SessionSchema versions the JSON encoding of conversation histories.
	SessionSchema string
}{
	SessionSchema: "v1",
}

// SessionKey builds the version-aware Redis key for a conversation's
// history, e.g. "session:v1:8b7f...".
func SessionKey(conversationID string) string {
	return fmt.Sprintf("session:%s:%s", ComponentVersions.SessionSchema, conversationID)
}
