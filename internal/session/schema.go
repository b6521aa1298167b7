package session

import "github.com/CodexForgeBR/testmate/internal/api"

// schemaVersion is bumped whenever the on-disk layout changes.
const schemaVersion = 1

// fileName is the session file inside the state directory.
const fileName = "session.json"

// Keys of the client-local key-value store. The token and user keys match
// the names the web client used in browser storage.
const (
	keyToken      = "testmate_token"
	keyUser       = "testmate_user"
	keyNavigation = "testmate_navigation"
	keySections   = "testmate_level0_sections"
)

// Session is a point-in-time view of the authentication state.
type Session struct {
	Token string
	User  *api.User
}

// Navigation is the persisted address fragment plus its history stacks.
type Navigation struct {
	Fragment string   `json:"fragment"`
	Back     []string `json:"back,omitempty"`
	Forward  []string `json:"forward,omitempty"`
}

// fileState is the JSON layout of session.json.
type fileState struct {
	SchemaVersion int               `json:"schema_version"`
	LastUpdated   string            `json:"last_updated"`
	Entries       map[string]string `json:"entries"`
}
