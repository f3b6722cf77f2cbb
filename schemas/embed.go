// Package schemas holds the JSON Schemas for payloads exchanged with external collaborators.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	ScoringResult       = "scoring_result.schema.json"
	NotificationPayload = "notification_payload.schema.json"
)
