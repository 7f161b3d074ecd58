package websocket

import "github.com/learnora/learnora-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError          Event = "error"
	EventProgressUpdate Event = "progress_update"
	EventPong           Event = "pong"
)

// ProgressUpdateResponse pushes the recomputed progress record to the
// client after a lecture view or quiz outcome lands.
type ProgressUpdateResponse struct {
	Event    Event                 `json:"event"`
	Progress *model.CourseProgress `json:"progress"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
