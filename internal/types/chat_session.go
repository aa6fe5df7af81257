package types

import "time"

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Turn is one entry of a session transcript.
type Turn struct {
	Role MessageRole `json:"role"`
	Text string      `json:"text"`
}

// GenerationRequest is what the session manager hands to the generative model.
type GenerationRequest struct {
	SystemInstruction string
	History           []Turn
	Message           string
	MaxOutputTokens   int32
	Temperature       float32
}

type SessionState string

const (
	StateIdle             SessionState = "idle"
	StateAwaitingUpstream SessionState = "awaiting_upstream"
	StateReady            SessionState = "ready"
)

// Request/Response types for chat API
type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ChatMessageRequest struct {
	Message            string    `json:"message"`
	Language           string    `json:"language,omitempty"`
	Location           *Location `json:"location,omitempty"`
	UseCurrentLocation bool      `json:"use_current_location,omitempty"`
}

type ChatMessageResponse struct {
	SessionID        string       `json:"session_id"`
	Reply            string       `json:"reply"`
	State            SessionState `json:"state"`
	TranscriptLength int          `json:"transcript_length"`
}

type LocationResponse struct {
	Location *Location `json:"location"`
}

type NearbyResponse struct {
	Intent QueryIntent      `json:"intent"`
	Places []PlaceCandidate `json:"places"`
}
