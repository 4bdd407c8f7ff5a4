package models

import "time"

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// StoreHealthResponse represents a ticket store health check response
// @Description Ticket store health check response
type StoreHealthResponse struct {
	Status    string        `json:"status" example:"healthy"`                   // Health status
	Timestamp time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"`   // Timestamp of the check
	Backend   string        `json:"backend" example:"postgres"`                 // Configured store backend
	Connected bool          `json:"connected" example:"true"`                   // Store reachable
	Tickets   int           `json:"tickets" example:"1200"`                     // Number of stored tickets
	Latency   time.Duration `json:"latency" swaggertype:"string" example:"1ms"` // Store ping latency
	Error     string        `json:"error,omitempty" example:""`                 // Error message if any
}

// SearchRequest represents the request body for the search endpoint
// @Description Ticket search payload
type SearchRequest struct {
	Title       string `json:"title" example:"App crashes on launch"`                                           // Issue title
	Description string `json:"description" example:"App crashes immediately after splash screen on Android 13"` // Issue description
}

// SearchResponse represents the response from the search endpoint
// @Description Ticket search response
type SearchResponse struct {
	SessionID string         `json:"session_id,omitempty" example:"6f1c0f5e-8a8e-4c57-9d0b-8f6b1f0b7a11"` // Feedback session for this search
	Results   []SearchResult `json:"results"`                                                             // Up to five most similar tickets
	Error     string         `json:"error,omitempty" example:""`                                          // Error message if any
}

// FeedbackRequest represents the request body for the feedback endpoint
// @Description Feedback payload
type FeedbackRequest struct {
	SessionID   string `json:"session_id,omitempty" example:"6f1c0f5e-8a8e-4c57-9d0b-8f6b1f0b7a11"` // Session returned by search (optional)
	Helpful     bool   `json:"helpful" example:"false"`                                             // Whether any result solved the issue
	Title       string `json:"title" example:"App crashes on launch"`                               // Issue title
	Description string `json:"description" example:"Crashes after splash screen"`                   // Issue description
}

// FeedbackResponse represents the response from the feedback endpoint
// @Description Feedback acknowledgment
type FeedbackResponse struct {
	Status   string `json:"status" example:"ok"`                // "ok" on success
	State    string `json:"state,omitempty" example:"ingested"` // Final session state
	TicketID *int64 `json:"ticket_id,omitempty" example:"42"`   // Ticket created from negative feedback
	Error    string `json:"error,omitempty" example:""`         // Error message if any
}

// SessionResponse describes the feedback state of a search session
// @Description Feedback session status
type SessionResponse struct {
	SessionID string    `json:"session_id" example:"6f1c0f5e-8a8e-4c57-9d0b-8f6b1f0b7a11"` // Session ID
	State     string    `json:"state" example:"awaiting_feedback"`                         // Current state
	TicketID  *int64    `json:"ticket_id,omitempty" example:"42"`                          // Ticket created, if ingested
	CreatedAt time.Time `json:"created_at" example:"2023-01-01T00:00:00Z"`                 // When the search ran
	Error     string    `json:"error,omitempty" example:""`                                // Error message if any
}
