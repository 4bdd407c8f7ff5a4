package dedup

import (
	"errors"

	"dupfinder/internal/store"
)

// Failure categories. Pipeline errors wrap one of these together with the
// underlying cause, so both can be matched with errors.Is.
var (
	// ErrNormalization means markup survived normalization, which is a defect
	ErrNormalization = errors.New("normalization failed")
	// ErrSummarization means the summarizer failed or returned no summary
	ErrSummarization = errors.New("summarization failed")
	// ErrEmbedding means the embedder failed or returned a wrong-sized vector
	ErrEmbedding = errors.New("embedding failed")
	// ErrSearchUnavailable means the ticket store could not be read
	ErrSearchUnavailable = errors.New("ticket store unavailable")
	// ErrFeedbackPersist means negative feedback could not be turned into a ticket
	ErrFeedbackPersist = errors.New("feedback could not be persisted")
	// ErrInvalidQuery means the request carried no text to search with
	ErrInvalidQuery = errors.New("title or description is required")
	// ErrSessionNotFound means the session id is unknown or expired
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed means the session already received its feedback
	ErrSessionClosed = errors.New("session already closed")
	// ErrFeedbackInProgress means feedback for the session is being ingested
	ErrFeedbackInProgress = errors.New("feedback already in progress")

	ErrDimensionMismatch = store.ErrDimensionMismatch
	ErrDuplicateTicket   = store.ErrDuplicateTicket
)
