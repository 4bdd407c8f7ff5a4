package handlers

import (
	"errors"
	"net/http"

	"dupfinder/internal/dedup"
)

const retryLaterMessage = "The service could not process your request right now. Please try again later."

// statusFor maps a workflow failure to an HTTP status and a client message.
// Upstream failures get a generic message; the cause is only logged.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, dedup.ErrInvalidQuery):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, dedup.ErrSessionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, dedup.ErrSessionClosed), errors.Is(err, dedup.ErrFeedbackInProgress):
		return http.StatusConflict, err.Error()
	case errors.Is(err, dedup.ErrSearchUnavailable):
		return http.StatusServiceUnavailable, retryLaterMessage
	case errors.Is(err, dedup.ErrFeedbackPersist),
		errors.Is(err, dedup.ErrSummarization),
		errors.Is(err, dedup.ErrEmbedding),
		errors.Is(err, dedup.ErrNormalization):
		return http.StatusBadGateway, retryLaterMessage
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
