package handlers

import (
	"context"
	"net/http"

	"dupfinder/internal/dedup"
	"dupfinder/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// FeedbackRecorder applies feedback to search sessions
type FeedbackRecorder interface {
	Feedback(ctx context.Context, req models.FeedbackRequest) (*dedup.FeedbackOutcome, error)
	Session(id string) (dedup.Session, error)
}

// FeedbackHandler records whether a search answered the issue
// @Summary Send search feedback
// @Description Negative feedback adds the issue to the ticket corpus. A session accepts exactly one feedback; repeated feedback returns 409.
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body models.FeedbackRequest true "Feedback"
// @Success 200 {object} models.FeedbackResponse
// @Failure 400 {object} models.FeedbackResponse
// @Failure 404 {object} models.FeedbackResponse
// @Failure 409 {object} models.FeedbackResponse
// @Failure 502 {object} models.FeedbackResponse
// @Router /api/feedback [post]
func FeedbackHandler(svc FeedbackRecorder, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.FeedbackRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.FeedbackResponse{
				Status: "error",
				Error:  "Invalid request body",
			})
		}

		outcome, err := svc.Feedback(c.Request().Context(), req)
		if err != nil {
			status, message := statusFor(err)
			if status >= http.StatusInternalServerError {
				logger.Error().Err(err).Str("session_id", req.SessionID).Int("status", status).Msg("Feedback request failed")
			}
			return c.JSON(status, models.FeedbackResponse{
				Status: "error",
				Error:  message,
			})
		}

		return c.JSON(http.StatusOK, models.FeedbackResponse{
			Status:   "ok",
			State:    outcome.State.String(),
			TicketID: outcome.TicketID,
		})
	}
}

// SessionHandler reports the feedback state of a search session
// @Summary Get session state
// @Tags tickets
// @Produce json
// @Param session_id path string true "Session ID returned by search"
// @Success 200 {object} models.SessionResponse
// @Failure 404 {object} models.SessionResponse
// @Router /api/feedback/{session_id} [get]
func SessionHandler(svc FeedbackRecorder) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("session_id")

		session, err := svc.Session(id)
		if err != nil {
			status, message := statusFor(err)
			return c.JSON(status, models.SessionResponse{
				SessionID: id,
				Error:     message,
			})
		}

		return c.JSON(http.StatusOK, models.SessionResponse{
			SessionID: session.ID,
			State:     session.State.String(),
			TicketID:  session.TicketID,
			CreatedAt: session.CreatedAt,
		})
	}
}
