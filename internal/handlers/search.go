package handlers

import (
	"context"
	"net/http"

	"dupfinder/internal/dedup"
	"dupfinder/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Searcher finds tickets similar to a query
type Searcher interface {
	Search(ctx context.Context, title, description string) (*dedup.SearchOutcome, error)
}

// SearchHandler returns the tickets closest to the submitted issue
// @Summary Search similar tickets
// @Description Summarizes and embeds the issue, then returns up to five stored tickets ordered by cosine distance. The returned session_id is used to send feedback.
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "Issue to search for"
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} models.SearchResponse
// @Failure 502 {object} models.SearchResponse
// @Failure 503 {object} models.SearchResponse
// @Router /api/search [post]
func SearchHandler(svc Searcher, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.SearchRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.SearchResponse{
				Results: []models.SearchResult{},
				Error:   "Invalid request body",
			})
		}

		outcome, err := svc.Search(c.Request().Context(), req.Title, req.Description)
		if err != nil {
			status, message := statusFor(err)
			if status >= http.StatusInternalServerError {
				logger.Error().Err(err).Int("status", status).Msg("Search request failed")
			}
			return c.JSON(status, models.SearchResponse{
				Results: []models.SearchResult{},
				Error:   message,
			})
		}

		return c.JSON(http.StatusOK, models.SearchResponse{
			SessionID: outcome.SessionID,
			Results:   outcome.Results,
		})
	}
}
