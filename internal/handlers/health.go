package handlers

import (
	"context"
	"net/http"
	"time"

	"dupfinder/internal/models"

	"github.com/labstack/echo/v4"
)

// StoreChecker reports whether the ticket store is reachable and how many
// tickets it holds
type StoreChecker interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// HealthHandler handles basic health check requests
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func HealthHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   version,
		}

		return c.JSON(http.StatusOK, response)
	}
}

// StoreHealthHandler pings the ticket store and reports its size
// @Summary Ticket store health
// @Tags health
// @Produce json
// @Success 200 {object} models.StoreHealthResponse
// @Failure 503 {object} models.StoreHealthResponse
// @Router /healthz/store [get]
func StoreHealthHandler(store StoreChecker, backend string) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := models.StoreHealthResponse{
			Status:    "unknown",
			Timestamp: time.Now().UTC(),
			Backend:   backend,
		}

		if store == nil {
			response.Status = "unhealthy"
			response.Error = "Ticket store not initialized"
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		err := store.Ping(ctx)
		response.Latency = time.Since(start)

		if err != nil {
			response.Status = "unhealthy"
			response.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		count, err := store.Count(ctx)
		if err != nil {
			response.Status = "unhealthy"
			response.Connected = true
			response.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		response.Status = "healthy"
		response.Connected = true
		response.Tickets = count

		return c.JSON(http.StatusOK, response)
	}
}

// RootHandler handles requests to the root endpoint
func RootHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Duplicate Ticket Finder API",
			"version": version,
			"status":  "running",
		})
	}
}
