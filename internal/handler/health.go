package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	ServiceName = "quicklink"
	Version     = "1.0.0"
)

// HealthChecker reports "UP" or an error description per dependency.
type HealthChecker func(ctx context.Context) map[string]string

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp int64             `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health returns 200 when every check is UP and 503 otherwise.
func Health(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := map[string]string{}
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			checks = check(ctx)
			cancel()
		}

		status, code := "UP", http.StatusOK
		for _, v := range checks {
			if v != "UP" {
				status, code = "DOWN", http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, HealthResponse{
			Status:    status,
			Service:   ServiceName,
			Version:   Version,
			Timestamp: time.Now().Unix(),
			Checks:    checks,
		})
	}
}
