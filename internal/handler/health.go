package handler // declare the package name; contains HTTP handlers

import (
	"context"      // bounded pings
	"database/sql" // optional account database
	"net/http"     // net/http provides status codes and response helpers
	"time"         // ping timeout

	"github.com/labstack/echo/v4"  // echo is the web framework used for this project
	"github.com/redis/go-redis/v9" // optional cache / token store
)

// HealthHandler reports liveness plus the state of the optional backing
// services.  Nil dependencies are reported as "disabled".
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

// Health returns 200 with {"status":"ok"} while the process serves
// requests.  A backing service that is configured but unreachable turns the
// status into "degraded"; reservations live in memory and keep working.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
	defer cancel()

	out := echo.Map{"status": "ok", "db": "disabled", "redis": "disabled"}
	if h.DB != nil {
		out["db"] = "up"
		if err := h.DB.PingContext(ctx); err != nil {
			out["db"], out["status"] = "down", "degraded"
		}
	}
	if h.Redis != nil {
		out["redis"] = "up"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			out["redis"], out["status"] = "down", "degraded"
		}
	}
	return c.JSON(http.StatusOK, out)
}
