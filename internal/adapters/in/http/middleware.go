package http

import (
	"errors"
	"net/http"

	"warehouse/internal/pkg/drain"

	"github.com/labstack/echo/v4"
)

// DrainMiddleware tracks every request against the drain counter. Once the
// process starts draining, new requests are rejected with 503 and a
// Retry-After hint while in-flight ones run to completion.
func DrainMiddleware(tracker *drain.Tracker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := tracker.Begin(); err != nil {
				if errors.Is(err, drain.ErrDraining) {
					ctx.Response().Header().Set("Retry-After", "5")
					return ctx.JSON(http.StatusServiceUnavailable, Error{
						Code:    http.StatusServiceUnavailable,
						Message: "Service is shutting down",
					})
				}
				return err
			}
			defer tracker.End()

			return next(ctx)
		}
	}
}
