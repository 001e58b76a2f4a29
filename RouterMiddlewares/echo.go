package routermiddlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
	tokengate "github.com/trailhead-labs/go-token-gate"
)

// Echo middleware for adding bearer token validation into the request pipeline.
// The gate is constructed once by the caller and shared across requests.
func Echo(g *tokengate.TokenGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := g.ValidateBearerToken(c.Request())
			if err != nil {
				if tokengate.StatusForError(err) == http.StatusServiceUnavailable {
					return echo.ErrServiceUnavailable
				}
				return echo.ErrUnauthorized
			}
			c.SetRequest(c.Request().WithContext(tokengate.WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}
