package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TenantActor resolves the acting tenant and user from the X-Tenant-ID and
// X-User-ID headers set by the fronting auth layer. Both are required on
// every authenticated route.
func TenantActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenantID, err := uuid.Parse(c.Request().Header.Get("X-Tenant-ID"))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid X-Tenant-ID header")
			}
			userID, err := uuid.Parse(c.Request().Header.Get("X-User-ID"))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid X-User-ID header")
			}

			c.Set("tenant_id", tenantID)
			c.Set("user_id", userID)
			return next(c)
		}
	}
}
