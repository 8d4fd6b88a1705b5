package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// HasPermission reports whether c's user holds any of perms.  Admins hold
// every permission.
func HasPermission(c echo.Context, perms ...string) bool {
	if role, _ := c.Get(CtxRole).(string); role == model.RoleAdmin {
		return true
	}
	held := Permissions(c)
	for _, want := range perms {
		for _, p := range held {
			if p == want {
				return true
			}
		}
	}
	return false
}

// RequirePermission aborts with 403 unless the user holds at least one of
// perms.  It must run after JWTAuth.
func RequirePermission(perms ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !HasPermission(c, perms...) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
