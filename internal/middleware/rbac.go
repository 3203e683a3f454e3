package middleware

import (
	"fmt"
	"net/http"

	"fixhub/internal/common"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type RBACMiddleware struct {
	rbacService services.RBACService
}

func NewRBACMiddleware(rbacService services.RBACService) *RBACMiddleware {
	return &RBACMiddleware{rbacService: rbacService}
}

// RequirePermission gates a route on a single permission. It runs behind the
// JWT middleware, which has already put the caller's identity into the
// request context.
func (m *RBACMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID, userOK := common.GetUserIDFromContext(ctx)
			companyID, companyOK := common.GetCompanyIDFromContext(ctx)
			if !userOK || !companyOK {
				return common.SendUnauthorizedError(c)
			}

			allowed, err := m.rbacService.UserHasPermission(ctx, companyID, userID, permission)
			if err != nil {
				return common.SendServerError(c, "Permission lookup failed")
			}
			if !allowed {
				return c.JSON(http.StatusForbidden, common.CreateErrorResponse(
					"FORBIDDEN", fmt.Sprintf("Requires permission %q", permission), nil))
			}

			return next(c)
		}
	}
}
