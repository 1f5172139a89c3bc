// Package middleware holds the access guard and the request-rate limiter.
package middleware

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

const claimsContextKey = "claims"

// PrincipalHandler is a handler that runs on behalf of a resolved principal.
type PrincipalHandler func(c echo.Context, p auth.Principal) error

// Guard resolves bearer tokens to principals and enforces the admin role.
type Guard struct {
	requireToken echo.MiddlewareFunc
	authService  service.AuthService
}

// NewGuard builds a guard that verifies tokens with jwtService and resolves
// their owners through authService.
func NewGuard(jwtService *auth.JWTService, authService service.AuthService) *Guard {
	return &Guard{
		requireToken: RequireToken(jwtService),
		authService:  authService,
	}
}

// RequireToken extracts "Authorization: Bearer <token>" and verifies it.
// Verified claims are left on the context for Guard to pick up.
func RequireToken(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.VerifyToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				return apperrors.ErrTokenExpired
			case errors.Is(err, apperrors.ErrTokenMalformed):
				return apperrors.ErrTokenMalformed
			case c.Request().Header.Get(echo.HeaderAuthorization) == "":
				return apperrors.ErrTokenMissing
			default:
				return apperrors.ErrTokenFormat
			}
		},
	})
}

// Authenticated wraps h so it only runs for a valid, unrevoked token whose
// user still exists.
func (g *Guard) Authenticated(h PrincipalHandler) echo.HandlerFunc {
	return g.requireToken(func(c echo.Context) error {
		principal, err := g.resolve(c)
		if err != nil {
			return err
		}
		return h(c, principal)
	})
}

// Elevated is Authenticated plus an exact admin role check.
func (g *Guard) Elevated(h PrincipalHandler) echo.HandlerFunc {
	return g.Authenticated(func(c echo.Context, p auth.Principal) error {
		if !p.IsElevated() {
			return apperrors.ErrForbidden
		}
		return h(c, p)
	})
}

func (g *Guard) resolve(c echo.Context) (auth.Principal, error) {
	claims, ok := c.Get(claimsContextKey).(*auth.Claims)
	if !ok {
		return auth.Principal{}, apperrors.ErrTokenMalformed
	}

	principal, err := g.authService.Authenticate(c.Request().Context(), claims)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return auth.Principal{}, apperrors.NewHTTPError(http.StatusUnauthorized, "user not found", "USER_NOT_FOUND")
		}
		return auth.Principal{}, err
	}
	return principal, nil
}
