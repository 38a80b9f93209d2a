package httpserver

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
	"github.com/Skotchmaster/ecommerce_api/pkg/tokens"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

var errNoUser = errors.New("no authenticated user")

// RequireUser verifies the Bearer access token and loads its user into the
// echo context.
func RequireUser(secret []byte, users *service.UserService) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: "HS256",
		ContextKey:    tokenKey,
		TokenLookup:   "header:Authorization:Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(tokens.Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_error", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		},
	})

	load := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "require_user")

			tkn, ok := c.Get(tokenKey).(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
			}
			claims, ok := tkn.Claims.(*tokens.Claims)
			if !ok || claims.Type != tokens.TypeAccess {
				l.Warn("auth_error", "status", 401, "reason", "not an access token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
			}

			user, err := users.Authenticate(ctx, claims.Subject)
			if err != nil {
				return fail(l, "auth_error", err)
			}
			c.Set(userKey, user)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", user.ID))))
			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(load(next))
	}
}

// RequireSeller lets only sellers through; it must run after RequireUser.
func RequireSeller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := CurrentUser(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}
		if user.Role != models.RoleSeller {
			logging.FromContext(c.Request().Context()).Warn("auth_error", "status", 403, "reason", "seller role required", "user_id", user.ID)
			return echo.NewHTTPError(http.StatusForbidden, "seller role required")
		}
		return next(c)
	}
}

func CurrentUser(c echo.Context) (*models.User, error) {
	user, ok := c.Get(userKey).(*models.User)
	if !ok || user == nil {
		return nil, errNoUser
	}
	return user, nil
}
