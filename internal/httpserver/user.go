package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

type UserHTTP struct {
	Svc           *service.UserService
	PublicBaseURL string
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "register_error", err.Error(), err)
	}

	url, err := h.Svc.Register(ctx, req, baseURL(c, h.PublicBaseURL))
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success")
	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		Detail:          "User created. Please confirm your email.",
		ConfirmationURL: url,
	})
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "login_error", err.Error(), err)
	}

	token, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *UserHTTP) Confirm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.confirm")

	if err := h.Svc.Confirm(ctx, c.Param("token")); err != nil {
		return fail(l, "confirm_error", err)
	}

	l.Info("confirm_success")
	return c.JSON(http.StatusOK, transport.DetailResponse{Detail: "User confirmed"})
}
