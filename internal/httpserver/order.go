package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

type OrderHTTP struct {
	Svc           *service.OrderService
	PublicBaseURL string
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	user, err := CurrentUser(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "create_order_error", err.Error(), err)
	}

	order, err := h.Svc.CreateOrder(ctx, user.ID, req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	user, err := CurrentUser(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	p, err := pageParams(c, h.PublicBaseURL, "order/orders")
	if err != nil {
		return fail(l, "get_orders_error", err)
	}

	page, err := h.Svc.ListOrders(ctx, user, p)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}

	l.Info("get_orders_success", "total", page.TotalItems)
	return c.JSON(http.StatusOK, page)
}
