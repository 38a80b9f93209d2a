package httpserver

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/ecommerce_api/internal/storage"
	"github.com/Skotchmaster/ecommerce_api/pkg/middleware/metrics"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	UserHandler    *UserHTTP

	// Auth verifies the caller; see RequireUser.
	Auth echo.MiddlewareFunc

	Metrics *metrics.Metrics
	// MediaDir is served under /images and /thumbnails when set.
	MediaDir           string
	LoginRatePerMinute int
	Ready              func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}
	if d.MediaDir != "" {
		e.Static("/"+storage.ImagesDir, filepath.Join(d.MediaDir, storage.ImagesDir))
		e.Static("/"+storage.ThumbnailsDir, filepath.Join(d.MediaDir, storage.ThumbnailsDir))
	}

	seller := []echo.MiddlewareFunc{d.Auth, RequireSeller}

	category := e.Group("/category")
	category.GET("/category", d.CatalogHandler.GetCategories)
	category.POST("", d.CatalogHandler.CreateCategory, seller...)

	product := e.Group("/product")
	product.GET("/product", d.CatalogHandler.GetProducts)
	product.GET("/search", d.CatalogHandler.SearchProducts)
	product.GET("/:id", d.CatalogHandler.GetProduct)
	product.POST("", d.CatalogHandler.CreateProduct, seller...)
	product.PUT("/:id", d.CatalogHandler.UpdateProduct, seller...)
	product.DELETE("/:id", d.CatalogHandler.DeleteProduct, seller...)

	order := e.Group("/order", d.Auth)
	order.POST("", d.OrderHandler.CreateOrder)
	order.GET("/orders", d.OrderHandler.GetOrders)

	user := e.Group("/user")
	user.POST("/register", d.UserHandler.Register)
	user.POST("/token", d.UserHandler.Login, loginLimiter(d.LoginRatePerMinute))
	user.GET("/confirm/:token", d.UserHandler.Confirm)
}

func loginLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		},
	})
}
