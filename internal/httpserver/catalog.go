package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/internal/storage"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

type CatalogHTTP struct {
	Svc           *service.CatalogService
	PublicBaseURL string
	Now           func() time.Time
}

func (h *CatalogHTTP) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create_category")

	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "create_category_error", err.Error(), err)
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category_error", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_categories")

	p, err := pageParams(c, h.PublicBaseURL, "category/category")
	if err != nil {
		return fail(l, "get_categories_error", err)
	}

	page, err := h.Svc.ListCategories(ctx, rawFilters(c), c.QueryParam("sort"), p)
	if err != nil {
		return fail(l, "get_categories_error", err)
	}

	l.Info("get_categories_success", "total", page.TotalItems)
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	p, err := pageParams(c, h.PublicBaseURL, "product/product")
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	page, err := h.Svc.ListProducts(ctx, rawFilters(c), c.QueryParam("sort"), p)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	l.Info("get_products_success", "total", page.TotalItems)
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	p, err := pageParams(c, h.PublicBaseURL, "product/search")
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	page, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), p)
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	l.Info("search_products_success", "total", page.TotalItems)
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := idParam(c)
	if err != nil {
		return fail(l, "get_product_error", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}

	return c.JSON(http.StatusOK, product)
}

// productForm binds and validates the multipart product form and reads the
// optional "file" part.
func (h *CatalogHTTP) productForm(c echo.Context) (transport.ProductForm, *storage.Upload, error) {
	var form transport.ProductForm
	if err := c.Bind(&form); err != nil {
		return form, nil, err
	}
	if err := c.Validate(&form); err != nil {
		return form, nil, err
	}

	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil, nil
	}
	if err != nil {
		return form, nil, err
	}
	upload, err := storage.ReadUpload(fh, h.now())
	if err != nil {
		return form, nil, err
	}
	return form, upload, nil
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	form, upload, err := h.productForm(c)
	if err != nil {
		return badRequest(l, "create_product_error", err.Error(), err)
	}

	product, err := h.Svc.CreateProduct(ctx, form, upload)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := idParam(c)
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	form, upload, err := h.productForm(c)
	if err != nil {
		return badRequest(l, "update_product_error", err.Error(), err)
	}

	product, err := h.Svc.UpdateProduct(ctx, id, form, upload)
	if err != nil {
		return fail(l, "update_product_error", err)
	}

	l.Info("update_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := idParam(c)
	if err != nil {
		return fail(l, "delete_product_error", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
