package httpserver

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/pagination"
	"github.com/Skotchmaster/ecommerce_api/internal/query"
	"github.com/Skotchmaster/ecommerce_api/internal/service"
)

var reservedParams = map[string]bool{"page": true, "per_page": true, "sort": true}

func intParam(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", service.ErrValidation, name)
	}
	return n, nil
}

// pageParams reads page and per_page and fills in the link prefix.
func pageParams(c echo.Context, publicBaseURL, path string) (pagination.Params, error) {
	page, err := intParam(c, "page", pagination.DefaultPage)
	if err != nil {
		return pagination.Params{}, err
	}
	perPage, err := intParam(c, "per_page", pagination.DefaultPerPage)
	if err != nil {
		return pagination.Params{}, err
	}
	if perPage > pagination.MaxPerPage {
		return pagination.Params{}, fmt.Errorf("%w: per_page must be at most %d", service.ErrValidation, pagination.MaxPerPage)
	}
	return pagination.Params{
		Page:    page,
		PerPage: perPage,
		BaseURL: baseURL(c, publicBaseURL),
		Path:    path,
	}, nil
}

func baseURL(c echo.Context, public string) string {
	if public != "" {
		if public[len(public)-1] != '/' {
			public += "/"
		}
		return public
	}
	return c.Scheme() + "://" + c.Request().Host + "/"
}

// rawFilters collects every non-paging query parameter. A parameter present
// with an empty value is kept so it can match nothing.
func rawFilters(c echo.Context, skip ...string) query.Raw {
	raw := query.Raw{}
	for k, vs := range c.QueryParams() {
		if reservedParams[k] || slices.Contains(skip, k) || len(vs) == 0 {
			continue
		}
		raw[k] = vs[0]
	}
	return raw
}

func idParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", service.ErrValidation)
	}
	return uint(id), nil
}
