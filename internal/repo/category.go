package repo

import (
	"context"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/pagination"
	"github.com/Skotchmaster/ecommerce_api/internal/query"
)

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Create(cat).Error
}

func (r *GormRepo) ListCategories(ctx context.Context, raw query.Raw, sort string, p pagination.Params) (*pagination.Page[models.Category], error) {
	q, filters, err := query.ApplyFilters(r.DB.WithContext(ctx).Model(&models.Category{}), query.CategoryFilters, raw)
	if err != nil {
		return nil, err
	}
	q, err = query.ApplySort(q, query.CategorySorts, sort)
	if err != nil {
		return nil, err
	}

	p.Source = "categories"
	p.Filters = filters
	p.Sort = sort
	return pagination.Paginate[models.Category](ctx, q, p)
}
