package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/pagination"
	"github.com/Skotchmaster/ecommerce_api/internal/query"
)

const productColumns = "products.id, products.name, products.description, products.price, " +
	"products.category_id, categories.name AS category_name, products.image, products.thumbnail"

func (r *GormRepo) productViews(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("products").
		Select(productColumns).
		Joins("JOIN categories ON categories.id = products.category_id")
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	var p models.ProductView
	if err := r.productViews(ctx).Where("products.id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, raw query.Raw, sort string, p pagination.Params) (*pagination.Page[models.ProductView], error) {
	q, filters, err := query.ApplyFilters(r.productViews(ctx), query.ProductFilters, raw)
	if err != nil {
		return nil, err
	}
	q, err = query.ApplySort(q, query.ProductSorts, sort)
	if err != nil {
		return nil, err
	}

	p.Source = "products JOIN categories"
	p.Filters = filters
	p.Sort = sort
	return pagination.Paginate[models.ProductView](ctx, q, p)
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

// UpdateProduct overwrites every column of an existing product.
func (r *GormRepo) UpdateProduct(ctx context.Context, prod *models.Product) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", prod.ID).
		Select("name", "description", "price", "category_id", "image", "thumbnail").
		Updates(prod)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
