package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/cache"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/pagination"
	"github.com/Skotchmaster/ecommerce_api/internal/query"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/storage"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/events"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

type ProductCache interface {
	Get(ctx context.Context, id uint) (*models.ProductView, error)
	Set(ctx context.Context, p *models.ProductView) error
	Delete(ctx context.Context, id uint) error
}

type ProductIndex interface {
	Index(ctx context.Context, p *models.ProductView) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, from, size int) (int64, []models.ProductView, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Store  storage.Store
	Events events.Publisher
	Cache  ProductCache
	Index  ProductIndex
}

type ProductEvent struct {
	Type      string `json:"type"`
	ProductID uint   `json:"productID"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price,omitempty"`
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	cat := &models.Category{Name: name}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, classify(err)
	}
	return cat, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, raw query.Raw, sort string, p pagination.Params) (*pagination.Page[models.Category], error) {
	return s.Repo.ListCategories(ctx, raw, sort, p)
}

func (s *CatalogService) ListProducts(ctx context.Context, raw query.Raw, sort string, p pagination.Params) (*pagination.Page[models.ProductView], error) {
	return s.Repo.ListProducts(ctx, raw, sort, p)
}

func productFromForm(form transport.ProductForm) (*models.Product, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	price, err := models.ParseMoney(strings.TrimSpace(form.Price))
	if err != nil {
		return nil, fmt.Errorf("%w: price is not a number", ErrValidation)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if form.CategoryID == 0 {
		return nil, fmt.Errorf("%w: category_id required", ErrValidation)
	}
	return &models.Product{
		Name:        name,
		Description: form.Description,
		Price:       models.NewMoney(price.Round(2)),
		CategoryID:  form.CategoryID,
	}, nil
}

func (s *CatalogService) attachImage(ctx context.Context, prod *models.Product, upload *storage.Upload) (*storage.Saved, error) {
	if upload == nil {
		return nil, nil
	}
	saved, err := storage.SaveImage(ctx, s.Store, upload)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	prod.Image = &saved.Image
	prod.Thumbnail = &saved.Thumbnail
	return saved, nil
}

// discardImage removes files stored for a write that did not commit.
func (s *CatalogService) discardImage(ctx context.Context, l *slog.Logger, saved *storage.Saved) {
	if saved == nil {
		return
	}
	if err := storage.DiscardImage(ctx, s.Store, saved); err != nil {
		l.Warn("discard_image_error", "image", saved.Image, "thumbnail", saved.Thumbnail, "error", err)
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, form transport.ProductForm, upload *storage.Upload) (*models.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	prod, err := productFromForm(form)
	if err != nil {
		return nil, err
	}
	saved, err := s.attachImage(ctx, prod, upload)
	if err != nil {
		l.Error("create_product_error", "reason", "cannot store image", "error", err)
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		s.discardImage(ctx, l, saved)
		return nil, classify(err)
	}

	view, err := s.Repo.GetProduct(ctx, prod.ID)
	if err != nil {
		return nil, classify(err)
	}
	s.productChanged(ctx, "product_created", view)
	return view, nil
}

// UpdateProduct replaces all fields of the product; the stored image is kept
// unless a new one is uploaded.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, form transport.ProductForm, upload *storage.Upload) (*models.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)

	prod, err := productFromForm(form)
	if err != nil {
		return nil, err
	}
	current, err := s.Repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, classify(err)
	}
	prod.ID = id
	prod.Image, prod.Thumbnail = current.Image, current.Thumbnail
	saved, err := s.attachImage(ctx, prod, upload)
	if err != nil {
		l.Error("update_product_error", "reason", "cannot store image", "error", err)
		return nil, err
	}

	if err := s.Repo.UpdateProduct(ctx, prod); err != nil {
		s.discardImage(ctx, l, saved)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, classify(err)
	}

	view, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	s.productChanged(ctx, "product_updated", view)
	return view, nil
}

// GetProduct reads through the cache when one is configured.
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.get_product", "product_id", id)

	if s.Cache != nil {
		p, err := s.Cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			l.Warn("cache_get_error", "error", err)
		}
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, classify(err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, p); err != nil {
			l.Warn("cache_set_error", "error", err)
		}
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return classify(err)
	}

	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, id); err != nil {
			l.Warn("cache_delete_error", "error", err)
		}
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("index_delete_error", "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, strconv.FormatUint(uint64(id), 10),
		ProductEvent{Type: "product_deleted", ProductID: id})
	return nil
}

// SearchProducts runs a full-text query against the product index.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, p pagination.Params) (*pagination.Page[models.ProductView], error) {
	if s.Index == nil {
		return nil, fmt.Errorf("%w: search is not configured", ErrNotFound)
	}
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("%w: q required", ErrValidation)
	}

	total, items, err := s.Index.Search(ctx, q, p.Offset(), p.PerPage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pagination.ErrPaginationFailed, err)
	}

	p.Filters = query.Filters{{Field: "q", Value: q}}
	next, prev := pagination.Links(p, total)
	return &pagination.Page[models.ProductView]{
		Page:        p.Page,
		PerPage:     p.PerPage,
		TotalItems:  total,
		NextPageURL: next,
		PrevPageURL: prev,
		Results:     items,
	}, nil
}

func (s *CatalogService) productChanged(ctx context.Context, kind string, view *models.ProductView) {
	l := logging.FromContext(ctx)

	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, view.ID); err != nil {
			l.Warn("cache_delete_error", "product_id", view.ID, "error", err)
		}
	}
	if s.Index != nil {
		if err := s.Index.Index(ctx, view); err != nil {
			l.Warn("index_product_error", "product_id", view.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, strconv.FormatUint(uint64(view.ID), 10), ProductEvent{
		Type:      kind,
		ProductID: view.ID,
		Name:      view.Name,
		Price:     view.Price.String(),
	})
}
