package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/pagination"
)

const orderItemsBatch = 100

type productPrice struct {
	ID    uint
	Price models.Money
}

// ProductPrices returns the current price of every id that exists.
func (r *GormRepo) ProductPrices(ctx context.Context, ids []uint) (map[uint]models.Money, error) {
	var rows []productPrice
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("id, price").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint]models.Money, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Price
	}
	return out, nil
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Customer").Create(order).Error
}

func (r *GormRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	return r.DB.WithContext(ctx).Omit("Order", "Product").CreateInBatches(items, orderItemsBatch).Error
}

func (r *GormRepo) SetOrderTotal(ctx context.Context, orderID uint, total models.Money) error {
	return r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total_price", total).Error
}

// ListOrders pages over orders, not over their item rows: the page of orders
// is selected first and only then joined with order_items. A nil customerID
// lists every customer's orders.
func (r *GormRepo) ListOrders(ctx context.Context, customerID *uint, p pagination.Params) (*pagination.Page[models.OrderView], error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&models.Order{})
		if customerID != nil {
			db = db.Where("customer_id = ?", *customerID)
		}
		return db
	}

	var total int64
	if err := scope(r.DB.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: count orders: %v", pagination.ErrPaginationFailed, err)
	}

	limited := scope(r.DB.WithContext(ctx)).
		Order("id").
		Limit(p.PerPage).
		Offset(p.Offset())

	joined := r.DB.WithContext(ctx).
		Table("(?) AS o", limited).
		Select("o.id, o.delivery_address, o.order_date, o.payment_due_date, o.total_price, o.customer_id, " +
			"order_items.product_id, order_items.quantity").
		Joins("JOIN order_items ON order_items.order_id = o.id").
		Order("o.id, order_items.id")

	p.Source = "orders JOIN order_items"
	p.Total = &total
	p.PreLimited = true
	rows, err := pagination.Paginate[models.OrderRow](ctx, joined, p)
	if err != nil {
		return nil, err
	}

	return &pagination.Page[models.OrderView]{
		Page:        rows.Page,
		PerPage:     rows.PerPage,
		TotalItems:  rows.TotalItems,
		NextPageURL: rows.NextPageURL,
		PrevPageURL: rows.PrevPageURL,
		Results:     models.GroupOrderRows(rows.Results),
	}, nil
}
