package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/pagination"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/events"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

const paymentTerm = 5 * 24 * time.Hour

type OrderCounter interface {
	OrderCreated()
}

type OrderService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Metrics OrderCounter
	Now     func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type OrderCreatedEvent struct {
	Type       string `json:"type"`
	OrderID    uint   `json:"orderID"`
	CustomerID uint   `json:"customerID"`
	TotalPrice string `json:"total_price"`
}

// CreateOrder prices the requested products and stores the order with its
// items in one transaction. Nothing is written when any product is missing.
func (s *OrderService) CreateOrder(ctx context.Context, customerID uint, req transport.CreateOrderRequest) (*models.OrderView, error) {
	l := logging.FromContext(ctx).With("svc", "order.create_order", "customer_id", customerID)

	if len(req.Products) == 0 {
		return nil, fmt.Errorf("%w: products required", ErrValidation)
	}
	ids := make([]uint, 0, len(req.Products))
	seen := make(map[uint]bool, len(req.Products))
	for _, p := range req.Products {
		if p.ProductID == 0 {
			return nil, fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
		if !seen[p.ProductID] {
			seen[p.ProductID] = true
			ids = append(ids, p.ProductID)
		}
	}

	var view *models.OrderView
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		prices, err := tx.ProductPrices(ctx, ids)
		if err != nil {
			return classify(err)
		}
		var missing []uint
		for _, id := range ids {
			if _, ok := prices[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return &ProductsNotFoundError{IDs: missing}
		}

		orderDate := s.now()
		order := &models.Order{
			DeliveryAddress: req.DeliveryAddress,
			OrderDate:       orderDate,
			PaymentDueDate:  orderDate.Add(paymentTerm),
			TotalPrice:      models.NewMoney(decimal.Zero),
			CustomerID:      customerID,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return classify(err)
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Products))
		echoed := make([]models.ProductQuantity, 0, len(req.Products))
		for _, p := range req.Products {
			total = total.Add(prices[p.ProductID].Mul(decimal.NewFromInt(int64(p.Quantity))))
			items = append(items, models.OrderItem{OrderID: order.ID, ProductID: p.ProductID, Quantity: p.Quantity})
			echoed = append(echoed, models.ProductQuantity{ProductID: p.ProductID, Quantity: p.Quantity})
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return classify(err)
		}

		order.TotalPrice = models.NewMoney(total.Round(2))
		if err := tx.SetOrderTotal(ctx, order.ID, order.TotalPrice); err != nil {
			return classify(err)
		}

		view = &models.OrderView{
			ID:              order.ID,
			DeliveryAddress: order.DeliveryAddress,
			OrderDate:       order.OrderDate,
			PaymentDueDate:  order.PaymentDueDate,
			TotalPrice:      order.TotalPrice,
			CustomerID:      order.CustomerID,
			Products:        echoed,
		}
		return nil
	})
	if err != nil {
		err = classify(err)
		var nf *ProductsNotFoundError
		switch {
		case errors.As(err, &nf):
			l.Warn("create_order_error", "reason", "products not found", "ids", nf.IDs)
		case errors.Is(err, ErrDataIntegrity):
			l.Warn("create_order_error", "reason", "data integrity", "error", err)
		default:
			l.Error("create_order_error", "reason", "database operation failed", "error", err)
		}
		return nil, err
	}

	if s.Metrics != nil {
		s.Metrics.OrderCreated()
	}
	publish(ctx, s.Events, events.TopicOrder, strconv.FormatUint(uint64(view.ID), 10), OrderCreatedEvent{
		Type:       "order_created",
		OrderID:    view.ID,
		CustomerID: view.CustomerID,
		TotalPrice: view.TotalPrice.String(),
	})

	l.Info("create_order_success", "order_id", view.ID, "total_price", view.TotalPrice.String())
	return view, nil
}

// ListOrders pages over the orders visible to user: sellers see every order,
// clients only their own.
func (s *OrderService) ListOrders(ctx context.Context, user *models.User, p pagination.Params) (*pagination.Page[models.OrderView], error) {
	var scope *uint
	if user.Role != models.RoleSeller {
		scope = &user.ID
	}
	return s.Repo.ListOrders(ctx, scope, p)
}
