package models

import "time"

// ProductView is a product row joined with its category name.
type ProductView struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        Money   `json:"price"`
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Image        *string `json:"image"`
	Thumbnail    *string `json:"thumbnail"`
}

type ProductQuantity struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type OrderView struct {
	ID              uint              `json:"id"`
	DeliveryAddress string            `json:"delivery_address"`
	OrderDate       time.Time         `json:"order_date"`
	PaymentDueDate  time.Time         `json:"payment_due_date"`
	TotalPrice      Money             `json:"total_price"`
	CustomerID      uint              `json:"customer_id"`
	Products        []ProductQuantity `json:"products"`
}

// OrderRow is one order joined with one of its items.
type OrderRow struct {
	ID              uint
	DeliveryAddress string
	OrderDate       time.Time
	PaymentDueDate  time.Time
	TotalPrice      Money
	CustomerID      uint
	ProductID       uint
	Quantity        int
}

// GroupOrderRows folds joined rows into one view per order, keeping row order.
func GroupOrderRows(rows []OrderRow) []OrderView {
	out := make([]OrderView, 0)
	idx := make(map[uint]int)
	for _, r := range rows {
		i, ok := idx[r.ID]
		if !ok {
			out = append(out, OrderView{
				ID:              r.ID,
				DeliveryAddress: r.DeliveryAddress,
				OrderDate:       r.OrderDate,
				PaymentDueDate:  r.PaymentDueDate,
				TotalPrice:      r.TotalPrice,
				CustomerID:      r.CustomerID,
				Products:        make([]ProductQuantity, 0, 1),
			})
			i = len(out) - 1
			idx[r.ID] = i
		}
		out[i].Products = append(out[i].Products, ProductQuantity{ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return out
}
