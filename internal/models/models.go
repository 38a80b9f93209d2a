package models

import "time"

const (
	RoleClient = "client"
	RoleSeller = "seller"
)

type Category struct {
	ID   uint   `gorm:"primaryKey"   json:"id"`
	Name string `gorm:"not null"     json:"name"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey"                                json:"id"`
	Name        string    `gorm:"not null"                                  json:"name"`
	Description string    `gorm:"not null;default:''"                       json:"description"`
	Price       Money     `gorm:"type:numeric(12,2);not null"               json:"price"`
	CategoryID  uint      `gorm:"not null;index"                            json:"category_id"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Image       *string   `json:"image"`
	Thumbnail   *string   `json:"thumbnail"`
}

type Order struct {
	ID              uint      `gorm:"primaryKey"                  json:"id"`
	DeliveryAddress string    `gorm:"not null"                    json:"delivery_address"`
	OrderDate       time.Time `gorm:"not null"                    json:"order_date"`
	PaymentDueDate  time.Time `gorm:"not null"                    json:"payment_due_date"`
	TotalPrice      Money     `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CustomerID      uint      `gorm:"index;not null"              json:"customer_id"`
	Customer        *User     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

type OrderItem struct {
	ID        uint     `gorm:"primaryKey"                    json:"id"`
	OrderID   uint     `gorm:"index;not null"                json:"order_id"`
	Order     *Order   `gorm:"constraint:OnDelete:CASCADE"   json:"-"`
	ProductID uint     `gorm:"index;not null"                json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:RESTRICT"  json:"-"`
	Quantity  int      `gorm:"not null;check:quantity > 0"   json:"quantity"`
}

type User struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null"             json:"-"`
	Confirmed bool   `gorm:"not null;default:false" json:"confirmed"`
	Role      string `gorm:"not null;default:'client'" json:"role"`
}

// All lists the tables in dependency order for AutoMigrate.
func All() []any {
	return []any{&Category{}, &Product{}, &User{}, &Order{}, &OrderItem{}}
}
