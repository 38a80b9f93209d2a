package transport

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ProductForm is the multipart form of product create and update; the image
// travels as the "file" part.
type ProductForm struct {
	Name        string `form:"name"        validate:"required,max=255"`
	Description string `form:"description" validate:"max=4000"`
	Price       string `form:"price"       validate:"required,numeric"`
	CategoryID  uint   `form:"category_id" validate:"required"`
}

type OrderProduct struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"gt=0"`
}

type CreateOrderRequest struct {
	DeliveryAddress string         `json:"delivery_address" validate:"required,max=500"`
	Products        []OrderProduct `json:"products"         validate:"required,min=1,dive"`
}

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=client seller"`
}

type LoginRequest struct {
	Email    string `json:"email"    form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RegisterResponse struct {
	Detail          string `json:"detail"`
	ConfirmationURL string `json:"confirmation_url"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}
