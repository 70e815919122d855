package order

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusFailed     OrderStatus = "FAILED"
)

// Statuses lists every status in lifecycle order, as the admin view offers them.
var Statuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusFailed,
}

// нельзя отменить заказ в этих статусах
var cancelBlocked = map[OrderStatus]bool{
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

func (os OrderStatus) String() string {
	return string(os)
}

func (os OrderStatus) Valid() bool {
	for _, s := range Statuses {
		if s == os {
			return true
		}
	}
	return false
}

// CanCancel decides whether the cancel action is offered to the customer.
// The API re-checks on its side.
func CanCancel(status OrderStatus) bool {
	return !cancelBlocked[status]
}

type OrderItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Order is the API's order representation. Timestamps are kept as the API
// formats them (local date-time without zone).
type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          int64           `json:"userId"`
	UserName        string          `json:"userName,omitempty"`
	UserEmail       string          `json:"userEmail,omitempty"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}

type ItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is built from the cart at checkout and never kept.
type CreateOrderRequest struct {
	UserID          int64         `json:"userId"`
	Items           []ItemRequest `json:"items"`
	ShippingAddress string        `json:"shippingAddress"`
	Notes           string        `json:"notes,omitempty"`
}

// CheckoutInput is what the customer types on the cart page.
type CheckoutInput struct {
	ShippingAddress string `json:"shippingAddress" validate:"min=10,max=500"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}
