package models

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}

	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

type Address struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

// OrderItem is frozen at checkout; later catalog or cart changes do not touch it.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	VariantID   string  `json:"variantId,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type Order struct {
	ID                string      `json:"id"`
	CustomerID        string      `json:"customerId"`
	Items             []OrderItem `json:"items"`
	Subtotal          float64     `json:"subtotal"`
	Discount          float64     `json:"discount,omitempty"`
	Total             float64     `json:"total"`
	CouponCode        string      `json:"couponCode,omitempty"`
	Status            OrderStatus `json:"status"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	EstimatedDelivery *time.Time  `json:"estimatedDelivery,omitempty"`
	TrackingNumber    string      `json:"trackingNumber,omitempty"`
	PaymentMethod     string      `json:"paymentMethod,omitempty"`
	ShippingAddress   Address     `json:"shippingAddress"`
}

type TrackingEvent struct {
	ID          string      `json:"id"`
	OrderID     string      `json:"orderId"`
	Status      OrderStatus `json:"status"`
	Location    string      `json:"location,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Description string      `json:"description"`
}

type CourierPosition struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CourierView struct {
	Position         *CourierPosition `json:"position,omitempty"`
	EstimatedMinutes int              `json:"estimatedMinutes"`
}

type TrackingView struct {
	OrderID  string          `json:"orderId"`
	Status   OrderStatus     `json:"status"`
	Progress int             `json:"progress"`
	Timeline []TrackingEvent `json:"timeline"`
	Courier  *CourierView    `json:"courier,omitempty"`
}

type CreateOrderRequest struct {
	ShippingAddress Address `json:"shippingAddress" validate:"required"`
	PaymentMethod   string  `json:"paymentMethod" validate:"required,oneof=creditcard upi cod netbanking"`
	CouponCode      string  `json:"couponCode,omitempty" validate:"omitempty,max=32"`
}

type UpdateOrderStatusRequest struct {
	Status      OrderStatus `json:"status" validate:"required,oneof=processing shipped"`
	Location    string      `json:"location,omitempty" validate:"omitempty,max=200"`
	Description string      `json:"description,omitempty" validate:"omitempty,max=500"`
}

type OrderHistoryResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
}
