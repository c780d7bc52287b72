package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// ParseStatus validates a submitted status string against the five
// recognized values.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(raw), nil
	default:
		return "", ErrInvalidStatus
	}
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusProcessing: true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the lifecycle permits moving from s to
// next. DELIVERED and CANCELLED are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	return allowedTransitions[s][next]
}

// Shipped reports whether tracking data is meaningful at this status.
func (s Status) Shipped() bool {
	return s == StatusShipped || s == StatusDelivered
}

// Item snapshots a purchased product as it was at submission time. It never
// follows later product mutations.
type Item struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Color       string    `json:"color,omitempty"`
	Length      string    `json:"length,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Status          Status    `json:"status"`
	Items           []Item    `json:"items"`
	Subtotal        float64   `json:"subtotal"`
	ShippingCost    float64   `json:"shipping_cost"`
	Tax             float64   `json:"tax"`
	Discount        float64   `json:"discount"`
	Total           float64   `json:"total"`
	ShippingAddress string    `json:"shipping_address"`
	PaymentMethod   string    `json:"payment_method"`
	PaymentLast4    string    `json:"payment_last4,omitempty"`
	PaymentBrand    string    `json:"payment_brand,omitempty"`
	PaymentEmail    string    `json:"payment_email,omitempty"`
	TrackingCarrier string    `json:"tracking_carrier,omitempty"`
	TrackingNumber  string    `json:"tracking_number,omitempty"`
	TrackingURL     string    `json:"tracking_url,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
