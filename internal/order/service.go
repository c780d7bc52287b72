package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/cart"
)

// ShippingAddress carries the checkout form fields. The order stores the
// composed single-line string, matching the invoice format.
type ShippingAddress struct {
	Street  string
	Apt     string
	City    string
	State   string
	Zip     string
	Country string
}

func (a ShippingAddress) complete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.Zip != "" && a.Country != ""
}

func (a ShippingAddress) compose() string {
	addr := a.Street
	if a.Apt != "" {
		addr += ", " + a.Apt
	}
	return fmt.Sprintf("%s, %s, %s %s, %s", addr, a.City, a.State, a.Zip, a.Country)
}

type PaymentInfo struct {
	Method string
	Last4  string
	Brand  string
	Email  string
}

type CheckoutInput struct {
	UserID   uuid.UUID
	Cart     *cart.Cart
	Coupon   string
	Shipping ShippingAddress
	Payment  PaymentInfo
}

// UpdateInput carries an admin order update. Nil fields are left unchanged.
type UpdateInput struct {
	Status          *string
	TrackingCarrier *string
	TrackingNumber  *string
	TrackingURL     *string
	Notes           *string
}

type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*Order, error)
	GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, admin bool) (*Order, error)
	ListOrders(ctx context.Context, opts ListOptions) ([]Order, int, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateInput) (*Order, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Checkout creates a PENDING order from the cart snapshot. All money fields
// are recomputed server-side from the submitted lines and coupon; a
// client-supplied total is never trusted.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Order, error) {
	if input.Cart == nil || input.Cart.IsEmpty() {
		log.Warn().Stringer("user_id", input.UserID).Msg("service: checkout attempted with empty cart")
		return nil, ErrEmptyCart
	}
	if !input.Shipping.complete() {
		return nil, ErrAddressIncomplete
	}
	if strings.TrimSpace(input.Payment.Method) == "" {
		return nil, fmt.Errorf("payment method is required: %w", ErrAddressIncomplete)
	}

	quote := cart.CheckoutQuote(input.Cart, input.Coupon)

	o := &Order{
		UserID:          input.UserID,
		Status:          StatusPending,
		Subtotal:        quote.Subtotal,
		ShippingCost:    quote.Shipping,
		Tax:             quote.Tax,
		Discount:        quote.Discount,
		Total:           quote.Total,
		ShippingAddress: input.Shipping.compose(),
		PaymentMethod:   input.Payment.Method,
		PaymentLast4:    input.Payment.Last4,
		PaymentBrand:    input.Payment.Brand,
		PaymentEmail:    input.Payment.Email,
	}

	for _, line := range input.Cart.Lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("line quantity for product %s must be at least 1: %w", line.ProductID, ErrEmptyCart)
		}
		o.Items = append(o.Items, Item{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
			Color:       line.Color,
			Length:      line.Length,
		})
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Stringer("user_id", input.UserID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", o.UserID).Float64("total", o.Total).Msg("service: order created")
	return o, nil
}

// GetOrder fetches one order. Customers can only read their own orders;
// admins can read any.
func (s *service) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, admin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	if !admin && o.UserID != requesterID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, opts ListOptions) ([]Order, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}

	orders, total, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, 0, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateOrder applies an admin update: a lifecycle transition, tracking
// metadata, and free-text notes. Illegal transitions and premature tracking
// are rejected without touching the row.
func (s *service) UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateInput) (*Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Msg("service: order not found for update")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for update")
		return nil, fmt.Errorf("service: failed to get order for update: %w", err)
	}

	newStatus := current.Status
	if input.Status != nil {
		parsed, err := ParseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		if parsed != current.Status {
			if !current.Status.CanTransitionTo(parsed) {
				log.Warn().
					Stringer("order_id", orderID).
					Stringer("current_status", current.Status).
					Stringer("new_status", parsed).
					Msg("service: invalid status transition attempt")
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, parsed)
			}
			newStatus = parsed
		}
	}

	hasTracking := input.TrackingCarrier != nil || input.TrackingNumber != nil || input.TrackingURL != nil
	if hasTracking && !newStatus.Shipped() {
		return nil, ErrTrackingNotAllowed
	}

	updated := *current
	updated.Status = newStatus
	if input.TrackingCarrier != nil {
		updated.TrackingCarrier = *input.TrackingCarrier
	}
	if input.TrackingNumber != nil {
		updated.TrackingNumber = *input.TrackingNumber
	}
	if input.TrackingURL != nil {
		updated.TrackingURL = *input.TrackingURL
	}
	if input.Notes != nil {
		updated.Notes = *input.Notes
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to update order")
		return nil, fmt.Errorf("service: failed to update order: %w", err)
	}

	log.Info().
		Stringer("order_id", orderID).
		Stringer("old_status", current.Status).
		Stringer("new_status", newStatus).
		Msg("service: order updated")
	return &updated, nil
}
