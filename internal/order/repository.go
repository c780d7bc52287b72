package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatus      = errors.New("unrecognized order status")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAddressIncomplete  = errors.New("shipping address is incomplete")
	ErrTrackingNotAllowed = errors.New("tracking can only be set on shipped orders")
	ErrForbidden          = errors.New("order belongs to another user")
)

// Sort columns accepted from callers. Anything else falls back to the
// default ordering instead of reaching the SQL string.
var sortColumns = map[string]string{
	"status":     "status",
	"total":      "total",
	"created_at": "created_at",
}

// ListOptions narrows and pages order listings. A zero UserID means all
// users (admin view).
type ListOptions struct {
	UserID uuid.UUID
	Status Status
	Sort   string
	Order  string
	Page   int
	Limit  int
}

func orderBy(opts ListOptions) string {
	column, ok := sortColumns[opts.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if opts.Order == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, opts ListOptions) ([]Order, int, error)
	Update(ctx context.Context, order *Order) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create inserts the order header and all line items in one transaction so
// a partial failure cannot leave an order with missing items.
func (r *postgresRepository) Create(ctx context.Context, orderInput *Order) (err error) {
	if orderInput.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order id: %w", genErr)
		}
		orderInput.ID = genID
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderInput.ID).Msg("repository: failed to rollback order create")
			}
		}
	}()

	now := time.Now().UTC()
	orderInput.CreatedAt = now
	orderInput.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (id, user_id, status, subtotal, shipping_cost, tax, discount, total,
			shipping_address, payment_method, payment_last4, payment_brand, payment_email,
			tracking_carrier, tracking_number, tracking_url, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = tx.Exec(ctx, queryOrder,
		orderInput.ID,
		orderInput.UserID,
		string(orderInput.Status),
		orderInput.Subtotal,
		orderInput.ShippingCost,
		orderInput.Tax,
		orderInput.Discount,
		orderInput.Total,
		orderInput.ShippingAddress,
		orderInput.PaymentMethod,
		orderInput.PaymentLast4,
		orderInput.PaymentBrand,
		orderInput.PaymentEmail,
		orderInput.TrackingCarrier,
		orderInput.TrackingNumber,
		orderInput.TrackingURL,
		orderInput.Notes,
		orderInput.CreatedAt,
		orderInput.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, product_name, price, quantity, color, length, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i := range orderInput.Items {
		item := &orderInput.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item id: %w", genErr)
			return err
		}
		item.ID = itemID
		item.OrderID = orderInput.ID
		item.CreatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.Price,
			item.Quantity,
			item.Color,
			item.Length,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", orderInput.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit order create: %w", err)
	}
	return nil
}

const orderColumns = `id, user_id, status, subtotal, shipping_cost, tax, discount, total,
	shipping_address, payment_method, payment_last4, payment_brand, payment_email,
	tracking_carrier, tracking_number, tracking_url, notes, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.Subtotal,
		&o.ShippingCost,
		&o.Tax,
		&o.Discount,
		&o.Total,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.PaymentLast4,
		&o.PaymentBrand,
		&o.PaymentEmail,
		&o.TrackingCarrier,
		&o.TrackingNumber,
		&o.TrackingURL,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	queryOrder := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o Order
	err := scanOrder(r.db.QueryRow(ctx, queryOrder, orderID), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %s: %w", orderID, err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{orderID})
	if err != nil {
		return nil, err
	}
	o.Items = items[orderID]
	if o.Items == nil {
		o.Items = []Item{}
	}

	return &o, nil
}

func (r *postgresRepository) List(ctx context.Context, opts ListOptions) ([]Order, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if opts.UserID != uuid.Nil {
		args = append(args, opts.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count orders: %w", err)
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy(opts), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	var orderIDs []uuid.UUID
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = []Item{}
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return orders, total, nil
	}

	itemsByOrder, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = items
		}
	}

	return orders, total, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]Item, error) {
	query := `
		SELECT id, order_id, product_id, product_name, price, quantity, color, length, created_at
		FROM order_items
		WHERE order_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]Item)
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Price,
			&item.Quantity,
			&item.Color,
			&item.Length,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return result, nil
}

// Update persists the mutable header fields only. Line items are immutable
// after creation.
func (r *postgresRepository) Update(ctx context.Context, o *Order) error {
	query := `
		UPDATE orders
		SET status = $1, tracking_carrier = $2, tracking_number = $3, tracking_url = $4,
			notes = $5, updated_at = $6
		WHERE id = $7
	`
	cmdTag, err := r.db.Exec(ctx, query,
		string(o.Status),
		o.TrackingCarrier,
		o.TrackingNumber,
		o.TrackingURL,
		o.Notes,
		time.Now().UTC(),
		o.ID,
	)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("repository: failed to update order")
		return fmt.Errorf("repository: failed to update order %s: %w", o.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
