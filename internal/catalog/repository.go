package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductOrdered  = errors.New("product is referenced by existing orders")
)

// Sort columns accepted from callers. Anything else falls back to the
// default ordering instead of reaching the SQL string.
var sortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"category":   "category",
	"rating":     "rating",
	"created_at": "created_at",
}

type ListOptions struct {
	Category string
	Featured *bool
	Sort     string
	Order    string
	Page     int
	Limit    int
}

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context, opts ListOptions) ([]Product, int, error) {
	where := " WHERE 1=1"
	args := []any{}

	if opts.Category != "" {
		args = append(args, "%"+opts.Category+"%")
		where += fmt.Sprintf(" AND category ILIKE $%d", len(args))
	}
	if opts.Featured != nil {
		args = append(args, *opts.Featured)
		where += fmt.Sprintf(" AND featured = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM products`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	column, ok := sortColumns[opts.Sort]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if opts.Order == "desc" {
		direction = "DESC"
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	query := fmt.Sprintf(`SELECT * FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, column, direction, len(args)-1, len(args))

	products := make([]Product, 0)
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query products: %w", err)
	}

	if err := r.loadVariants(ctx, products); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %s: %w", id, err)
	}

	products := []Product{p}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *postgresRepository) loadVariants(ctx context.Context, products []Product) error {
	for i := range products {
		products[i].Colors = []Color{}
		products[i].Lengths = []Length{}
	}
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
		index[products[i].ID] = i
	}

	query, args, err := sqlx.In(`SELECT id, product_id, name, value FROM product_colors WHERE product_id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to build colors query: %w", err)
	}
	colors := make([]Color, 0)
	if err := r.db.SelectContext(ctx, &colors, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("repository: failed to query product colors: %w", err)
	}
	for _, c := range colors {
		i := index[c.ProductID]
		products[i].Colors = append(products[i].Colors, c)
	}

	query, args, err = sqlx.In(`SELECT id, product_id, label FROM product_lengths WHERE product_id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to build lengths query: %w", err)
	}
	lengths := make([]Length, 0)
	if err := r.db.SelectContext(ctx, &lengths, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("repository: failed to query product lengths: %w", err)
	}
	for _, l := range lengths {
		i := index[l.ProductID]
		products[i].Lengths = append(products[i].Lengths, l)
	}

	return nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) (err error) {
	if p.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate product id: %w", genErr)
		}
		p.ID = genID
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", p.ID).Msg("repository: failed to rollback product create")
			}
		}
	}()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, images, category, featured, rating, review_count, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Name, p.Description, p.Price, p.Images, p.Category, p.Featured, p.Rating, p.ReviewCount, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	if err = insertVariants(ctx, tx, p); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit product create: %w", err)
	}
	return nil
}

// Update rewrites the product row and replaces both variant collections
// with the ones on p, all inside one transaction.
func (r *postgresRepository) Update(ctx context.Context, p *Product) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", p.ID).Msg("repository: failed to rollback product update")
			}
		}
	}()

	p.UpdatedAt = time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, images = $4, category = $5,
			featured = $6, rating = $7, review_count = $8, stock = $9, updated_at = $10
		WHERE id = $11`,
		p.Name, p.Description, p.Price, p.Images, p.Category, p.Featured, p.Rating, p.ReviewCount, p.Stock, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read update result: %w", err)
	}
	if affected == 0 {
		err = ErrProductNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM product_colors WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("repository: failed to delete product colors: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM product_lengths WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("repository: failed to delete product lengths: %w", err)
	}
	if err = insertVariants(ctx, tx, p); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit product update: %w", err)
	}
	return nil
}

func insertVariants(ctx context.Context, tx *sqlx.Tx, p *Product) error {
	for i := range p.Colors {
		color := &p.Colors[i]
		colorID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate color id: %w", err)
		}
		color.ID = colorID
		color.ProductID = p.ID
		_, err = tx.ExecContext(ctx, `INSERT INTO product_colors (id, product_id, name, value) VALUES ($1, $2, $3, $4)`,
			color.ID, color.ProductID, color.Name, color.Value)
		if err != nil {
			return fmt.Errorf("repository: failed to insert product color: %w", err)
		}
	}
	for i := range p.Lengths {
		length := &p.Lengths[i]
		lengthID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate length id: %w", err)
		}
		length.ID = lengthID
		length.ProductID = p.ID
		_, err = tx.ExecContext(ctx, `INSERT INTO product_lengths (id, product_id, label) VALUES ($1, $2, $3)`,
			length.ID, length.ProductID, length.Label)
		if err != nil {
			return fmt.Errorf("repository: failed to insert product length: %w", err)
		}
	}
	return nil
}

// Delete removes the product and its variants unless any order item still
// references it, which would break historical orders.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	var exists bool
	err = r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to check order references for product %s: %w", id, err)
	}
	if exists {
		return ErrProductOrdered
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", id).Msg("repository: failed to rollback product delete")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM product_colors WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("repository: failed to delete product colors: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM product_lengths WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("repository: failed to delete product lengths: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read delete result: %w", err)
	}
	if affected == 0 {
		err = ErrProductNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit product delete: %w", err)
	}
	return nil
}
