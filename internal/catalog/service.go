package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidProduct = errors.New("invalid product")

// UpdateInput carries an admin product edit. Nil variant slices mean "keep
// the current collection"; empty slices clear it.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *float64
	Images      []string
	Category    *string
	Featured    *bool
	Stock       *int
	Colors      *[]Color
	Lengths     *[]Length
}

type Service interface {
	ListProducts(ctx context.Context, opts ListOptions) ([]Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateInput) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListProducts(ctx context.Context, opts ListOptions) ([]Product, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}

	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, 0, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return p, nil
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if p.Name == "" || p.Category == "" {
		return nil, fmt.Errorf("name and category are required: %w", ErrInvalidProduct)
	}
	if p.Price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative: %w", ErrInvalidProduct)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateInput) (*Product, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to get product for update")
		return nil, fmt.Errorf("service: failed to get product for update: %w", err)
	}

	updated := *current
	if input.Name != nil {
		updated.Name = *input.Name
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, fmt.Errorf("price must be positive: %w", ErrInvalidProduct)
		}
		updated.Price = *input.Price
	}
	if input.Images != nil {
		updated.Images = input.Images
	}
	if input.Category != nil {
		updated.Category = *input.Category
	}
	if input.Featured != nil {
		updated.Featured = *input.Featured
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, fmt.Errorf("stock cannot be negative: %w", ErrInvalidProduct)
		}
		updated.Stock = *input.Stock
	}
	if input.Colors != nil {
		updated.Colors = *input.Colors
	}
	if input.Lengths != nil {
		updated.Lengths = *input.Lengths
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product updated")
	return &updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrProductOrdered) {
			return err
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product deleted")
	return nil
}
