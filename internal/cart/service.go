package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("cart line not found")
)

type Service interface {
	Get(cartID string) (*Cart, error)
	Add(cartID string, line Line) (*Cart, error)
	UpdateQuantity(cartID string, key LineKey, quantity int) (*Cart, error)
	Remove(cartID string, key LineKey) (*Cart, error)
	Clear(cartID string) error
}

type service struct {
	storage Storage
}

func NewService(storage Storage) Service {
	return &service{storage: storage}
}

func (s *service) Get(cartID string) (*Cart, error) {
	return s.load(cartID)
}

// Add merges the line into an existing one when the (product, color, length)
// tuple matches, otherwise appends it. The full cart is persisted after
// every mutation.
func (s *service) Add(cartID string, line Line) (*Cart, error) {
	if line.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if line.ProductID == uuid.Nil {
		return nil, fmt.Errorf("cart: product id is required: %w", ErrLineNotFound)
	}

	c, err := s.load(cartID)
	if err != nil {
		return nil, err
	}

	if i := c.find(line.Key()); i >= 0 {
		c.Lines[i].Quantity += line.Quantity
	} else {
		c.Lines = append(c.Lines, line)
	}

	if err := s.save(cartID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateQuantity(cartID string, key LineKey, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.load(cartID)
	if err != nil {
		return nil, err
	}

	i := c.find(key)
	if i < 0 {
		return nil, ErrLineNotFound
	}
	c.Lines[i].Quantity = quantity

	if err := s.save(cartID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Remove(cartID string, key LineKey) (*Cart, error) {
	c, err := s.load(cartID)
	if err != nil {
		return nil, err
	}

	i := c.find(key)
	if i < 0 {
		return nil, ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)

	if err := s.save(cartID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Clear(cartID string) error {
	if err := s.storage.Delete(cartID); err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Msg("cart: failed to clear cart")
		return fmt.Errorf("cart: failed to clear cart: %w", err)
	}
	return nil
}

func (s *service) load(cartID string) (*Cart, error) {
	data, err := s.storage.Get(cartID)
	if err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Msg("cart: failed to load cart")
		return nil, fmt.Errorf("cart: failed to load cart: %w", err)
	}
	if data == nil {
		return &Cart{Lines: []Line{}}, nil
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		// A corrupted entry behaves like an empty cart rather than locking
		// the session out of shopping.
		log.Warn().Err(err).Str("cart_id", cartID).Msg("cart: discarding unreadable cart")
		return &Cart{Lines: []Line{}}, nil
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return &c, nil
}

func (s *service) save(cartID string, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: failed to encode cart: %w", err)
	}
	if err := s.storage.Put(cartID, data); err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Msg("cart: failed to persist cart")
		return fmt.Errorf("cart: failed to persist cart: %w", err)
	}
	return nil
}
