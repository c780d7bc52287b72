package catalog

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
)

// Color is a selectable variant owned by exactly one product. Variants are
// replaced wholesale when the product is edited and removed with it.
type Color struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Value     string    `json:"value" db:"value"`
}

// Length is the second variant dimension, a label like "18 inches".
type Length struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Label     string    `json:"label" db:"label"`
}

type Product struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Price       float64        `json:"price" db:"price"`
	Images      pq.StringArray `json:"images" db:"images"`
	Category    string         `json:"category" db:"category"`
	Featured    bool           `json:"featured" db:"featured"`
	Rating      float64        `json:"rating" db:"rating"`
	ReviewCount int            `json:"review_count" db:"review_count"`
	Stock       int            `json:"stock" db:"stock"`
	Colors      []Color        `json:"colors" db:"-"`
	Lengths     []Length       `json:"lengths" db:"-"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
