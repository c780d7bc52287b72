package cart

import (
	"github.com/gofrs/uuid"
)

// LineKey identifies a cart line. Adding the same product with the same
// selected options merges into the existing line instead of appending.
type LineKey struct {
	ProductID uuid.UUID `json:"product_id"`
	Color     string    `json:"color"`
	Length    string    `json:"length"`
}

type Line struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Color       string    `json:"color,omitempty"`
	Length      string    `json:"length,omitempty"`
}

func (l Line) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Color: l.Color, Length: l.Length}
}

// Cart is the pre-purchase collection of selected lines for one browsing
// session. It lives only in the cart store and is never joined to server
// state until checkout.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) find(key LineKey) int {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			return i
		}
	}
	return -1
}
