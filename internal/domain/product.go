package domain

import "time"

// Product represents a sellable item in the catalog. Prices are canonical USD;
// CostPrice is the seller's cost basis used for profit reporting.
type Product struct {
	ID          string            `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	Price       float64           `json:"price" db:"price"`
	CostPrice   float64           `json:"cost_price" db:"cost_price"`
	Category    string            `json:"category" db:"category"`
	ImageURL    string            `json:"image_url" db:"image_url"`
	Rating      float64           `json:"rating" db:"rating"`
	Description string            `json:"description" db:"description"`
	IsNew       bool              `json:"is_new,omitempty" db:"is_new"`
	IsExclusive bool              `json:"is_exclusive,omitempty" db:"is_exclusive"`
	Colors      []string          `json:"colors,omitempty"`
	Stock       int               `json:"stock" db:"stock"`
	SellerID    string            `json:"seller_id,omitempty" db:"seller_id"`
	SellerName  string            `json:"seller_name,omitempty" db:"seller_name"`
	VideoURL    string            `json:"video_url,omitempty" db:"video_url"`
	XPGain      int               `json:"xp_gain,omitempty" db:"xp_gain"`
	Specs       map[string]string `json:"specs,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at,omitempty" db:"updated_at"`
}

// CartItem is a product snapshot plus a quantity. The cart holds at most one
// entry per product ID; adding an existing product increments its quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price times quantity for this entry.
func (c CartItem) LineTotal() float64 {
	return c.Product.Price * float64(c.Quantity)
}

// LineProfit returns (price - cost) times quantity for this entry.
func (c CartItem) LineProfit() float64 {
	return (c.Product.Price - c.Product.CostPrice) * float64(c.Quantity)
}
