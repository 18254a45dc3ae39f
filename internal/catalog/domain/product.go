package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UpdateCategoryInput carries a partial update, nil fields are left untouched.
type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type Product struct {
	ID               int64           `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Slug             string          `json:"slug" db:"slug"`
	SKU              string          `json:"sku" db:"sku"`
	Description      string          `json:"description" db:"description"`
	ShortDescription string          `json:"short_description" db:"short_description"`
	Price            money.Money     `json:"price" db:"price"`
	DiscountPrice    *money.Money    `json:"discount_price,omitempty" db:"discount_price"`
	StockQuantity    int64           `json:"stock_quantity" db:"stock_quantity"`
	CategoryID       int64           `json:"category_id" db:"category_id"`
	ImageUrl         string          `json:"image_url" db:"image_url"`
	Images           []string        `json:"images" db:"images"`
	IsActive         bool            `json:"is_active" db:"is_active"`
	IsFeatured       bool            `json:"is_featured" db:"is_featured"`
	Rating           decimal.Decimal `json:"rating" db:"rating"`
	ReviewCount      int32           `json:"review_count" db:"review_count"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// FinalPrice is the discounted price when one is set and actually lower than
// the list price.
func (p *Product) FinalPrice() money.Money {
	if p.DiscountPrice != nil && p.DiscountPrice.Cmp(p.Price) < 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

// UpdateProductInput carries a partial update, nil fields are left untouched.
// Rating and review count are derived elsewhere and not writable here.
type UpdateProductInput struct {
	Name             *string      `json:"name"`
	Slug             *string      `json:"slug"`
	Description      *string      `json:"description"`
	ShortDescription *string      `json:"short_description"`
	Price            *money.Money `json:"price"`
	DiscountPrice    *money.Money `json:"discount_price"`
	StockQuantity    *int64       `json:"stock_quantity"`
	CategoryID       *int64       `json:"category_id"`
	ImageUrl         *string      `json:"image_url"`
	Images           []string     `json:"images"`
	IsActive         *bool        `json:"is_active"`
	IsFeatured       *bool        `json:"is_featured"`
}
