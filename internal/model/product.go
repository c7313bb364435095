package model

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductFilter struct {
	Query         string
	Category      string
	MinPriceCents *int64
	MaxPriceCents *int64
	Page          int
	Limit         int
}

// Matches reports whether p passes every filter criterion except paging.
// Query is matched case-insensitively against name and description and
// must already be lower-cased.
func (f ProductFilter) Matches(p Product, loweredQuery string) bool {
	if f.Category != "" && !equalFold(p.Category, f.Category) {
		return false
	}
	if f.MinPriceCents != nil && p.PriceCents < *f.MinPriceCents {
		return false
	}
	if f.MaxPriceCents != nil && p.PriceCents > *f.MaxPriceCents {
		return false
	}
	if loweredQuery == "" {
		return true
	}
	return containsLower(p.Name, loweredQuery) || containsLower(p.Description, loweredQuery)
}

type ProductList struct {
	Items []Product `json:"items"`
}
