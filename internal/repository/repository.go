package repository

import (
	"context"

	"go-shop-api/internal/model"
)

// UserRepository stores accounts. Usernames are unique case-insensitively.
type UserRepository interface {
	Create(ctx context.Context, u model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error
}

// ProductRepository stores the catalog. List applies filter paging when
// filter.Limit is positive and always reports the unpaged total.
type ProductRepository interface {
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]model.Product, error)
	Create(ctx context.Context, p model.Product) error
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
}

// CartRepository stores cart lines per user. Each call is atomic with
// respect to other calls on the same cart.
type CartRepository interface {
	Items(ctx context.Context, userID string) ([]model.CartLine, error)
	// AddItem increments the line by qty, creating it when absent, and
	// returns the new quantity. It fails with model.ErrInsufficientStock and
	// leaves the line untouched when the result would exceed maxQty.
	AddItem(ctx context.Context, userID string, productID string, qty int, maxQty int) (int, error)
	SetQuantity(ctx context.Context, userID string, productID string, qty int) error
	RemoveItem(ctx context.Context, userID string, productID string) error
	Clear(ctx context.Context, userID string) error
}

var (
	_ UserRepository    = (*MemoryUserRepository)(nil)
	_ UserRepository    = (*PostgresUserRepository)(nil)
	_ ProductRepository = (*MemoryProductRepository)(nil)
	_ ProductRepository = (*PostgresProductRepository)(nil)
	_ CartRepository    = (*MemoryCartRepository)(nil)
	_ CartRepository    = (*PostgresCartRepository)(nil)
)
