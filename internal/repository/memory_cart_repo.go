package repository

import (
	"context"
	"sync"

	"go-shop-api/internal/model"
)

// MemoryCartRepository keeps lines in insertion order per user.
type MemoryCartRepository struct {
	mu    sync.Mutex
	carts map[string][]model.CartLine
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: make(map[string][]model.CartLine)}
}

func (r *MemoryCartRepository) Items(_ context.Context, userID string) ([]model.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := make([]model.CartLine, len(r.carts[userID]))
	copy(lines, r.carts[userID])
	return lines, nil
}

func (r *MemoryCartRepository) AddItem(_ context.Context, userID string, productID string, qty int, maxQty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.carts[userID]
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if qty > maxQty-lines[i].Quantity {
			return 0, model.ErrInsufficientStock
		}
		lines[i].Quantity += qty
		return lines[i].Quantity, nil
	}

	if qty > maxQty {
		return 0, model.ErrInsufficientStock
	}
	r.carts[userID] = append(lines, model.CartLine{ProductID: productID, Quantity: qty})
	return qty, nil
}

func (r *MemoryCartRepository) SetQuantity(_ context.Context, userID string, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = qty
			return nil
		}
	}
	return model.ErrCartItemNotFound
}

func (r *MemoryCartRepository) RemoveItem(_ context.Context, userID string, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			r.carts[userID] = append(lines[:i:i], lines[i+1:]...)
			if len(r.carts[userID]) == 0 {
				delete(r.carts, userID)
			}
			return nil
		}
	}
	return model.ErrCartItemNotFound
}

func (r *MemoryCartRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
