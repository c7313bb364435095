package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go-shop-api/internal/model"
)

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[string]model.Product)}
}

func (r *MemoryProductRepository) List(_ context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	r.mu.RLock()
	matched := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Matches(p, query) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Product) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	total := len(matched)
	if filter.Limit <= 0 {
		return matched, total, nil
	}

	page := max(filter.Page, 1)
	start := (page - 1) * filter.Limit
	if start >= total {
		return []model.Product{}, total, nil
	}
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	return p, nil
}

func (r *MemoryProductRepository) FindByIDs(_ context.Context, ids []string) (map[string]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func (r *MemoryProductRepository) Create(_ context.Context, p model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = p
	return nil
}

func (r *MemoryProductRepository) Update(_ context.Context, p model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[p.ID]
	if !ok {
		return model.ErrProductNotFound
	}
	p.CreatedAt = existing.CreatedAt
	r.products[p.ID] = p
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}
