package service

import (
	"context"
	"errors"
	"fmt"

	"go-shop-api/internal/model"
	"go-shop-api/internal/repository"
	"go-shop-api/pkg/apierror"
)

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get joins the stored lines with current product data. Lines whose product
// no longer exists are left out of the result.
func (s *CartService) Get(ctx context.Context, userID string) (model.Cart, error) {
	lines, err := s.carts.Items(ctx, userID)
	if err != nil {
		return model.Cart{}, err
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return model.Cart{}, err
	}

	cart := model.Cart{UserID: userID, Items: make([]model.CartItem, 0, len(lines))}
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		subtotal := product.PriceCents * int64(line.Quantity)
		cart.Items = append(cart.Items, model.CartItem{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       line.Quantity,
			SubtotalCents:  subtotal,
		})
		cart.ItemCount += line.Quantity
		cart.TotalCents += subtotal
	}

	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, productID string, qty int) (model.Cart, error) {
	if qty < 1 {
		return model.Cart{}, apierror.BadRequest("invalid quantity", "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return model.Cart{}, err
	}

	if _, err := s.carts.AddItem(ctx, userID, product.ID, qty, product.Stock); err != nil {
		return model.Cart{}, stockError(err, product)
	}

	return s.Get(ctx, userID)
}

// UpdateItem sets the line quantity. Zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID string, productID string, qty int) (model.Cart, error) {
	if qty < 0 {
		return model.Cart{}, apierror.BadRequest("invalid quantity", "quantity must not be negative")
	}
	if qty == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return model.Cart{}, err
	}
	if qty > product.Stock {
		return model.Cart{}, stockError(model.ErrInsufficientStock, product)
	}

	if err := s.carts.SetQuantity(ctx, userID, productID, qty); err != nil {
		return model.Cart{}, err
	}

	return s.Get(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID string) (model.Cart, error) {
	if err := s.carts.RemoveItem(ctx, userID, productID); err != nil {
		return model.Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) (model.Cart, error) {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return model.Cart{}, err
	}
	return model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
}

func stockError(err error, product model.Product) error {
	if errors.Is(err, model.ErrInsufficientStock) {
		return fmt.Errorf("%w: %d of %q available", model.ErrInsufficientStock, product.Stock, product.Name)
	}
	return err
}
