package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-shop-api/internal/model"
	"go-shop-api/internal/repository"
	"go-shop-api/pkg/apierror"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, *model.Meta, error) {
	if filter.MinPriceCents != nil && filter.MaxPriceCents != nil && *filter.MinPriceCents > *filter.MaxPriceCents {
		return nil, nil, apierror.BadRequest("invalid price range", "min_price must not exceed max_price")
	}

	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Page = max(filter.Page, 1)
	switch {
	case filter.Limit < 1:
		filter.Limit = DefaultPageLimit
	case filter.Limit > MaxPageLimit:
		filter.Limit = MaxPageLimit
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	return products, model.NewMeta(filter.Page, filter.Limit, total), nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (model.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, req model.ProductRequest) (model.Product, error) {
	if err := validateProduct(&req); err != nil {
		return model.Product{}, err
	}

	now := time.Now().UTC()
	product := model.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return model.Product{}, err
	}

	slog.Info("product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, req model.ProductRequest) (model.Product, error) {
	if err := validateProduct(&req); err != nil {
		return model.Product{}, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.PriceCents = req.PriceCents
	product.Stock = req.Stock
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return model.Product{}, err
	}
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("product deleted", "product_id", id)
	return nil
}

func validateProduct(req *model.ProductRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)

	switch {
	case req.Name == "":
		return apierror.BadRequest("invalid product", "name is required")
	case req.PriceCents < 0:
		return apierror.BadRequest("invalid product", fmt.Sprintf("price_cents must not be negative, got %d", req.PriceCents))
	case req.Stock < 0:
		return apierror.BadRequest("invalid product", fmt.Sprintf("stock must not be negative, got %d", req.Stock))
	}
	return nil
}
