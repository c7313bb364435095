package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-shop-api/internal/model"
	"go-shop-api/internal/service"
)

type ProductHandler struct {
	service *service.CatalogService
}

func NewProductHandler(service *service.CatalogService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /products?q=&category=&min_price=&max_price=&page=&limit=.
// Prices are in cents.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	products, meta, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ProductList{Items: products}, meta)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, product, nil)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.ProductRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/products/"+product.ID)
	writeSuccess(w, http.StatusCreated, product, nil)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.ProductRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, product, nil)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseProductFilter(r *http.Request) (model.ProductFilter, error) {
	query := r.URL.Query()
	filter := model.ProductFilter{
		Query:    query.Get("q"),
		Category: query.Get("category"),
	}

	var err error
	if filter.Page, err = queryInt(r, "page"); err != nil {
		return model.ProductFilter{}, err
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		return model.ProductFilter{}, err
	}
	if filter.MinPriceCents, err = queryCents(r, "min_price"); err != nil {
		return model.ProductFilter{}, err
	}
	if filter.MaxPriceCents, err = queryCents(r, "max_price"); err != nil {
		return model.ProductFilter{}, err
	}

	return filter, nil
}
