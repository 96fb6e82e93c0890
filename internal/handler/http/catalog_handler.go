package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dulzuras/storefront/internal/catalog"
)

type ProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category" validate:"required,oneof=tortas vasos alfajores"`
	Price       *int64           `json:"price"`
	Sizes       map[string]int64 `json:"sizes"`
	Stock       *int             `json:"stock"`
	ImageURL    string           `json:"imageUrl"`
	Images      []string         `json:"images"`
	FlavorTags  []string         `json:"flavorTags"`
	IsFeatured  bool             `json:"isFeatured"`
}

func (req ProductRequest) toDoc() catalog.Doc {
	return catalog.Doc{
		Name:        req.Name,
		Description: req.Description,
		Category:    catalog.Category(req.Category),
		Price:       req.Price,
		Sizes:       req.Sizes,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Images:      req.Images,
		FlavorTags:  req.FlavorTags,
		IsFeatured:  req.IsFeatured,
	}
}

type CatalogHandler struct {
	service  catalog.Service
	validate *validator.Validate
}

func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleGetProducts)
	router.Get("/products/featured", h.handleGetFeatured)
	router.Get("/products/{id}", h.handleGetProduct)
}

func (h *CatalogHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/products", h.handleCreateProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *CatalogHandler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	filter := catalog.Filter{Category: catalog.Category(r.URL.Query().Get("category"))}

	products, err := h.service.GetProducts(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list products")
		respondWithError(w, mapErrorToStatusCode(err), "failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleGetFeatured(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	products, err := h.service.GetFeaturedProducts(r.Context(), count)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list featured products")
		respondWithError(w, mapErrorToStatusCode(err), "failed to list featured products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		respondWithError(w, mapErrorToStatusCode(err), "failed to fetch product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	id, err := h.service.CreateProduct(r.Context(), req.toDoc())
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *CatalogHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	if err := h.service.UpdateProduct(r.Context(), id, req.toDoc()); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var req ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}
