package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dulzuras/storefront/internal/cart"
	"github.com/dulzuras/storefront/internal/catalog"
)

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Size      string `json:"size"`
}

// Delta puede ser cualquier entero, incluido 0 (no-op); por eso no lleva
// reglas de validación.
type UpdateItemRequest struct {
	Delta int `json:"delta"`
}

type CartResponse struct {
	Items     []cart.Item `json:"items"`
	CartTotal int64       `json:"cartTotal"`
	CartCount int         `json:"cartCount"`
	OpenPanel bool        `json:"openPanel,omitempty"`
}

type CartHandler struct {
	storage  cart.Storage
	catalog  catalog.Service
	validate *validator.Validate
}

func NewCartHandler(storage cart.Storage, catalogSvc catalog.Service) *CartHandler {
	return &CartHandler{
		storage:  storage,
		catalog:  catalogSvc,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart/items", h.handleAddItem)
	router.Patch("/cart/items/{itemKey}", h.handleUpdateItem)
	router.Delete("/cart/items/{itemKey}", h.handleRemoveItem)
	router.Delete("/cart", h.handleClearCart)
}

// loadCart resuelve el carrito de la sesión. Cada sesión de navegación es
// dueña exclusiva de su carrito; la llave viene en X-Session-Id.
func (h *CartHandler) loadCart(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	sessionID := r.Header.Get("X-Session-Id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "X-Session-Id header is required")
		return nil, false
	}
	return cart.Load(r.Context(), h.storage, sessionID), true
}

func cartResponse(c *cart.Cart, openPanel bool) CartResponse {
	return CartResponse{
		Items:     c.Items(),
		CartTotal: c.Total(),
		CartCount: c.Count(),
		OpenPanel: openPanel,
	}
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, cartResponse(c, false))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.GetProductByID(r.Context(), req.ProductID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "product not found")
		return
	}

	opened, err := c.Add(r.Context(), product, req.Quantity, req.Size)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, cartResponse(c, opened))
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := c.UpdateQuantity(r.Context(), chi.URLParam(r, "itemKey"), req.Delta); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, cartResponse(c, false))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	c.Remove(r.Context(), chi.URLParam(r, "itemKey"))
	respondWithJSON(w, http.StatusOK, cartResponse(c, false))
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	c.Clear(r.Context())
	respondWithJSON(w, http.StatusOK, cartResponse(c, false))
}
