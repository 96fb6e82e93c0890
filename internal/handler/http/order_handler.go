package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dulzuras/storefront/internal/auth"
	"github.com/dulzuras/storefront/internal/cart"
	"github.com/dulzuras/storefront/internal/checkout"
	"github.com/dulzuras/storefront/internal/order"
)

type CheckoutRequest struct {
	FechaEntrega string `json:"fechaEntrega" validate:"required,datetime=2006-01-02"`
	Nombre       string `json:"nombre" validate:"required"`
	Correo       string `json:"correo" validate:"required,email"`
	Telefono     string `json:"telefono" validate:"required"`
}

type QuoteRequest struct {
	Tematica     string `json:"tematica" validate:"required"`
	Sabor        string `json:"sabor"`
	Invitados    string `json:"invitados"`
	FechaEntrega string `json:"fechaEntrega" validate:"required,datetime=2006-01-02"`
	Nombre       string `json:"nombre" validate:"required"`
	Correo       string `json:"correo" validate:"required,email"`
	Telefono     string `json:"telefono" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type SubmitResponse struct {
	OrderID      string `json:"orderId"`
	EmailWarning bool   `json:"emailWarning,omitempty"`
}

type OrderHandler struct {
	checkout *checkout.Service
	orders   order.Service
	storage  cart.Storage
	validate *validator.Validate
}

func NewOrderHandler(checkoutSvc *checkout.Service, orders order.Service, storage cart.Storage) *OrderHandler {
	return &OrderHandler{
		checkout: checkoutSvc,
		orders:   orders,
		storage:  storage,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/checkout", h.handleCheckout)
	router.Post("/quotes", h.handleQuoteRequest)
	router.Get("/orders", h.handleMyOrders)
	router.Get("/orders/stream", h.handleOrderStream)
}

func (h *OrderHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/orders", h.handleAdminOrders)
	router.Patch("/orders/{id}/status", h.handleUpdateStatus)
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-Id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "X-Session-Id header is required")
		return
	}

	var req CheckoutRequest
	if ok := h.decode(w, r, &req); !ok {
		return
	}
	fecha, _ := time.Parse("2006-01-02", req.FechaEntrega)

	actor := auth.FromRequest(r)
	c := cart.Load(r.Context(), h.storage, sessionID)

	result, err := h.checkout.SubmitCartOrder(r.Context(), c, checkout.Form{
		FechaEntrega: fecha,
		Nombre:       req.Nombre,
		Correo:       req.Correo,
		Telefono:     req.Telefono,
		UserID:       actor.ID,
		UserEmail:    actor.Email,
	})
	if err != nil {
		log.Warn().Err(err).Msg("handler: checkout rejected")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, SubmitResponse{OrderID: result.OrderID, EmailWarning: result.EmailWarning})
}

func (h *OrderHandler) handleQuoteRequest(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if ok := h.decode(w, r, &req); !ok {
		return
	}
	fecha, _ := time.Parse("2006-01-02", req.FechaEntrega)

	actor := auth.FromRequest(r)
	result, err := h.checkout.SubmitQuoteRequest(r.Context(), checkout.QuoteForm{
		Tematica:     req.Tematica,
		Sabor:        req.Sabor,
		Invitados:    req.Invitados,
		FechaEntrega: fecha,
		Nombre:       req.Nombre,
		Correo:       req.Correo,
		Telefono:     req.Telefono,
		UserID:       actor.ID,
		UserEmail:    actor.Email,
	})
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, SubmitResponse{OrderID: result.OrderID, EmailWarning: result.EmailWarning})
}

func (h *OrderHandler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromRequest(r)
	if actor.Anonymous() {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.orders.GetUserOrders(r.Context(), actor.ID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to fetch orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

// handleOrderStream expone la suscripción en vivo como Server-Sent Events.
func (h *OrderHandler) handleOrderStream(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromRequest(r)
	if actor.Anonymous() {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.orders.SubscribeToUserOrders(r.Context(), actor.ID)
	defer sub.Cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case err := <-sub.Err:
			log.Warn().Err(err).Str("user_id", actor.ID).Msg("handler: order stream error")
			fmt.Fprint(w, "event: error\ndata: subscription failed\n\n")
			flusher.Flush()
			return
		case orders, open := <-sub.Orders:
			if !open {
				return
			}
			payload, err := json.Marshal(orders)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *OrderHandler) handleAdminOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetAllOrders(r.Context())
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to fetch orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if ok := h.decode(w, r, &req); !ok {
		return
	}

	err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
