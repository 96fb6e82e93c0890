package order

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPendiente Status = "pendiente"
	StatusEnProceso Status = "en_proceso"
	StatusListo     Status = "listo"
	StatusEntregado Status = "entregado"
	StatusCancelado Status = "cancelado"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendiente, StatusEnProceso, StatusListo, StatusEntregado, StatusCancelado:
		return true
	}
	return false
}

// MinLeadDays es el plazo mínimo de entrega: hoy + 7 días.
const MinLeadDays = 7

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product no longer exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid order status")
)

type Customer struct {
	Nombre   string `json:"nombre"`
	Correo   string `json:"correo"`
	Telefono string `json:"telefono"`
}

// Item is a value snapshot of a cart line at submission time. Quote requests
// carry a single pseudo-item with no product id and no price; Tematica,
// Sabor and Invitados only apply to those.
type Item struct {
	ProductID string `json:"id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	Tematica  string `json:"tematica,omitempty"`
	Sabor     string `json:"sabor,omitempty"`
	Invitados string `json:"invitados,omitempty"`
}

type Order struct {
	ID             string    `json:"id"`
	Items          []Item    `json:"items"`
	Total          int64     `json:"total"`
	Abono          int64     `json:"abono"`
	FechaEstimada  time.Time `json:"fechaEstimada"`
	Cliente        Customer  `json:"cliente"`
	UserID         string    `json:"userId,omitempty"`
	UserEmail      string    `json:"userEmail,omitempty"`
	IsCartOrder    bool      `json:"isCartOrder,omitempty"`
	IsQuoteRequest bool      `json:"isQuoteRequest,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
