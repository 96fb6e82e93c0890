// Package checkout implements the caller-side submission policy: build the
// order from the cart, commit it, and only then clear the cart and fire the
// best-effort customer notification.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dulzuras/storefront/internal/cart"
	"github.com/dulzuras/storefront/internal/notify"
	"github.com/dulzuras/storefront/internal/order"
)

var ErrEmptyCart = errors.New("checkout: cart is empty")

// Form carries the checkout contact data. UserID/UserEmail are set when the
// submitting actor is authenticated.
type Form struct {
	FechaEntrega time.Time
	Nombre       string
	Correo       string
	Telefono     string
	UserID       string
	UserEmail    string
}

// QuoteForm is the custom-design inquiry variant: no items, no price.
type QuoteForm struct {
	Tematica     string
	Sabor        string
	Invitados    string
	FechaEntrega time.Time
	Nombre       string
	Correo       string
	Telefono     string
	UserID       string
	UserEmail    string
}

// Result reports a committed order. EmailWarning is the soft signal that the
// order was saved but the confirmation email could not be sent.
type Result struct {
	OrderID      string
	EmailWarning bool
}

type Service struct {
	orders     order.Service
	sender     notify.Sender
	templateID string
}

func NewService(orders order.Service, sender notify.Sender, templateID string) *Service {
	return &Service{orders: orders, sender: sender, templateID: templateID}
}

// SubmitCartOrder converts the cart into an order. The cart is cleared only
// after the order transaction commits; a rejected order leaves it intact.
func (s *Service) SubmitCartOrder(ctx context.Context, c *cart.Cart, form Form) (Result, error) {
	items := c.Items()
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}

	orderItems := make([]order.Item, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Size:      it.Size,
			Quantity:  it.Quantity,
		})
	}

	total := c.Total()
	o := order.Order{
		Items:         orderItems,
		Total:         total,
		Abono:         total / 2,
		FechaEstimada: form.FechaEntrega,
		Cliente:       order.Customer{Nombre: form.Nombre, Correo: form.Correo, Telefono: form.Telefono},
		UserID:        form.UserID,
		UserEmail:     form.UserEmail,
		IsCartOrder:   true,
	}

	id, err := s.orders.Create(ctx, &o)
	if err != nil {
		return Result{}, err
	}

	c.Clear(ctx)
	return Result{OrderID: id, EmailWarning: s.notify(ctx, o)}, nil
}

// SubmitQuoteRequest persists a custom-design inquiry as a priceless order
// with a single descriptive pseudo-item.
func (s *Service) SubmitQuoteRequest(ctx context.Context, form QuoteForm) (Result, error) {
	sabor := form.Sabor
	if sabor == "" {
		sabor = "Por definir"
	}
	invitados := form.Invitados
	if invitados == "" {
		invitados = "N/A"
	}

	o := order.Order{
		Items: []order.Item{{
			Name:      "Cotización Personalizada",
			Tematica:  form.Tematica,
			Sabor:     sabor,
			Invitados: invitados,
		}},
		FechaEstimada:  form.FechaEntrega,
		Cliente:        order.Customer{Nombre: form.Nombre, Correo: form.Correo, Telefono: form.Telefono},
		UserID:         form.UserID,
		UserEmail:      form.UserEmail,
		IsQuoteRequest: true,
	}

	id, err := s.orders.Create(ctx, &o)
	if err != nil {
		return Result{}, err
	}

	return Result{OrderID: id, EmailWarning: s.notify(ctx, o)}, nil
}

// notify is best-effort: the order is already committed, so a send failure
// only raises the soft warning and is never propagated as an error.
func (s *Service) notify(ctx context.Context, o order.Order) bool {
	if err := s.sender.Send(ctx, s.templateID, notify.OrderParams(o)); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("checkout: confirmation email failed, order already saved")
		return true
	}
	return false
}
