package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

type Service interface {
	Create(ctx context.Context, orderInput *Order) (string, error)
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]Order, error)
	GetAllOrders(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, newStatus Status) error
	SubscribeToUserOrders(ctx context.Context, userID string) *Subscription
}

type service struct {
	repo Repository
	hub  *hub
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		hub:  newHub(),
		now:  time.Now,
	}
}

// Create valida el payload y delega en la transacción del repositorio. El
// estado inicial y el timestamp los estampa el repositorio, nunca el cliente.
func (s *service) Create(ctx context.Context, orderInput *Order) (string, error) {
	if len(orderInput.Items) == 0 {
		return "", errors.New("service: order must contain at least one item")
	}
	if orderInput.Cliente.Nombre == "" || orderInput.Cliente.Correo == "" || orderInput.Cliente.Telefono == "" {
		return "", errors.New("service: cliente nombre, correo and telefono are required")
	}

	minDate := s.now().UTC().AddDate(0, 0, MinLeadDays).Truncate(24 * time.Hour)
	if orderInput.FechaEstimada.Before(minDate) {
		return "", fmt.Errorf("service: fecha estimada must be at least %d days out", MinLeadDays)
	}

	if orderInput.IsQuoteRequest {
		// Una cotización todavía no tiene precio.
		orderInput.Total = 0
		orderInput.Abono = 0
	} else {
		if orderInput.Total < 0 {
			return "", errors.New("service: order total cannot be negative")
		}
		for _, item := range orderInput.Items {
			if item.Quantity < 1 {
				return "", fmt.Errorf("service: quantity for %q must be at least 1", item.Name)
			}
			if item.Price < 0 {
				return "", fmt.Errorf("service: price for %q cannot be negative", item.Name)
			}
		}
		// El abono es regla de negocio fija: 50% del total.
		orderInput.Abono = orderInput.Total / 2
	}

	orderInput.ID = ""

	id, err := s.repo.Create(ctx, orderInput)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrInsufficientStock) {
			log.Warn().Err(err).Msg("service: order rejected by stock validation")
			return "", err
		}
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return "", fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Str("order_id", id).Str("user_id", orderInput.UserID).Bool("quote", orderInput.IsQuoteRequest).Msg("service: order created")
	s.hub.publish(orderInput.UserID)
	return id, nil
}

func (s *service) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) GetUserOrders(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	sortByCreatedDesc(orders)
	return orders, nil
}

func (s *service) GetAllOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch all orders")
		return nil, fmt.Errorf("service: failed to fetch all orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus es administrativo y deliberadamente no valida el grafo de
// transiciones: cualquier estado del enum puede seguir a cualquier otro.
func (s *service) UpdateStatus(ctx context.Context, orderID string, newStatus Status) error {
	if !newStatus.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Str("order_id", orderID).Str("old_status", current.Status.String()).Str("new_status", newStatus.String()).Msg("service: order status updated")
	s.hub.publish(current.UserID)
	return nil
}

// SubscribeToUserOrders emite el conjunto completo de pedidos del usuario en
// cada cambio, ordenado por fecha de creación descendente en este lado.
func (s *service) SubscribeToUserOrders(ctx context.Context, userID string) *Subscription {
	ordersCh := make(chan []Order)
	errCh := make(chan error, 1)
	sub := &Subscription{
		Orders: ordersCh,
		Err:    errCh,
		cancel: make(chan struct{}),
	}

	subID, events := s.hub.subscribe(userID)

	go func() {
		defer s.hub.unsubscribe(userID, subID)
		defer close(ordersCh)

		deliver := func() bool {
			orders, err := s.repo.GetByUser(ctx, userID)
			if err != nil {
				select {
				case errCh <- fmt.Errorf("subscription: failed to fetch orders: %w", err):
				default:
				}
				return false
			}
			sortByCreatedDesc(orders)

			select {
			case <-sub.cancel:
				return false
			default:
			}
			select {
			case ordersCh <- orders:
				return true
			case <-sub.cancel:
				return false
			case <-ctx.Done():
				return false
			}
		}

		if !deliver() {
			return
		}
		for {
			select {
			case <-sub.cancel:
				return
			case <-ctx.Done():
				return
			case <-events:
				if !deliver() {
					return
				}
			}
		}
	}()

	return sub
}

func sortByCreatedDesc(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
