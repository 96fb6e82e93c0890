package order_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulzuras/storefront/internal/order"
)

type mockRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) (string, error)
	getByIDFunc      func(ctx context.Context, id string) (*order.Order, error)
	getByUserFunc    func(ctx context.Context, userID string) ([]order.Order, error)
	getAllFunc       func(ctx context.Context) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, orderID string, newStatus order.Status) error
}

func (m *mockRepository) Create(ctx context.Context, o *order.Order) (string, error) {
	return m.createFunc(ctx, o)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) GetByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return m.getByUserFunc(ctx, userID)
}

func (m *mockRepository) GetAll(ctx context.Context) ([]order.Order, error) {
	return m.getAllFunc(ctx)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, orderID string, newStatus order.Status) error {
	return m.updateStatusFunc(ctx, orderID, newStatus)
}

func validOrder() *order.Order {
	return &order.Order{
		Items: []order.Item{
			{ProductID: "P1", Name: "Torta de Chocolate", Price: 20000, Size: "grande", Quantity: 1},
		},
		Total:         20000,
		FechaEstimada: time.Now().UTC().AddDate(0, 0, 10),
		Cliente:       order.Customer{Nombre: "Ana", Correo: "ana@example.com", Telefono: "3001234567"},
		IsCartOrder:   true,
	}
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(o *order.Order)
		createFunc func(ctx context.Context, o *order.Order) (string, error)
		wantErr    bool
		wantErrIs  error
	}{
		{
			name:    "empty_items",
			mutate:  func(o *order.Order) { o.Items = nil },
			wantErr: true,
		},
		{
			name:    "missing_cliente_nombre",
			mutate:  func(o *order.Order) { o.Cliente.Nombre = "" },
			wantErr: true,
		},
		{
			name:    "missing_cliente_telefono",
			mutate:  func(o *order.Order) { o.Cliente.Telefono = "" },
			wantErr: true,
		},
		{
			name:    "fecha_below_lead_time",
			mutate:  func(o *order.Order) { o.FechaEstimada = time.Now().UTC().AddDate(0, 0, 3) },
			wantErr: true,
		},
		{
			name:    "negative_total",
			mutate:  func(o *order.Order) { o.Total = -100 },
			wantErr: true,
		},
		{
			name:    "zero_quantity_item",
			mutate:  func(o *order.Order) { o.Items[0].Quantity = 0 },
			wantErr: true,
		},
		{
			name: "insufficient_stock_from_repository",
			createFunc: func(ctx context.Context, o *order.Order) (string, error) {
				return "", fmt.Errorf("%w for %q: available 2", order.ErrInsufficientStock, "Torta de Chocolate")
			},
			wantErr:   true,
			wantErrIs: order.ErrInsufficientStock,
		},
		{
			name: "product_missing_from_repository",
			createFunc: func(ctx context.Context, o *order.Order) (string, error) {
				return "", fmt.Errorf("%w: %q", order.ErrProductNotFound, "Torta de Chocolate")
			},
			wantErr:   true,
			wantErrIs: order.ErrProductNotFound,
		},
		{
			name: "success",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createFunc := tt.createFunc
			if createFunc == nil {
				createFunc = func(ctx context.Context, o *order.Order) (string, error) {
					return "order-1", nil
				}
			}
			svc := order.NewService(&mockRepository{createFunc: createFunc})

			o := validOrder()
			if tt.mutate != nil {
				tt.mutate(o)
			}

			id, err := svc.Create(context.Background(), o)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				assert.Empty(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "order-1", id)
		})
	}
}

func TestService_Create_RecomputesAbono(t *testing.T) {
	var persisted order.Order
	svc := order.NewService(&mockRepository{
		createFunc: func(ctx context.Context, o *order.Order) (string, error) {
			persisted = *o
			return "order-1", nil
		},
	})

	o := validOrder()
	o.Total = 30000
	o.Abono = 99999 // el cliente no decide el abono

	_, err := svc.Create(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), persisted.Abono)
}

func TestService_Create_QuoteRequestHasNoPrice(t *testing.T) {
	var persisted order.Order
	svc := order.NewService(&mockRepository{
		createFunc: func(ctx context.Context, o *order.Order) (string, error) {
			persisted = *o
			return "quote-1", nil
		},
	})

	o := &order.Order{
		Items: []order.Item{
			{Name: "Cotización Personalizada", Tematica: "Dinosaurios", Sabor: "Por definir", Invitados: "20"},
		},
		Total:          55000, // ignorado para cotizaciones
		Abono:          1,
		FechaEstimada:  time.Now().UTC().AddDate(0, 0, 14),
		Cliente:        order.Customer{Nombre: "Ana", Correo: "ana@example.com", Telefono: "3001234567"},
		IsQuoteRequest: true,
	}

	id, err := svc.Create(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "quote-1", id)
	assert.Equal(t, int64(0), persisted.Total)
	assert.Equal(t, int64(0), persisted.Abono)
}

func TestService_UpdateStatus(t *testing.T) {
	existing := &order.Order{ID: "order-1", UserID: "u1", Status: order.StatusPendiente}

	t.Run("invalid_status", func(t *testing.T) {
		svc := order.NewService(&mockRepository{})
		err := svc.UpdateStatus(context.Background(), "order-1", "enviado")
		assert.ErrorIs(t, err, order.ErrInvalidStatus)
	})

	t.Run("order_not_found", func(t *testing.T) {
		svc := order.NewService(&mockRepository{
			getByIDFunc: func(ctx context.Context, id string) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
		})
		err := svc.UpdateStatus(context.Background(), "missing", order.StatusListo)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("any_enum_status_is_accepted", func(t *testing.T) {
		// No hay grafo de transiciones: entregado puede volver a pendiente.
		for _, status := range []order.Status{
			order.StatusPendiente, order.StatusEnProceso, order.StatusListo, order.StatusEntregado, order.StatusCancelado,
		} {
			var gotStatus order.Status
			svc := order.NewService(&mockRepository{
				getByIDFunc: func(ctx context.Context, id string) (*order.Order, error) {
					return existing, nil
				},
				updateStatusFunc: func(ctx context.Context, orderID string, newStatus order.Status) error {
					gotStatus = newStatus
					return nil
				},
			})

			require.NoError(t, svc.UpdateStatus(context.Background(), "order-1", status))
			assert.Equal(t, status, gotStatus)
		}
	})
}

func TestService_GetUserOrders_SortedByCreatedAtDesc(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := order.NewService(&mockRepository{
		getByUserFunc: func(ctx context.Context, userID string) ([]order.Order, error) {
			// el repositorio no garantiza orden
			return []order.Order{
				{ID: "a", CreatedAt: base},
				{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
				{ID: "b", CreatedAt: base.Add(time.Hour)},
			}, nil
		},
	})

	orders, err := svc.GetUserOrders(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "c", orders[0].ID)
	assert.Equal(t, "b", orders[1].ID)
	assert.Equal(t, "a", orders[2].ID)
}
