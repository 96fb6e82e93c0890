package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulzuras/storefront/internal/cart"
	"github.com/dulzuras/storefront/internal/checkout"
	"github.com/dulzuras/storefront/internal/notify"
	"github.com/dulzuras/storefront/internal/order"
)

type mockOrderRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) (string, error)
	getByIDFunc      func(ctx context.Context, id string) (*order.Order, error)
	getByUserFunc    func(ctx context.Context, userID string) ([]order.Order, error)
	getAllFunc       func(ctx context.Context) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, orderID string, newStatus order.Status) error
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) (string, error) {
	return m.createFunc(ctx, o)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) GetByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return m.getByUserFunc(ctx, userID)
}

func (m *mockOrderRepository) GetAll(ctx context.Context) ([]order.Order, error) {
	return m.getAllFunc(ctx)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, orderID string, newStatus order.Status) error {
	return m.updateStatusFunc(ctx, orderID, newStatus)
}

func newOrderTestRouter(repo *mockOrderRepository, storage cart.Storage) (chi.Router, order.Service) {
	orders := order.NewService(repo)
	checkoutSvc := checkout.NewService(orders, notify.NopSender{}, "tpl_test")
	handler := NewOrderHandler(checkoutSvc, orders, storage)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	router.Route("/admin", func(r chi.Router) {
		handler.RegisterAdminRoutes(r)
	})
	return router, orders
}

func seedCart(t *testing.T, storage cart.Storage, key string, items []cart.Item) {
	t.Helper()
	raw, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, storage.Set(context.Background(), key, string(raw)))
}

func validFechaEntrega() string {
	return time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02")
}

func TestOrderHandler_Checkout(t *testing.T) {
	stock := 5
	lines := []cart.Item{
		{ProductID: "p1", Name: "Torta de Chocolate", Price: 28000, Size: "grande", Quantity: 1, ItemKey: "p1-grande"},
		{ProductID: "p2", Name: "Alfajores x6", Price: 5000, Quantity: 2, Stock: &stock, ItemKey: "p2"},
	}
	body := fmt.Sprintf(`{"fechaEntrega":%q,"nombre":"Ana Pérez","correo":"ana@example.com","telefono":"+56911111111"}`, validFechaEntrega())

	t.Run("Success", func(t *testing.T) {
		var created *order.Order
		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) (string, error) {
				created = o
				return "ord-1", nil
			},
		}
		storage := newMemStorage()
		seedCart(t, storage, "sess-1", lines)
		router, _ := newOrderTestRouter(repo, storage)

		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBufferString(body))
		req.Header.Set("X-Session-Id", "sess-1")
		req.Header.Set("X-User-Id", "user-1")
		req.Header.Set("X-User-Email", "ana@example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp SubmitResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ord-1", resp.OrderID)
		assert.False(t, resp.EmailWarning)

		require.NotNil(t, created)
		assert.True(t, created.IsCartOrder)
		assert.Equal(t, int64(38000), created.Total)
		assert.Equal(t, int64(19000), created.Abono)
		assert.Equal(t, "user-1", created.UserID)
		require.Len(t, created.Items, 2)
		assert.Equal(t, "p1", created.Items[0].ProductID)

		// El carrito se vacía sólo después del commit.
		reloaded := cart.Load(context.Background(), storage, "sess-1")
		assert.Empty(t, reloaded.Items())
	})

	t.Run("MissingSessionHeader", func(t *testing.T) {
		router, _ := newOrderTestRouter(&mockOrderRepository{}, newMemStorage())

		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		router, _ := newOrderTestRouter(&mockOrderRepository{}, newMemStorage())

		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBufferString(body))
		req.Header.Set("X-Session-Id", "sess-empty")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) (string, error) {
				return "", fmt.Errorf("%w for product %q", order.ErrInsufficientStock, "Alfajores x6")
			},
		}
		storage := newMemStorage()
		seedCart(t, storage, "sess-2", lines)
		router, _ := newOrderTestRouter(repo, storage)

		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBufferString(body))
		req.Header.Set("X-Session-Id", "sess-2")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)

		// Un pedido rechazado deja el carrito intacto.
		reloaded := cart.Load(context.Background(), storage, "sess-2")
		assert.Len(t, reloaded.Items(), 2)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		storage := newMemStorage()
		seedCart(t, storage, "sess-3", lines)
		router, _ := newOrderTestRouter(&mockOrderRepository{}, storage)

		cases := map[string]string{
			"BadDateFormat": `{"fechaEntrega":"25-12-2026","nombre":"Ana","correo":"ana@example.com","telefono":"+569"}`,
			"MissingNombre": fmt.Sprintf(`{"fechaEntrega":%q,"correo":"ana@example.com","telefono":"+569"}`, validFechaEntrega()),
			"UnknownField":  fmt.Sprintf(`{"fechaEntrega":%q,"nombre":"Ana","correo":"ana@example.com","telefono":"+569","extra":true}`, validFechaEntrega()),
			"NotJSON":       `not json`,
		}
		for name, payload := range cases {
			t.Run(name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBufferString(payload))
				req.Header.Set("X-Session-Id", "sess-3")
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)

				assert.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})
}

func TestOrderHandler_QuoteRequest(t *testing.T) {
	var created *order.Order
	repo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *order.Order) (string, error) {
			created = o
			return "ord-q1", nil
		},
	}
	router, _ := newOrderTestRouter(repo, newMemStorage())

	body := fmt.Sprintf(`{"tematica":"Dinosaurios","fechaEntrega":%q,"nombre":"Ana","correo":"ana@example.com","telefono":"+569"}`, validFechaEntrega())
	req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ord-q1", resp.OrderID)

	require.NotNil(t, created)
	assert.True(t, created.IsQuoteRequest)
	assert.Zero(t, created.Total)
	assert.Zero(t, created.Abono)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Cotización Personalizada", created.Items[0].Name)
	assert.Equal(t, "Por definir", created.Items[0].Sabor)
	assert.Equal(t, "N/A", created.Items[0].Invitados)
}

func TestOrderHandler_MyOrders(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		router, _ := newOrderTestRouter(&mockOrderRepository{}, newMemStorage())

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		repo := &mockOrderRepository{
			getByUserFunc: func(ctx context.Context, userID string) ([]order.Order, error) {
				assert.Equal(t, "user-1", userID)
				return []order.Order{{ID: "o1", Status: order.StatusPendiente}}, nil
			},
		}
		router, _ := newOrderTestRouter(repo, newMemStorage())

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var orders []order.Order
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
		require.Len(t, orders, 1)
		assert.Equal(t, "o1", orders[0].ID)
	})
}

func TestOrderHandler_AdminOrders(t *testing.T) {
	repo := &mockOrderRepository{
		getAllFunc: func(ctx context.Context) ([]order.Order, error) {
			return []order.Order{{ID: "o1"}, {ID: "o2"}}, nil
		},
	}
	router, _ := newOrderTestRouter(repo, newMemStorage())

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var orders []order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 2)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	existing := &order.Order{ID: "o1", UserID: "user-1", Status: order.StatusPendiente}

	t.Run("Success", func(t *testing.T) {
		var gotStatus order.Status
		repo := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id string) (*order.Order, error) {
				return existing, nil
			},
			updateStatusFunc: func(ctx context.Context, orderID string, newStatus order.Status) error {
				gotStatus = newStatus
				return nil
			},
		}
		router, _ := newOrderTestRouter(repo, newMemStorage())

		req := httptest.NewRequest(http.MethodPatch, "/admin/orders/o1/status", bytes.NewBufferString(`{"status":"listo"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, order.StatusListo, gotStatus)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		router, _ := newOrderTestRouter(&mockOrderRepository{}, newMemStorage())

		req := httptest.NewRequest(http.MethodPatch, "/admin/orders/o1/status", bytes.NewBufferString(`{"status":"enviado"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id string) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
		}
		router, _ := newOrderTestRouter(repo, newMemStorage())

		req := httptest.NewRequest(http.MethodPatch, "/admin/orders/missing/status", bytes.NewBufferString(`{"status":"listo"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
