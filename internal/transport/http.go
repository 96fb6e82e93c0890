package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dulzuras/storefront/internal/auth"
	"github.com/dulzuras/storefront/internal/cart"
	"github.com/dulzuras/storefront/internal/catalog"
	"github.com/dulzuras/storefront/internal/checkout"
	handler "github.com/dulzuras/storefront/internal/handler/http"
	"github.com/dulzuras/storefront/internal/notify"
	"github.com/dulzuras/storefront/internal/order"
)

type Deps struct {
	DB          *pgxpool.Pool
	CartStorage cart.Storage
	Sender      notify.Sender
	TemplateID  string
	Admins      auth.Allowlist
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	catalogRepo := catalog.NewRepository(deps.DB)
	catalogSvc := catalog.NewService(catalogRepo)

	orderRepo := order.NewRepository(deps.DB)
	orderSvc := order.NewService(orderRepo)

	checkoutSvc := checkout.NewService(orderSvc, deps.Sender, deps.TemplateID)

	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	cartHandler := handler.NewCartHandler(deps.CartStorage, catalogSvc)
	orderHandler := handler.NewOrderHandler(checkoutSvc, orderSvc, deps.CartStorage)

	catalogHandler.RegisterRoutes(r)
	cartHandler.RegisterRoutes(r)
	orderHandler.RegisterRoutes(r)

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(auth.RequireAdmin(deps.Admins))
		catalogHandler.RegisterAdminRoutes(admin)
		orderHandler.RegisterAdminRoutes(admin)
	})

	return r
}
