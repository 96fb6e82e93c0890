package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	Create(ctx context.Context, o *Order) (string, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUser(ctx context.Context, userID string) ([]Order, error)
	GetAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, newStatus Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create valida el stock y escribe el pedido dentro de una sola transacción.
// El stock se relee dentro de la transacción pero NO se descuenta: el actor
// que envía el pedido no tiene permiso de escritura sobre products, así que
// dos pedidos concurrentes por la última unidad pueden pasar ambos. Es una
// carrera conocida y aceptada, no la "arregles" aquí.
func (r *postgresRepository) Create(ctx context.Context, orderInput *Order) (orderID string, err error) {
	genID, genErr := uuid.NewV4()
	if genErr != nil {
		return "", fmt.Errorf("repository: failed to generate order ID: %w", genErr)
	}
	finalOrderID := genID.String()

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return "", fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Str("order_id_attempted", finalOrderID).Msg("repository: failed to rollback order transaction")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	// 1. Releer el stock de cada producto referenciado.
	for _, item := range orderInput.Items {
		if item.ProductID == "" {
			// pseudo-ítems de cotización no referencian producto
			continue
		}

		var stock *int
		err = tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, item.ProductID).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				err = fmt.Errorf("%w: %q", ErrProductNotFound, item.Name)
				return "", err
			}
			err = fmt.Errorf("repository: failed to read stock for product %s: %w", item.ProductID, err)
			return "", err
		}
		if stock != nil && *stock < item.Quantity {
			err = fmt.Errorf("%w for %q: available %d", ErrInsufficientStock, item.Name, *stock)
			return "", err
		}

		// 2. Descuento de stock deshabilitado (ver comentario de arriba).
	}

	// 3. Crear el documento del pedido.
	createdAt := time.Now().UTC()
	orderInput.ID = finalOrderID
	orderInput.Status = StatusPendiente
	orderInput.CreatedAt = createdAt
	orderInput.UpdatedAt = createdAt

	query := `
		INSERT INTO pedidos (id, user_id, user_email, status, total, abono, fecha_estimada, cliente, items, is_cart_order, is_quote_request, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Exec(ctx, query,
		finalOrderID,
		nullable(orderInput.UserID),
		nullable(orderInput.UserEmail),
		string(orderInput.Status),
		orderInput.Total,
		orderInput.Abono,
		orderInput.FechaEstimada,
		orderInput.Cliente,
		orderInput.Items,
		orderInput.IsCartOrder,
		orderInput.IsQuoteRequest,
		createdAt,
		createdAt,
	)
	if err != nil {
		err = fmt.Errorf("repository: failed to insert order: %w", err)
		return "", err
	}

	return finalOrderID, nil
}

const orderColumns = `id, user_id, user_email, status, total, abono, fecha_estimada, cliente, items, is_cart_order, is_quote_request, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var userID, userEmail *string
	err := row.Scan(
		&o.ID,
		&userID,
		&userEmail,
		&o.Status,
		&o.Total,
		&o.Abono,
		&o.FechaEstimada,
		&o.Cliente,
		&o.Items,
		&o.IsCartOrder,
		&o.IsQuoteRequest,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}
	if userID != nil {
		o.UserID = *userID
	}
	if userEmail != nil {
		o.UserEmail = *userEmail
	}
	return o, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM pedidos WHERE id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}
	return &o, nil
}

// GetByUser deliberately omits ORDER BY: the original store could not
// guarantee an index for filter + sort, so ordering is the caller's job.
func (r *postgresRepository) GetByUser(ctx context.Context, userID string) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM pedidos WHERE user_id = $1`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user %s: %w", userID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user %s: %w", userID, err)
	}
	return orders, nil
}

func (r *postgresRepository) GetAll(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM pedidos ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query all orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}
	return orders, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID string, newStatus Status) error {
	query := `UPDATE pedidos SET status = $1, updated_at = $2 WHERE id = $3`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
