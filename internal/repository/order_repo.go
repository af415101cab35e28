package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/sisterly-service/internal/booking"
	"github.com/senyabanana/sisterly-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const orderColumns = `id, product_id, user_id, state, price, date_start, date_end,
	date_begin_order, date_end_order, delivery_mode, created_at, updated_at`

// OrderRepository - интерфейс для работы с заказами.
type OrderRepository interface {
	GetOrderById(ctx context.Context, orderId string) (*models.Order, error)
	GetConfirmedOrders(ctx context.Context, productId string, period booking.DateRange) ([]models.Order, error)
	HasConfirmedOrderAt(ctx context.Context, productId string, day time.Time) (bool, error)
	GetProductOffers(ctx context.Context, productId string, state models.OrderState, limit, offset int) ([]models.Order, error)
	GetUserOrders(ctx context.Context, userId string, states []models.OrderState) ([]models.Order, error)
	InTx(ctx context.Context, fn func(tx OrderTx) error) error
}

// OrderTx - операции с заказами внутри одной транзакции.
type OrderTx interface {
	GetProductForUpdate(ctx context.Context, productId string) (*models.Product, error)
	GetOrderForUpdate(ctx context.Context, orderId string) (*models.Order, error)
	HasConfirmedOrderAt(ctx context.Context, productId string, day time.Time) (bool, error)
	HasConfirmedOrderWithin(ctx context.Context, productId string, period booking.DateRange) (bool, error)
	GetPendingOverlapping(ctx context.Context, productId, excludeOrderId string, period booking.DateRange) ([]models.Order, error)
	CreateOrder(ctx context.Context, order models.Order) (*models.Order, error)
	UpdateOrderState(ctx context.Context, orderId string, state models.OrderState) (*models.Order, error)
	DeleteOrders(ctx context.Context, orderIds []string) error
}

// PostgresOrderRepository - реализация OrderRepository для базы данных.
type PostgresOrderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresOrderRepository создает новый экземпляр PostgresOrderRepository.
func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(
		&o.ID,
		&o.ProductID,
		&o.UserID,
		&o.State,
		&o.Price,
		&o.DateStart,
		&o.DateEnd,
		&o.DateBeginOrder,
		&o.DateEndOrder,
		&o.DeliveryMode,
		&o.CreatedAt,
		&o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func getOrder(ctx context.Context, q querier, orderId string, forUpdate bool) (*models.Order, error) {
	if _, err := uuid.Parse(orderId); err != nil {
		return nil, nil
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, query, orderId))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func hasConfirmedOrderAt(ctx context.Context, q querier, productId string, day time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE product_id = $1 AND state = ANY($2) AND date_start <= $3 AND date_end >= $3
		)`, productId, pq.Array(models.OrderStateCodes(models.ConfirmedOrderStates)), booking.DateOf(day)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check confirmed orders: %w", err)
	}
	return exists, nil
}

// GetOrderById возвращает заказ или nil, если его нет.
func (r *PostgresOrderRepository) GetOrderById(ctx context.Context, orderId string) (*models.Order, error) {
	return getOrder(ctx, r.DB, orderId, false)
}

// GetConfirmedOrders возвращает подтвержденные заказы, пересекающие период.
func (r *PostgresOrderRepository) GetConfirmedOrders(ctx context.Context, productId string, period booking.DateRange) ([]models.Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE product_id = $1 AND state = ANY($2) AND date_start <= $4 AND date_end >= $3
		ORDER BY date_start`,
		productId, pq.Array(models.OrderStateCodes(models.ConfirmedOrderStates)), period.Start, period.End)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// HasConfirmedOrderAt проверяет, занят ли день подтвержденным заказом.
func (r *PostgresOrderRepository) HasConfirmedOrderAt(ctx context.Context, productId string, day time.Time) (bool, error) {
	return hasConfirmedOrderAt(ctx, r.DB, productId, day)
}

// GetProductOffers возвращает заказы товара в указанном состоянии.
func (r *PostgresOrderRepository) GetProductOffers(ctx context.Context, productId string, state models.OrderState, limit, offset int) ([]models.Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE product_id = $1 AND state = $2
		ORDER BY created_at
		LIMIT $3 OFFSET $4`, productId, state, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// GetUserOrders возвращает заказы пользователя в указанных состояниях.
func (r *PostgresOrderRepository) GetUserOrders(ctx context.Context, userId string, states []models.OrderState) ([]models.Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 AND state = ANY($2)
		ORDER BY date_start`, userId, pq.Array(models.OrderStateCodes(states)))
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// InTx выполняет fn в транзакции.
func (r *PostgresOrderRepository) InTx(ctx context.Context, fn func(tx OrderTx) error) error {
	return inTx(ctx, r.DB, func(tx pgx.Tx) error {
		return fn(&postgresOrderTx{tx: tx})
	})
}

type postgresOrderTx struct {
	tx pgx.Tx
}

// GetProductForUpdate блокирует строку товара до конца транзакции.
func (t *postgresOrderTx) GetProductForUpdate(ctx context.Context, productId string) (*models.Product, error) {
	return getProduct(ctx, t.tx, productId, true)
}

// GetOrderForUpdate блокирует строку заказа до конца транзакции.
func (t *postgresOrderTx) GetOrderForUpdate(ctx context.Context, orderId string) (*models.Order, error) {
	return getOrder(ctx, t.tx, orderId, true)
}

func (t *postgresOrderTx) HasConfirmedOrderAt(ctx context.Context, productId string, day time.Time) (bool, error) {
	return hasConfirmedOrderAt(ctx, t.tx, productId, day)
}

// HasConfirmedOrderWithin проверяет пересечение периода с подтвержденными заказами.
func (t *postgresOrderTx) HasConfirmedOrderWithin(ctx context.Context, productId string, period booking.DateRange) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE product_id = $1 AND state = ANY($2) AND date_start <= $4 AND date_end >= $3
		)`, productId, pq.Array(models.OrderStateCodes(models.ConfirmedOrderStates)), period.Start, period.End).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check confirmed orders: %w", err)
	}
	return exists, nil
}

// GetPendingOverlapping возвращает ожидающие заказы товара, пересекающие период.
func (t *postgresOrderTx) GetPendingOverlapping(ctx context.Context, productId, excludeOrderId string, period booking.DateRange) ([]models.Order, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE product_id = $1 AND id <> $2 AND state = $3 AND date_start <= $5 AND date_end >= $4
		ORDER BY created_at
		FOR UPDATE`,
		productId, excludeOrderId, models.WaitingForAcceptanceOrder, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// CreateOrder сохраняет новое предложение в состоянии WAITING_FOR_ACCEPTANCE.
func (t *postgresOrderTx) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	now := time.Now().UTC()
	order.ID = uuid.New().String()
	order.State = models.WaitingForAcceptanceOrder
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID,
		order.ProductID,
		order.UserID,
		order.State,
		order.Price,
		order.DateStart,
		order.DateEnd,
		order.DateBeginOrder,
		order.DateEndOrder,
		order.DeliveryMode,
		order.CreatedAt,
		order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", mapError(err))
	}
	return &order, nil
}

// UpdateOrderState меняет состояние заказа.
func (t *postgresOrderTx) UpdateOrderState(ctx context.Context, orderId string, state models.OrderState) (*models.Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx, `
		UPDATE orders SET state = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+orderColumns, state, orderId))
	if err != nil {
		return nil, fmt.Errorf("failed to update order state: %w", err)
	}
	return o, nil
}

// DeleteOrders удаляет заказы по списку идентификаторов.
func (t *postgresOrderTx) DeleteOrders(ctx context.Context, orderIds []string) error {
	if len(orderIds) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id = ANY($1)`, pq.Array(orderIds))
	if err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	return nil
}
