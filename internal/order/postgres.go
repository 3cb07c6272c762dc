package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/events"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// client prices may drift by a rounding cent, not more
const priceTolerance = 0.01

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrder runs the whole write side of a submission in one transaction:
// per line it locks the product row, validates availability and price, and
// decrements stock with a conditional update (stock >= quantity), then writes
// the order, its lines and an order_created outbox event. Rows are locked in
// ascending product id order so two concurrent submissions cannot deadlock.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback()

	byProduct := make([]int, len(o.Lines))
	for i := range byProduct {
		byProduct[i] = i
	}
	sort.Slice(byProduct, func(a, b int) bool {
		return deref(o.Lines[byProduct[a]].ProductID) < deref(o.Lines[byProduct[b]].ProductID)
	})

	for _, i := range byProduct {
		line := &o.Lines[i]
		pid := deref(line.ProductID)

		var name string
		var price float64
		var stock int
		var active bool
		err := tx.QueryRowContext(ctx,
			`SELECT name, price, stock, active FROM products WHERE id = $1 FOR UPDATE`,
			pid).Scan(&name, &price, &stock, &active)
		if errors.Is(err, sql.ErrNoRows) {
			return &ProductUnavailableError{ProductID: pid, Name: line.ProductName}
		}
		if err != nil {
			return fmt.Errorf("lock product %d: %w", pid, err)
		}
		if !active {
			return &ProductUnavailableError{ProductID: pid, Name: name}
		}
		if stock < line.Quantity {
			return &StockError{ProductID: pid, Name: name, Requested: line.Quantity, Available: stock}
		}
		if math.Abs(line.UnitPrice-price) > priceTolerance {
			return &PriceMismatchError{ProductID: pid, Name: name, QuotedPrice: line.UnitPrice, Price: price}
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
			pid, line.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock for product %d: %w", pid, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			// cannot happen under the row lock, but the decrement stays conditional
			return &StockError{ProductID: pid, Name: name, Requested: line.Quantity, Available: stock}
		}

		// freeze authoritative name and price on the line
		line.ProductName = name
		line.UnitPrice = price
	}

	subtotal := 0.0
	for _, line := range o.Lines {
		subtotal += line.Subtotal()
	}
	o.Subtotal = round2(subtotal)
	o.Total = round2(subtotal + o.ShippingCost)

	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (customer_name, customer_email, customer_phone, customer_address,
		 postal_code, shipping_method, shipping_carrier, shipping_cost, subtotal, total,
		 created_at, status, paid, tracking_code, tracking_link, carrier_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.CustomerAddress,
		o.PostalCode, o.ShippingMethod, o.ShippingCarrier, o.ShippingCost, o.Subtotal, o.Total,
		o.CreatedAt, o.Status, o.Paid, o.TrackingCode, o.TrackingLink, o.CarrierName).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_lines (order_id, product_id, product_name, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			line.OrderID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := insertOutboxEvent(ctx, tx, o, events.TypeOrderCreated); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).Scan(orderFields(&o)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	lines, err := r.linesForOrders(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []interface{}{}

	if f.CustomerName != "" {
		args = append(args, "%"+f.CustomerName+"%")
		query += fmt.Sprintf(` AND customer_name ILIKE $%d`, len(args))
	}
	if !f.Day.IsZero() {
		dayStart := time.Date(f.Day.Year(), f.Day.Month(), f.Day.Day(), 0, 0, 0, 0, f.Day.Location())
		args = append(args, dayStart, dayStart.AddDate(0, 0, 1))
		query += fmt.Sprintf(` AND created_at >= $%d AND created_at < $%d`, len(args)-1, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []int64
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(orderFields(&o)...); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	lines, err := r.linesForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

// UpdateFulfillment persists the mutable post-creation fields and records a
// status-change outbox event in the same transaction. Line items are never
// touched here.
func (r *PostgresRepository) UpdateFulfillment(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fulfillment transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, paid = $3, tracking_code = $4, tracking_link = $5, carrier_name = $6
		 WHERE id = $1`,
		o.ID, o.Status, o.Paid, o.TrackingCode, o.TrackingLink, o.CarrierName)
	if err != nil {
		return fmt.Errorf("update order fulfillment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}

	if err := insertOutboxEvent(ctx, tx, o, events.TypeOrderStatusChanged); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fulfillment transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SalesMetrics(ctx context.Context) (*Metrics, error) {
	var m Metrics
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0), COUNT(*) FROM orders`).Scan(&m.TotalRevenue, &m.OrderCount)
	if err != nil {
		return nil, fmt.Errorf("query sales metrics: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE stock < 5 AND active`).Scan(&m.LowStockCount)
	if err != nil {
		return nil, fmt.Errorf("query low stock count: %w", err)
	}
	return &m, nil
}

// UnprocessedEvents and MarkEventProcessed implement events.Repository for
// the outbox publisher.
func (r *PostgresRepository) UnprocessedEvents(ctx context.Context, limit int) ([]*events.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload FROM outbox_events
		 WHERE NOT processed ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var out []*events.OutboxEvent
	for rows.Next() {
		var e events.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) MarkEventProcessed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET processed = TRUE, processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return nil
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, o *domain.Order, eventType string) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (id, aggregate_id, event_type, payload, processed, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, NOW())`,
		uuid.NewString(), fmt.Sprint(o.ID), eventType, payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) linesForOrders(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLine, error) {
	lines := make(map[int64][]domain.OrderLine, len(orderIDs))
	if len(orderIDs) == 0 {
		return lines, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price
		 FROM order_lines WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines[l.OrderID] = append(lines[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

const orderColumns = `id, customer_name, customer_email, customer_phone, customer_address,
	postal_code, shipping_method, shipping_carrier, shipping_cost, subtotal, total,
	created_at, status, paid, tracking_code, tracking_link, carrier_name`

func orderFields(o *domain.Order) []interface{} {
	return []interface{}{
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerAddress,
		&o.PostalCode, &o.ShippingMethod, &o.ShippingCarrier, &o.ShippingCost, &o.Subtotal, &o.Total,
		&o.CreatedAt, &o.Status, &o.Paid, &o.TrackingCode, &o.TrackingLink, &o.CarrierName,
	}
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
