package shipping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrOptionNotFound = errors.New("shipping option not found")

// Option is a flat-rate shipping choice managed by the operator. It backs the
// checkout when the carrier quote is unavailable or not configured.
type Option struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Active bool    `json:"active"`
}

type OptionStore interface {
	ListOptions(ctx context.Context, includeInactive bool) ([]Option, error)
	CreateOption(ctx context.Context, o *Option) error
	UpdateOption(ctx context.Context, o *Option) error
	SetOptionActive(ctx context.Context, id int64, active bool) error
}

type PostgresOptionStore struct {
	db *sql.DB
}

func NewPostgresOptionStore(db *sql.DB) *PostgresOptionStore {
	return &PostgresOptionStore{db: db}
}

func (s *PostgresOptionStore) ListOptions(ctx context.Context, includeInactive bool) ([]Option, error) {
	query := `SELECT id, name, price, active FROM shipping_options`
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query shipping options: %w", err)
	}
	defer rows.Close()

	var options []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.Name, &o.Price, &o.Active); err != nil {
			return nil, fmt.Errorf("scan shipping option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return options, nil
}

func (s *PostgresOptionStore) CreateOption(ctx context.Context, o *Option) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO shipping_options (name, price, active) VALUES ($1, $2, $3) RETURNING id`,
		o.Name, o.Price, o.Active).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert shipping option: %w", err)
	}
	return nil
}

func (s *PostgresOptionStore) UpdateOption(ctx context.Context, o *Option) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE shipping_options SET name = $2, price = $3 WHERE id = $1`,
		o.ID, o.Name, o.Price)
	if err != nil {
		return fmt.Errorf("update shipping option: %w", err)
	}
	return requireOptionRow(res)
}

func (s *PostgresOptionStore) SetOptionActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE shipping_options SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set shipping option active: %w", err)
	}
	return requireOptionRow(res)
}

func requireOptionRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrOptionNotFound
	}
	return nil
}
