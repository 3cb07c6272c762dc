package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `id, name, category, description, photos, stock, price,
	weight_g, height_cm, width_cm, length_cm, active`

func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, f Filter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}

	if !f.IncludeInactive {
		query += ` AND active`
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d)`, len(args), len(args))
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *domain.Product) error {
	photosJSON, err := json.Marshal(photosOrEmpty(p.Photos))
	if err != nil {
		return fmt.Errorf("marshal product photos: %w", err)
	}

	query := `INSERT INTO products (name, category, description, photos, stock, price,
	          weight_g, height_cm, width_cm, length_cm, active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	err = s.db.QueryRowContext(ctx, query,
		p.Name, p.Category, p.Description, photosJSON, p.Stock, p.Price,
		p.WeightG, p.HeightCM, p.WidthCM, p.LengthCM, p.Active).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *domain.Product) error {
	photosJSON, err := json.Marshal(photosOrEmpty(p.Photos))
	if err != nil {
		return fmt.Errorf("marshal product photos: %w", err)
	}

	query := `UPDATE products SET name = $2, category = $3, description = $4, photos = $5,
	          stock = $6, price = $7, weight_g = $8, height_cm = $9, width_cm = $10,
	          length_cm = $11 WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Category, p.Description, photosJSON, p.Stock, p.Price,
		p.WeightG, p.HeightCM, p.WidthCM, p.LengthCM)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func photosOrEmpty(photos []string) []string {
	if photos == nil {
		return []string{}
	}
	return photos
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var photosJSON []byte
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Description,
		&photosJSON,
		&p.Stock,
		&p.Price,
		&p.WeightG,
		&p.HeightCM,
		&p.WidthCM,
		&p.LengthCM,
		&p.Active,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(photosJSON, &p.Photos); err != nil {
		return nil, fmt.Errorf("unmarshal product photos: %w", err)
	}
	return &p, nil
}
