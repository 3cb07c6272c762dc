package review

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Review is customer feedback on a product; it never touches the order
// pipeline.
type Review struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClampRating forces a rating into the 1-5 star range.
func ClampRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

type Store interface {
	AddReview(ctx context.Context, r *Review) error
	ListReviews(ctx context.Context, productID int64) ([]Review, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) AddReview(ctx context.Context, r *Review) error {
	r.Rating = ClampRating(r.Rating)
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO reviews (product_id, customer_name, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`,
		r.ProductID, r.CustomerName, r.Rating, r.Comment).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, productID int64) ([]Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, customer_name, rating, comment, created_at
		 FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.CustomerName, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reviews, nil
}
