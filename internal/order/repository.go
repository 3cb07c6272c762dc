package order

import (
	"context"
	"time"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

// ListFilter narrows the admin order listing.
type ListFilter struct {
	CustomerName string
	Day          time.Time // zero means no date filter; otherwise match that calendar day
}

// Metrics is the back-office sales summary.
type Metrics struct {
	TotalRevenue  float64 `json:"total_revenue"`
	OrderCount    int     `json:"order_count"`
	LowStockCount int     `json:"low_stock_count"`
}

// Repository persists orders. CreateOrder is the critical operation: it must
// validate stock, decrement it conditionally, price the lines from the
// catalog and write the order, its lines and the outbox event in a single
// transaction. Either everything lands or nothing does.
type Repository interface {
	CreateOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]domain.Order, error)
	UpdateFulfillment(ctx context.Context, o *domain.Order) error
	SalesMetrics(ctx context.Context) (*Metrics, error)
}
