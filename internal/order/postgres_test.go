package order

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/events"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/postgres"
)

func setupTestDB(t *testing.T) (*PostgresRepository, *sql.DB, func()) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := postgres.Open(&postgres.Credentials{
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	})
	require.NoError(t, err)

	require.NoError(t, postgres.RunMigrations(db, "../../migrations"))

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return NewPostgresRepository(db), db, cleanup
}

func seedProduct(t *testing.T, db *sql.DB, name string, stock int, price float64, active bool) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(
		`INSERT INTO products (name, category, stock, price, active) VALUES ($1, 'cap', $2, $3, $4) RETURNING id`,
		name, stock, price, active).Scan(&id)
	require.NoError(t, err)
	return id
}

func productStock(t *testing.T, db *sql.DB, id int64) int {
	t.Helper()
	var stock int
	require.NoError(t, db.QueryRow(`SELECT stock FROM products WHERE id = $1`, id).Scan(&stock))
	return stock
}

func draftOrder(lines ...domain.OrderLine) *domain.Order {
	return &domain.Order{
		CustomerName:  "Juan Perez",
		CustomerEmail: "juan@example.com",
		ShippingCost:  30,
		CreatedAt:     time.Now(),
		Status:        domain.StatusPending,
		Lines:         lines,
	}
}

func line(productID int64, qty int, price float64) domain.OrderLine {
	return domain.OrderLine{ProductID: &productID, Quantity: qty, UnitPrice: price}
}

func TestCreateOrderDecrementsStockAndPrices(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gorra := seedProduct(t, db, "Gorra trucker", 10, 100, true)
	lentes := seedProduct(t, db, "Lentes aviador", 5, 50, true)

	o := draftOrder(line(gorra, 2, 100), line(lentes, 1, 50))
	require.NoError(t, repo.CreateOrder(ctx, o))

	assert.NotZero(t, o.ID)
	assert.InDelta(t, 250.0, o.Subtotal, 0.001)
	assert.InDelta(t, 280.0, o.Total, 0.001)
	assert.Equal(t, 8, productStock(t, db, gorra))
	assert.Equal(t, 4, productStock(t, db, lentes))

	// names are frozen from the catalog, not trusted from the cart
	fetched, err := repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Lines, 2)
	assert.Equal(t, "Gorra trucker", fetched.Lines[0].ProductName)

	pending, err := repo.UnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, events.TypeOrderCreated, pending[0].EventType)
}

func TestCreateOrderInsufficientStockIsAllOrNothing(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gorra := seedProduct(t, db, "Gorra", 10, 100, true)
	lentes := seedProduct(t, db, "Lentes", 1, 50, true)

	o := draftOrder(line(gorra, 2, 100), line(lentes, 3, 50))
	err := repo.CreateOrder(ctx, o)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, lentes, stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// the first line's decrement rolled back too
	assert.Equal(t, 10, productStock(t, db, gorra))
	assert.Equal(t, 1, productStock(t, db, lentes))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count))
	assert.Zero(t, count)
}

func TestCreateOrderRejectsInactiveAndMissingProducts(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	retired := seedProduct(t, db, "Medias viejas", 10, 20, false)

	var unavailable *ProductUnavailableError
	err := repo.CreateOrder(ctx, draftOrder(line(retired, 1, 20)))
	require.ErrorAs(t, err, &unavailable)

	err = repo.CreateOrder(ctx, draftOrder(line(99999, 1, 20)))
	require.ErrorAs(t, err, &unavailable)
}

func TestCreateOrderRejectsPriceDrift(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gorra := seedProduct(t, db, "Gorra", 10, 120, true)

	err := repo.CreateOrder(ctx, draftOrder(line(gorra, 1, 100)))
	var mismatch *PriceMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.InDelta(t, 120.0, mismatch.Price, 0.001)
	assert.Equal(t, 10, productStock(t, db, gorra))
}

func TestCreateOrderToleratesRoundingCent(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gorra := seedProduct(t, db, "Gorra", 10, 99.99, true)

	o := draftOrder(line(gorra, 1, 100.00))
	require.NoError(t, repo.CreateOrder(ctx, o))
	// server price wins on the stored line
	assert.InDelta(t, 99.99, o.Lines[0].UnitPrice, 0.001)
}

func TestConcurrentOrdersCannotOversell(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gorra := seedProduct(t, db, "Gorra", 1, 100, true)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateOrder(ctx, draftOrder(line(gorra, 1, 100)))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			var stockErr *StockError
			assert.ErrorAs(t, err, &stockErr)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, productStock(t, db, gorra))
}

func TestUpdateFulfillmentPersistsAndEmitsEvent(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gorra := seedProduct(t, db, "Gorra", 10, 100, true)
	o := draftOrder(line(gorra, 1, 100))
	require.NoError(t, repo.CreateOrder(ctx, o))

	o.Status = domain.StatusShipped
	o.Paid = true
	o.TrackingCode = "ABC123"
	require.NoError(t, repo.UpdateFulfillment(ctx, o))

	fetched, err := repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, fetched.Status)
	assert.True(t, fetched.Paid)
	assert.Equal(t, "ABC123", fetched.TrackingCode)

	pending, err := repo.UnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, events.TypeOrderStatusChanged, pending[1].EventType)

	require.NoError(t, repo.MarkEventProcessed(ctx, pending[0].ID))
	pending, err = repo.UnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestUpdateFulfillmentMissingOrder(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	o := &domain.Order{ID: 12345, Status: domain.StatusShipped}
	assert.ErrorIs(t, repo.UpdateFulfillment(context.Background(), o), ErrOrderNotFound)
}

func TestListOrdersFilters(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gorra := seedProduct(t, db, "Gorra", 100, 100, true)

	juan := draftOrder(line(gorra, 1, 100))
	require.NoError(t, repo.CreateOrder(ctx, juan))

	maria := draftOrder(line(gorra, 1, 100))
	maria.CustomerName = "Maria Gomez"
	maria.CreatedAt = time.Now().AddDate(0, 0, -2)
	require.NoError(t, repo.CreateOrder(ctx, maria))

	all, err := repo.ListOrders(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := repo.ListOrders(ctx, ListFilter{CustomerName: "maria"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Maria Gomez", byName[0].CustomerName)

	today, err := repo.ListOrders(ctx, ListFilter{Day: time.Now()})
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "Juan Perez", today[0].CustomerName)
	require.Len(t, today[0].Lines, 1)
}

func TestSalesMetrics(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gorra := seedProduct(t, db, "Gorra", 100, 100, true)
	seedProduct(t, db, "Casi agotado", 2, 50, true)
	seedProduct(t, db, "Agotado inactivo", 0, 50, false)

	o := draftOrder(line(gorra, 2, 100))
	require.NoError(t, repo.CreateOrder(ctx, o))

	m, err := repo.SalesMetrics(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 230.0, m.TotalRevenue, 0.001)
	assert.Equal(t, 1, m.OrderCount)
	// only active products count toward low stock
	assert.Equal(t, 1, m.LowStockCount)
}

func TestGetOrderNotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetOrder(context.Background(), 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
