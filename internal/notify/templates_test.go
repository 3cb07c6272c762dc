package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

var testStore = StoreInfo{
	StoreName:      "Estilo Fachero",
	Bank:           "Mercado Pago",
	Alias:          "ESTILO.FACHERO",
	Holder:         "Yamila Luciana Serrano",
	WhatsAppNumber: "+54 9 11 5555 0000",
	WhatsAppLink:   "https://wa.me/5491155550000",
}

func testOrder() *domain.Order {
	pid := int64(1)
	return &domain.Order{
		ID:              42,
		CustomerName:    "Juan Perez",
		CustomerEmail:   "juan@example.com",
		ShippingMethod:  domain.ShippingHomeDelivery,
		ShippingCarrier: "Correo Argentino",
		ShippingCost:    30,
		Subtotal:        250,
		Total:           280,
		Status:          domain.StatusPending,
		Lines: []domain.OrderLine{
			{ProductID: &pid, ProductName: "Gorra trucker", Quantity: 2, UnitPrice: 100},
			{ProductName: "Lentes aviador", Quantity: 1, UnitPrice: 50},
		},
	}
}

func TestRenderConfirmation(t *testing.T) {
	body, err := renderConfirmation(testStore, testOrder(), true)
	require.NoError(t, err)

	assert.Contains(t, body, "Juan Perez")
	assert.Contains(t, body, "Gorra trucker")
	assert.Contains(t, body, "$280.00")
	assert.Contains(t, body, "Mercado Pago")
	assert.Contains(t, body, "ESTILO.FACHERO")
	assert.Contains(t, body, "https://wa.me/5491155550000")
	assert.Contains(t, body, "cid:logo.png")
	// shipping row with carrier and method label
	assert.Contains(t, body, "Correo Argentino (Home delivery)")
}

func TestRenderConfirmationWithoutLogo(t *testing.T) {
	body, err := renderConfirmation(testStore, testOrder(), false)
	require.NoError(t, err)
	assert.NotContains(t, body, "cid:logo.png")
}

func TestRenderConfirmationFreeShippingHidesRow(t *testing.T) {
	o := testOrder()
	o.ShippingCost = 0
	o.Total = 250

	body, err := renderConfirmation(testStore, o, false)
	require.NoError(t, err)
	assert.NotContains(t, body, "Correo Argentino")
	assert.Contains(t, body, "$250.00")
}

func TestRenderConfirmationUnnamedShippingFallback(t *testing.T) {
	o := testOrder()
	o.ShippingCarrier = ""
	o.ShippingMethod = ""

	body, err := renderConfirmation(testStore, o, false)
	require.NoError(t, err)
	assert.Contains(t, body, "Shipping")
	assert.NotContains(t, body, "()")
}

func TestRenderSellerAlert(t *testing.T) {
	body, err := renderSellerAlert(testStore, testOrder(), false)
	require.NoError(t, err)

	assert.Contains(t, body, "New sale!")
	assert.Contains(t, body, "Order #42")
	assert.Contains(t, body, "juan@example.com")
	assert.Contains(t, body, "$280.00")
}

func TestRenderDispatchNotice(t *testing.T) {
	o := testOrder()
	o.Status = domain.StatusShipped
	o.CarrierName = "Correo Argentino"
	o.TrackingCode = "ABC123"
	o.TrackingLink = "https://carrier.example/track/ABC123"

	body, err := renderDispatchNotice(testStore, o, false)
	require.NoError(t, err)

	assert.Contains(t, body, "#42")
	assert.Contains(t, body, "ABC123")
	assert.Contains(t, body, "https://carrier.example/track/ABC123")
	assert.Contains(t, body, "Track package")
}

func TestRenderDispatchNoticeFallbacks(t *testing.T) {
	o := testOrder()
	o.Status = domain.StatusShipped

	body, err := renderDispatchNotice(testStore, o, false)
	require.NoError(t, err)

	assert.Contains(t, body, "Not specified")
	assert.Contains(t, body, "Not available")
	assert.NotContains(t, body, "Track package")
}
