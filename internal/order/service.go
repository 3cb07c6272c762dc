package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Notifier receives fire-and-forget notification work. Implementations must
// never block the caller; order success does not depend on them.
type Notifier interface {
	OrderConfirmation(o *domain.Order)
}

// PaymentDetails is the seller's transfer information, shown on the receipt
// so the customer can pay.
type PaymentDetails struct {
	Bank           string `json:"bank"`
	Alias          string `json:"alias"`
	Holder         string `json:"holder"`
	WhatsAppNumber string `json:"whatsapp_number"`
	WhatsAppLink   string `json:"whatsapp_link"`
}

// SubmitRequest is a checkout submission as it comes off the wire: customer
// fields, the chosen shipping option and the serialized cart.
type SubmitRequest struct {
	CustomerName    string `validate:"required"`
	CustomerEmail   string `validate:"required,email"`
	CustomerPhone   string
	Address         string
	PostalCode      string
	ShippingMethod  string
	ShippingCarrier string
	ShippingCost    string
	CartJSON        string
}

// Receipt is what the customer sees after a successful submission.
type Receipt struct {
	OrderID      int64          `json:"order_id"`
	Subtotal     float64        `json:"subtotal"`
	ShippingCost float64        `json:"shipping_cost"`
	Total        float64        `json:"total"`
	Payment      PaymentDetails `json:"payment"`
}

type Service struct {
	repo     Repository
	notifier Notifier
	payment  PaymentDetails
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, payment PaymentDetails) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		payment:  payment,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SubmitOrder turns a submitted cart into a persisted order. All validation
// and the stock decrement happen inside the repository transaction; by the
// time this returns nil the order exists and stock is deducted. Confirmation
// mail is queued afterwards and cannot fail the order.
func (s *Service) SubmitOrder(ctx context.Context, req SubmitRequest) (*Receipt, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &InvalidCustomerError{Reason: validationReason(err)}
	}

	// unparsable shipping price degrades to free shipping rather than failing
	shippingCost, err := strconv.ParseFloat(strings.TrimSpace(req.ShippingCost), 64)
	if err != nil || shippingCost < 0 {
		shippingCost = 0.0
	}

	items, err := domain.ParseCart([]byte(req.CartJSON))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	o := &domain.Order{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.Address),
		PostalCode:      strings.TrimSpace(req.PostalCode),
		ShippingMethod:  domain.ShippingMethod(strings.ToUpper(strings.TrimSpace(req.ShippingMethod))),
		ShippingCarrier: strings.TrimSpace(req.ShippingCarrier),
		ShippingCost:    round2(shippingCost),
		CreatedAt:       s.now(),
		Status:          domain.StatusPending,
	}
	for _, item := range items {
		pid := item.ProductID
		o.Lines = append(o.Lines, domain.OrderLine{
			ProductID:   &pid,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		if IsRejection(err) {
			return nil, err
		}
		return nil, fmt.Errorf("submit order: %w", err)
	}

	s.notifier.OrderConfirmation(o)

	return &Receipt{
		OrderID:      o.ID,
		Subtotal:     o.Subtotal,
		ShippingCost: o.ShippingCost,
		Total:        o.Total,
		Payment:      s.payment,
	}, nil
}

func validationReason(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		if f.Tag() == "required" {
			return fmt.Sprintf("%s is required", strings.ToLower(f.Field()))
		}
		return fmt.Sprintf("%s is not a valid %s", strings.ToLower(f.Field()), f.Tag())
	}
	return err.Error()
}
