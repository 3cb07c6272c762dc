package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

var (
	// ErrBackwardTransition is the policy violation for moving a shipped or
	// delivered order back to a pre-dispatch status.
	ErrBackwardTransition = errors.New("cannot move a shipped or delivered order back to an earlier status")

	ErrUnknownStatus = errors.New("unknown order status")
)

// Repository is the slice of order persistence the state machine needs.
type Repository interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	UpdateFulfillment(ctx context.Context, o *domain.Order) error
}

// Notifier queues the dispatch notice; fire-and-forget.
type Notifier interface {
	DispatchNotice(o *domain.Order)
}

// UpdateRequest is an admin-driven change to an order's fulfillment state.
// The tracking fields may be set on any transition, not only on dispatch.
type UpdateRequest struct {
	Status       domain.OrderStatus
	Paid         bool
	TrackingCode string
	TrackingLink string
	CarrierName  string
	Notify       bool
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// UpdateOrder applies the monotonic transition rule, persists the new state
// and, when the order moves into Enviado with the notify flag set, queues
// exactly one dispatch notice. On a rejected transition the order is left
// untouched.
func (s *Service) UpdateOrder(ctx context.Context, id int64, req UpdateRequest) (*domain.Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, req.Status)
	}
	if !domain.CanTransition(o.Status, req.Status) {
		return nil, ErrBackwardTransition
	}

	o.Status = req.Status
	o.Paid = req.Paid
	o.TrackingCode = req.TrackingCode
	o.TrackingLink = req.TrackingLink
	o.CarrierName = req.CarrierName

	if err := s.repo.UpdateFulfillment(ctx, o); err != nil {
		return nil, err
	}

	if req.Status == domain.StatusShipped && req.Notify {
		s.notifier.DispatchNotice(o)
	}
	return o, nil
}
