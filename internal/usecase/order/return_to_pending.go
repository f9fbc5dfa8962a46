package order

import (
	"context"

	"github.com/NobreTrajes/os-control/internal/audit"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
)

type ReturnToPending struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewReturnToPending(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *ReturnToPending {
	return &ReturnToPending{
		repo:  repo,
		audit: audit,
	}
}

func (uc *ReturnToPending) Execute(
	ctx context.Context,
	orderID uint,
	actor domain.Actor,
) (*models.ServiceOrder, error) {

	pending, err := uc.repo.GetOrCreatePhase(ctx, domain.PhasePendente, &actor.UserID)
	if err != nil {
		return nil, err
	}

	o, err := uc.repo.UpdateOrderLocked(ctx, orderID, func(o *models.ServiceOrder) error {
		return domain.ReturnToPending(o, pending, actor)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "order_returned_to_pending",
		Entity:   "service_order",
		EntityID: &o.ID,
	})

	return o, nil
}
