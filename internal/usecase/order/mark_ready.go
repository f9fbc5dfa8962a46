package order

import (
	"context"

	"github.com/NobreTrajes/os-control/internal/audit"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
)

type MarkReady struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewMarkReady(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *MarkReady {
	return &MarkReady{
		repo:  repo,
		audit: audit,
	}
}

func (uc *MarkReady) Execute(
	ctx context.Context,
	orderID uint,
	actor domain.Actor,
) (*models.ServiceOrder, error) {

	ready, err := uc.repo.GetOrCreatePhase(ctx, domain.PhaseAguardandoRetirada, &actor.UserID)
	if err != nil {
		return nil, err
	}

	o, err := uc.repo.UpdateOrderLocked(ctx, orderID, func(o *models.ServiceOrder) error {
		return domain.MarkReady(o, ready, actor)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "order_marked_ready",
		Entity:   "service_order",
		EntityID: &o.ID,
	})

	return o, nil
}
