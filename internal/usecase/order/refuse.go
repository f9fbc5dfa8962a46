package order

import (
	"context"
	"strings"

	"github.com/NobreTrajes/os-control/internal/audit"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

type Refuse struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewRefuse(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *Refuse {
	return &Refuse{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

func (uc *Refuse) Execute(
	ctx context.Context,
	orderID uint,
	actor domain.Actor,
	reasonID uint,
	justification *string,
) (*models.ServiceOrder, error) {

	reason, err := uc.repo.GetRefusalReason(ctx, reasonID)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_refusal_reason")
	}

	refused, err := uc.repo.GetOrCreatePhase(ctx, domain.PhaseRecusada, &actor.UserID)
	if err != nil {
		return nil, err
	}

	if justification != nil {
		trimmed := strings.TrimSpace(*justification)
		if trimmed == "" {
			justification = nil
		} else {
			justification = &trimmed
		}
	}

	now := uc.clock.Now()

	o, err := uc.repo.UpdateOrderLocked(ctx, orderID, func(o *models.ServiceOrder) error {
		return domain.Refuse(o, refused, reason, justification, actor, now)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "order_refused",
		Entity:   "service_order",
		EntityID: &o.ID,
		Metadata: map[string]any{"reason": reason.Name},
	})

	return o, nil
}
