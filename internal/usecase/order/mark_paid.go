package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/NobreTrajes/os-control/internal/audit"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

type MarkPaid struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewMarkPaid(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *MarkPaid {
	return &MarkPaid{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

func (uc *MarkPaid) Execute(
	ctx context.Context,
	orderID uint,
	actor domain.Actor,
	receipt *PaymentReceipt,
) (*models.ServiceOrder, error) {

	finished, err := uc.repo.GetOrCreatePhase(ctx, domain.PhaseFinalizado, &actor.UserID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	o, err := uc.repo.UpdateOrderLocked(ctx, orderID, func(o *models.ServiceOrder) error {
		var target decimal.Decimal
		if receipt != nil {
			target = domain.RemainingAmount(o)
			if receipt.RemainingAmount != nil {
				target = *receipt.RemainingAmount
			}
		}

		if err := domain.MarkPaid(o, finished, actor, now); err != nil {
			return err
		}

		if receipt != nil {
			return domain.AppendRemaining(o, receipt.Forms, target, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "order_marked_paid",
		Entity:   "service_order",
		EntityID: &o.ID,
	})

	return o, nil
}
