package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/NobreTrajes/os-control/internal/audit"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

// PaymentReceipt é o recebimento opcional do valor restante no ato da
// retirada. Quando RemainingAmount é nil, vale o restante calculado
// da própria OS.
type PaymentReceipt struct {
	RemainingAmount *decimal.Decimal
	Forms           []domain.PaymentForm
}

type MarkRetrieved struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewMarkRetrieved(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *MarkRetrieved {
	return &MarkRetrieved{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

func (uc *MarkRetrieved) Execute(
	ctx context.Context,
	orderID uint,
	actor domain.Actor,
	receipt *PaymentReceipt,
) (*models.ServiceOrder, error) {

	awaiting, err := uc.repo.GetOrCreatePhase(ctx, domain.PhaseAguardandoDevolucao, &actor.UserID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	o, err := uc.repo.UpdateOrderLocked(ctx, orderID, func(o *models.ServiceOrder) error {
		// O restante é calculado antes da transição para que o alvo
		// default reflita o estado corrente da OS.
		var target decimal.Decimal
		if receipt != nil {
			target = domain.RemainingAmount(o)
			if receipt.RemainingAmount != nil {
				target = *receipt.RemainingAmount
			}
		}

		if err := domain.MarkRetrieved(o, awaiting, actor, now); err != nil {
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
		Action:   "order_marked_retrieved",
		Entity:   "service_order",
		EntityID: &o.ID,
	})

	return o, nil
}
