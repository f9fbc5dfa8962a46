package order

import (
	"context"
	"strings"
	"time"

	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/dto"
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

type ListByPhase struct {
	repo  domain.Repository
	sweep *AutoRefuseSweep
	clock timezone.Clock
}

func NewListByPhase(
	repo domain.Repository,
	sweep *AutoRefuseSweep,
	clock timezone.Clock,
) *ListByPhase {
	return &ListByPhase{
		repo:  repo,
		sweep: sweep,
		clock: clock,
	}
}

// Execute lista as OS de uma fase. A varredura de recusa automática
// roda antes de qualquer listagem; ATRASADO é uma visão calculada
// sobre AGUARDANDO_DEVOLUCAO, nunca uma fase gravada.
func (uc *ListByPhase) Execute(
	ctx context.Context,
	phaseName string,
) ([]dto.OrderListDTO, error) {

	phaseName = strings.ToUpper(strings.TrimSpace(phaseName))
	if phaseName != domain.PhaseAtrasado && !domain.IsStored(phaseName) {
		return nil, httperr.ErrBusiness("phase_not_found")
	}

	if _, err := uc.sweep.Execute(ctx); err != nil {
		return nil, err
	}

	today := timezone.Today(uc.clock.Now())

	if phaseName == domain.PhaseAtrasado {
		return uc.listLate(ctx, today)
	}

	orders, err := uc.repo.ListByPhase(ctx, phaseName)
	if err != nil {
		return nil, err
	}

	out := make([]dto.OrderListDTO, 0, len(orders))
	for i := range orders {
		o := &orders[i]

		// Na fila de retirada a flag de atraso é recalculada e
		// persistida a cada listagem.
		if phaseName == domain.PhaseAguardandoRetirada {
			late := domain.RetrievalOverdue(o, today)
			if o.EstaAtrasada != late {
				o.EstaAtrasada = late
				if err := uc.repo.SaveOrder(ctx, o); err != nil {
					return nil, err
				}
			}
		}

		out = append(out, dto.FromServiceOrder(o))
	}

	return out, nil
}

func (uc *ListByPhase) listLate(
	ctx context.Context,
	today time.Time,
) ([]dto.OrderListDTO, error) {

	candidates, err := uc.repo.ListLateCandidates(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.OrderListDTO, 0, len(candidates))
	for i := range candidates {
		o := &candidates[i]
		if !domain.InLateView(o, today) {
			continue
		}

		d := dto.FromServiceOrder(o)
		d.JustificativaAtraso = domain.LateJustification(o, today)
		out = append(out, d)
	}

	return out, nil
}
