package order

import (
	"context"

	"go.uber.org/zap"

	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

// AutoRefuseSweep recusa automaticamente as OS cujo evento vinculado
// já passou sem a peça ter sido retirada. Roda antes de cada listagem
// por fase.
type AutoRefuseSweep struct {
	repo  domain.Repository
	clock timezone.Clock
	log   *zap.Logger
}

func NewAutoRefuseSweep(
	repo domain.Repository,
	clock timezone.Clock,
	log *zap.Logger,
) *AutoRefuseSweep {
	return &AutoRefuseSweep{
		repo:  repo,
		clock: clock,
		log:   log,
	}
}

// Execute devolve quantas OS foram recusadas. Falha em uma OS não
// interrompe a varredura das demais.
func (uc *AutoRefuseSweep) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	today := timezone.Today(now)

	refused, err := uc.repo.GetPhaseByName(ctx, domain.PhaseRecusada)
	if err != nil {
		// Sem a fase RECUSADA cadastrada não há o que varrer.
		return 0, nil
	}

	candidates, err := uc.repo.ListSweepCandidates(ctx, today)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range candidates {
		o := &candidates[i]
		if !domain.ShouldAutoRefuse(o, today) {
			continue
		}

		domain.AutoRefuse(o, refused, now)
		if err := uc.repo.SaveOrder(ctx, o); err != nil {
			uc.log.Warn("auto refuse failed",
				zap.Uint("order_id", o.ID),
				zap.Error(err))
			continue
		}

		count++
		uc.log.Info("OS movida automaticamente para RECUSADA",
			zap.Uint("order_id", o.ID))
	}

	return count, nil
}
