package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
)

func sweepCandidate(repo *fakeRepo, id uint, phaseName string, eventDate time.Time) models.ServiceOrder {
	p, _ := repo.GetOrCreatePhase(context.Background(), phaseName, nil)
	o := models.ServiceOrder{
		ID:                  id,
		ServiceOrderPhase:   p,
		ServiceOrderPhaseID: &p.ID,
		Event:               &models.Event{ID: id, EventDate: &eventDate},
	}
	return o
}

func TestAutoRefuseSweep(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	tomorrow := testNow.AddDate(0, 0, 1)

	t.Run("recusa OS com evento passado e sem retirada", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addPhase(1, domain.PhaseRecusada)
		repo.sweepCandidates = []models.ServiceOrder{
			sweepCandidate(repo, 10, domain.PhasePendente, yesterday),
			sweepCandidate(repo, 11, domain.PhaseAguardandoRetirada, yesterday),
		}

		uc := NewAutoRefuseSweep(repo, fixedClock{testNow}, zap.NewNop())
		count, err := uc.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		for _, id := range []uint{10, 11} {
			o := repo.orders[id]
			require.NotNil(t, o, "OS %d deveria ter sido persistida", id)
			assert.Equal(t, domain.PhaseRecusada, o.PhaseName())
			require.NotNil(t, o.JustificationRefusal)
			assert.Equal(t, domain.AutoRefuseJustification, *o.JustificationRefusal)
			assert.NotNil(t, o.DateCanceled)
		}
	})

	t.Run("ignora quem nao se qualifica", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addPhase(1, domain.PhaseRecusada)

		retrieved := sweepCandidate(repo, 12, domain.PhaseAguardandoDevolucao, yesterday)
		retrieved.DataRetirado = &yesterday

		repo.sweepCandidates = []models.ServiceOrder{
			retrieved,
			sweepCandidate(repo, 13, domain.PhasePendente, tomorrow),
		}

		uc := NewAutoRefuseSweep(repo, fixedClock{testNow}, zap.NewNop())
		count, err := uc.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Empty(t, repo.saved)
	})

	t.Run("sem fase RECUSADA cadastrada nao varre", func(t *testing.T) {
		repo := newFakeRepo()
		repo.sweepCandidates = []models.ServiceOrder{
			sweepCandidate(repo, 10, domain.PhasePendente, yesterday),
		}

		uc := NewAutoRefuseSweep(repo, fixedClock{testNow}, zap.NewNop())
		count, err := uc.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Empty(t, repo.saved)
	})
}
