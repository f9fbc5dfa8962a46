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

func newListByPhase(repo *fakeRepo) *ListByPhase {
	sweep := NewAutoRefuseSweep(repo, fixedClock{testNow}, zap.NewNop())
	return NewListByPhase(repo, sweep, fixedClock{testNow})
}

func TestListByPhase(t *testing.T) {
	t.Run("fase desconhecida", func(t *testing.T) {
		repo := newFakeRepo()
		uc := newListByPhase(repo)

		_, err := uc.Execute(context.Background(), "INEXISTENTE")
		assertBusinessCode(t, err, "phase_not_found")
	})

	t.Run("nome normalizado com espacos e minusculas", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhasePendente)

		uc := newListByPhase(repo)
		out, err := uc.Execute(context.Background(), "  pendente ")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, uint(10), out[0].ID)
	})

	t.Run("OS virtual fica de fora", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhasePendente)
		virtual := seedOrder(repo, 11, domain.PhasePendente)
		virtual.IsVirtual = true

		uc := newListByPhase(repo)
		out, err := uc.Execute(context.Background(), domain.PhasePendente)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, uint(10), out[0].ID)
	})

	t.Run("fila de retirada grava a flag de atraso", func(t *testing.T) {
		repo := newFakeRepo()
		o := seedOrder(repo, 10, domain.PhaseAguardandoRetirada)
		past := testNow.AddDate(0, 0, -3)
		o.RetiradaDate = &past

		uc := newListByPhase(repo)
		out, err := uc.Execute(context.Background(), domain.PhaseAguardandoRetirada)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.True(t, out[0].EstaAtrasada)
		assert.True(t, repo.orders[10].EstaAtrasada)
		assert.Contains(t, repo.saved, uint(10))
	})

	t.Run("flag ja correta nao regrava", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhaseAguardandoRetirada)

		uc := newListByPhase(repo)
		_, err := uc.Execute(context.Background(), domain.PhaseAguardandoRetirada)
		require.NoError(t, err)
		assert.Empty(t, repo.saved)
	})

	t.Run("varredura roda antes da listagem", func(t *testing.T) {
		repo := newFakeRepo()
		yesterday := testNow.AddDate(0, 0, -1)
		repo.sweepCandidates = []models.ServiceOrder{
			sweepCandidate(repo, 20, domain.PhasePendente, yesterday),
		}
		repo.addPhase(99, domain.PhaseRecusada)

		uc := newListByPhase(repo)
		out, err := uc.Execute(context.Background(), domain.PhaseRecusada)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, uint(20), out[0].ID)
	})
}

func TestListByPhaseAtrasado(t *testing.T) {
	day := func(d int) time.Time { return testNow.AddDate(0, 0, d) }

	t.Run("devolucao vencida antes do evento", func(t *testing.T) {
		repo := newFakeRepo()
		devolucao := day(-2)
		futuro := day(5)
		repo.lateCandidates = []models.ServiceOrder{{
			ID:            30,
			DevolucaoDate: &devolucao,
			Event:         &models.Event{ID: 1, EventDate: &futuro},
		}}

		uc := newListByPhase(repo)
		out, err := uc.Execute(context.Background(), domain.PhaseAtrasado)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.NotNil(t, out[0].JustificativaAtraso)
		assert.Equal(t, domain.LateNotReturned, *out[0].JustificativaAtraso)
	})

	t.Run("evento passado sem devolucao", func(t *testing.T) {
		repo := newFakeRepo()
		passado := day(-3)
		repo.lateCandidates = []models.ServiceOrder{{
			ID:    31,
			Event: &models.Event{ID: 1, EventDate: &passado},
		}}

		uc := newListByPhase(repo)
		out, err := uc.Execute(context.Background(), domain.PhaseAtrasado)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.NotNil(t, out[0].JustificativaAtraso)
		assert.Equal(t, domain.LateNotReturnedEventGone, *out[0].JustificativaAtraso)
	})

	t.Run("ja devolvida fica de fora", func(t *testing.T) {
		repo := newFakeRepo()
		passado := day(-3)
		devolvido := day(-1)
		repo.lateCandidates = []models.ServiceOrder{{
			ID:            32,
			DataDevolvido: &devolvido,
			Event:         &models.Event{ID: 1, EventDate: &passado},
		}}

		uc := newListByPhase(repo)
		out, err := uc.Execute(context.Background(), domain.PhaseAtrasado)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
