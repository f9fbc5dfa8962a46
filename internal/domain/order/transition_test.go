package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/models"
)

func phase(id uint, name string) *models.ServiceOrderPhase {
	return &models.ServiceOrderPhase{ID: id, Name: name}
}

func orderInPhase(name string) *models.ServiceOrder {
	p := phase(1, name)
	return &models.ServiceOrder{
		ID:                  10,
		ServiceOrderPhase:   p,
		ServiceOrderPhaseID: &p.ID,
	}
}

func admin() Actor {
	return Actor{UserID: 1, PersonID: 1, PersonType: models.PersonTypeAdmin}
}

func attendant(personID uint) Actor {
	return Actor{UserID: 2, PersonID: personID, PersonType: models.PersonTypeAttendant}
}

func assertBusiness(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	got, ok := httperr.BusinessCode(err)
	require.True(t, ok, "expected business error, got %v", err)
	assert.Equal(t, code, got)
}

func TestMarkReady(t *testing.T) {
	ready := phase(3, PhaseAguardandoRetirada)

	t.Run("avanca de EM_PRODUCAO", func(t *testing.T) {
		o := orderInPhase(PhaseEmProducao)
		err := MarkReady(o, ready, admin())
		require.NoError(t, err)
		assert.Equal(t, PhaseAguardandoRetirada, o.PhaseName())
	})

	t.Run("bloqueia fora de EM_PRODUCAO", func(t *testing.T) {
		o := orderInPhase(PhasePendente)
		assertBusiness(t, MarkReady(o, ready, admin()), "invalid_phase")
	})

	t.Run("bloqueia sem fase", func(t *testing.T) {
		o := &models.ServiceOrder{}
		assertBusiness(t, MarkReady(o, ready, admin()), "no_phase")
	})

	t.Run("bloqueia atendente nao vinculado", func(t *testing.T) {
		o := orderInPhase(PhaseEmProducao)
		other := uint(99)
		o.EmployeeID = &other
		assertBusiness(t, MarkReady(o, ready, attendant(5)), "forbidden")
	})

	t.Run("permite atendente responsavel", func(t *testing.T) {
		o := orderInPhase(PhaseEmProducao)
		emp := uint(5)
		o.EmployeeID = &emp
		require.NoError(t, MarkReady(o, ready, attendant(5)))
	})
}

func TestMarkRetrieved(t *testing.T) {
	awaiting := phase(4, PhaseAguardandoDevolucao)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("retira de AGUARDANDO_RETIRADA", func(t *testing.T) {
		o := orderInPhase(PhaseAguardandoRetirada)
		require.NoError(t, MarkRetrieved(o, awaiting, admin(), now))
		assert.Equal(t, PhaseAguardandoDevolucao, o.PhaseName())
		require.NotNil(t, o.DataRetirado)
		assert.Equal(t, now, *o.DataRetirado)
	})

	t.Run("retira direto de EM_PRODUCAO", func(t *testing.T) {
		o := orderInPhase(PhaseEmProducao)
		require.NoError(t, MarkRetrieved(o, awaiting, admin(), now))
		assert.Equal(t, PhaseAguardandoDevolucao, o.PhaseName())
	})

	t.Run("ja retirada", func(t *testing.T) {
		o := orderInPhase(PhaseAguardandoDevolucao)
		assertBusiness(t, MarkRetrieved(o, awaiting, admin(), now), "already_retrieved")
	})

	t.Run("ja finalizada", func(t *testing.T) {
		o := orderInPhase(PhaseFinalizado)
		assertBusiness(t, MarkRetrieved(o, awaiting, admin(), now), "already_finished")
	})

	t.Run("pendente nao retira", func(t *testing.T) {
		o := orderInPhase(PhasePendente)
		assertBusiness(t, MarkRetrieved(o, awaiting, admin(), now), "invalid_phase")
	})
}

func TestMarkPaid(t *testing.T) {
	finished := phase(5, PhaseFinalizado)
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("finaliza de AGUARDANDO_DEVOLUCAO", func(t *testing.T) {
		o := orderInPhase(PhaseAguardandoDevolucao)
		require.NoError(t, MarkPaid(o, finished, admin(), now))
		assert.Equal(t, PhaseFinalizado, o.PhaseName())
		require.NotNil(t, o.DataDevolvido)
		require.NotNil(t, o.DataFinalizado)
	})

	t.Run("ja finalizada tem precedencia", func(t *testing.T) {
		o := orderInPhase(PhaseFinalizado)
		assertBusiness(t, MarkPaid(o, finished, admin(), now), "already_finished")
	})

	t.Run("fase errada", func(t *testing.T) {
		o := orderInPhase(PhaseEmProducao)
		assertBusiness(t, MarkPaid(o, finished, admin(), now), "invalid_phase")
	})
}

func TestRefuse(t *testing.T) {
	refused := phase(6, PhaseRecusada)
	reason := &models.RefusalReason{ID: 2, Name: "Preço"}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("recusa pendente com justificativa", func(t *testing.T) {
		o := orderInPhase(PhasePendente)
		j := "cliente desistiu"
		require.NoError(t, Refuse(o, refused, reason, &j, admin(), now))
		assert.Equal(t, PhaseRecusada, o.PhaseName())
		assert.Equal(t, &reason.ID, o.JustificationReasonID)
		assert.Equal(t, "cliente desistiu", *o.JustificationRefusal)
		require.NotNil(t, o.DataRecusa)
		assert.True(t, o.IsCanceled())
	})

	t.Run("recusa OS sem fase", func(t *testing.T) {
		o := &models.ServiceOrder{}
		require.NoError(t, Refuse(o, refused, reason, nil, attendant(7), now))
		assert.Equal(t, PhaseRecusada, o.PhaseName())
	})

	t.Run("nao recusa aguardando devolucao", func(t *testing.T) {
		o := orderInPhase(PhaseAguardandoDevolucao)
		assertBusiness(t, Refuse(o, refused, reason, nil, admin(), now), "invalid_phase")
	})

	t.Run("nao recusa finalizada", func(t *testing.T) {
		o := orderInPhase(PhaseFinalizado)
		assertBusiness(t, Refuse(o, refused, reason, nil, admin(), now), "invalid_phase")
	})

	t.Run("atendente nao vinculado nao recusa OS com responsavel", func(t *testing.T) {
		o := orderInPhase(PhasePendente)
		other := uint(99)
		o.EmployeeID = &other
		assertBusiness(t, Refuse(o, refused, reason, nil, attendant(5), now), "forbidden")
	})

	t.Run("qualquer um recusa OS sem responsavel", func(t *testing.T) {
		o := orderInPhase(PhasePendente)
		require.NoError(t, Refuse(o, refused, reason, nil, attendant(5), now))
	})
}

func TestReturnToPending(t *testing.T) {
	pending := phase(1, PhasePendente)

	t.Run("volta de EM_PRODUCAO", func(t *testing.T) {
		o := orderInPhase(PhaseEmProducao)
		require.NoError(t, ReturnToPending(o, pending, admin()))
		assert.Equal(t, PhasePendente, o.PhaseName())
	})

	t.Run("volta de RECUSADA", func(t *testing.T) {
		o := orderInPhase(PhaseRecusada)
		require.NoError(t, ReturnToPending(o, pending, admin()))
	})

	t.Run("ja pendente", func(t *testing.T) {
		o := orderInPhase(PhasePendente)
		assertBusiness(t, ReturnToPending(o, pending, admin()), "already_pending")
	})

	t.Run("finalizada nao volta", func(t *testing.T) {
		o := orderInPhase(PhaseFinalizado)
		assertBusiness(t, ReturnToPending(o, pending, admin()), "invalid_phase")
	})
}

func TestAdvanceToProduction(t *testing.T) {
	production := phase(2, PhaseEmProducao)
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)

	t.Run("avanca de PENDENTE", func(t *testing.T) {
		o := orderInPhase(PhasePendente)
		assert.True(t, AdvanceToProduction(o, production, now))
		assert.Equal(t, PhaseEmProducao, o.PhaseName())
		require.NotNil(t, o.ProductionDate)
	})

	t.Run("nao reavanca de AGUARDANDO_RETIRADA", func(t *testing.T) {
		o := orderInPhase(PhaseAguardandoRetirada)
		assert.False(t, AdvanceToProduction(o, production, now))
		assert.Equal(t, PhaseAguardandoRetirada, o.PhaseName())
	})

	t.Run("sem fase nao avanca", func(t *testing.T) {
		o := &models.ServiceOrder{}
		assert.False(t, AdvanceToProduction(o, production, now))
	})
}

func TestAutoRefuse(t *testing.T) {
	refused := phase(6, PhaseRecusada)
	now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)

	o := orderInPhase(PhasePendente)
	AutoRefuse(o, refused, now)

	assert.Equal(t, PhaseRecusada, o.PhaseName())
	require.NotNil(t, o.JustificationRefusal)
	assert.Equal(t, AutoRefuseJustification, *o.JustificationRefusal)
	require.NotNil(t, o.DataRecusa)
	require.NotNil(t, o.DateCanceled)
	assert.Nil(t, o.CanceledByID)
}
