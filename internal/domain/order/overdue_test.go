package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NobreTrajes/os-control/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func withEvent(o *models.ServiceOrder, ev time.Time) *models.ServiceOrder {
	o.Event = &models.Event{ID: 1, Name: "CASAMENTO", EventDate: &ev}
	return o
}

func TestRetrievalOverdue(t *testing.T) {
	today := day(2026, 3, 10)

	t.Run("data de retirada vencida", func(t *testing.T) {
		retirada := day(2026, 3, 9)
		o := &models.ServiceOrder{RetiradaDate: &retirada}
		assert.True(t, RetrievalOverdue(o, today))
	})

	t.Run("retirada hoje nao e atraso", func(t *testing.T) {
		retirada := day(2026, 3, 10)
		o := &models.ServiceOrder{RetiradaDate: &retirada}
		assert.False(t, RetrievalOverdue(o, today))
	})

	t.Run("evento passado sem retirada", func(t *testing.T) {
		o := withEvent(&models.ServiceOrder{}, day(2026, 3, 8))
		assert.True(t, RetrievalOverdue(o, today))
	})

	t.Run("evento passado mas ja retirada", func(t *testing.T) {
		retirado := day(2026, 3, 7)
		o := withEvent(&models.ServiceOrder{DataRetirado: &retirado}, day(2026, 3, 8))
		assert.False(t, RetrievalOverdue(o, today))
	})

	t.Run("sem datas", func(t *testing.T) {
		assert.False(t, RetrievalOverdue(&models.ServiceOrder{}, today))
	})
}

func TestInLateView(t *testing.T) {
	today := day(2026, 3, 10)

	t.Run("devolucao vencida antes do evento", func(t *testing.T) {
		devolucao := day(2026, 3, 9)
		o := withEvent(&models.ServiceOrder{DevolucaoDate: &devolucao}, day(2026, 3, 20))
		assert.True(t, InLateView(o, today))
	})

	t.Run("evento passado sem devolucao", func(t *testing.T) {
		o := withEvent(&models.ServiceOrder{}, day(2026, 3, 5))
		assert.True(t, InLateView(o, today))
	})

	t.Run("evento passado e ja devolvido", func(t *testing.T) {
		devolvido := day(2026, 3, 6)
		o := withEvent(&models.ServiceOrder{DataDevolvido: &devolvido}, day(2026, 3, 5))
		assert.False(t, InLateView(o, today))
	})

	t.Run("sem evento fica fora da visao", func(t *testing.T) {
		devolucao := day(2026, 3, 1)
		o := &models.ServiceOrder{DevolucaoDate: &devolucao}
		assert.False(t, InLateView(o, today))
	})
}

func TestLateJustification(t *testing.T) {
	today := day(2026, 3, 10)

	t.Run("devolucao vencida com evento futuro", func(t *testing.T) {
		devolucao := day(2026, 3, 9)
		o := withEvent(&models.ServiceOrder{DevolucaoDate: &devolucao}, day(2026, 3, 20))
		j := LateJustification(o, today)
		require.NotNil(t, j)
		assert.Equal(t, LateNotReturned, *j)
	})

	t.Run("retirada vencida com evento futuro", func(t *testing.T) {
		retirada := day(2026, 3, 9)
		o := withEvent(&models.ServiceOrder{RetiradaDate: &retirada}, day(2026, 3, 20))
		j := LateJustification(o, today)
		require.NotNil(t, j)
		assert.Equal(t, LateNotRetrieved, *j)
	})

	t.Run("devolucao vencida prevalece sobre retirada", func(t *testing.T) {
		devolucao := day(2026, 3, 9)
		retirada := day(2026, 3, 8)
		o := withEvent(&models.ServiceOrder{
			DevolucaoDate: &devolucao,
			RetiradaDate:  &retirada,
		}, day(2026, 3, 20))
		j := LateJustification(o, today)
		require.NotNil(t, j)
		assert.Equal(t, LateNotReturned, *j)
	})

	t.Run("evento passado sem devolucao", func(t *testing.T) {
		o := withEvent(&models.ServiceOrder{}, day(2026, 3, 5))
		j := LateJustification(o, today)
		require.NotNil(t, j)
		assert.Equal(t, LateNotReturnedEventGone, *j)
	})

	t.Run("nada vencido", func(t *testing.T) {
		o := withEvent(&models.ServiceOrder{}, day(2026, 3, 20))
		assert.Nil(t, LateJustification(o, today))
	})
}

func TestShouldAutoRefuse(t *testing.T) {
	today := day(2026, 3, 10)

	t.Run("evento passado sem retirada em fase varrida", func(t *testing.T) {
		o := withEvent(orderInPhase(PhasePendente), day(2026, 3, 5))
		assert.True(t, ShouldAutoRefuse(o, today))
	})

	t.Run("peca ja retirada", func(t *testing.T) {
		retirado := day(2026, 3, 4)
		o := withEvent(orderInPhase(PhasePendente), day(2026, 3, 5))
		o.DataRetirado = &retirado
		assert.False(t, ShouldAutoRefuse(o, today))
	})

	t.Run("evento futuro", func(t *testing.T) {
		o := withEvent(orderInPhase(PhasePendente), day(2026, 3, 20))
		assert.False(t, ShouldAutoRefuse(o, today))
	})

	t.Run("recusada fica fora da varredura", func(t *testing.T) {
		o := withEvent(orderInPhase(PhaseRecusada), day(2026, 3, 5))
		assert.False(t, ShouldAutoRefuse(o, today))
	})

	t.Run("sem evento", func(t *testing.T) {
		assert.False(t, ShouldAutoRefuse(orderInPhase(PhasePendente), today))
	})
}
