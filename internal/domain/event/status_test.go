package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func eventOn(d time.Time) *models.Event {
	return &models.Event{ID: 1, Name: "FORMATURA", EventDate: &d}
}

func orderIn(phase string) models.ServiceOrder {
	p := &models.ServiceOrderPhase{ID: 1, Name: phase}
	return models.ServiceOrder{ServiceOrderPhase: p, ServiceOrderPhaseID: &p.ID}
}

func TestStatus(t *testing.T) {
	today := day(2026, 3, 10)

	t.Run("sem data", func(t *testing.T) {
		ev := &models.Event{ID: 1, Name: "FORMATURA"}
		assert.Equal(t, StatusNA, Status(ev, nil, today))
	})

	t.Run("data futura e agendado", func(t *testing.T) {
		assert.Equal(t, StatusAgendado, Status(eventOn(day(2026, 4, 1)), nil, today))
	})

	t.Run("data de hoje ainda e agendado", func(t *testing.T) {
		assert.Equal(t, StatusAgendado, Status(eventOn(today), nil, today))
	})

	t.Run("passado sem OS e cancelado", func(t *testing.T) {
		assert.Equal(t, StatusCancelado, Status(eventOn(day(2026, 2, 1)), nil, today))
	})

	t.Run("todas finalizadas", func(t *testing.T) {
		orders := []models.ServiceOrder{
			orderIn(order.PhaseFinalizado),
			orderIn(order.PhaseFinalizado),
		}
		assert.Equal(t, StatusFinalizado, Status(eventOn(day(2026, 2, 1)), orders, today))
	})

	t.Run("evento passado com OS em andamento", func(t *testing.T) {
		orders := []models.ServiceOrder{
			orderIn(order.PhaseFinalizado),
			orderIn(order.PhaseAguardandoDevolucao),
		}
		assert.Equal(t, StatusPendencias, Status(eventOn(day(2026, 2, 1)), orders, today))
	})

	t.Run("so recusadas vira cancelado", func(t *testing.T) {
		orders := []models.ServiceOrder{orderIn(order.PhaseRecusada)}
		assert.Equal(t, StatusCancelado, Status(eventOn(day(2026, 2, 1)), orders, today))
	})
}
