package event

import (
	"time"

	"github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
)

// ===============================
// Status derivado do evento
// ===============================

const (
	StatusAgendado   = "AGENDADO"
	StatusFinalizado = "FINALIZADO"
	StatusCancelado  = "CANCELADO"
	StatusPendencias = "POSSUI PENDÊNCIAS"
	StatusNA         = "N/A"
)

// Status deriva a situação do evento a partir das OS vinculadas.
// Nada é persistido: o status é recalculado a cada listagem.
func Status(ev *models.Event, orders []models.ServiceOrder, today time.Time) string {
	if ev.EventDate == nil {
		return StatusNA
	}

	if !ev.EventDate.Before(today) {
		return StatusAgendado
	}

	if len(orders) == 0 {
		return StatusCancelado
	}

	finalizadas := 0
	emAndamento := 0
	for i := range orders {
		switch orders[i].PhaseName() {
		case order.PhaseFinalizado:
			finalizadas++
		case order.PhasePendente, order.PhaseEmProducao,
			order.PhaseAguardandoRetirada, order.PhaseAguardandoDevolucao:
			emAndamento++
		}
	}

	if finalizadas == len(orders) {
		return StatusFinalizado
	}
	if emAndamento > 0 {
		return StatusPendencias
	}
	return StatusCancelado
}
