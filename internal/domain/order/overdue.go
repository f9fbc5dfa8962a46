package order

import (
	"time"

	"github.com/NobreTrajes/os-control/internal/models"
)

// Justificativas exibidas na visão ATRASADO.
const (
	LateNotReturned          = "Cliente ainda não devolveu"
	LateNotRetrieved         = "Cliente não retirou"
	LateNotReturnedEventGone = "Cliente ainda não devolveu (evento passou)"
)

func eventDate(o *models.ServiceOrder) *time.Time {
	if o.Event == nil {
		return nil
	}
	return o.Event.EventDate
}

// RetrievalOverdue diz se uma OS em AGUARDANDO_RETIRADA está
// atrasada: passou da data de retirada, ou o evento já passou sem a
// peça ter sido retirada. O chamador grava a flag esta_atrasada.
func RetrievalOverdue(o *models.ServiceOrder, today time.Time) bool {
	if o.RetiradaDate != nil && o.RetiradaDate.Before(today) {
		return true
	}
	ev := eventDate(o)
	if ev != nil && ev.Before(today) && o.DataRetirado == nil {
		return true
	}
	return false
}

// InLateView diz se uma OS em AGUARDANDO_DEVOLUCAO aparece na visão
// ATRASADO. Sempre calculado na consulta; nunca vira mudança de fase.
func InLateView(o *models.ServiceOrder, today time.Time) bool {
	ev := eventDate(o)
	if ev == nil {
		return false
	}
	if o.DevolucaoDate != nil && o.DevolucaoDate.Before(today) && today.Before(*ev) {
		return true
	}
	if o.DataDevolvido == nil && ev.Before(today) {
		return true
	}
	return false
}

// LateJustification deriva o motivo humano do atraso, na ordem de
// prioridade: devolução vencida com evento futuro, retirada vencida
// com evento futuro, evento passado sem devolução.
func LateJustification(o *models.ServiceOrder, today time.Time) *string {
	ev := eventDate(o)

	if o.DevolucaoDate != nil && o.DevolucaoDate.Before(today) && ev != nil && today.Before(*ev) {
		s := LateNotReturned
		return &s
	}
	if o.RetiradaDate != nil && o.RetiradaDate.Before(today) && ev != nil && today.Before(*ev) {
		s := LateNotRetrieved
		return &s
	}
	if o.DataDevolvido == nil && ev != nil && ev.Before(today) {
		s := LateNotReturnedEventGone
		return &s
	}
	return nil
}

// ShouldAutoRefuse diz se a varredura deve recusar a OS: evento
// vinculado já passou, a peça nunca foi retirada e a fase atual está
// entre as varridas.
func ShouldAutoRefuse(o *models.ServiceOrder, today time.Time) bool {
	ev := eventDate(o)
	if ev == nil || !ev.Before(today) {
		return false
	}
	if o.DataRetirado != nil {
		return false
	}
	return phaseIn(o.PhaseName(), SweepPhases)
}
