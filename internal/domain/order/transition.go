package order

import (
	"time"

	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

// AutoRefuseJustification é a mensagem fixa da recusa automática.
const AutoRefuseJustification = "Cliente não retirou o produto"

// ===============================
// Transições de fase
// ===============================
// Cada função valida a fase atual e a autorização, muda o ponteiro de
// fase e carimba as datas. A persistência fica com o repositório.

// MarkReady move EM_PRODUCAO -> AGUARDANDO_RETIRADA.
func MarkReady(o *models.ServiceOrder, ready *models.ServiceOrderPhase, actor Actor) error {
	if o.ServiceOrderPhase == nil {
		return httperr.ErrBusiness("no_phase")
	}
	if o.PhaseName() != PhaseEmProducao {
		return httperr.ErrBusiness("invalid_phase")
	}
	if err := CanManage(actor, o); err != nil {
		return err
	}

	o.ServiceOrderPhase = ready
	o.ServiceOrderPhaseID = &ready.ID
	return nil
}

// MarkRetrieved move EM_PRODUCAO ou AGUARDANDO_RETIRADA ->
// AGUARDANDO_DEVOLUCAO e carimba o momento da retirada. O eventual
// recebimento do restante é tratado antes, via AppendRemaining.
func MarkRetrieved(o *models.ServiceOrder, awaiting *models.ServiceOrderPhase, actor Actor, now time.Time) error {
	if o.ServiceOrderPhase == nil {
		return httperr.ErrBusiness("no_phase")
	}
	switch o.PhaseName() {
	case PhaseAguardandoDevolucao:
		return httperr.ErrBusiness("already_retrieved")
	case PhaseFinalizado:
		return httperr.ErrBusiness("already_finished")
	case PhaseEmProducao, PhaseAguardandoRetirada:
	default:
		return httperr.ErrBusiness("invalid_phase")
	}
	if err := CanManage(actor, o); err != nil {
		return err
	}

	o.ServiceOrderPhase = awaiting
	o.ServiceOrderPhaseID = &awaiting.ID
	o.DataRetirado = &now
	return nil
}

// MarkPaid move AGUARDANDO_DEVOLUCAO -> FINALIZADO.
func MarkPaid(o *models.ServiceOrder, finished *models.ServiceOrderPhase, actor Actor, now time.Time) error {
	if o.ServiceOrderPhase == nil {
		return httperr.ErrBusiness("no_phase")
	}
	if o.PhaseName() == PhaseFinalizado {
		return httperr.ErrBusiness("already_finished")
	}
	if o.PhaseName() != PhaseAguardandoDevolucao {
		return httperr.ErrBusiness("invalid_phase")
	}
	if err := CanManage(actor, o); err != nil {
		return err
	}

	today := timezone.Today(now)
	o.ServiceOrderPhase = finished
	o.ServiceOrderPhaseID = &finished.ID
	o.DataDevolvido = &now
	o.DataFinalizado = &today
	return nil
}

// Refuse move a OS para RECUSADA, guardando motivo e justificativa.
// OS sem fase definida (pré-triagem) também pode ser recusada.
func Refuse(o *models.ServiceOrder, refused *models.ServiceOrderPhase, reason *models.RefusalReason, justification *string, actor Actor, now time.Time) error {
	if o.ServiceOrderPhase != nil && !phaseIn(o.PhaseName(), RefusablePhases) {
		return httperr.ErrBusiness("invalid_phase")
	}
	if err := CanRefuse(actor, o); err != nil {
		return err
	}

	today := timezone.Today(now)
	o.ServiceOrderPhase = refused
	o.ServiceOrderPhaseID = &refused.ID
	o.JustificationReason = reason
	o.JustificationReasonID = &reason.ID
	o.JustificationRefusal = justification
	o.DataRecusa = &today
	o.Audit.Cancel(actor.UserID, now)
	return nil
}

// ReturnToPending devolve a OS para PENDENTE para reprocessamento.
// OS finalizada não volta.
func ReturnToPending(o *models.ServiceOrder, pending *models.ServiceOrderPhase, actor Actor) error {
	if o.ServiceOrderPhase == nil {
		return httperr.ErrBusiness("no_phase")
	}
	if o.PhaseName() == PhasePendente {
		return httperr.ErrBusiness("already_pending")
	}
	if o.PhaseName() == PhaseFinalizado {
		return httperr.ErrBusiness("invalid_phase")
	}
	if err := CanManage(actor, o); err != nil {
		return err
	}

	o.ServiceOrderPhase = pending
	o.ServiceOrderPhaseID = &pending.ID
	return nil
}

// AdvanceToProduction avança a OS para EM_PRODUCAO após uma
// atualização completa (com itens). Fases de produção em diante não
// são reavançadas.
func AdvanceToProduction(o *models.ServiceOrder, production *models.ServiceOrderPhase, now time.Time) bool {
	if o.ServiceOrderPhase == nil {
		return false
	}
	if phaseIn(o.PhaseName(), ProductionLocked) {
		return false
	}

	today := timezone.Today(now)
	o.ServiceOrderPhase = production
	o.ServiceOrderPhaseID = &production.ID
	o.ProductionDate = &today
	return true
}

// AutoRefuse aplica a recusa do sistema quando o evento vinculado já
// passou e a peça nunca foi retirada. Não há ator humano.
func AutoRefuse(o *models.ServiceOrder, refused *models.ServiceOrderPhase, now time.Time) {
	justification := AutoRefuseJustification
	today := timezone.Today(now)

	o.ServiceOrderPhase = refused
	o.ServiceOrderPhaseID = &refused.ID
	o.JustificationRefusal = &justification
	o.DataRecusa = &today
	o.DateCanceled = &now
}
