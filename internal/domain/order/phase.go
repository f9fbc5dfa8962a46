package order

// ===============================
// Fases da Ordem de Serviço
// ===============================

const (
	PhasePendente            = "PENDENTE"
	PhaseEmProducao          = "EM_PRODUCAO"
	PhaseAguardandoRetirada  = "AGUARDANDO_RETIRADA"
	PhaseAguardandoDevolucao = "AGUARDANDO_DEVOLUCAO"
	PhaseFinalizado          = "FINALIZADO"
	PhaseRecusada            = "RECUSADA"

	// PhaseAtrasado é uma visão de filtro, nunca persistida.
	PhaseAtrasado = "ATRASADO"
)

// StoredPhases são as fases que existem como linha na tabela de fases.
var StoredPhases = []string{
	PhasePendente,
	PhaseEmProducao,
	PhaseAguardandoRetirada,
	PhaseAguardandoDevolucao,
	PhaseFinalizado,
	PhaseRecusada,
}

// ClosedPhases excluem a OS do resumo financeiro. Os nomes legados
// de cancelamento continuam na lista porque a base histórica os contém.
var ClosedPhases = []string{
	PhaseRecusada,
	"CANCELADO",
	"CANCELADA",
	"CONCLUÍDO",
}

// SweepPhases são as fases varridas pela recusa automática quando o
// evento vinculado já passou e a peça nunca foi retirada.
var SweepPhases = []string{
	PhasePendente,
	PhaseEmProducao,
	PhaseAguardandoDevolucao,
	PhaseFinalizado,
	PhaseAguardandoRetirada,
}

// ProductionLocked são as fases em que a atualização completa não
// reavança a OS para EM_PRODUCAO.
var ProductionLocked = []string{
	PhaseEmProducao,
	PhaseAguardandoRetirada,
	PhaseAguardandoDevolucao,
	PhaseFinalizado,
	PhaseRecusada,
}

// RefusablePhases são as fases a partir das quais a recusa manual é
// permitida. OS sem fase (pré-triagem) também pode ser recusada.
var RefusablePhases = []string{
	PhasePendente,
	PhaseEmProducao,
	PhaseAguardandoRetirada,
}

func phaseIn(name string, set []string) bool {
	for _, p := range set {
		if p == name {
			return true
		}
	}
	return false
}

// IsStored informa se o nome corresponde a uma fase persistida
// (ATRASADO, por exemplo, não é).
func IsStored(name string) bool {
	return phaseIn(name, StoredPhases)
}
