package order

import (
	"context"
	"time"

	"github.com/NobreTrajes/os-control/internal/models"
)

type Repository interface {
	// -------- Fases e motivos --------
	GetOrCreatePhase(
		ctx context.Context,
		name string,
		createdBy *uint,
	) (*models.ServiceOrderPhase, error)

	GetPhaseByName(
		ctx context.Context,
		name string,
	) (*models.ServiceOrderPhase, error)

	GetRefusalReason(
		ctx context.Context,
		id uint,
	) (*models.RefusalReason, error)

	ListRefusalReasons(
		ctx context.Context,
	) ([]models.RefusalReason, error)

	// -------- OS (leitura) --------
	GetOrder(
		ctx context.Context,
		id uint,
	) (*models.ServiceOrder, error)

	ListByPhase(
		ctx context.Context,
		phaseName string,
	) ([]models.ServiceOrder, error)

	// ListLateCandidates devolve as OS em AGUARDANDO_DEVOLUCAO com
	// evento vinculado, para o filtro ATRASADO em memória.
	ListLateCandidates(
		ctx context.Context,
	) ([]models.ServiceOrder, error)

	// ListSweepCandidates devolve as OS com evento já passado e sem
	// retirada registrada, nas fases varridas pela recusa automática.
	ListSweepCandidates(
		ctx context.Context,
		today time.Time,
	) ([]models.ServiceOrder, error)

	// -------- OS (mutação serializada) --------
	// UpdateOrderLocked carrega a OS com lock de linha dentro de uma
	// transação, aplica fn e persiste com o restante recalculado.
	UpdateOrderLocked(
		ctx context.Context,
		orderID uint,
		fn func(o *models.ServiceOrder) error,
	) (*models.ServiceOrder, error)

	SaveOrder(
		ctx context.Context,
		o *models.ServiceOrder,
	) error
}
