package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// --------------------------------------------------
// Fases e motivos
// --------------------------------------------------

func (r *OrderGormRepository) GetOrCreatePhase(
	ctx context.Context,
	name string,
	createdBy *uint,
) (*models.ServiceOrderPhase, error) {

	phase := models.ServiceOrderPhase{Name: name}
	phase.CreatedByID = createdBy

	// Upsert idempotente: duas requisições simultâneas convergem para
	// a mesma linha pelo índice único em name.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&phase).Error; err != nil {
		return nil, err
	}

	var out models.ServiceOrderPhase
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *OrderGormRepository) GetPhaseByName(
	ctx context.Context,
	name string,
) (*models.ServiceOrderPhase, error) {

	var phase models.ServiceOrderPhase
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&phase).Error; err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *OrderGormRepository) GetRefusalReason(
	ctx context.Context,
	id uint,
) (*models.RefusalReason, error) {

	var reason models.RefusalReason
	if err := r.db.WithContext(ctx).First(&reason, id).Error; err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *OrderGormRepository) ListRefusalReasons(
	ctx context.Context,
) ([]models.RefusalReason, error) {

	var reasons []models.RefusalReason
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&reasons).Error; err != nil {
		return nil, err
	}
	return reasons, nil
}

// --------------------------------------------------
// OS (leitura)
// --------------------------------------------------

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Renter").
		Preload("Renter.PersonType").
		Preload("Renter.Contacts").
		Preload("Employee").
		Preload("Attendant").
		Preload("Event").
		Preload("ServiceOrderPhase").
		Preload("JustificationReason").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.TemporaryProduct")
}

func (r *OrderGormRepository) GetOrder(
	ctx context.Context,
	id uint,
) (*models.ServiceOrder, error) {

	var o models.ServiceOrder
	if err := preloadOrder(r.db.WithContext(ctx)).
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderGormRepository) ListByPhase(
	ctx context.Context,
	phaseName string,
) ([]models.ServiceOrder, error) {

	var orders []models.ServiceOrder
	err := preloadOrder(r.db.WithContext(ctx)).
		Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
		Where("p.name = ? AND service_orders.is_virtual = false", phaseName).
		Order("service_orders.id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderGormRepository) ListLateCandidates(
	ctx context.Context,
) ([]models.ServiceOrder, error) {

	var orders []models.ServiceOrder
	err := preloadOrder(r.db.WithContext(ctx)).
		Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
		Where(
			"p.name = ? AND service_orders.is_virtual = false AND service_orders.event_id IS NOT NULL",
			domain.PhaseAguardandoDevolucao,
		).
		Order("service_orders.id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderGormRepository) ListSweepCandidates(
	ctx context.Context,
	today time.Time,
) ([]models.ServiceOrder, error) {

	var orders []models.ServiceOrder
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("ServiceOrderPhase").
		Joins("JOIN events e ON e.id = service_orders.event_id").
		Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
		Where(
			"e.event_date < ? AND service_orders.data_retirado IS NULL AND p.name IN ?",
			today,
			domain.SweepPhases,
		).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// --------------------------------------------------
// OS (mutação serializada)
// --------------------------------------------------

func (r *OrderGormRepository) UpdateOrderLocked(
	ctx context.Context,
	orderID uint,
	fn func(o *models.ServiceOrder) error,
) (*models.ServiceOrder, error) {

	var out *models.ServiceOrder

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.ServiceOrder
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, orderID).Error; err != nil {
			return err
		}

		// Lock primeiro na linha da OS; as associações são carregadas
		// em seguida dentro da mesma transação.
		if err := preloadOrder(tx).First(&o, orderID).Error; err != nil {
			return err
		}

		if err := fn(&o); err != nil {
			return err
		}

		domain.Recalc(&o)

		if err := tx.Omit(clause.Associations).Save(&o).Error; err != nil {
			return err
		}

		out = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderGormRepository) SaveOrder(
	ctx context.Context,
	o *models.ServiceOrder,
) error {
	domain.Recalc(o)
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

// Compile-time check
var _ domain.Repository = (*OrderGormRepository)(nil)
