package order

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
)

// fakeRepo guarda tudo em memória e serializa UpdateOrderLocked da
// mesma forma que o repositório real: callback sobre a cópia, persiste
// só quando o callback aceita.
type fakeRepo struct {
	phases  map[string]*models.ServiceOrderPhase
	reasons map[uint]*models.RefusalReason
	orders  map[uint]*models.ServiceOrder

	sweepCandidates []models.ServiceOrder
	lateCandidates  []models.ServiceOrder

	saved []uint
}

var _ domain.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		phases:  map[string]*models.ServiceOrderPhase{},
		reasons: map[uint]*models.RefusalReason{},
		orders:  map[uint]*models.ServiceOrder{},
	}
}

func (f *fakeRepo) addPhase(id uint, name string) *models.ServiceOrderPhase {
	p := &models.ServiceOrderPhase{ID: id, Name: name}
	f.phases[name] = p
	return p
}

func (f *fakeRepo) GetOrCreatePhase(_ context.Context, name string, _ *uint) (*models.ServiceOrderPhase, error) {
	if p, ok := f.phases[name]; ok {
		return p, nil
	}
	p := &models.ServiceOrderPhase{ID: uint(len(f.phases) + 1), Name: name}
	f.phases[name] = p
	return p, nil
}

func (f *fakeRepo) GetPhaseByName(_ context.Context, name string) (*models.ServiceOrderPhase, error) {
	if p, ok := f.phases[name]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetRefusalReason(_ context.Context, id uint) (*models.RefusalReason, error) {
	if r, ok := f.reasons[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListRefusalReasons(_ context.Context) ([]models.RefusalReason, error) {
	out := make([]models.RefusalReason, 0, len(f.reasons))
	for _, r := range f.reasons {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) GetOrder(_ context.Context, id uint) (*models.ServiceOrder, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListByPhase(_ context.Context, phaseName string) ([]models.ServiceOrder, error) {
	out := []models.ServiceOrder{}
	for _, o := range f.orders {
		if o.PhaseName() == phaseName && !o.IsVirtual {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListLateCandidates(_ context.Context) ([]models.ServiceOrder, error) {
	return f.lateCandidates, nil
}

func (f *fakeRepo) ListSweepCandidates(_ context.Context, _ time.Time) ([]models.ServiceOrder, error) {
	return f.sweepCandidates, nil
}

func (f *fakeRepo) UpdateOrderLocked(ctx context.Context, orderID uint, fn func(o *models.ServiceOrder) error) (*models.ServiceOrder, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	copied := *o
	if err := fn(&copied); err != nil {
		return nil, err
	}
	domain.Recalc(&copied)

	*o = copied
	f.saved = append(f.saved, orderID)
	return o, nil
}

func (f *fakeRepo) SaveOrder(_ context.Context, o *models.ServiceOrder) error {
	domain.Recalc(o)
	f.orders[o.ID] = o
	f.saved = append(f.saved, o.ID)
	return nil
}
