package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/models"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func adminActor() domain.Actor {
	return domain.Actor{UserID: 1, PersonID: 1, PersonType: models.PersonTypeAdmin}
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func seedOrder(repo *fakeRepo, id uint, phaseName string) *models.ServiceOrder {
	p, _ := repo.GetOrCreatePhase(context.Background(), phaseName, nil)
	o := &models.ServiceOrder{
		ID:                  id,
		OrderDate:           time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ServiceOrderPhase:   p,
		ServiceOrderPhaseID: &p.ID,
		TotalValue:          dec("500.00"),
		AdvancePayment:      dec("200.00"),
		RemainingPayment:    dec("300.00"),
	}
	repo.orders[id] = o
	return o
}

func assertBusinessCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	got, ok := httperr.BusinessCode(err)
	require.True(t, ok, "expected business error, got %v", err)
	assert.Equal(t, code, got)
}

func TestMarkReadyUsecase(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, 10, domain.PhaseEmProducao)

	uc := NewMarkReady(repo, nil)
	o, err := uc.Execute(context.Background(), 10, adminActor())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAguardandoRetirada, o.PhaseName())
}

func TestMarkRetrievedUsecase(t *testing.T) {
	t.Run("sem recebimento usa so a transicao", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhaseAguardandoRetirada)

		uc := NewMarkRetrieved(repo, nil, fixedClock{testNow})
		o, err := uc.Execute(context.Background(), 10, adminActor(), nil)
		require.NoError(t, err)

		assert.Equal(t, domain.PhaseAguardandoDevolucao, o.PhaseName())
		require.NotNil(t, o.DataRetirado)
		assert.True(t, o.AdvancePayment.Equal(dec("200.00")))
	})

	t.Run("recebimento do restante quita a OS", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhaseAguardandoRetirada)

		uc := NewMarkRetrieved(repo, nil, fixedClock{testNow})
		receipt := &PaymentReceipt{
			Forms: []domain.PaymentForm{{Amount: dec("300.00"), FormaPagamento: "pix"}},
		}
		o, err := uc.Execute(context.Background(), 10, adminActor(), receipt)
		require.NoError(t, err)

		assert.True(t, o.AdvancePayment.Equal(dec("500.00")))
		assert.True(t, o.RemainingPayment.Equal(decimal.Zero))
		require.Len(t, o.PaymentDetails, 1)
		assert.Equal(t, models.PaymentTipoRestante, o.PaymentDetails[0].Tipo)
	})

	t.Run("soma divergente aborta sem persistir", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhaseAguardandoRetirada)

		uc := NewMarkRetrieved(repo, nil, fixedClock{testNow})
		receipt := &PaymentReceipt{
			Forms: []domain.PaymentForm{{Amount: dec("100.00"), FormaPagamento: "pix"}},
		}
		_, err := uc.Execute(context.Background(), 10, adminActor(), receipt)
		assertBusinessCode(t, err, "payment_sum_mismatch")

		o := repo.orders[10]
		assert.Equal(t, domain.PhaseAguardandoRetirada, o.PhaseName())
		assert.True(t, o.AdvancePayment.Equal(dec("200.00")))
		assert.Nil(t, o.DataRetirado)
	})

	t.Run("guard de fase vem antes do pagamento", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhaseFinalizado)

		uc := NewMarkRetrieved(repo, nil, fixedClock{testNow})
		receipt := &PaymentReceipt{
			Forms: []domain.PaymentForm{{Amount: dec("1.00"), FormaPagamento: "pix"}},
		}
		_, err := uc.Execute(context.Background(), 10, adminActor(), receipt)
		assertBusinessCode(t, err, "already_finished")
	})

	t.Run("valor restante declarado sobrepoe o calculado", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhaseAguardandoRetirada)

		declared := dec("250.00")
		uc := NewMarkRetrieved(repo, nil, fixedClock{testNow})
		receipt := &PaymentReceipt{
			RemainingAmount: &declared,
			Forms:           []domain.PaymentForm{{Amount: dec("250.00"), FormaPagamento: "pix"}},
		}
		o, err := uc.Execute(context.Background(), 10, adminActor(), receipt)
		require.NoError(t, err)
		assert.True(t, o.AdvancePayment.Equal(dec("450.00")))
	})
}

func TestMarkPaidUsecase(t *testing.T) {
	t.Run("finaliza e registra restante", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhaseAguardandoDevolucao)

		uc := NewMarkPaid(repo, nil, fixedClock{testNow})
		receipt := &PaymentReceipt{
			Forms: []domain.PaymentForm{{Amount: dec("300.00"), FormaPagamento: "dinheiro"}},
		}
		o, err := uc.Execute(context.Background(), 10, adminActor(), receipt)
		require.NoError(t, err)

		assert.Equal(t, domain.PhaseFinalizado, o.PhaseName())
		require.NotNil(t, o.DataDevolvido)
		require.NotNil(t, o.DataFinalizado)
		assert.True(t, o.RemainingPayment.Equal(decimal.Zero))
	})

	t.Run("ja finalizada", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhaseFinalizado)

		uc := NewMarkPaid(repo, nil, fixedClock{testNow})
		_, err := uc.Execute(context.Background(), 10, adminActor(), nil)
		assertBusinessCode(t, err, "already_finished")
	})
}

func TestRefuseUsecase(t *testing.T) {
	t.Run("recusa com motivo valido", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhasePendente)
		repo.reasons[2] = &models.RefusalReason{ID: 2, Name: "Preço"}

		uc := NewRefuse(repo, nil, fixedClock{testNow})
		j := "  muito caro  "
		o, err := uc.Execute(context.Background(), 10, adminActor(), 2, &j)
		require.NoError(t, err)

		assert.Equal(t, domain.PhaseRecusada, o.PhaseName())
		require.NotNil(t, o.JustificationRefusal)
		assert.Equal(t, "muito caro", *o.JustificationRefusal)
	})

	t.Run("justificativa em branco vira nula", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhasePendente)
		repo.reasons[2] = &models.RefusalReason{ID: 2, Name: "Preço"}

		uc := NewRefuse(repo, nil, fixedClock{testNow})
		j := "   "
		o, err := uc.Execute(context.Background(), 10, adminActor(), 2, &j)
		require.NoError(t, err)
		assert.Nil(t, o.JustificationRefusal)
	})

	t.Run("motivo inexistente", func(t *testing.T) {
		repo := newFakeRepo()
		seedOrder(repo, 10, domain.PhasePendente)

		uc := NewRefuse(repo, nil, fixedClock{testNow})
		_, err := uc.Execute(context.Background(), 10, adminActor(), 99, nil)
		assertBusinessCode(t, err, "invalid_refusal_reason")
	})
}

func TestReturnToPendingUsecase(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, 10, domain.PhaseRecusada)

	uc := NewReturnToPending(repo, nil)
	o, err := uc.Execute(context.Background(), 10, adminActor())
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePendente, o.PhaseName())
}
