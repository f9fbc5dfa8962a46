package handlers

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return db, mock
}

func assertInvalidCPF(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	code, ok := httperr.BusinessCode(err)
	require.True(t, ok, "esperava erro de negócio, veio %v", err)
	assert.Equal(t, "invalid_cpf", code)
}

func TestApplyClientUpdateExigeCPF(t *testing.T) {
	h := &OrderHandler{clock: timezone.RealClock{}}

	newOrder := func() *models.ServiceOrder {
		return &models.ServiceOrder{ID: 1, Renter: &models.Person{ID: 2, Name: "TEMP"}}
	}

	// A validação vem antes de qualquer acesso ao banco, então o tx
	// nulo nunca é tocado.
	t.Run("cpf ausente", func(t *testing.T) {
		err := h.applyClientUpdate(nil, newOrder(), &ClienteUpdateRequest{Nome: "Fulano"}, 1)
		assertInvalidCPF(t, err)
	})

	t.Run("cpf em branco", func(t *testing.T) {
		err := h.applyClientUpdate(nil, newOrder(), &ClienteUpdateRequest{CPF: "   "}, 1)
		assertInvalidCPF(t, err)
	})

	t.Run("cpf com menos de 11 digitos", func(t *testing.T) {
		err := h.applyClientUpdate(nil, newOrder(), &ClienteUpdateRequest{CPF: "123.456.789"}, 1)
		assertInvalidCPF(t, err)
	})

	t.Run("cpf com letras", func(t *testing.T) {
		err := h.applyClientUpdate(nil, newOrder(), &ClienteUpdateRequest{CPF: "123456789ab"}, 1)
		assertInvalidCPF(t, err)
	})
}

func TestApplyClientUpdateReaponta(t *testing.T) {
	t.Run("cpf de outro cadastro reaponta a OS sem conflito", func(t *testing.T) {
		db, mock := mockDB(t)
		h := &OrderHandler{db: db, clock: timezone.RealClock{}}

		renterCPF := "11122233344"
		renterID := uint(2)
		o := &models.ServiceOrder{
			ID:       5,
			RenterID: &renterID,
			Renter:   &models.Person{ID: 2, Name: "FULANO", CPF: &renterCPF},
		}

		mock.ExpectQuery(`SELECT \* FROM "person" WHERE cpf = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cpf", "person_type_id"}).
				AddRow(7, "BELTRANO", "55566677788", 1))
		mock.ExpectExec(`UPDATE "person" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := h.applyClientUpdate(db, o, &ClienteUpdateRequest{
			CPF:  "555.666.777-88",
			Nome: "Beltrano",
		}, 1)
		require.NoError(t, err)

		require.NotNil(t, o.RenterID)
		assert.Equal(t, uint(7), *o.RenterID)
		require.NotNil(t, o.Renter)
		assert.Equal(t, uint(7), o.Renter.ID)
		assert.Equal(t, "BELTRANO", o.Renter.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mesmo cpf do cliente atual segue sem erro", func(t *testing.T) {
		db, mock := mockDB(t)
		h := &OrderHandler{db: db, clock: timezone.RealClock{}}

		renterCPF := "11122233344"
		renterID := uint(2)
		o := &models.ServiceOrder{
			ID:       5,
			RenterID: &renterID,
			Renter:   &models.Person{ID: 2, Name: "FULANO", CPF: &renterCPF},
		}

		mock.ExpectQuery(`SELECT \* FROM "person" WHERE cpf = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cpf", "person_type_id"}).
				AddRow(2, "FULANO", renterCPF, 1))
		mock.ExpectExec(`UPDATE "person" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := h.applyClientUpdate(db, o, &ClienteUpdateRequest{CPF: renterCPF}, 1)
		require.NoError(t, err)

		require.NotNil(t, o.RenterID)
		assert.Equal(t, uint(2), *o.RenterID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
