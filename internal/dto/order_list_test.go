package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NobreTrajes/os-control/internal/models"
)

func strPtr(s string) *string { return &s }

func TestFromServiceOrderItemCalca(t *testing.T) {
	newOrder := func(tipo string) *models.ServiceOrder {
		return &models.ServiceOrder{
			ID: 1,
			Items: []models.ServiceOrderItem{
				{
					TemporaryProduct: &models.TemporaryProduct{
						ProductType:       tipo,
						Size:              strPtr("42"),
						WaistSize:         strPtr("88"),
						LegLength:         strPtr("104"),
						Brand:             strPtr("VIA VENETO"),
						Color:             strPtr("PRETO"),
						AjusteCintura:     strPtr("-2"),
						AjusteComprimento: strPtr("+1"),
					},
				},
			},
		}
	}

	// "calca" e "calça" chegam conforme o front enviou; as duas grafias
	// carregam as medidas da calça no item.
	for _, tipo := range []string{"calca", "calça"} {
		t.Run(tipo, func(t *testing.T) {
			out := FromServiceOrder(newOrder(tipo))

			require.Len(t, out.Itens, 1)
			assert.Empty(t, out.Acessorios)

			it := out.Itens[0]
			assert.Equal(t, tipo, it.Tipo)
			assert.Equal(t, "42", it.Numero)
			assert.Equal(t, "88", it.Cintura)
			assert.Equal(t, "104", it.Perna)
			assert.Equal(t, "VIA VENETO", it.Marca)
			assert.Equal(t, "PRETO", it.Cor)
			assert.Equal(t, "-2", it.AjusteCintura)
			assert.Equal(t, "+1", it.AjusteComprimento)
		})
	}
}
