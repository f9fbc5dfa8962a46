package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "12345678901", NormalizeCPF("123.456.789-01"))
	assert.Equal(t, "12345678901", NormalizeCPF(" 123 456 789 01 "))
	assert.Equal(t, "12345678901", NormalizeCPF("12345678901"))
	assert.Equal(t, "", NormalizeCPF("  "))
}

func TestIsCPFValid(t *testing.T) {
	t.Run("com e sem mascara", func(t *testing.T) {
		assert.True(t, IsCPFValid("123.456.789-01"))
		assert.True(t, IsCPFValid("12345678901"))
	})

	t.Run("tamanho errado", func(t *testing.T) {
		assert.False(t, IsCPFValid("1234567890"))
		assert.False(t, IsCPFValid("123456789012"))
		assert.False(t, IsCPFValid(""))
	})

	t.Run("caracteres nao numericos", func(t *testing.T) {
		assert.False(t, IsCPFValid("1234567890a"))
		assert.False(t, IsCPFValid("abc.def.ghi-jk"))
	})
}
