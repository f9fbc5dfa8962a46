package validators

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NormalizeCPF remove pontuação e espaços do CPF.
func NormalizeCPF(raw string) string {
	cpf := strings.NewReplacer(".", "", "-", "", " ", "").Replace(raw)
	return strings.TrimSpace(cpf)
}

// IsCPFValid aceita CPF com 11 dígitos numéricos, com ou sem máscara.
func IsCPFValid(raw string) bool {
	cpf := NormalizeCPF(raw)
	if len(cpf) != 11 {
		return false
	}
	for _, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RegisterCPFValidation registra a tag `cpf` no binding do gin.
func RegisterCPFValidation() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if value == "" {
				return true
			}
			return IsCPFValid(value)
		})
	}
}
