package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/models"
)

// PaymentForm é uma forma de pagamento informada pelo caixa
// (dinheiro, pix, cartão...) com o valor recebido nela.
type PaymentForm struct {
	Amount         decimal.Decimal
	FormaPagamento string
}

// Recalc mantém o invariante de dinheiro da OS. Toda persistência
// passa por aqui: o restante nunca é mantido incrementalmente.
func Recalc(o *models.ServiceOrder) {
	o.RemainingPayment = o.TotalValue.Sub(o.AdvancePayment)
}

// RemainingAmount devolve o que falta pagar. Pode ser negativo, o
// sistema não bloqueia pagamento a maior.
func RemainingAmount(o *models.ServiceOrder) decimal.Decimal {
	return o.TotalValue.Sub(o.AdvancePayment)
}

// AppendRemaining registra o recebimento do restante no ato da
// retirada. A soma das formas precisa bater exatamente com o valor
// restante declarado; em caso de divergência nada é alterado.
func AppendRemaining(o *models.ServiceOrder, forms []PaymentForm, target decimal.Decimal, now time.Time) error {
	if len(forms) == 0 {
		return httperr.ErrBusiness("payment_forms_required")
	}

	total := decimal.Zero
	for _, f := range forms {
		total = total.Add(f.Amount)
	}
	if !total.Equal(target) {
		return httperr.ErrBusiness("payment_sum_mismatch")
	}

	methods := make([]string, 0, len(forms))
	for _, f := range forms {
		o.PaymentDetails = append(o.PaymentDetails, models.PaymentDetail{
			Amount:         f.Amount,
			FormaPagamento: f.FormaPagamento,
			Tipo:           models.PaymentTipoRestante,
			Data:           now.Format(time.RFC3339),
		})
		methods = append(methods, f.FormaPagamento)
	}

	o.AdvancePayment = o.AdvancePayment.Add(total)
	mergeMethods(o, methods)
	Recalc(o)
	return nil
}

// ReplaceDeposit troca o detalhamento do sinal por inteiro. O valor
// do sinal é o declarado pelo caixa, não a soma das formas, e as
// entradas são datadas com a data da OS. Usado apenas pela
// atualização geral; a retirada sempre acrescenta ao extrato.
func ReplaceDeposit(o *models.ServiceOrder, total *decimal.Decimal, forms []PaymentForm) {
	if total != nil {
		o.AdvancePayment = *total
	}

	if len(forms) > 0 {
		details := make([]models.PaymentDetail, 0, len(forms))
		methods := make([]string, 0, len(forms))
		dataSinal := o.OrderDate.Format("2006-01-02")

		for _, f := range forms {
			details = append(details, models.PaymentDetail{
				Amount:         f.Amount,
				FormaPagamento: f.FormaPagamento,
				Tipo:           models.PaymentTipoSinal,
				Data:           dataSinal,
			})
			found := false
			for _, m := range methods {
				if m == f.FormaPagamento {
					found = true
					break
				}
			}
			if !found {
				methods = append(methods, f.FormaPagamento)
			}
		}

		o.PaymentDetails = details
		joined := strings.Join(methods, ", ")
		o.PaymentMethod = &joined
	}

	Recalc(o)
}

// mergeMethods agrega formas de pagamento na string legada
// payment_method, sem duplicar e preservando a ordem de chegada.
func mergeMethods(o *models.ServiceOrder, methods []string) {
	existing := []string{}
	if o.PaymentMethod != nil && *o.PaymentMethod != "" {
		for _, m := range strings.Split(*o.PaymentMethod, ",") {
			existing = append(existing, strings.TrimSpace(m))
		}
	}

	for _, m := range methods {
		found := false
		for _, e := range existing {
			if e == m {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, m)
		}
	}

	if len(existing) == 0 {
		o.PaymentMethod = nil
		return
	}
	joined := strings.Join(existing, ", ")
	o.PaymentMethod = &joined
}
