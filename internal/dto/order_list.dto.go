package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/NobreTrajes/os-control/internal/models"
)

// ItemDTO é uma peça de roupa no formato que o frontend espera.
type ItemDTO struct {
	Tipo              string `json:"tipo"`
	Numero            string `json:"numero,omitempty"`
	Cor               string `json:"cor"`
	Marca             string `json:"marca,omitempty"`
	Extras            string `json:"extras,omitempty"`
	Manga             string `json:"manga,omitempty"`
	Cintura           string `json:"cintura,omitempty"`
	Perna             string `json:"perna,omitempty"`
	Ajuste            string `json:"ajuste,omitempty"`
	AjusteCintura     string `json:"ajuste_cintura,omitempty"`
	AjusteComprimento string `json:"ajuste_comprimento,omitempty"`
	Venda             bool   `json:"venda"`
	Extensor          bool   `json:"extensor"`
}

// AcessorioDTO é um acessório (gravata, suspensório, passante...).
type AcessorioDTO struct {
	Tipo      string `json:"tipo"`
	Numero    string `json:"numero"`
	Cor       string `json:"cor"`
	Descricao string `json:"descricao"`
	Marca     string `json:"marca"`
	Extensor  bool   `json:"extensor"`
	Venda     bool   `json:"venda"`
}

type ClientDTO struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	CPF   *string `json:"cpf"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

type PagamentoDTO struct {
	Total          decimal.Decimal        `json:"total"`
	Sinal          decimal.Decimal        `json:"sinal"`
	Restante       decimal.Decimal        `json:"restante"`
	FormaPagamento string                 `json:"forma_pagamento"`
	Detalhes       []models.PaymentDetail `json:"detalhes,omitempty"`
}

type OrderListDTO struct {
	ID     uint       `json:"id"`
	Client *ClientDTO `json:"client"`

	EmployeeID    *uint   `json:"employee_id"`
	EmployeeName  *string `json:"employee_name"`
	AttendantID   *uint   `json:"attendant_id"`
	AttendantName *string `json:"attendant_name"`

	OrderDate     time.Time  `json:"data_pedido"`
	EventID       *uint      `json:"event_id"`
	EventName     *string    `json:"event_name"`
	EventDate     *time.Time `json:"data_evento"`
	ProvaDate     *time.Time `json:"data_prova"`
	RetiradaDate  *time.Time `json:"data_retirada"`
	DevolucaoDate *time.Time `json:"data_devolucao"`
	DataRetirado  *time.Time `json:"data_retirado"`
	DataDevolvido *time.Time `json:"data_devolvido"`

	Phase        string  `json:"fase"`
	Modalidade   string  `json:"modalidade"`
	Observations *string `json:"observations"`

	EstaAtrasada        bool    `json:"esta_atrasada"`
	JustificativaAtraso *string `json:"justificativa_atraso"`

	JustificationRefusal *string `json:"justification_refusal,omitempty"`
	RefusalReason        *string `json:"refusal_reason,omitempty"`

	Itens      []ItemDTO      `json:"itens"`
	Acessorios []AcessorioDTO `json:"acessorios"`
	Pagamento  PagamentoDTO   `json:"pagamento"`
}

// Tipos de peça tratados como roupa; o resto vai para acessórios.
func isClothing(tipo string) bool {
	switch tipo {
	case "paleto", "camisa", "calca", "calça", "colete":
		return true
	}
	return false
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FromServiceOrder monta o DTO de listagem a partir da OS carregada
// com associações.
func FromServiceOrder(o *models.ServiceOrder) OrderListDTO {
	out := OrderListDTO{
		ID:                   o.ID,
		OrderDate:            o.OrderDate,
		ProvaDate:            o.ProvaDate,
		RetiradaDate:         o.RetiradaDate,
		DevolucaoDate:        o.DevolucaoDate,
		DataRetirado:         o.DataRetirado,
		DataDevolvido:        o.DataDevolvido,
		Phase:                o.PhaseName(),
		Observations:         o.Observations,
		EstaAtrasada:         o.EstaAtrasada,
		EmployeeID:           o.EmployeeID,
		AttendantID:          o.AttendantID,
		EventID:              o.EventID,
		Modalidade:           "Aluguel",
		Itens:                []ItemDTO{},
		Acessorios:           []AcessorioDTO{},
		JustificationRefusal: o.JustificationRefusal,
		Pagamento: PagamentoDTO{
			Total:          o.TotalValue,
			Sinal:          o.AdvancePayment,
			Restante:       o.RemainingPayment,
			FormaPagamento: strOrEmpty(o.PaymentMethod),
			Detalhes:       o.PaymentDetails,
		},
	}

	if o.ServiceType != nil && *o.ServiceType != "" {
		out.Modalidade = *o.ServiceType
	}

	if o.Renter != nil {
		client := ClientDTO{
			ID:   o.Renter.ID,
			Name: o.Renter.Name,
			CPF:  o.Renter.CPF,
		}
		for _, ct := range o.Renter.Contacts {
			if client.Phone == nil && ct.Phone != nil {
				client.Phone = ct.Phone
			}
			if client.Email == nil && ct.Email != nil {
				client.Email = ct.Email
			}
		}
		out.Client = &client
	} else if o.ClientName != nil {
		out.Client = &ClientDTO{Name: *o.ClientName}
	}

	if o.Employee != nil {
		out.EmployeeName = &o.Employee.Name
	}
	if o.Attendant != nil {
		out.AttendantName = &o.Attendant.Name
	}
	if o.Event != nil {
		out.EventName = &o.Event.Name
		out.EventDate = o.Event.EventDate
	}
	if o.JustificationReason != nil {
		out.RefusalReason = &o.JustificationReason.Name
	}

	for i := range o.Items {
		appendItem(&out, &o.Items[i])
	}

	return out
}

func appendItem(out *OrderListDTO, item *models.ServiceOrderItem) {
	if tp := item.TemporaryProduct; tp != nil {
		if isClothing(tp.ProductType) {
			it := ItemDTO{
				Tipo:   tp.ProductType,
				Cor:    strOrEmpty(tp.Color),
				Extras: strOrEmpty(tp.Description),
				Venda:  tp.Venda,
			}
			switch tp.ProductType {
			case "paleto", "camisa":
				it.Numero = strOrEmpty(tp.Size)
				it.Manga = strOrEmpty(tp.SleeveLength)
				it.Marca = strOrEmpty(tp.Brand)
				it.Ajuste = strOrEmpty(item.AdjustmentNotes)
			case "calca", "calça":
				it.Numero = strOrEmpty(tp.Size)
				it.Cintura = strOrEmpty(tp.WaistSize)
				it.Perna = strOrEmpty(tp.LegLength)
				it.Marca = strOrEmpty(tp.Brand)
				it.AjusteCintura = strOrEmpty(tp.AjusteCintura)
				it.AjusteComprimento = strOrEmpty(tp.AjusteComprimento)
			case "colete":
				it.Marca = strOrEmpty(tp.Brand)
			}
			out.Itens = append(out.Itens, it)
			return
		}

		out.Acessorios = append(out.Acessorios, AcessorioDTO{
			Tipo:      tp.ProductType,
			Numero:    strOrEmpty(tp.Size),
			Cor:       strOrEmpty(tp.Color),
			Descricao: strOrEmpty(tp.Description),
			Marca:     strOrEmpty(tp.Brand),
			Extensor:  tp.Extensor,
			Venda:     tp.Venda,
		})
		return
	}

	if p := item.Product; p != nil {
		if isClothing(p.Type) {
			it := ItemDTO{
				Tipo:   p.Type,
				Cor:    strOrEmpty(p.Color),
				Extras: p.Name,
				Numero: strOrEmpty(p.Size),
				Marca:  strOrEmpty(p.Brand),
				Ajuste: strOrEmpty(item.AdjustmentNotes),
			}
			out.Itens = append(out.Itens, it)
			return
		}

		out.Acessorios = append(out.Acessorios, AcessorioDTO{
			Tipo:      p.Type,
			Numero:    strOrEmpty(p.Size),
			Cor:       strOrEmpty(p.Color),
			Descricao: p.Name,
			Marca:     strOrEmpty(p.Brand),
		})
	}
}
