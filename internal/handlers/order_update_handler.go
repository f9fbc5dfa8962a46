package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NobreTrajes/os-control/internal/audit"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/httpresp"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/validators"
)

// ======================================================
// REQUESTS
// ======================================================

type PaymentFormRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	FormaPagamento string          `json:"forma_pagamento" binding:"required"`
}

type SinalRequest struct {
	Total      *decimal.Decimal     `json:"total"`
	Pagamentos []PaymentFormRequest `json:"pagamentos"`
}

type PagamentoRequest struct {
	Total *decimal.Decimal `json:"total"`
}

type UpdateItemRequest struct {
	Tipo              string  `json:"tipo" binding:"required"`
	Numero            string  `json:"numero"`
	Cor               string  `json:"cor"`
	Marca             string  `json:"marca"`
	Manga             string  `json:"manga"`
	Cintura           string  `json:"cintura"`
	Perna             string  `json:"perna"`
	Descricao         string  `json:"descricao"`
	Ajuste            bool    `json:"ajuste"`
	AjusteCintura     string  `json:"ajuste_cintura"`
	AjusteComprimento string  `json:"ajuste_comprimento"`
	Venda             bool    `json:"venda"`
	Extensor          bool    `json:"extensor"`
	ProductID         *uint   `json:"product_id"`
	ValorAjuste       *int    `json:"valor_ajuste"`
	ObsAjuste         *string `json:"obs_ajuste"`
}

type OrdemServicoRequest struct {
	DataRetirada   *string           `json:"data_retirada"`
	DataDevolucao  *string           `json:"data_devolucao"`
	DataProva      *string           `json:"data_prova"`
	MaxPaymentDate *string           `json:"data_limite_pagamento"`
	Ocasiao        *string           `json:"ocasiao"`
	Origem         *string           `json:"origem"`
	Modalidade     *string           `json:"modalidade"`
	EmployeeID     *uint             `json:"employee_id"`
	Pagamento      *PagamentoRequest `json:"pagamento"`
	Sinal          *SinalRequest     `json:"sinal"`
	FormaPagamento *string           `json:"forma_pagamento"`
	Observacoes    *string           `json:"observacoes"`

	// Ponteiro para slice: distingue chave ausente de lista vazia.
	// A presença da chave dispara a troca total dos itens e o avanço
	// automático para EM_PRODUCAO.
	Itens      *[]UpdateItemRequest `json:"itens"`
	Acessorios *[]UpdateItemRequest `json:"acessorios"`
}

type ContatoRequest struct {
	Tipo  string `json:"tipo"`
	Valor string `json:"valor"`
}

type ClienteUpdateRequest struct {
	Nome      string            `json:"nome"`
	CPF       string            `json:"cpf"`
	Contatos  []ContatoRequest  `json:"contatos"`
	Enderecos []EnderecoRequest `json:"enderecos"`
}

type UpdateOrderRequest struct {
	OrdemServico *OrdemServicoRequest  `json:"ordem_servico"`
	Cliente      *ClienteUpdateRequest `json:"cliente"`
}

// ======================================================
// UPDATE
// ======================================================

func (h *OrderHandler) Update(c *gin.Context) {
	actor := actorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	now := h.clock.Now()

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var o models.ServiceOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Renter").
			Preload("ServiceOrderPhase").
			Preload("Items").
			First(&o, id).Error; err != nil {
			return httperr.ErrBusiness("order_not_found")
		}

		if req.Cliente != nil {
			if err := h.applyClientUpdate(tx, &o, req.Cliente, actor.UserID); err != nil {
				return err
			}
		}

		itemsTouched := false
		if req.OrdemServico != nil {
			os := req.OrdemServico

			if os.DataRetirada != nil {
				o.RetiradaDate = parseDatePtr(*os.DataRetirada)
			}
			if os.DataDevolucao != nil {
				o.DevolucaoDate = parseDatePtr(*os.DataDevolucao)
			}
			if os.DataProva != nil {
				o.ProvaDate = parseDatePtr(*os.DataProva)
			}
			if os.MaxPaymentDate != nil {
				o.MaxPaymentDate = parseDatePtr(*os.MaxPaymentDate)
			}
			if os.Ocasiao != nil {
				role := strings.ToUpper(*os.Ocasiao)
				o.RenterRole = &role
			}
			if os.Origem != nil {
				origem := strings.ToUpper(*os.Origem)
				o.CameFrom = &origem
			}
			if os.Modalidade != nil {
				o.Purchase = *os.Modalidade == "Compra" || *os.Modalidade == "Venda"
				o.ServiceType = os.Modalidade
			}
			if os.Observacoes != nil {
				o.Observations = os.Observacoes
			}
			if os.EmployeeID != nil {
				var employee models.Person
				if err := tx.First(&employee, *os.EmployeeID).Error; err != nil {
					return httperr.ErrBusiness("employee_not_found")
				}
				o.EmployeeID = &employee.ID
			}
			if os.Pagamento != nil && os.Pagamento.Total != nil {
				o.TotalValue = *os.Pagamento.Total
			}
			if os.Sinal != nil {
				forms := make([]domain.PaymentForm, 0, len(os.Sinal.Pagamentos))
				for _, p := range os.Sinal.Pagamentos {
					forms = append(forms, domain.PaymentForm{
						Amount:         p.Amount,
						FormaPagamento: p.FormaPagamento,
					})
				}
				domain.ReplaceDeposit(&o, os.Sinal.Total, forms)
			}
			if os.FormaPagamento != nil {
				o.PaymentMethod = os.FormaPagamento
			}

			if os.Itens != nil || os.Acessorios != nil {
				itemsTouched = true
				var itens, acessorios []UpdateItemRequest
				if os.Itens != nil {
					itens = *os.Itens
				}
				if os.Acessorios != nil {
					acessorios = *os.Acessorios
				}
				if err := h.replaceItems(tx, &o, itens, acessorios, actor.UserID); err != nil {
					return err
				}
			}
		}

		if itemsTouched && o.ServiceOrderPhaseID != nil {
			var production models.ServiceOrderPhase
			if err := tx.Where("name = ?", domain.PhaseEmProducao).First(&production).Error; err == nil {
				domain.AdvanceToProduction(&o, &production, now)
			}
		}

		o.Touch(actor.UserID, now)
		domain.Recalc(&o)
		return tx.Omit(clause.Associations).Save(&o).Error
	})
	if err != nil {
		if code, ok := httperr.BusinessCode(err); ok {
			switch code {
			case "order_not_found":
				httperr.NotFound(c, code, "Ordem de serviço não encontrada.")
			case "employee_not_found":
				httperr.BadRequest(c, code, "Funcionário não encontrado.")
			case "invalid_cpf":
				httperr.BadRequest(c, code, "CPF do cliente é obrigatório e deve conter 11 dígitos.")
			default:
				httperr.BadRequest(c, code, "Dados inválidos.")
			}
			return
		}
		httperr.Internal(c, "order_update_failed", "Erro ao atualizar OS.")
		return
	}

	orderID := uint(id)
	h.audit.Dispatch(audit.Event{
		UserID:    &actor.UserID,
		Action:    "order_updated",
		Entity:    "service_order",
		EntityID:  &orderID,
		RequestID: requestIDFromContext(c),
	})

	h.invalidateFinanceCache(c)

	httpresp.Success(c, "OS atualizada com sucesso", nil)
}

// ======================================================
// CLIENT MERGE
// ======================================================

// applyClientUpdate atualiza o cadastro do cliente da OS. O CPF é
// obrigatório aqui: é por ele que o cadastro é resolvido. Quando a OS
// nasceu na pré-triagem o cliente pode ser uma pessoa temporária sem
// CPF; ao receber o CPF definitivo os dados são fundidos no cadastro
// já existente com aquele CPF, e a pessoa temporária é removida se
// nenhuma outra OS a referencia. Cliente já com CPF: a OS passa a
// apontar para o cadastro dono do CPF informado, criado na hora se
// não existir. CPF de cadastro existente nunca é sobrescrito.
func (h *OrderHandler) applyClientUpdate(
	tx *gorm.DB,
	o *models.ServiceOrder,
	req *ClienteUpdateRequest,
	userID uint,
) error {

	cpf := validators.NormalizeCPF(req.CPF)
	if !validators.IsCPFValid(cpf) {
		return httperr.ErrBusiness("invalid_cpf")
	}

	person := o.Renter

	if person != nil && person.CPF == nil {
		var existing models.Person
		err := tx.Where("cpf = ? AND id <> ?", cpf, person.ID).First(&existing).Error
		switch err {
		case nil:
			if err := h.mergeTempPerson(tx, o, person, &existing); err != nil {
				return err
			}
			person = &existing
			o.Renter = person
		case gorm.ErrRecordNotFound:
			person.CPF = &cpf
		default:
			return err
		}
	} else {
		target, err := h.getOrCreatePersonByCPF(tx, cpf, req.Nome, userID)
		if err != nil {
			return err
		}
		person = target
		o.Renter = person
		o.RenterID = &person.ID
	}

	if req.Nome != "" {
		person.Name = strings.ToUpper(req.Nome)
	}
	person.Touch(userID, h.clock.Now())
	if err := tx.Omit(clause.Associations).Save(person).Error; err != nil {
		return err
	}

	var phone, email string
	for _, ct := range req.Contatos {
		switch strings.ToLower(ct.Tipo) {
		case "telefone":
			phone = ct.Valor
		case "email":
			email = ct.Valor
		}
	}
	if err := h.upsertContact(tx, person, phone, email, userID); err != nil {
		return err
	}

	if len(req.Enderecos) > 0 {
		addr := req.Enderecos[len(req.Enderecos)-1]
		if addr.Cidade != "" {
			city, err := h.findCity(tx, addr.Cidade)
			if err != nil {
				return err
			}
			if city == nil {
				created := models.City{
					Code: "00000",
					Name: strings.ToUpper(addr.Cidade),
					UF:   "SP",
				}
				created.CreatedByID = &userID
				if err := tx.Create(&created).Error; err != nil {
					return err
				}
				city = &created
			}
			if err := h.upsertAddress(tx, person, &addr, city, userID); err != nil {
				return err
			}
		}
	}

	return nil
}

// mergeTempPerson transfere contatos e endereços da pessoa temporária
// para o cadastro definitivo e repontua a OS. A temporária só é
// excluída quando nenhuma outra OS a referencia.
func (h *OrderHandler) mergeTempPerson(
	tx *gorm.DB,
	o *models.ServiceOrder,
	temp *models.Person,
	target *models.Person,
) error {

	var tempContacts []models.PersonContact
	if err := tx.Where("person_id = ?", temp.ID).Find(&tempContacts).Error; err != nil {
		return err
	}
	for i := range tempContacts {
		ct := &tempContacts[i]
		var count int64
		q := tx.Model(&models.PersonContact{}).Where("person_id = ?", target.ID)
		if ct.Phone != nil {
			q = q.Where("phone = ?", *ct.Phone)
		} else {
			q = q.Where("phone IS NULL")
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			if err := tx.Delete(ct).Error; err != nil {
				return err
			}
			continue
		}
		ct.PersonID = target.ID
		if err := tx.Omit(clause.Associations).Save(ct).Error; err != nil {
			return err
		}
	}

	var tempAddresses []models.PersonAddress
	if err := tx.Where("person_id = ?", temp.ID).Find(&tempAddresses).Error; err != nil {
		return err
	}
	for i := range tempAddresses {
		ad := &tempAddresses[i]
		var count int64
		if err := tx.Model(&models.PersonAddress{}).
			Where("person_id = ? AND street IS NOT DISTINCT FROM ? AND number IS NOT DISTINCT FROM ? AND cep IS NOT DISTINCT FROM ?",
				target.ID, ad.Street, ad.Number, ad.CEP).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			if err := tx.Delete(ad).Error; err != nil {
				return err
			}
			continue
		}
		ad.PersonID = target.ID
		if err := tx.Omit(clause.Associations).Save(ad).Error; err != nil {
			return err
		}
	}

	o.RenterID = &target.ID
	if err := tx.Model(&models.ServiceOrder{}).
		Where("id = ?", o.ID).
		Update("renter_id", target.ID).Error; err != nil {
		return err
	}

	var others int64
	if err := tx.Model(&models.ServiceOrder{}).
		Where("renter_id = ? AND id <> ?", temp.ID, o.ID).
		Count(&others).Error; err != nil {
		return err
	}
	if others == 0 {
		if err := tx.Delete(temp).Error; err != nil {
			return err
		}
	}

	return nil
}

// ======================================================
// ITEMS
// ======================================================

// cleanField normaliza campo de medida vindo do balcão.
func cleanField(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// replaceItems troca todos os itens da OS pelos do payload. Os itens
// temporários antigos são removidos junto, já que só existem por causa
// da OS.
func (h *OrderHandler) replaceItems(
	tx *gorm.DB,
	o *models.ServiceOrder,
	itens []UpdateItemRequest,
	acessorios []UpdateItemRequest,
	userID uint,
) error {

	var old []models.ServiceOrderItem
	if err := tx.Where("service_order_id = ?", o.ID).Find(&old).Error; err != nil {
		return err
	}
	tempIDs := make([]uint, 0, len(old))
	for _, it := range old {
		if it.TemporaryProductID != nil {
			tempIDs = append(tempIDs, *it.TemporaryProductID)
		}
	}
	if err := tx.Where("service_order_id = ?", o.ID).Delete(&models.ServiceOrderItem{}).Error; err != nil {
		return err
	}
	if len(tempIDs) > 0 {
		if err := tx.Delete(&models.TemporaryProduct{}, tempIDs).Error; err != nil {
			return err
		}
	}

	create := func(req UpdateItemRequest, acessorio bool) error {
		item := models.ServiceOrderItem{
			ServiceOrderID:   o.ID,
			AdjustmentNeeded: req.Ajuste,
			AdjustmentValue:  req.ValorAjuste,
			AdjustmentNotes:  req.ObsAjuste,
		}
		item.CreatedByID = &userID

		if req.ProductID != nil {
			var product models.Product
			if err := tx.First(&product, *req.ProductID).Error; err != nil {
				return httperr.ErrBusiness("product_not_found")
			}
			item.ProductID = &product.ID
			return tx.Create(&item).Error
		}

		tp := models.TemporaryProduct{
			ProductType: strings.ToLower(req.Tipo),
			Size:        cleanField(req.Numero),
			Color:       cleanField(req.Cor),
			Brand:       cleanField(req.Marca),
			Description: cleanField(req.Descricao),
			Extensor:    req.Extensor,
			Venda:       req.Venda,
		}
		tp.CreatedByID = &userID

		switch tp.ProductType {
		case "paleto", "camisa", "colete":
			tp.SleeveLength = cleanField(req.Manga)
		case "calca", "calça":
			tp.WaistSize = cleanField(req.Cintura)
			tp.LegLength = cleanField(req.Perna)
			tp.AjusteCintura = cleanField(req.AjusteCintura)
			tp.AjusteComprimento = cleanField(req.AjusteComprimento)
		}
		if acessorio && tp.Description == nil {
			tp.Description = cleanField(req.Tipo)
		}

		if err := tx.Create(&tp).Error; err != nil {
			return err
		}
		item.TemporaryProductID = &tp.ID
		return tx.Create(&item).Error
	}

	for _, req := range itens {
		if err := create(req, false); err != nil {
			return err
		}
	}
	for _, req := range acessorios {
		if err := create(req, true); err != nil {
			return err
		}
	}
	return nil
}
