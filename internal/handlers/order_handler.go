package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NobreTrajes/os-control/internal/audit"
	"github.com/NobreTrajes/os-control/internal/cache"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/dto"
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/httpresp"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/timezone"
	"github.com/NobreTrajes/os-control/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type OrderHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	cache *cache.Cache
	clock timezone.Clock
}

func NewOrderHandler(db *gorm.DB, auditD *audit.Dispatcher, readCache *cache.Cache, clock timezone.Clock) *OrderHandler {
	return &OrderHandler{
		db:    db,
		audit: auditD,
		cache: readCache,
		clock: clock,
	}
}

// invalidateFinanceCache derruba os resumos cacheados depois de
// qualquer mutação que mexa em valores ou fases.
func (h *OrderHandler) invalidateFinanceCache(c *gin.Context) {
	h.cache.Invalidate(c.Request.Context(), "finance:*")
	h.cache.Invalidate(c.Request.Context(), "dashboard:*")
}

// ======================================================
// REQUESTS
// ======================================================

type EnderecoRequest struct {
	CEP         string `json:"cep"`
	Rua         string `json:"rua"`
	Numero      string `json:"numero"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Complemento string `json:"complemento"`
}

type CreateOrderRequest struct {
	ClienteNome string           `json:"cliente_nome" binding:"required"`
	Telefone    string           `json:"telefone"`
	Email       string           `json:"email"`
	CPF         string           `json:"cpf" binding:"required,cpf"`
	Atendente   string           `json:"atendente" binding:"required"`
	Origem      string           `json:"origem" binding:"required"`
	TipoServico string           `json:"tipo_servico" binding:"required"`
	PapelEvento string           `json:"papel_evento" binding:"required"`
	EventID     *uint            `json:"event_id"`
	Endereco    *EnderecoRequest `json:"endereco"`
}

type PreTriageRequest struct {
	ClienteNome string           `json:"cliente_nome" binding:"required"`
	Telefone    string           `json:"telefone"`
	Email       string           `json:"email"`
	CPF         string           `json:"cpf" binding:"omitempty,cpf"`
	AtendenteID *uint            `json:"atendente_id"`
	Origem      string           `json:"origem"`
	TipoServico string           `json:"tipo_servico"`
	PapelEvento string           `json:"papel_evento"`
	EventID     *uint            `json:"event_id"`
	Endereco    *EnderecoRequest `json:"endereco"`
}

// ======================================================
// HELPERS
// ======================================================

func (h *OrderHandler) personType(tx *gorm.DB, name string) (*models.PersonType, error) {
	pt := models.PersonType{Type: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}},
		DoNothing: true,
	}).Create(&pt).Error; err != nil {
		return nil, err
	}

	var out models.PersonType
	if err := tx.Where("type = ?", name).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *OrderHandler) getOrCreatePersonByCPF(
	tx *gorm.DB,
	cpf string,
	name string,
	userID uint,
) (*models.Person, error) {

	var person models.Person
	err := tx.Where("cpf = ?", cpf).First(&person).Error
	if err == nil {
		return &person, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	pt, err := h.personType(tx, models.PersonTypeClient)
	if err != nil {
		return nil, err
	}

	person = models.Person{
		Name:         strings.ToUpper(name),
		CPF:          &cpf,
		PersonTypeID: pt.ID,
	}
	person.CreatedByID = &userID

	if err := tx.Create(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (h *OrderHandler) upsertContact(
	tx *gorm.DB,
	person *models.Person,
	phone string,
	email string,
	userID uint,
) error {

	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)
	if phone == "" && email == "" {
		return nil
	}

	var phonePtr, emailPtr *string
	if phone != "" {
		phonePtr = &phone
	}
	if email != "" {
		emailPtr = &email
	}

	var count int64
	q := tx.Model(&models.PersonContact{}).Where("person_id = ?", person.ID)
	if phonePtr != nil {
		q = q.Where("phone = ?", *phonePtr)
	} else {
		q = q.Where("phone IS NULL")
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	contact := models.PersonContact{
		PersonID: person.ID,
		Phone:    phonePtr,
		Email:    emailPtr,
	}
	contact.CreatedByID = &userID
	return tx.Create(&contact).Error
}

func (h *OrderHandler) upsertAddress(
	tx *gorm.DB,
	person *models.Person,
	addr *EnderecoRequest,
	city *models.City,
	userID uint,
) error {

	if city == nil {
		return nil
	}

	var count int64
	if err := tx.Model(&models.PersonAddress{}).
		Where(
			"person_id = ? AND street = ? AND number = ? AND cep = ? AND neighborhood = ? AND city_id = ?",
			person.ID, addr.Rua, addr.Numero, addr.CEP, addr.Bairro, city.ID,
		).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	address := models.PersonAddress{
		PersonID:     person.ID,
		Street:       &addr.Rua,
		Number:       &addr.Numero,
		CEP:          &addr.CEP,
		Neighborhood: &addr.Bairro,
		Complemento:  &addr.Complemento,
		CityID:       &city.ID,
	}
	address.CreatedByID = &userID
	return tx.Create(&address).Error
}

func (h *OrderHandler) findCity(tx *gorm.DB, name string) (*models.City, error) {
	if name == "" {
		return nil, nil
	}

	var city models.City
	err := tx.Where("UPPER(name) = ?", strings.ToUpper(name)).First(&city).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// ======================================================
// CREATE
// ======================================================

func (h *OrderHandler) Create(c *gin.Context) {
	actor := actorFromContext(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados do cliente incompletos.")
		return
	}

	cpf := validators.NormalizeCPF(req.CPF)
	if len(cpf) != 11 {
		httperr.BadRequest(c, "invalid_cpf", "CPF inválido.")
		return
	}

	var created *models.ServiceOrder

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var city *models.City
		if req.Endereco != nil && req.Endereco.Cidade != "" {
			found, err := h.findCity(tx, req.Endereco.Cidade)
			if err != nil {
				return err
			}
			if found == nil {
				return httperr.ErrBusiness("city_not_found")
			}
			city = found
		}

		person, err := h.getOrCreatePersonByCPF(tx, cpf, req.ClienteNome, actor.UserID)
		if err != nil {
			return err
		}

		if err := h.upsertContact(tx, person, req.Telefone, req.Email, actor.UserID); err != nil {
			return err
		}
		if req.Endereco != nil {
			if err := h.upsertAddress(tx, person, req.Endereco, city, actor.UserID); err != nil {
				return err
			}
		}

		var employee models.Person
		if err := tx.Where("name = ?", req.Atendente).First(&employee).Error; err != nil {
			return httperr.ErrBusiness("employee_not_found")
		}

		var event *models.Event
		if req.EventID != nil {
			var ev models.Event
			if err := tx.First(&ev, *req.EventID).Error; err != nil {
				return httperr.ErrBusiness("event_not_found")
			}
			event = &ev
		}

		var phase models.ServiceOrderPhase
		if err := tx.Where("name = ?", domain.PhasePendente).First(&phase).Error; err != nil {
			return err
		}

		now := h.clock.Now()
		renterRole := strings.ToUpper(req.PapelEvento)
		cameFrom := strings.ToUpper(req.Origem)

		o := models.ServiceOrder{
			RenterID:            &person.ID,
			EmployeeID:          &employee.ID,
			AttendantID:         &actor.PersonID,
			OrderDate:           timezone.Today(now),
			RenterRole:          &renterRole,
			Purchase:            req.TipoServico == "Compra" || req.TipoServico == "Venda",
			ServiceType:         &req.TipoServico,
			CameFrom:            &cameFrom,
			ServiceOrderPhaseID: &phase.ID,
		}
		o.CreatedByID = &actor.UserID
		if event != nil {
			o.EventID = &event.ID
		}

		if err := tx.Create(&o).Error; err != nil {
			return err
		}

		created = &o
		return nil
	})
	if err != nil {
		if code, ok := httperr.BusinessCode(err); ok {
			switch code {
			case "city_not_found":
				httperr.BadRequest(c, code, "Cidade não encontrada.")
			case "employee_not_found":
				httperr.BadRequest(c, code, "Funcionário não encontrado.")
			case "event_not_found":
				httperr.BadRequest(c, code, "Evento não encontrado.")
			default:
				httperr.BadRequest(c, code, "Dados inválidos.")
			}
			return
		}
		httperr.Internal(c, "order_create_failed", "Erro ao criar OS.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:    &actor.UserID,
		Action:    "order_created",
		Entity:    "service_order",
		EntityID:  &created.ID,
		RequestID: requestIDFromContext(c),
	})

	h.invalidateFinanceCache(c)

	httpresp.Created(c, gin.H{
		"success":  true,
		"message":  "OS criada com sucesso",
		"order_id": created.ID,
	})
}

// ======================================================
// PRE-TRIAGE
// ======================================================

// PreTriage cria a pré-OS da recepção. CPF é opcional aqui; o cliente
// sem CPF fica como pessoa temporária até o update completo.
func (h *OrderHandler) PreTriage(c *gin.Context) {
	actor := actorFromContext(c)

	var req PreTriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "CPF inválido. Deve conter 11 dígitos ou ser deixado em branco.")
		return
	}

	cpf := validators.NormalizeCPF(req.CPF)

	var created *models.ServiceOrder

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var person *models.Person
		var err error

		if cpf != "" {
			person, err = h.getOrCreatePersonByCPF(tx, cpf, req.ClienteNome, actor.UserID)
			if err != nil {
				return err
			}
		} else {
			pt, err := h.personType(tx, models.PersonTypeClient)
			if err != nil {
				return err
			}
			p := models.Person{
				Name:         strings.ToUpper(req.ClienteNome),
				PersonTypeID: pt.ID,
			}
			p.CreatedByID = &actor.UserID
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			person = &p
		}

		if err := h.upsertContact(tx, person, req.Telefone, req.Email, actor.UserID); err != nil {
			return err
		}
		if req.Endereco != nil && req.Endereco.Cidade != "" {
			city, err := h.findCity(tx, req.Endereco.Cidade)
			if err != nil {
				return err
			}
			if city != nil {
				if err := h.upsertAddress(tx, person, req.Endereco, city, actor.UserID); err != nil {
					return err
				}
			}
		}

		var employeeID *uint
		if req.AtendenteID != nil {
			var employee models.Person
			if err := tx.First(&employee, *req.AtendenteID).Error; err != nil {
				return httperr.ErrBusiness("employee_not_found")
			}
			employeeID = &employee.ID
		}

		var eventID *uint
		if req.EventID != nil {
			var ev models.Event
			if err := tx.First(&ev, *req.EventID).Error; err != nil {
				return httperr.ErrBusiness("event_not_found")
			}
			eventID = &ev.ID
		}

		var phase models.ServiceOrderPhase
		if err := tx.Where("name = ?", domain.PhasePendente).First(&phase).Error; err != nil {
			return err
		}

		now := h.clock.Now()
		renterRole := strings.ToUpper(req.PapelEvento)
		cameFrom := strings.ToUpper(req.Origem)

		o := models.ServiceOrder{
			RenterID:            &person.ID,
			EmployeeID:          employeeID,
			AttendantID:         &actor.PersonID,
			OrderDate:           timezone.Today(now),
			RenterRole:          &renterRole,
			Purchase:            req.TipoServico == "Venda",
			CameFrom:            &cameFrom,
			ServiceOrderPhaseID: &phase.ID,
		}
		o.CreatedByID = &actor.UserID
		if req.TipoServico != "" {
			o.ServiceType = &req.TipoServico
		}
		o.EventID = eventID

		if err := tx.Create(&o).Error; err != nil {
			return err
		}

		created = &o
		return nil
	})
	if err != nil {
		if code, ok := httperr.BusinessCode(err); ok {
			switch code {
			case "employee_not_found":
				httperr.BadRequest(c, code, "Atendente não encontrado.")
			case "event_not_found":
				httperr.BadRequest(c, code, "Evento não encontrado.")
			default:
				httperr.BadRequest(c, code, "Dados inválidos.")
			}
			return
		}
		httperr.Internal(c, "pre_triage_failed", "Erro ao criar pré-OS.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:    &actor.UserID,
		Action:    "order_pre_triage_created",
		Entity:    "service_order",
		EntityID:  &created.ID,
		RequestID: requestIDFromContext(c),
	})

	h.invalidateFinanceCache(c)

	httpresp.Created(c, gin.H{
		"success":  true,
		"message":  "Pré-OS criada com sucesso",
		"order_id": created.ID,
	})
}

// ======================================================
// DETAIL / LIST BY CLIENT / CLIENT DATA
// ======================================================

func (h *OrderHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var o models.ServiceOrder
	if err := h.db.
		Preload("Renter").
		Preload("Renter.Contacts").
		Preload("Employee").
		Preload("Attendant").
		Preload("Event").
		Preload("ServiceOrderPhase").
		Preload("JustificationReason").
		Preload("Items.Product").
		Preload("Items.TemporaryProduct").
		First(&o, id).Error; err != nil {
		httperr.NotFound(c, "order_not_found", "Ordem de serviço não encontrada.")
		return
	}

	d := dto.FromServiceOrder(&o)
	httpresp.OK(c, d)
}

func (h *OrderHandler) ListByClient(c *gin.Context) {
	renterID, err := strconv.ParseUint(c.Param("renter_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var client models.Person
	if err := h.db.
		Joins("JOIN person_type pt ON pt.id = person.person_type_id").
		Where("person.id = ? AND pt.type = ?", renterID, models.PersonTypeClient).
		First(&client).Error; err != nil {
		httperr.NotFound(c, "client_not_found", "Cliente não encontrado.")
		return
	}

	var orders []models.ServiceOrder
	if err := h.db.
		Preload("Renter").
		Preload("Renter.Contacts").
		Preload("Employee").
		Preload("Attendant").
		Preload("Event").
		Preload("ServiceOrderPhase").
		Preload("JustificationReason").
		Preload("Items.Product").
		Preload("Items.TemporaryProduct").
		Where("renter_id = ? AND is_virtual = false", renterID).
		Order("order_date DESC").
		Find(&orders).Error; err != nil {
		httperr.Internal(c, "order_list_failed", "Erro ao listar OS do cliente.")
		return
	}

	out := make([]dto.OrderListDTO, 0, len(orders))
	for i := range orders {
		out = append(out, dto.FromServiceOrder(&orders[i]))
	}
	httpresp.List(c, out)
}

// ClientData devolve o cadastro do cliente da OS com o contato e o
// endereço mais recentes.
func (h *OrderHandler) ClientData(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var o models.ServiceOrder
	if err := h.db.Preload("Renter").First(&o, id).Error; err != nil {
		httperr.NotFound(c, "order_not_found", "Ordem de serviço não encontrada.")
		return
	}
	if o.Renter == nil {
		httperr.NotFound(c, "client_not_found", "OS sem cliente vinculado.")
		return
	}

	var contact models.PersonContact
	hasContact := h.db.
		Where("person_id = ?", o.Renter.ID).
		Order("date_created DESC, id DESC").
		First(&contact).Error == nil

	var address models.PersonAddress
	hasAddress := h.db.
		Preload("City").
		Where("person_id = ?", o.Renter.ID).
		Order("date_created DESC, id DESC").
		First(&address).Error == nil

	resp := gin.H{
		"id":    o.Renter.ID,
		"name":  o.Renter.Name,
		"cpf":   o.Renter.CPF,
		"email": "",
		"phone": "",
	}
	if hasContact {
		if contact.Email != nil {
			resp["email"] = *contact.Email
		}
		if contact.Phone != nil {
			resp["phone"] = *contact.Phone
		}
	}
	if hasAddress {
		cityName := ""
		if address.City != nil {
			cityName = address.City.Name
		}
		resp["address"] = gin.H{
			"street":       strOr(address.Street),
			"number":       strOr(address.Number),
			"neighborhood": strOr(address.Neighborhood),
			"city":         cityName,
			"cep":          strOr(address.CEP),
			"complemento":  strOr(address.Complemento),
		}
	} else {
		resp["address"] = nil
	}

	httpresp.OK(c, resp)
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ======================================================
// VIRTUAL ORDER
// ======================================================

type VirtualPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	FormaPagamento string          `json:"forma_pagamento" binding:"required"`
	Data           string          `json:"data"`
}

type CreateVirtualOrderRequest struct {
	RenterID     *uint                  `json:"renter_id"`
	TotalValue   decimal.Decimal        `json:"total_value" binding:"required"`
	Sinal        *VirtualPaymentRequest `json:"sinal"`
	Restante     *VirtualPaymentRequest `json:"restante"`
	Observations string                 `json:"observations"`
}

// CreateVirtual registra uma OS somente para lançamento de pagamento,
// sem itens nem fase. Fica fora de todas as listagens por fase.
func (h *OrderHandler) CreateVirtual(c *gin.Context) {
	actor := actorFromContext(c)

	var req CreateVirtualOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var renterID *uint
	if req.RenterID != nil {
		var renter models.Person
		if err := h.db.First(&renter, *req.RenterID).Error; err != nil {
			httperr.NotFound(c, "client_not_found", "Cliente não encontrado.")
			return
		}
		renterID = &renter.ID
	}

	now := h.clock.Now()

	details := []models.PaymentDetail{}
	methods := []string{}
	advance := decimal.Zero

	appendEntry := func(p *VirtualPaymentRequest, tipo string) {
		if p == nil {
			return
		}
		data := p.Data
		if data == "" {
			data = now.Format(time.RFC3339)
		}
		details = append(details, models.PaymentDetail{
			Amount:         p.Amount,
			FormaPagamento: p.FormaPagamento,
			Tipo:           tipo,
			Data:           data,
		})
		advance = advance.Add(p.Amount)
		for _, m := range methods {
			if m == p.FormaPagamento {
				return
			}
		}
		methods = append(methods, p.FormaPagamento)
	}

	appendEntry(req.Sinal, models.PaymentTipoSinal)
	appendEntry(req.Restante, models.PaymentTipoRestante)

	o := models.ServiceOrder{
		RenterID:       renterID,
		OrderDate:      timezone.Today(now),
		TotalValue:     req.TotalValue,
		AdvancePayment: advance,
		PaymentDetails: details,
		IsVirtual:      true,
	}
	o.CreatedByID = &actor.UserID
	if len(methods) > 0 {
		joined := strings.Join(methods, ", ")
		o.PaymentMethod = &joined
	}
	if req.Observations != "" {
		o.Observations = &req.Observations
	}
	domain.Recalc(&o)

	if err := h.db.Create(&o).Error; err != nil {
		httperr.Internal(c, "virtual_order_failed", "Erro ao criar OS virtual.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:    &actor.UserID,
		Action:    "virtual_order_created",
		Entity:    "service_order",
		EntityID:  &o.ID,
		RequestID: requestIDFromContext(c),
	})

	h.invalidateFinanceCache(c)

	httpresp.Created(c, gin.H{
		"success":          true,
		"message":          "OS virtual criada com sucesso",
		"service_order_id": o.ID,
	})
}
