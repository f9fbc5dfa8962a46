package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NobreTrajes/os-control/internal/audit"
	eventdomain "github.com/NobreTrajes/os-control/internal/domain/event"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/httpresp"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type EventHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewEventHandler(db *gorm.DB, auditD *audit.Dispatcher, clock timezone.Clock) *EventHandler {
	return &EventHandler{
		db:    db,
		audit: auditD,
		clock: clock,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateEventRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	EventDate   *string `json:"event_date"`
}

type UpdateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	EventDate   *string `json:"event_date"`
}

type AddParticipantsRequest struct {
	ParticipantIDs []uint `json:"participant_ids" binding:"required,min=1"`
}

type LinkServiceOrderRequest struct {
	ServiceOrderID uint `json:"service_order_id" binding:"required"`
	EventID        uint `json:"event_id" binding:"required"`
}

// ======================================================
// CRUD
// ======================================================

func (h *EventHandler) Create(c *gin.Context) {
	actor := actorFromContext(c)

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Informe o nome do evento.")
		return
	}

	ev := models.Event{
		Name:        strings.ToUpper(req.Name),
		Description: req.Description,
	}
	ev.CreatedByID = &actor.UserID
	if req.EventDate != nil {
		ev.EventDate = parseDatePtr(*req.EventDate)
	}

	if err := h.db.Create(&ev).Error; err != nil {
		httperr.Internal(c, "event_create_failed", "Erro ao criar evento.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:    &actor.UserID,
		Action:    "event_created",
		Entity:    "event",
		EntityID:  &ev.ID,
		RequestID: requestIDFromContext(c),
	})

	httpresp.Created(c, ev)
}

func (h *EventHandler) Update(c *gin.Context) {
	actor := actorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var ev models.Event
	if err := h.db.First(&ev, id).Error; err != nil {
		httperr.NotFound(c, "event_not_found", "Evento não encontrado.")
		return
	}

	updated := false
	if req.Name != nil {
		ev.Name = strings.ToUpper(*req.Name)
		updated = true
	}
	if req.Description != nil {
		ev.Description = req.Description
		updated = true
	}
	if req.EventDate != nil {
		ev.EventDate = parseDatePtr(*req.EventDate)
		updated = true
	}

	if updated {
		ev.Touch(actor.UserID, h.clock.Now())
		if err := h.db.Omit(clause.Associations).Save(&ev).Error; err != nil {
			httperr.Internal(c, "event_update_failed", "Erro ao atualizar evento.")
			return
		}
	}

	httpresp.OK(c, ev)
}

func (h *EventHandler) AddParticipants(c *gin.Context) {
	actor := actorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var req AddParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Informe os participantes.")
		return
	}

	var ev models.Event
	if err := h.db.First(&ev, id).Error; err != nil {
		httperr.NotFound(c, "event_not_found", "Evento não encontrado.")
		return
	}

	var existing []uint
	h.db.Model(&models.EventParticipant{}).
		Where("event_id = ?", ev.ID).
		Pluck("person_id", &existing)
	known := make(map[uint]bool, len(existing))
	for _, pid := range existing {
		known[pid] = true
	}

	var people []models.Person
	if err := h.db.Where("id IN ?", req.ParticipantIDs).Find(&people).Error; err != nil {
		httperr.Internal(c, "event_participants_failed", "Erro ao adicionar participantes.")
		return
	}

	for i := range people {
		if known[people[i].ID] {
			continue
		}
		p := models.EventParticipant{
			EventID:  ev.ID,
			PersonID: people[i].ID,
		}
		p.CreatedByID = &actor.UserID
		if err := h.db.Create(&p).Error; err != nil {
			httperr.Internal(c, "event_participants_failed", "Erro ao adicionar participantes.")
			return
		}
	}

	if err := h.db.Preload("Participants.Person").First(&ev, ev.ID).Error; err != nil {
		httperr.Internal(c, "event_participants_failed", "Erro ao carregar evento.")
		return
	}
	httpresp.OK(c, ev)
}

// ======================================================
// LISTAGENS
// ======================================================

// OpenList lista os eventos que ainda têm OS em andamento, para o
// vínculo de novas OS no atendimento.
func (h *EventHandler) OpenList(c *gin.Context) {
	var eventIDs []uint
	h.db.Model(&models.ServiceOrder{}).
		Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
		Where("event_id IS NOT NULL AND date_canceled IS NULL").
		Where("p.name NOT IN ?", []string{domain.PhaseFinalizado, domain.PhaseRecusada}).
		Distinct().
		Pluck("event_id", &eventIDs)

	events := []models.Event{}
	if len(eventIDs) > 0 {
		if err := h.db.Where("id IN ?", eventIDs).Find(&events).Error; err != nil {
			httperr.Internal(c, "event_list_failed", "Erro ao listar eventos.")
			return
		}
	}
	httpresp.List(c, events)
}

func (h *EventHandler) LinkServiceOrder(c *gin.Context) {
	actor := actorFromContext(c)

	var req LinkServiceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Informe a OS e o evento.")
		return
	}

	var o models.ServiceOrder
	if err := h.db.First(&o, req.ServiceOrderID).Error; err != nil {
		httperr.NotFound(c, "order_not_found", "Ordem de serviço não encontrada.")
		return
	}

	var ev models.Event
	if err := h.db.First(&ev, req.EventID).Error; err != nil {
		httperr.NotFound(c, "event_not_found", "Evento não encontrado.")
		return
	}

	o.EventID = &ev.ID
	o.Touch(actor.UserID, h.clock.Now())
	if err := h.db.Omit(clause.Associations).Save(&o).Error; err != nil {
		httperr.Internal(c, "event_link_failed", "Erro ao vincular OS ao evento.")
		return
	}

	httpresp.Success(c, "OS vinculada ao evento com sucesso", gin.H{
		"service_order_id": o.ID,
		"event_id":         ev.ID,
	})
}

// ListWithStatus lista os eventos com contagem de OS e o status
// derivado das OS vinculadas.
func (h *EventHandler) ListWithStatus(c *gin.Context) {
	today := timezone.Today(h.clock.Now())

	q := h.db.Model(&models.Event{}).Order("date_created DESC")
	if t := parseDatePtr(c.Query("start_date")); t != nil {
		q = q.Where("event_date >= ?", *t)
	}
	if t := parseDatePtr(c.Query("end_date")); t != nil {
		q = q.Where("event_date <= ?", *t)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		httperr.Internal(c, "event_list_failed", "Erro ao listar eventos.")
		return
	}

	out := make([]gin.H, 0, len(events))
	for i := range events {
		ev := &events[i]

		var orders []models.ServiceOrder
		h.db.Preload("ServiceOrderPhase").
			Where("event_id = ?", ev.ID).
			Find(&orders)

		eventDate := ""
		if ev.EventDate != nil {
			eventDate = ev.EventDate.Format("2006-01-02")
		}
		out = append(out, gin.H{
			"id":                   ev.ID,
			"name":                 ev.Name,
			"description":          strOr(ev.Description),
			"event_date":           eventDate,
			"service_orders_count": len(orders),
			"status":               eventdomain.Status(ev, orders, today),
			"date_created":         ev.DateCreated,
		})
	}

	page, pageSize := pagination(c)
	paged, totalPages := paginate(out, page, pageSize)

	httpresp.OK(c, gin.H{
		"events":      paged,
		"total":       len(out),
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

func (h *EventHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var ev models.Event
	if err := h.db.First(&ev, id).Error; err != nil {
		httperr.NotFound(c, "event_not_found", "Evento não encontrado.")
		return
	}

	var orders []models.ServiceOrder
	h.db.Preload("ServiceOrderPhase").
		Preload("Renter").
		Where("event_id = ?", ev.ID).
		Order("order_date DESC").
		Find(&orders)

	today := timezone.Today(h.clock.Now())

	ordersData := make([]gin.H, 0, len(orders))
	mostRecent := ev.DateUpdated
	for i := range orders {
		o := &orders[i]
		clientName := ""
		if o.Renter != nil {
			clientName = o.Renter.Name
		}
		ordersData = append(ordersData, gin.H{
			"id":           o.ID,
			"date_created": o.DateCreated,
			"phase":        o.PhaseName(),
			"total_value":  o.TotalValue,
			"client_name":  clientName,
		})
		if o.DateUpdated != nil && (mostRecent == nil || o.DateUpdated.After(*mostRecent)) {
			mostRecent = o.DateUpdated
		}
	}

	httpresp.OK(c, gin.H{
		"id":                   ev.ID,
		"name":                 ev.Name,
		"description":          strOr(ev.Description),
		"event_date":           ev.EventDate,
		"service_orders_count": len(orders),
		"status":               eventdomain.Status(&ev, orders, today),
		"date_created":         ev.DateCreated,
		"date_updated":         mostRecent,
		"service_orders":       ordersData,
	})
}
