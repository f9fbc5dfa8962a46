package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NobreTrajes/os-control/internal/cache"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/httpresp"
	"github.com/NobreTrajes/os-control/internal/models"
	usecase "github.com/NobreTrajes/os-control/internal/usecase/order"
	"github.com/NobreTrajes/os-control/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type OrderTransitionHandler struct {
	db              *gorm.DB
	cache           *cache.Cache
	markReady       *usecase.MarkReady
	markRetrieved   *usecase.MarkRetrieved
	markPaid        *usecase.MarkPaid
	refuse          *usecase.Refuse
	returnToPending *usecase.ReturnToPending
	listByPhase     *usecase.ListByPhase
}

func NewOrderTransitionHandler(
	db *gorm.DB,
	readCache *cache.Cache,
	markReady *usecase.MarkReady,
	markRetrieved *usecase.MarkRetrieved,
	markPaid *usecase.MarkPaid,
	refuse *usecase.Refuse,
	returnToPending *usecase.ReturnToPending,
	listByPhase *usecase.ListByPhase,
) *OrderTransitionHandler {
	return &OrderTransitionHandler{
		db:              db,
		cache:           readCache,
		markReady:       markReady,
		markRetrieved:   markRetrieved,
		markPaid:        markPaid,
		refuse:          refuse,
		returnToPending: returnToPending,
		listByPhase:     listByPhase,
	}
}

// Fases e valores alimentam o resumo financeiro e o dashboard; toda
// transição derruba os dois caches.
func (h *OrderTransitionHandler) invalidateCaches(c *gin.Context) {
	h.cache.Invalidate(c.Request.Context(), "finance:*")
	h.cache.Invalidate(c.Request.Context(), "dashboard:*")
}

// ======================================================
// REQUESTS
// ======================================================

type ReceiptRequest struct {
	ValorRestante *decimal.Decimal     `json:"valor_restante"`
	Pagamentos    []PaymentFormRequest `json:"pagamentos"`
}

type RefuseRequest struct {
	ReasonID      uint    `json:"reason_id" binding:"required"`
	Justification *string `json:"justification"`
}

// ======================================================
// TRADUÇÃO DE ERROS
// ======================================================

func writeOrderError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "order_not_found", "Ordem de serviço não encontrada.")
		return
	}

	code, ok := httperr.BusinessCode(err)
	if !ok {
		httperr.Internal(c, "order_operation_failed", "Erro ao processar a operação.")
		return
	}

	switch code {
	case "forbidden":
		httperr.Forbidden(c, code, "Você não tem permissão para executar esta ação.")
	case "order_not_found":
		httperr.NotFound(c, code, "Ordem de serviço não encontrada.")
	case "phase_not_found":
		httperr.NotFound(c, code, "Fase não encontrada.")
	case "invalid_phase":
		httperr.BadRequest(c, code, "A OS não está em uma fase que permite esta operação.")
	case "already_retrieved":
		httperr.BadRequest(c, code, "A OS já foi marcada como retirada.")
	case "already_finished":
		httperr.BadRequest(c, code, "A OS já está finalizada.")
	case "payment_forms_required":
		httperr.BadRequest(c, code, "Informe as formas de pagamento.")
	case "payment_sum_mismatch":
		httperr.BadRequest(c, code, "A soma dos pagamentos não confere com o valor restante.")
	case "invalid_refusal_reason":
		httperr.BadRequest(c, code, "Motivo de recusa inválido.")
	default:
		httperr.BadRequest(c, code, "Operação inválida.")
	}
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return 0, false
	}
	return uint(id), true
}

func receiptFromRequest(c *gin.Context) (*usecase.PaymentReceipt, bool) {
	// Corpo vazio significa transição sem lançamento de pagamento.
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if c.Request.ContentLength == 0 {
			return nil, true
		}
		httperr.BadRequest(c, "invalid_request", "Dados de pagamento inválidos.")
		return nil, false
	}
	if req.ValorRestante == nil && len(req.Pagamentos) == 0 {
		return nil, true
	}

	forms := make([]domain.PaymentForm, 0, len(req.Pagamentos))
	for _, p := range req.Pagamentos {
		forms = append(forms, domain.PaymentForm{
			Amount:         p.Amount,
			FormaPagamento: p.FormaPagamento,
		})
	}
	return &usecase.PaymentReceipt{
		RemainingAmount: req.ValorRestante,
		Forms:           forms,
	}, true
}

// ======================================================
// TRANSIÇÕES
// ======================================================

func (h *OrderTransitionHandler) MarkReady(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	actor := actorFromContext(c)

	if _, err := h.markReady.Execute(c.Request.Context(), id, actor); err != nil {
		writeOrderError(c, err)
		return
	}

	h.invalidateCaches(c)
	httpresp.Success(c, "OS pronta para retirada", nil)
}

func (h *OrderTransitionHandler) MarkRetrieved(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	actor := actorFromContext(c)

	receipt, ok := receiptFromRequest(c)
	if !ok {
		return
	}

	o, err := h.markRetrieved.Execute(c.Request.Context(), id, actor, receipt)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	extra := gin.H{}
	if o.DataRetirado != nil {
		extra["data_retirado"] = o.DataRetirado.Format(time.RFC3339)
	}
	h.invalidateCaches(c)
	httpresp.Success(c, "OS marcada como retirada", extra)
}

func (h *OrderTransitionHandler) MarkPaid(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	actor := actorFromContext(c)

	receipt, ok := receiptFromRequest(c)
	if !ok {
		return
	}

	o, err := h.markPaid.Execute(c.Request.Context(), id, actor, receipt)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	extra := gin.H{}
	if o.DataDevolvido != nil {
		extra["data_devolvido"] = o.DataDevolvido.Format(time.RFC3339)
	}
	h.invalidateCaches(c)
	httpresp.Success(c, "OS finalizada", extra)
}

func (h *OrderTransitionHandler) Refuse(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	actor := actorFromContext(c)

	var req RefuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Informe o motivo da recusa.")
		return
	}

	if _, err := h.refuse.Execute(c.Request.Context(), id, actor, req.ReasonID, req.Justification); err != nil {
		writeOrderError(c, err)
		return
	}

	h.invalidateCaches(c)
	httpresp.Success(c, "OS recusada", nil)
}

func (h *OrderTransitionHandler) ReturnToPending(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	actor := actorFromContext(c)

	if _, err := h.returnToPending.Execute(c.Request.Context(), id, actor); err != nil {
		writeOrderError(c, err)
		return
	}

	h.invalidateCaches(c)
	httpresp.Success(c, "OS devolvida para pendente", nil)
}

// ======================================================
// LISTAGENS
// ======================================================

// ListByPhase lista a fila de uma fase, com busca por cliente e
// paginação sobre o resultado já varrido.
func (h *OrderTransitionHandler) ListByPhase(c *gin.Context) {
	phase := c.Param("phase")

	orders, err := h.listByPhase.Execute(c.Request.Context(), phase)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		needle := strings.ToUpper(search)
		cpfNeedle := validators.NormalizeCPF(search)

		filtered := orders[:0]
		for _, o := range orders {
			if strconv.FormatUint(uint64(o.ID), 10) == search {
				filtered = append(filtered, o)
				continue
			}
			if o.Client == nil {
				continue
			}
			if strings.Contains(strings.ToUpper(o.Client.Name), needle) {
				filtered = append(filtered, o)
				continue
			}
			if cpfNeedle != "" && o.Client.CPF != nil &&
				strings.Contains(validators.NormalizeCPF(*o.Client.CPF), cpfNeedle) {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	total := len(orders)
	page, pageSize := pagination(c)
	items, totalPages := paginate(orders, page, pageSize)

	httpresp.OK(c, gin.H{
		"data":        items,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

func (h *OrderTransitionHandler) ListRefusalReasons(c *gin.Context) {
	var reasons []models.RefusalReason
	if err := h.db.Order("name ASC").Find(&reasons).Error; err != nil {
		httperr.Internal(c, "refusal_reasons_failed", "Erro ao listar motivos de recusa.")
		return
	}
	httpresp.List(c, reasons)
}
