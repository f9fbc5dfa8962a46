package handlers

import (
	"fmt"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NobreTrajes/os-control/internal/cache"
	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/httpresp"
	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/timezone"
	usecase "github.com/NobreTrajes/os-control/internal/usecase/order"
)

// ======================================================
// HANDLER
// ======================================================

type FinanceHandler struct {
	db    *gorm.DB
	cache *cache.Cache
	sweep *usecase.AutoRefuseSweep
	clock timezone.Clock
}

func NewFinanceHandler(db *gorm.DB, c *cache.Cache, sweep *usecase.AutoRefuseSweep, clock timezone.Clock) *FinanceHandler {
	return &FinanceHandler{
		db:    db,
		cache: c,
		sweep: sweep,
		clock: clock,
	}
}

// closedPhaseNames devolve as fases excluídas do financeiro. Quando
// nenhuma das fases legadas existe na tabela, só RECUSADA é excluída.
func (h *FinanceHandler) closedPhaseNames() []string {
	var names []string
	h.db.Model(&models.ServiceOrderPhase{}).
		Where("name IN ?", domain.ClosedPhases).
		Pluck("name", &names)
	if len(names) == 0 {
		return []string{domain.PhaseRecusada}
	}
	return names
}

// ======================================================
// RESUMO FINANCEIRO
// ======================================================

type FinanceTransaction struct {
	ServiceOrderID uint            `json:"service_order_id"`
	ClientName     string          `json:"client_name"`
	Tipo           string          `json:"tipo"`
	Amount         decimal.Decimal `json:"amount"`
	FormaPagamento string          `json:"forma_pagamento"`
	Data           string          `json:"data"`
	IsVirtual      bool            `json:"is_virtual"`
}

// Summary lista todas as transações de sinal e restante do período.
// O sinal entra sempre que registrado; o restante só quando a OS está
// FINALIZADO, já que antes disso o valor ainda não foi recebido.
func (h *FinanceHandler) Summary(c *gin.Context) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")

	var start, end *time.Time
	if startStr != "" {
		start = parseDatePtr(startStr)
		if start == nil {
			httperr.BadRequest(c, "invalid_date", "Data inicial inválida.")
			return
		}
	}
	if endStr != "" {
		end = parseDatePtr(endStr)
		if end == nil {
			httperr.BadRequest(c, "invalid_date", "Data final inválida.")
			return
		}
	}

	page, pageSize := pagination(c)

	cacheKey := fmt.Sprintf("finance:summary:%s:%s:%d:%d", startStr, endStr, page, pageSize)
	var cached gin.H
	if h.cache.GetJSON(c.Request.Context(), cacheKey, &cached) {
		httpresp.OK(c, cached)
		return
	}

	excluded := h.closedPhaseNames()

	q := h.db.
		Preload("Renter").
		Preload("ServiceOrderPhase").
		Where(
			"service_order_phase_id IS NULL OR service_order_phase_id NOT IN (?)",
			h.db.Model(&models.ServiceOrderPhase{}).Select("id").Where("name IN ?", excluded),
		)
	if start != nil {
		q = q.Where("order_date >= ?", *start)
	}
	if end != nil {
		q = q.Where("order_date <= ?", *end)
	}

	var orders []models.ServiceOrder
	if err := q.Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
		httperr.Internal(c, "finance_summary_failed", "Erro ao gerar resumo financeiro.")
		return
	}

	transactions := []FinanceTransaction{}
	totalSinal := decimal.Zero
	totalRestante := decimal.Zero
	byMethod := map[string]decimal.Decimal{}

	addTx := func(tx FinanceTransaction) {
		transactions = append(transactions, tx)
		if tx.Tipo == models.PaymentTipoSinal {
			totalSinal = totalSinal.Add(tx.Amount)
		} else {
			totalRestante = totalRestante.Add(tx.Amount)
		}
		method := tx.FormaPagamento
		if method == "" {
			method = "NÃO INFORMADO"
		}
		byMethod[method] = byMethod[method].Add(tx.Amount)
	}

	for i := range orders {
		o := &orders[i]

		clientName := ""
		if o.Renter != nil {
			clientName = o.Renter.Name
		} else if o.ClientName != nil {
			clientName = *o.ClientName
		}

		hasDetailEntries := false
		for _, d := range o.PaymentDetails {
			if d.Tipo == models.PaymentTipoSinal {
				hasDetailEntries = true
				addTx(FinanceTransaction{
					ServiceOrderID: o.ID,
					ClientName:     clientName,
					Tipo:           models.PaymentTipoSinal,
					Amount:         d.Amount,
					FormaPagamento: d.FormaPagamento,
					Data:           d.Data,
					IsVirtual:      o.IsVirtual,
				})
			}
		}
		if !hasDetailEntries && o.AdvancePayment.IsPositive() {
			addTx(FinanceTransaction{
				ServiceOrderID: o.ID,
				ClientName:     clientName,
				Tipo:           models.PaymentTipoSinal,
				Amount:         o.AdvancePayment,
				FormaPagamento: strOr(o.PaymentMethod),
				Data:           o.OrderDate.Format("2006-01-02"),
				IsVirtual:      o.IsVirtual,
			})
		}

		if o.PhaseName() == domain.PhaseFinalizado {
			hasRestanteEntries := false
			for _, d := range o.PaymentDetails {
				if d.Tipo == models.PaymentTipoRestante {
					hasRestanteEntries = true
					addTx(FinanceTransaction{
						ServiceOrderID: o.ID,
						ClientName:     clientName,
						Tipo:           models.PaymentTipoRestante,
						Amount:         d.Amount,
						FormaPagamento: d.FormaPagamento,
						Data:           d.Data,
						IsVirtual:      o.IsVirtual,
					})
				}
			}
			if !hasRestanteEntries && o.RemainingPayment.IsPositive() {
				data := o.OrderDate.Format("2006-01-02")
				if o.DataDevolvido != nil {
					data = o.DataDevolvido.Format("2006-01-02")
				}
				addTx(FinanceTransaction{
					ServiceOrderID: o.ID,
					ClientName:     clientName,
					Tipo:           models.PaymentTipoRestante,
					Amount:         o.RemainingPayment,
					FormaPagamento: strOr(o.PaymentMethod),
					Data:           data,
					IsVirtual:      o.IsVirtual,
				})
			}
		}
	}

	paged, totalPages := paginate(transactions, page, pageSize)

	totalsByMethod := gin.H{}
	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		totalsByMethod[m] = byMethod[m]
	}

	resp := gin.H{
		"transactions":       paged,
		"total_transactions": len(transactions),
		"total_sinal":        totalSinal,
		"total_restante":     totalRestante,
		"total_geral":        totalSinal.Add(totalRestante),
		"totals_by_method":   totalsByMethod,
		"page":               page,
		"page_size":          pageSize,
		"total_pages":        totalPages,
	}
	h.cache.SetJSON(c.Request.Context(), cacheKey, resp, 5*time.Minute)
	httpresp.OK(c, resp)
}

// ======================================================
// DASHBOARD
// ======================================================

var convertedPhases = []string{
	domain.PhaseEmProducao,
	domain.PhaseAguardandoRetirada,
	domain.PhaseAguardandoDevolucao,
	domain.PhaseFinalizado,
}

func phaseConverted(o *models.ServiceOrder) bool {
	name := o.PhaseName()
	for _, p := range convertedPhases {
		if name == p {
			return true
		}
	}
	return false
}

type dashboardFilters struct {
	start          time.Time
	end            time.Time
	atendenteID    *uint
	tipoCliente    string
	formaPagamento string
	canalOrigem    string
}

func (h *FinanceHandler) parseDashboardFilters(c *gin.Context, today time.Time) dashboardFilters {
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	f := dashboardFilters{start: monthStart, end: today}
	if t := parseDatePtr(c.Query("data_inicio")); t != nil {
		f.start = *t
	}
	if t := parseDatePtr(c.Query("data_fim")); t != nil {
		f.end = *t
	}
	if idStr := c.Query("atendente_id"); idStr != "" {
		var id uint
		if _, err := fmt.Sscanf(idStr, "%d", &id); err == nil {
			f.atendenteID = &id
		}
	}
	f.tipoCliente = c.Query("tipo_cliente")
	f.formaPagamento = c.Query("forma_pagamento")
	f.canalOrigem = c.Query("canal_origem")
	return f
}

// Dashboard agrega os indicadores de atendimento do período: KPIs,
// ranking de atendentes, gráficos por tipo de cliente e canal de
// origem, agenda e resultados financeiros de dia, semana e mês.
func (h *FinanceHandler) Dashboard(c *gin.Context) {
	if _, err := h.sweep.Execute(c.Request.Context()); err != nil {
		httperr.Internal(c, "dashboard_failed", "Erro ao montar o dashboard.")
		return
	}

	now := h.clock.Now()
	today := timezone.Today(now)
	f := h.parseDashboardFilters(c, today)

	cacheKey := fmt.Sprintf(
		"dashboard:%s:%s:%v:%s:%s:%s",
		f.start.Format("2006-01-02"), f.end.Format("2006-01-02"),
		f.atendenteID, f.tipoCliente, f.formaPagamento, f.canalOrigem,
	)
	var cached gin.H
	if h.cache.GetJSON(c.Request.Context(), cacheKey, &cached) {
		httpresp.OK(c, cached)
		return
	}

	q := h.db.
		Preload("ServiceOrderPhase").
		Preload("Employee").
		Where("order_date >= ? AND order_date <= ?", f.start, f.end).
		Where("is_virtual = false")
	if f.atendenteID != nil {
		q = q.Where("employee_id = ?", *f.atendenteID)
	}
	if f.tipoCliente != "" {
		q = q.Where("UPPER(renter_role) = UPPER(?)", f.tipoCliente)
	}
	if f.formaPagamento != "" {
		q = q.Where("payment_method ILIKE ?", "%"+f.formaPagamento+"%")
	}
	if f.canalOrigem != "" {
		q = q.Where("UPPER(came_from) = UPPER(?)", f.canalOrigem)
	}

	var orders []models.ServiceOrder
	if err := q.Find(&orders).Error; err != nil {
		httperr.Internal(c, "dashboard_failed", "Erro ao gerar dashboard.")
		return
	}

	resp := gin.H{
		"kpis":                      h.calcKPIs(orders),
		"atendentes_taxa_conversao": h.calcAtendentesConversao(orders),
		"atendentes_total_vendido":  h.calcAtendentesVendido(orders),
		"grafico_tipo_cliente":      h.calcGraficoTipoCliente(orders),
		"grafico_canal_origem":      h.calcGraficoCanalOrigem(orders),
		"grafico_aluguel_venda":     h.calcGraficoAluguelVenda(orders),
		"periodo": gin.H{
			"data_inicio": f.start.Format("2006-01-02"),
			"data_fim":    f.end.Format("2006-01-02"),
		},
		"status":     h.calcStatusMetrics(today),
		"resultados": h.calcFinancialMetrics(today),
	}

	h.cache.SetJSON(c.Request.Context(), cacheKey, resp, 5*time.Minute)
	httpresp.OK(c, resp)
}

func (h *FinanceHandler) calcKPIs(orders []models.ServiceOrder) gin.H {
	total := len(orders)
	fechados, naoFechados := 0, 0
	totalVendido := decimal.Zero
	totalRecebido := decimal.Zero

	for i := range orders {
		o := &orders[i]
		if phaseConverted(o) {
			fechados++
			totalVendido = totalVendido.Add(o.TotalValue)
			totalRecebido = totalRecebido.Add(o.AdvancePayment)
			if o.PhaseName() == domain.PhaseFinalizado {
				totalRecebido = totalRecebido.Add(o.RemainingPayment)
			}
		}
		if o.PhaseName() == domain.PhaseRecusada {
			naoFechados++
		}
	}

	taxa := 0.0
	if total > 0 {
		taxa = float64(fechados) / float64(total) * 100
	}

	return gin.H{
		"total_recebido":            totalRecebido,
		"total_vendido":             totalVendido,
		"total_atendimentos":        total,
		"atendimentos_fechados":     fechados,
		"atendimentos_nao_fechados": naoFechados,
		"taxa_conversao":            roundPct(taxa),
	}
}

func roundPct(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func (h *FinanceHandler) calcAtendentesConversao(orders []models.ServiceOrder) []gin.H {
	type agg struct {
		id       uint
		nome     string
		total    int
		fechados int
	}
	byEmp := map[uint]*agg{}

	for i := range orders {
		o := &orders[i]
		if o.EmployeeID == nil {
			continue
		}
		a, ok := byEmp[*o.EmployeeID]
		if !ok {
			nome := ""
			if o.Employee != nil {
				nome = o.Employee.Name
			}
			a = &agg{id: *o.EmployeeID, nome: nome}
			byEmp[*o.EmployeeID] = a
		}
		a.total++
		if phaseConverted(o) {
			a.fechados++
		}
	}

	out := make([]gin.H, 0, len(byEmp))
	for _, a := range byEmp {
		taxa := 0.0
		if a.total > 0 {
			taxa = float64(a.fechados) / float64(a.total) * 100
		}
		out = append(out, gin.H{
			"id":               a.id,
			"nome":             a.nome,
			"taxa_conversao":   roundPct(taxa),
			"num_atendimentos": a.total,
			"num_fechados":     a.fechados,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["taxa_conversao"].(float64) > out[j]["taxa_conversao"].(float64)
	})
	return out
}

func (h *FinanceHandler) calcAtendentesVendido(orders []models.ServiceOrder) []gin.H {
	type agg struct {
		id    uint
		nome  string
		total int
		valor decimal.Decimal
	}
	byEmp := map[uint]*agg{}

	for i := range orders {
		o := &orders[i]
		if o.EmployeeID == nil || !phaseConverted(o) {
			continue
		}
		a, ok := byEmp[*o.EmployeeID]
		if !ok {
			nome := ""
			if o.Employee != nil {
				nome = o.Employee.Name
			}
			a = &agg{id: *o.EmployeeID, nome: nome}
			byEmp[*o.EmployeeID] = a
		}
		a.total++
		a.valor = a.valor.Add(o.TotalValue)
	}

	out := make([]gin.H, 0, len(byEmp))
	for _, a := range byEmp {
		out = append(out, gin.H{
			"id":               a.id,
			"nome":             a.nome,
			"total_vendido":    a.valor,
			"num_atendimentos": a.total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		vi := out[i]["total_vendido"].(decimal.Decimal)
		vj := out[j]["total_vendido"].(decimal.Decimal)
		return vi.GreaterThan(vj)
	})
	return out
}

func (h *FinanceHandler) calcGraficoTipoCliente(orders []models.ServiceOrder) []gin.H {
	type agg struct {
		fechados int
		valor    decimal.Decimal
	}
	byTipo := map[string]*agg{}

	for i := range orders {
		o := &orders[i]
		tipo := "NÃO INFORMADO"
		if o.RenterRole != nil && *o.RenterRole != "" {
			tipo = *o.RenterRole
		}
		a, ok := byTipo[tipo]
		if !ok {
			a = &agg{}
			byTipo[tipo] = a
		}
		if phaseConverted(o) {
			a.fechados++
			a.valor = a.valor.Add(o.TotalValue)
		}
	}

	out := make([]gin.H, 0, len(byTipo))
	for tipo, a := range byTipo {
		out = append(out, gin.H{
			"tipo":                  tipo,
			"atendimentos_fechados": a.fechados,
			"total_vendido":         a.valor,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["atendimentos_fechados"].(int) > out[j]["atendimentos_fechados"].(int)
	})
	return out
}

func (h *FinanceHandler) calcGraficoCanalOrigem(orders []models.ServiceOrder) []gin.H {
	type agg struct {
		total    int
		fechados int
	}
	byCanal := map[string]*agg{}

	for i := range orders {
		o := &orders[i]
		canal := "NÃO INFORMADO"
		if o.CameFrom != nil && *o.CameFrom != "" {
			canal = *o.CameFrom
		}
		a, ok := byCanal[canal]
		if !ok {
			a = &agg{}
			byCanal[canal] = a
		}
		a.total++
		if phaseConverted(o) {
			a.fechados++
		}
	}

	out := make([]gin.H, 0, len(byCanal))
	for canal, a := range byCanal {
		out = append(out, gin.H{
			"canal":                 canal,
			"atendimentos":          a.total,
			"atendimentos_fechados": a.fechados,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["atendimentos"].(int) > out[j]["atendimentos"].(int)
	})
	return out
}

// calcGraficoAluguelVenda separa os valores de aluguel e venda no
// período. Modalidades mistas ficam de fora do gráfico.
func (h *FinanceHandler) calcGraficoAluguelVenda(orders []models.ServiceOrder) []gin.H {
	type agg struct {
		valor decimal.Decimal
		count int
	}
	byTipo := map[string]*agg{}

	for i := range orders {
		o := &orders[i]
		if o.ServiceType == nil {
			continue
		}
		var key string
		switch *o.ServiceType {
		case "Aluguel":
			key = "ALUGUEL"
		case "Venda":
			key = "VENDA"
		default:
			continue
		}
		a, ok := byTipo[key]
		if !ok {
			a = &agg{}
			byTipo[key] = a
		}
		if phaseConverted(o) {
			a.valor = a.valor.Add(o.TotalValue)
			a.count++
		}
	}

	out := make([]gin.H, 0, len(byTipo))
	for tipo, a := range byTipo {
		medio := decimal.Zero
		if a.count > 0 {
			medio = a.valor.Div(decimal.NewFromInt(int64(a.count)))
		}
		out = append(out, gin.H{
			"tipo":          tipo,
			"valor_total":   a.valor,
			"quantidade_os": a.count,
			"valor_medio":   medio,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		vi := out[i]["valor_total"].(decimal.Decimal)
		vj := out[j]["valor_total"].(decimal.Decimal)
		return vi.GreaterThan(vj)
	})
	return out
}

var activePhases = []string{
	domain.PhasePendente,
	domain.PhaseEmProducao,
	domain.PhaseAguardandoRetirada,
	domain.PhaseAguardandoDevolucao,
}

func (h *FinanceHandler) calcStatusMetrics(today time.Time) gin.H {
	in10 := today.AddDate(0, 0, 10)

	countActive := func(cond string, args ...any) int64 {
		var n int64
		h.db.Model(&models.ServiceOrder{}).
			Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
			Where("p.name IN ?", activePhases).
			Where(cond, args...).
			Count(&n)
		return n
	}

	var atrasoRetiradas, atrasoDevolucoes int64
	h.db.Model(&models.ServiceOrder{}).
		Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
		Where("p.name IN ?", activePhases).
		Where("esta_atrasada = true AND retirada_date < ?", today).
		Count(&atrasoRetiradas)
	h.db.Model(&models.ServiceOrder{}).
		Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
		Where("p.name IN ?", activePhases).
		Where("esta_atrasada = true AND devolucao_date < ?", today).
		Count(&atrasoDevolucoes)

	var atrasoProvas int64
	h.db.Model(&models.ServiceOrder{}).
		Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
		Where("p.name = ?", domain.PhaseRecusada).
		Where("prova_date IS NOT NULL").
		Count(&atrasoProvas)

	return gin.H{
		"em_atraso": gin.H{
			"provas":     atrasoProvas,
			"retiradas":  atrasoRetiradas,
			"devolucoes": atrasoDevolucoes,
		},
		"hoje": gin.H{
			"provas":     countActive("prova_date = ?", today),
			"retiradas":  countActive("retirada_date = ?", today),
			"devolucoes": countActive("devolucao_date = ?", today),
		},
		"proximos_10_dias": gin.H{
			"provas":     countActive("prova_date > ? AND prova_date <= ?", today, in10),
			"retiradas":  countActive("retirada_date > ? AND retirada_date <= ?", today, in10),
			"devolucoes": countActive("devolucao_date > ? AND devolucao_date <= ?", today, in10),
		},
	}
}

func (h *FinanceHandler) calcFinancialMetrics(today time.Time) gin.H {
	weekStart := today.AddDate(0, 0, -int((today.Weekday()+6)%7))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	period := func(start time.Time) gin.H {
		var orders []models.ServiceOrder
		h.db.
			Preload("ServiceOrderPhase").
			Joins("JOIN service_order_phases p ON p.id = service_orders.service_order_phase_id").
			Where("p.name IN ?", convertedPhases).
			Where("order_date >= ? AND order_date <= ?", start, today).
			Find(&orders)

		totalPedidos := decimal.Zero
		totalRecebido := decimal.Zero
		numero := 0
		for i := range orders {
			o := &orders[i]
			if o.TotalValue.IsPositive() {
				totalPedidos = totalPedidos.Add(o.TotalValue)
				numero++
			}
			totalRecebido = totalRecebido.Add(o.AdvancePayment)
			if o.PhaseName() == domain.PhaseFinalizado {
				totalRecebido = totalRecebido.Add(o.RemainingPayment)
			}
		}
		return gin.H{
			"total_pedidos":  totalPedidos,
			"total_recebido": totalRecebido,
			"numero_pedidos": numero,
		}
	}

	return gin.H{
		"dia":    period(today),
		"semana": period(weekStart),
		"mes":    period(monthStart),
	}
}

// ======================================================
// MÉTRICAS POR ATENDENTE
// ======================================================

// AttendantMetrics devolve o desempenho de cada atendente em três
// janelas: dia, semana e mês corrente.
func (h *FinanceHandler) AttendantMetrics(c *gin.Context) {
	now := h.clock.Now()
	today := timezone.Today(now)
	weekStart := today.AddDate(0, 0, -int((today.Weekday()+6)%7))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	var atendentes []models.Person
	if err := h.db.
		Joins("JOIN person_type pt ON pt.id = person.person_type_id").
		Where("pt.type = ?", models.PersonTypeAttendant).
		Find(&atendentes).Error; err != nil {
		httperr.Internal(c, "attendant_metrics_failed", "Erro ao gerar métricas.")
		return
	}

	periods := []struct {
		name  string
		start time.Time
	}{
		{"dia", today},
		{"semana", weekStart},
		{"mes", monthStart},
	}

	result := make([]gin.H, 0, len(atendentes))
	for i := range atendentes {
		at := &atendentes[i]
		entry := gin.H{
			"atendente_id":   at.ID,
			"atendente_nome": at.Name,
		}

		for _, p := range periods {
			var orders []models.ServiceOrder
			h.db.
				Preload("ServiceOrderPhase").
				Where("employee_id = ?", at.ID).
				Where("order_date >= ? AND order_date <= ?", p.start, today).
				Find(&orders)

			total := len(orders)
			finalizados, cancelados, emAndamento, sucesso := 0, 0, 0, 0
			totalVendido := decimal.Zero
			totalRecebido := decimal.Zero
			canais := map[string]int{}

			for j := range orders {
				o := &orders[j]
				switch o.PhaseName() {
				case domain.PhaseFinalizado:
					finalizados++
				case domain.PhaseRecusada:
					cancelados++
				}
				for _, active := range activePhases {
					if o.PhaseName() == active {
						emAndamento++
						break
					}
				}
				if phaseConverted(o) {
					sucesso++
				}
				totalVendido = totalVendido.Add(o.TotalValue)
				totalRecebido = totalRecebido.Add(o.AdvancePayment)
				if o.CameFrom != nil && *o.CameFrom != "" {
					canais[*o.CameFrom]++
				}
			}

			taxa := 0.0
			if total > 0 {
				taxa = float64(sucesso) / float64(total) * 100
			}

			var itensVenda int64
			h.db.Model(&models.ServiceOrderItem{}).
				Joins("JOIN service_orders so ON so.id = service_order_items.service_order_id").
				Joins("JOIN temporary_products tp ON tp.id = service_order_items.temporary_product_id").
				Where("so.employee_id = ?", at.ID).
				Where("so.order_date >= ? AND so.order_date <= ?", p.start, today).
				Where("tp.venda = true").
				Count(&itensVenda)

			canalDict := gin.H{}
			for canal, n := range canais {
				pct := 0.0
				if total > 0 {
					pct = float64(n) / float64(total) * 100
				}
				canalDict[canal] = gin.H{"total": n, "percentual": roundPct(pct)}
			}

			entry[p.name] = gin.H{
				"atendimentos": gin.H{
					"total_atendimentos": total,
					"finalizados":        finalizados,
					"cancelados":         cancelados,
					"em_andamento":       emAndamento,
				},
				"conversao": gin.H{
					"taxa_conversao":         roundPct(taxa),
					"atendimentos_iniciados": total,
					"concluidos_sucesso":     sucesso,
				},
				"financeiro": gin.H{
					"total_vendido":  totalVendido,
					"total_recebido": totalRecebido,
				},
				"vendas": gin.H{"itens_vendidos": itensVenda},
				"canais": canalDict,
			}
		}

		result = append(result, entry)
	}

	httpresp.OK(c, gin.H{"atendentes": result})
}
