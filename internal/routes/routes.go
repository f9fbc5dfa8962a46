package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NobreTrajes/os-control/internal/audit"
	"github.com/NobreTrajes/os-control/internal/cache"
	"github.com/NobreTrajes/os-control/internal/config"
	"github.com/NobreTrajes/os-control/internal/handlers"
	infraRepo "github.com/NobreTrajes/os-control/internal/infra/repository"
	"github.com/NobreTrajes/os-control/internal/logger"
	"github.com/NobreTrajes/os-control/internal/middleware"
	"github.com/NobreTrajes/os-control/internal/timezone"
	ucOrder "github.com/NobreTrajes/os-control/internal/usecase/order"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	orderRepo := infraRepo.NewOrderGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, logger.Log)

	redisCache := cache.New(cfg)
	clock := timezone.RealClock{}

	// ======================================================
	// USE CASES — ORDENS DE SERVIÇO
	// ======================================================
	sweepUC := ucOrder.NewAutoRefuseSweep(orderRepo, clock, logger.Log)

	markReadyUC := ucOrder.NewMarkReady(orderRepo, auditDispatcher)
	markRetrievedUC := ucOrder.NewMarkRetrieved(orderRepo, auditDispatcher, clock)
	markPaidUC := ucOrder.NewMarkPaid(orderRepo, auditDispatcher, clock)
	refuseUC := ucOrder.NewRefuse(orderRepo, auditDispatcher, clock)
	returnToPendingUC := ucOrder.NewReturnToPending(orderRepo, auditDispatcher)
	listByPhaseUC := ucOrder.NewListByPhase(orderRepo, sweepUC, clock)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	orderHandler := handlers.NewOrderHandler(db, auditDispatcher, redisCache, clock)
	transitionHandler := handlers.NewOrderTransitionHandler(
		db,
		redisCache,
		markReadyUC,
		markRetrievedUC,
		markPaidUC,
		refuseUC,
		returnToPendingUC,
		listByPhaseUC,
	)

	financeHandler := handlers.NewFinanceHandler(db, redisCache, sweepUC, clock)
	eventHandler := handlers.NewEventHandler(db, auditDispatcher, clock)
	productHandler := handlers.NewProductHandler(db)
	personHandler := handlers.NewPersonHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// ORDENS DE SERVIÇO
			// ------------------------------
			secured.POST("/service-orders", orderHandler.Create)
			secured.POST("/service-orders/pre-triage", orderHandler.PreTriage)
			secured.POST("/service-orders/virtual", orderHandler.CreateVirtual)
			secured.GET("/service-orders/:id", orderHandler.Detail)
			secured.PATCH("/service-orders/:id", orderHandler.Update)
			secured.GET("/service-orders/:id/client-data", orderHandler.ClientData)
			secured.GET("/service-orders/client/:renter_id", orderHandler.ListByClient)

			secured.GET("/service-orders/phase/:phase", transitionHandler.ListByPhase)
			secured.PATCH("/service-orders/:id/mark-ready", transitionHandler.MarkReady)
			secured.PATCH("/service-orders/:id/mark-retrieved", transitionHandler.MarkRetrieved)
			secured.PATCH("/service-orders/:id/mark-paid", transitionHandler.MarkPaid)
			secured.PATCH("/service-orders/:id/refuse", transitionHandler.Refuse)
			secured.PATCH("/service-orders/:id/return-to-pending", transitionHandler.ReturnToPending)

			secured.GET("/refusal-reasons", transitionHandler.ListRefusalReasons)

			// ------------------------------
			// FINANCEIRO
			// ------------------------------
			secured.GET("/finance/summary", financeHandler.Summary)
			secured.GET("/finance/dashboard", financeHandler.Dashboard)
			secured.GET("/finance/attendant-metrics", financeHandler.AttendantMetrics)

			// ------------------------------
			// EVENTOS
			// ------------------------------
			secured.POST("/events", eventHandler.Create)
			secured.GET("/events", eventHandler.ListWithStatus)
			secured.GET("/events/open", eventHandler.OpenList)
			secured.GET("/events/:id", eventHandler.Detail)
			secured.PUT("/events/:id", eventHandler.Update)
			secured.POST("/events/:id/participants", eventHandler.AddParticipants)
			secured.POST("/events/link-service-order", eventHandler.LinkServiceOrder)

			// ------------------------------
			// CADASTROS
			// ------------------------------
			secured.GET("/clients", personHandler.ListClients)
			secured.GET("/attendants", personHandler.ListAttendants)

			secured.GET("/products", productHandler.List)
			secured.POST("/products", productHandler.Create)
			secured.PATCH("/products/:id", productHandler.Update)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
