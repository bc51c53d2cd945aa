package handlers

import (
	"net/http"

	"bureau/internal/config"
	"bureau/internal/db"
	"bureau/internal/middleware"
	"bureau/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Handler struct {
	txRunner      db.TxRunner
	cfg           config.Config
	logger        *zap.Logger
	users         UserStore
	currencies    CurrencyStore
	notifications NotificationStore
	audit         AuditStore
	queue         QueueService
	settlement    SettlementService
	hub           *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, logger *zap.Logger, users UserStore, currencies CurrencyStore, notifications NotificationStore, audit AuditStore, queue QueueService, settlement SettlementService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:      txRunner,
		cfg:           cfg,
		logger:        logger,
		users:         users,
		currencies:    currencies,
		notifications: notifications,
		audit:         audit,
		queue:         queue,
		settlement:    settlement,
		hub:           hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(h.logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Route("/queue", func(r chi.Router) {
		r.Post("/join", h.JoinQueue)
		r.Get("/list", h.ListQueue)
	})
	router.Get("/rates", h.Rates)
	router.Get("/ws/queue", h.WSQueue)

	router.Route("/teller", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/dashboard", h.TellerDashboard)
		r.Post("/call-next", h.CallNext)
		r.Post("/transaction", h.ExecuteTransaction)
		r.Post("/cancel", h.CancelEntry)
		r.Get("/history", h.TellerHistory)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Use(middleware.RequireRole("admin"))
		r.Get("/inventory", h.Inventory)
		r.Put("/currencies/{code}", h.UpsertCurrency)
		r.Get("/notifications", h.AdminNotifications)
		r.Get("/audit", h.AuditLogs)
		r.Post("/users", h.CreateUser)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}

func (h *Handler) WSQueue(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(w, r, h.hub)
}
