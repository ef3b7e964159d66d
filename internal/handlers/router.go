package handlers

import (
	"net/http"

	"roomledger/internal/config"
	"roomledger/internal/db"
	"roomledger/internal/middleware"
	"roomledger/internal/websocket"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner    db.TxRunner
	cfg         config.Config
	users       UserStore
	audit       AuditStore
	groups      GroupService
	expenses    ExpenseService
	settlements SettlementService
	hub         *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, audit AuditStore, groups GroupService, expenses ExpenseService, settlements SettlementService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:    txRunner,
		cfg:         cfg,
		users:       users,
		audit:       audit,
		groups:      groups,
		expenses:    expenses,
		settlements: settlements,
		hub:         hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))

		r.Post("/allocate", h.AllocateShares)

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", h.CreateGroup)
			r.Get("/", h.ListGroups)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", h.GetGroup)
				r.Delete("/", h.DeleteGroup)
				r.Get("/members", h.ListMembers)
				r.Post("/members", h.AddMember)
				r.Delete("/members/{userID}", h.RemoveMember)
				r.Post("/leave", h.LeaveGroup)
				r.Get("/leave-check", h.LeaveCheck)

				r.Post("/expenses", h.CreateExpense)
				r.Get("/expenses", h.ListExpenses)
				r.Put("/expenses/{expenseID}", h.UpdateExpense)
				r.Delete("/expenses/{expenseID}", h.DeleteExpense)

				r.Get("/balances", h.GroupBalances)
				r.Get("/balances/me", h.MyBalance)
				r.Get("/settle", h.SuggestSettlements)
				r.Get("/stats/me", h.MyStats)

				r.Post("/payments", h.InitiatePayment)
				r.Get("/payments", h.ListPayments)
			})
		})

		r.Post("/payments/{paymentID}/confirm", h.ConfirmPayment)
		r.Post("/payments/{paymentID}/reject", h.RejectPayment)
	})

	router.Get("/ws/notifications", h.WSNotifications)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
