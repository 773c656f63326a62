package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HandlerProvider exposes the domain services as HTTP handlers.
type HandlerProvider struct {
	svc Services
}

func NewHandler(svc Services) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(svc Services) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(withIdentity)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.With(requireAdmin).Post("/", h.CreateAccountHandler)

		r.Route("/{userId}", func(r chi.Router) {
			r.With(requireSelfOrAdmin).Get("/balance", h.GetBalanceHandler)
			r.With(requireSelfOrAdmin).Get("/transactions", h.ListTransactionsHandler)
			r.With(requireAdmin).Post("/deposits", h.DepositHandler)
			r.With(requireAdmin).Get("/audit", h.AuditHandler)
			r.With(requireSelfOrAdmin).Post("/requests", h.OpenRequestHandler)
			r.With(requireSelfOrAdmin).Get("/requests", h.ListUserRequestsHandler)
		})
	})

	r.Route("/requests", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", h.ListRequestsHandler)
		r.Post("/{requestId}/approve", h.ApproveRequestHandler)
		r.Post("/{requestId}/decline", h.DeclineRequestHandler)
	})

	r.With(requireAdmin).Get("/reports/profit", h.ProfitHandler)

	r.Route("/rounds", func(r chi.Router) {
		r.Get("/", h.ListRoundsHandler)
		r.With(requireAdmin).Post("/", h.OpenRoundHandler)

		r.Route("/{roundId}", func(r chi.Router) {
			r.Get("/", h.GetRoundHandler)
			r.Get("/odds", h.GetOddsHandler)
			r.Get("/wagers", h.ListWagersHandler)
			r.With(requirePlayer).Post("/wagers", h.PlaceBetHandler)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/close", h.CloseRoundHandler)
				r.Post("/settle", h.SettleRoundHandler)
				r.Post("/reset", h.ResetRoundHandler)
				r.Post("/calls", h.CallNumberHandler)
			})
		})
	})

	r.Route("/duels", func(r chi.Router) {
		r.Use(requirePlayer)
		r.Post("/", h.CreateRoomHandler)
		r.Post("/{roundId}/join", h.JoinRoomHandler)
		r.Post("/{roundId}/moves", h.SubmitMoveHandler)
		r.Post("/{roundId}/rematch", h.RematchHandler)
		r.Post("/{roundId}/rematch/decline", h.DeclineRematchHandler)
	})

	return r
}
