package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"carrental-backend/internal/security"
)

const idPattern = "{id:[0-9a-fA-F-]{36}}"

type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Cars     *CarHandler
	Bookings *BookingHandler
}

// NewRouter registers every named route under /api/v1. Route names are the
// keys of config.RouteSecurityConfig.
func NewRouter(h Handlers, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("health")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(MetricsMiddleware, NewAuthMiddleware(tm).Handler)

	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost).Name("auth.register")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost).Name("auth.login")

	api.HandleFunc("/users/me", h.Users.Me).Methods(http.MethodGet).Name("users.me")
	api.HandleFunc("/users/"+idPattern+"/suspend", h.Users.Suspend).Methods(http.MethodPost).Name("users.suspend")
	api.HandleFunc("/users/"+idPattern+"/reactivate", h.Users.Reactivate).Methods(http.MethodPost).Name("users.reactivate")
	api.HandleFunc("/audit", h.Users.RecentAudit).Methods(http.MethodGet).Name("audit.recent")

	api.HandleFunc("/cars/available", h.Cars.ListAvailableCars).Methods(http.MethodGet).Name("cars.available")
	api.HandleFunc("/cars", h.Cars.ListCars).Methods(http.MethodGet).Name("cars.list")
	api.HandleFunc("/cars", h.Cars.CreateCar).Methods(http.MethodPost).Name("cars.create")
	api.HandleFunc("/cars/"+idPattern, h.Cars.UpdateCar).Methods(http.MethodPut).Name("cars.update")
	api.HandleFunc("/cars/"+idPattern+"/status", h.Cars.SetCarStatus).Methods(http.MethodPost).Name("cars.set_status")

	api.HandleFunc("/bookings", h.Bookings.CreateBooking).Methods(http.MethodPost).Name("bookings.create")
	api.HandleFunc("/bookings/mine", h.Bookings.ListMyBookings).Methods(http.MethodGet).Name("bookings.mine")
	api.HandleFunc("/bookings/pending", h.Bookings.ListPendingBookings).Methods(http.MethodGet).Name("bookings.pending")
	api.HandleFunc("/bookings/"+idPattern, h.Bookings.GetBooking).Methods(http.MethodGet).Name("bookings.get")
	api.HandleFunc("/bookings/"+idPattern+"/approve", h.Bookings.ApproveBooking).Methods(http.MethodPost).Name("bookings.approve")
	api.HandleFunc("/bookings/"+idPattern+"/reject", h.Bookings.RejectBooking).Methods(http.MethodPost).Name("bookings.reject")
	api.HandleFunc("/bookings/"+idPattern+"/pickup", h.Bookings.PickupBooking).Methods(http.MethodPost).Name("bookings.pickup")
	api.HandleFunc("/bookings/"+idPattern+"/return", h.Bookings.ReturnCar).Methods(http.MethodPost).Name("bookings.return")
	api.HandleFunc("/bookings/"+idPattern+"/cancel", h.Bookings.CancelBooking).Methods(http.MethodPost).Name("bookings.cancel")
	api.HandleFunc("/bookings/"+idPattern+"/substitutions", h.Bookings.SuggestSubstitutions).Methods(http.MethodGet).Name("bookings.substitutions")

	return router
}
