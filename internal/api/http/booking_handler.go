package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
	"carrental-backend/internal/utils"
)

type BookingHandler struct {
	bookingSvc service.BookingService
	now        func() time.Time
}

func NewBookingHandler(bookingSvc service.BookingService, now func() time.Time) *BookingHandler {
	if now == nil {
		now = time.Now
	}
	return &BookingHandler{bookingSvc: bookingSvc, now: now}
}

type createBookingRequest struct {
	CarID         uuid.UUID                  `json:"car_id"`
	StartDate     string                     `json:"start_date"`
	EndDate       string                     `json:"end_date"`
	InsurancePlan domain.InsurancePlan       `json:"insurance_plan"`
	Addons        map[string]decimal.Decimal `json:"addons"`
}

type rejectBookingRequest struct {
	Reason string `json:"reason"`
}

type returnCarRequest struct {
	ReturnedAt string `json:"returned_at"`
}

type bookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
}

type carsResponse struct {
	Cars []domain.Car `json:"cars"`
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req createBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, domain.Validationf("start_date: %v", err))
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, r, domain.Validationf("end_date: %v", err))
		return
	}

	booking, err := h.bookingSvc.CreateBooking(r.Context(), service.CreateBookingRequest{
		RenterID:      actor.ID,
		CarID:         req.CarID,
		StartDate:     start,
		EndDate:       end,
		InsurancePlan: req.InsurancePlan,
		Addons:        req.Addons,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	bookings, err := h.bookingSvc.ListRenterBookings(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingsResponse{Bookings: orEmpty(bookings)})
}

func (h *BookingHandler) ListPendingBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingSvc.ListPendingBookings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingsResponse{Bookings: orEmpty(bookings)})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.visibleBooking(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actorID, bookingID uuid.UUID) (*domain.Booking, error) {
		return h.bookingSvc.ApproveBooking(r.Context(), actorID, bookingID)
	})
}

func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	var req rejectBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.transition(w, r, func(actorID, bookingID uuid.UUID) (*domain.Booking, error) {
		return h.bookingSvc.RejectBooking(r.Context(), actorID, bookingID, req.Reason)
	})
}

func (h *BookingHandler) PickupBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actorID, bookingID uuid.UUID) (*domain.Booking, error) {
		return h.bookingSvc.PickupBooking(r.Context(), actorID, bookingID)
	})
}

// ReturnCar closes an active rental. returned_at defaults to the server clock.
func (h *BookingHandler) ReturnCar(w http.ResponseWriter, r *http.Request) {
	var req returnCarRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	returnedAt := h.now()
	if req.ReturnedAt != "" {
		parsed, err := utils.ParseTimestamp(req.ReturnedAt)
		if err != nil {
			writeError(w, r, domain.Validationf("returned_at: %v", err))
			return
		}
		returnedAt = parsed
	}
	h.transition(w, r, func(actorID, bookingID uuid.UUID) (*domain.Booking, error) {
		return h.bookingSvc.ReturnCar(r.Context(), actorID, bookingID, returnedAt)
	})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	booking, err := h.visibleBooking(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cancelled, err := h.bookingSvc.CancelBooking(r.Context(), actor.ID, booking.ID, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelled)
}

func (h *BookingHandler) SuggestSubstitutions(w http.ResponseWriter, r *http.Request) {
	booking, err := h.visibleBooking(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cars, err := h.bookingSvc.SuggestSubstitutions(r.Context(), booking.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carsResponse{Cars: orEmpty(cars)})
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, fn func(actorID, bookingID uuid.UUID) (*domain.Booking, error)) {
	actor, _ := ActorFromContext(r.Context())
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	booking, err := fn(actor.ID, bookingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// visibleBooking loads the booking named in the path. Customers only see
// their own bookings; anyone else's reads as not found.
func (h *BookingHandler) visibleBooking(r *http.Request) (*domain.Booking, error) {
	actor, _ := ActorFromContext(r.Context())
	bookingID, err := pathID(r)
	if err != nil {
		return nil, err
	}
	booking, err := h.bookingSvc.GetBooking(r.Context(), bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && booking.RenterID != actor.ID {
		return nil, domain.NotFoundf("booking %s", bookingID)
	}
	return booking, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.Validationf("invalid id %q", raw)
	}
	return id, nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
