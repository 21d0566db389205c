package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type CarHandler struct {
	carSvc service.CarService
}

func NewCarHandler(carSvc service.CarService) *CarHandler {
	return &CarHandler{carSvc: carSvc}
}

type carRequest struct {
	PlateNo     string             `json:"plate_no"`
	Make        string             `json:"make"`
	Model       string             `json:"model"`
	Year        int                `json:"year"`
	Mileage     int                `json:"mileage"`
	Category    domain.CarCategory `json:"category"`
	DailyRate   decimal.Decimal    `json:"daily_rate"`
	Deposit     decimal.Decimal    `json:"deposit"`
	MinRentDays int                `json:"min_rent_days"`
	MaxRentDays int                `json:"max_rent_days"`
	Location    string             `json:"location"`
}

func (req carRequest) toDomain() *domain.Car {
	return &domain.Car{
		PlateNo:      req.PlateNo,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Mileage:      req.Mileage,
		Category:     req.Category,
		DailyRate:    req.DailyRate,
		Deposit:      req.Deposit,
		MinRentDays:  req.MinRentDays,
		MaxRentDays:  req.MaxRentDays,
		AvailableNow: true,
		Location:     req.Location,
	}
}

type carStatusRequest struct {
	Status domain.CarStatus `json:"status"`
}

func (h *CarHandler) ListAvailableCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.carSvc.ListAvailableCars(r.Context(), r.URL.Query().Get("location"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carsResponse{Cars: orEmpty(cars)})
}

func (h *CarHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.carSvc.ListCars(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carsResponse{Cars: orEmpty(cars)})
}

func (h *CarHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req carRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	car := req.toDomain()
	if err := h.carSvc.AddCar(r.Context(), actor.ID, car); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

func (h *CarHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	carID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req carRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	car := req.toDomain()
	car.ID = carID
	if err := h.carSvc.UpdateCar(r.Context(), actor.ID, car); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) SetCarStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	carID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req carStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	car, err := h.carSvc.SetCarStatus(r.Context(), actor.ID, carID, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}
