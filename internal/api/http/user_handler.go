package http

import (
	"net/http"
	"strconv"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	DriverLicenseNo string `json:"driver_license_no"`
}

type loginRequest struct {
	Email string `json:"email"`
}

type authResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, token, err := h.authSvc.RegisterCustomer(r.Context(), req.Name, req.Email, req.Phone, req.DriverLicenseNo)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: user, AccessToken: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, token, err := h.authSvc.Login(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, AccessToken: token})
}

type UserHandler struct {
	userSvc  service.UserService
	auditSvc service.AuditService
}

func NewUserHandler(userSvc service.UserService, auditSvc service.AuditService) *UserHandler {
	return &UserHandler{userSvc: userSvc, auditSvc: auditSvc}
}

type auditResponse struct {
	Entries []domain.AuditEntry `json:"entries"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	user, err := h.userSvc.GetUser(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, domain.UserStatusSuspended)
}

func (h *UserHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, domain.UserStatusActive)
}

func (h *UserHandler) setStatus(w http.ResponseWriter, r *http.Request, status domain.UserStatus) {
	actor, _ := ActorFromContext(r.Context())
	userID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.userSvc.SetUserStatus(r.Context(), actor.ID, userID, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// RecentAudit lists the newest audit entries; ?limit= defaults to 50.
func (h *UserHandler) RecentAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, r, domain.Validationf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	entries, err := h.auditSvc.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auditResponse{Entries: orEmpty(entries)})
}
