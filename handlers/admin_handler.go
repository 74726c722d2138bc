package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"placeReviewsAPI/middleware"
	"placeReviewsAPI/services"
)

type AdminLoginRequest struct {
	Passcode string `json:"passcode"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
	Admin bool   `json:"admin"`
}

type AdminHandler struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

func NewAdminHandler(adminService *services.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.adminService.Login(req.Passcode)
	if err != nil {
		if errors.Is(err, services.ErrWrongPasscode) {
			h.logger.Info("admin login rejected")
			respondWithError(w, http.StatusUnauthorized, services.FailedLoginNotice)
			return
		}
		h.logger.Error("admin login failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	setAdminCookie(w, r, token)
	respondWithJSON(w, http.StatusOK, AdminLoginResponse{Token: token, Admin: true})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearAdminCookie(w, r)
	respondWithJSON(w, http.StatusOK, map[string]bool{"admin": false})
}

// Status reports whether the caller is in admin mode.
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]bool{"admin": middleware.IsAdmin(r.Context())})
}

// setAdminCookie stores the token in a session cookie (no Expires), so admin
// mode lasts until the browser closes or the token runs out.
func setAdminCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAdminCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
