package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"placeReviewsAPI/internal/types/place"
	"placeReviewsAPI/internal/view"
	"placeReviewsAPI/middleware"
	"placeReviewsAPI/services"
)

// PageHandler serves the server-rendered list and detail pages and the forms
// that stand in for the browser prompts.
type PageHandler struct {
	placeService *services.PlaceService
	adminService *services.AdminService
	renderer     *view.Renderer
	logger       *zap.Logger
}

func NewPageHandler(placeService *services.PlaceService, adminService *services.AdminService, renderer *view.Renderer, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		placeService: placeService,
		adminService: adminService,
		renderer:     renderer,
		logger:       logger,
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, code int, state view.State, notice string) {
	page := view.Page{
		Places: h.placeService.Places(r.Context()),
		State:  state,
		Admin:  middleware.IsAdmin(r.Context()),
		Notice: notice,
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func (h *PageHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.List(), "")
}

func (h *PageHandler) DetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := h.placeService.Place(r.Context(), id); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusOK, view.Detail(id), "")
}

func (h *PageHandler) CreatePlaceForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	req := place.CreatePlaceRequest{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}

	// An empty name aborts without telling anyone, like a cancelled prompt.
	p, err := h.placeService.AddPlace(ctx, req)
	if err != nil && !errors.Is(err, services.ErrEmptyName) {
		h.logger.Error("failed to add place", zap.Error(err))
	} else if err == nil {
		h.logger.Info("place added", zap.Int64("place_id", p.ID), zap.String("name", p.Name))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) DeletePlaceForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if id, ok := pathID(r, "id"); ok {
		if err := h.placeService.RemovePlace(ctx, id); err == nil {
			h.logger.Info("place removed", zap.Int64("place_id", id))
		}
	}

	// The place is gone, so any view of it falls back to the list.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) AddReviewForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	placeID, ok := pathID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	in := place.ReviewInput{
		User:   r.PostFormValue("user"),
		Text:   r.PostFormValue("text"),
		Rating: parseRating(r.PostFormValue("rating")),
	}

	review, err := h.placeService.AddReview(ctx, placeID, in)
	switch {
	case errors.Is(err, services.ErrPlaceNotFound):
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case err == nil:
		h.logger.Info("review added", zap.Int64("place_id", placeID), zap.Int64("review_id", review.ID))
	case !errors.Is(err, services.ErrEmptyText):
		h.logger.Error("failed to add review", zap.Error(err))
	}

	http.Redirect(w, r, placePath(placeID), http.StatusSeeOther)
}

func (h *PageHandler) DeleteReviewForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	placeID, ok := pathID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if reviewID, ok := pathID(r, "reviewID"); ok {
		if err := h.placeService.RemoveReview(ctx, placeID, reviewID); err == nil {
			h.logger.Info("review removed", zap.Int64("place_id", placeID), zap.Int64("review_id", reviewID))
		}
	}

	// DetailPage sends the browser to the list if the place is gone.
	http.Redirect(w, r, placePath(placeID), http.StatusSeeOther)
}

func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAdmin(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderLogin(&buf, ""); err != nil {
		h.logger.Error("failed to render login page", zap.Error(err))
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// LoginForm checks the passcode. A wrong one shows the failure notice over
// the place list and leaves admin mode off.
func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	token, err := h.adminService.Login(r.PostFormValue("passcode"))
	if err != nil {
		if !errors.Is(err, services.ErrWrongPasscode) {
			h.logger.Error("admin login failed", zap.Error(err))
		}
		h.render(w, r, http.StatusUnauthorized, view.List(), services.FailedLoginNotice)
		return
	}

	h.logger.Info("admin session started")
	setAdminCookie(w, r, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) LogoutForm(w http.ResponseWriter, r *http.Request) {
	clearAdminCookie(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var leadingInt = regexp.MustCompile(`^[+-]?[0-9]+`)

// parseRating reads the integer the rating field starts with, so "4.5" and
// "2 csillag" count as 4 and 2. Input with no leading digits counts as the
// default; range clamping happens in the service.
func parseRating(raw string) int {
	digits := leadingInt.FindString(strings.TrimSpace(raw))
	if digits == "" {
		return place.DefaultRating
	}
	// Out-of-range input saturates, which the service then clamps.
	rating, err := strconv.Atoi(digits)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return place.DefaultRating
	}
	return rating
}

func placePath(id int64) string {
	return "/places/" + strconv.FormatInt(id, 10)
}
