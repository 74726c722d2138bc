package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"placeReviewsAPI/internal/types/place"
	"placeReviewsAPI/services"
)

type PlaceHandler struct {
	placeService *services.PlaceService
	logger       *zap.Logger
}

func NewPlaceHandler(placeService *services.PlaceService, logger *zap.Logger) *PlaceHandler {
	return &PlaceHandler{
		placeService: placeService,
		logger:       logger,
	}
}

func (h *PlaceHandler) GetPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, h.placeService.Places(ctx))
}

func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid place id")
		return
	}

	p, err := h.placeService.Place(ctx, id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Place not found")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *PlaceHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req place.CreatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.placeService.AddPlace(ctx, req)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("place added", zap.Int64("place_id", p.ID), zap.String("name", p.Name))
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *PlaceHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid place id")
		return
	}

	if err := h.placeService.RemovePlace(ctx, id); err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("place removed", zap.Int64("place_id", id))
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PlaceHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	placeID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid place id")
		return
	}

	var req place.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.placeService.AddReview(ctx, placeID, req.Input())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("review added", zap.Int64("place_id", placeID), zap.Int64("review_id", review.ID))
	respondWithJSON(w, http.StatusCreated, review)
}

func (h *PlaceHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	placeID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid place id")
		return
	}
	reviewID, ok := pathID(r, "reviewID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	if err := h.placeService.RemoveReview(ctx, placeID, reviewID); err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("review removed", zap.Int64("place_id", placeID), zap.Int64("review_id", reviewID))
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetSnapshot returns the places blob exactly as the store holds it.
func (h *PlaceHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	data, err := h.placeService.Snapshot(ctx)
	if err != nil {
		h.logger.Error("failed to read snapshot", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *PlaceHandler) ResetPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.placeService.Reset(ctx)
	respondWithJSON(w, http.StatusOK, h.placeService.Places(ctx))
}

func (h *PlaceHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrPlaceNotFound):
		respondWithError(w, http.StatusNotFound, "Place not found")
	case errors.Is(err, services.ErrReviewNotFound):
		respondWithError(w, http.StatusNotFound, "Review not found")
	case errors.Is(err, services.ErrEmptyName), errors.Is(err, services.ErrEmptyText):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("place operation failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Server error")
	}
}
