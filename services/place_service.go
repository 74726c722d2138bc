package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"placeReviewsAPI/internal/seed"
	"placeReviewsAPI/internal/storage"
	"placeReviewsAPI/internal/types/place"
)

// PlacesKey is the blob key the whole place list is stored under.
const PlacesKey = "places"

const persistTimeout = 5 * time.Second

var (
	ErrPlaceNotFound   = errors.New("place not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrEmptyName       = errors.New("place name is required")
	ErrEmptyText       = errors.New("review text is required")
	ErrCorruptSnapshot = errors.New("stored places are not valid JSON")
)

// PlaceService owns the ordered place list. Every mutation replaces the list
// and rewrites the full snapshot to the blob store.
type PlaceService struct {
	mu     sync.RWMutex
	places []place.Place
	// dirty is set while the last write-through failed.
	dirty bool

	blobs  storage.BlobStore
	ids    *IDGenerator
	logger *zap.Logger
}

func NewPlaceService(blobs storage.BlobStore, logger *zap.Logger) *PlaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaceService{
		blobs:  blobs,
		ids:    NewIDGenerator(),
		logger: logger,
	}
}

// Load fills the service from the stored snapshot, or from the seed list when
// nothing has been stored yet. A snapshot that does not decode is an error.
func (s *PlaceService) Load(ctx context.Context) error {
	data, err := s.blobs.Get(ctx, PlacesKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read places: %w", err)
	}

	var places []place.Place
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Info("no saved places, using seed list")
		places = seed.Places()
	} else if err := json.Unmarshal(data, &places); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeLocked(ctx, "load", places)

	s.logger.Info("places loaded", zap.Int("count", len(places)))
	return nil
}

func (s *PlaceService) Places(ctx context.Context) []place.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]place.Place, len(s.places))
	for i, p := range s.places {
		out[i] = p.Clone()
	}
	return out
}

func (s *PlaceService) Place(ctx context.Context, id int64) (*place.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.places {
		if p.ID == id {
			c := p.Clone()
			return &c, nil
		}
	}
	return nil, ErrPlaceNotFound
}

func (s *PlaceService) AddPlace(ctx context.Context, req place.CreatePlaceRequest) (*place.Place, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, p := range s.places {
		maxID = max(maxID, p.ID)
	}

	newPlace := place.Place{
		ID:          s.ids.Next(maxID),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Reviews:     []place.Review{},
	}

	next := make([]place.Place, 0, len(s.places)+1)
	next = append(next, s.places...)
	next = append(next, newPlace)
	s.commitLocked(ctx, "add_place", next)

	c := newPlace.Clone()
	return &c, nil
}

// RemovePlace drops the place together with all of its reviews.
func (s *PlaceService) RemovePlace(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]place.Place, 0, len(s.places))
	for _, p := range s.places {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if len(next) == len(s.places) {
		return ErrPlaceNotFound
	}

	s.commitLocked(ctx, "remove_place", next)
	return nil
}

func (s *PlaceService) AddReview(ctx context.Context, placeID int64, in place.ReviewInput) (*place.Review, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	user := strings.TrimSpace(in.User)
	if user == "" {
		user = place.AnonymousUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		review place.Review
		found  bool
	)
	next := make([]place.Place, len(s.places))
	for i, p := range s.places {
		if p.ID != placeID {
			next[i] = p
			continue
		}

		var maxID int64
		for _, r := range p.Reviews {
			maxID = max(maxID, r.ID)
		}
		review = place.Review{
			ID:     s.ids.Next(maxID),
			User:   user,
			Text:   text,
			Rating: place.ClampRating(in.Rating),
		}

		updated := p
		updated.Reviews = make([]place.Review, 0, len(p.Reviews)+1)
		updated.Reviews = append(updated.Reviews, p.Reviews...)
		updated.Reviews = append(updated.Reviews, review)
		next[i] = updated
		found = true
	}
	if !found {
		return nil, ErrPlaceNotFound
	}

	s.commitLocked(ctx, "add_review", next)
	return &review, nil
}

func (s *PlaceService) RemoveReview(ctx context.Context, placeID, reviewID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var placeFound, reviewFound bool
	next := make([]place.Place, len(s.places))
	for i, p := range s.places {
		if p.ID != placeID {
			next[i] = p
			continue
		}
		placeFound = true

		updated := p
		updated.Reviews = make([]place.Review, 0, len(p.Reviews))
		for _, r := range p.Reviews {
			if r.ID == reviewID {
				reviewFound = true
				continue
			}
			updated.Reviews = append(updated.Reviews, r)
		}
		next[i] = updated
	}

	if !placeFound {
		return ErrPlaceNotFound
	}
	if !reviewFound {
		return ErrReviewNotFound
	}

	s.commitLocked(ctx, "remove_review", next)
	return nil
}

// Reset puts the seed list back, replacing everything stored.
func (s *PlaceService) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitLocked(ctx, "reset", seed.Places())
	s.logger.Warn("places reset to seed list")
}

// Snapshot returns the places blob as the store holds it. While Pending is
// true it lags behind memory.
func (s *PlaceService) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.blobs.Get(ctx, PlacesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read places: %w", err)
	}
	return data, nil
}

// commitLocked records a mutation and stores its result. Callers hold s.mu.
func (s *PlaceService) commitLocked(ctx context.Context, op string, next []place.Place) {
	placeMutationsTotal.WithLabelValues(op).Inc()
	s.storeLocked(ctx, op, next)
}

// storeLocked swaps in next and writes it through. A failed write is logged,
// counted and left for Flush; the in-memory list stays authoritative.
func (s *PlaceService) storeLocked(ctx context.Context, op string, next []place.Place) {
	if next == nil {
		next = []place.Place{}
	}
	s.places = next

	if err := s.persistLocked(ctx); err != nil {
		s.dirty = true
		persistFailuresTotal.Inc()
		s.logger.Error("failed to persist places", zap.String("operation", op), zap.Error(err))
		return
	}
	s.dirty = false
}

// Flush retries the write-through after an earlier failure. It is a no-op
// while memory and storage agree.
func (s *PlaceService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if err := s.persistLocked(ctx); err != nil {
		persistFailuresTotal.Inc()
		return err
	}
	s.dirty = false
	s.logger.Info("pending places flushed")
	return nil
}

// Pending reports whether the stored snapshot is behind memory.
func (s *PlaceService) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *PlaceService) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.places)
	if err != nil {
		return fmt.Errorf("failed to encode places: %w", err)
	}

	// The write outlives a cancelled request so memory and storage stay in step.
	putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.blobs.Put(putCtx, PlacesKey, data); err != nil {
		return fmt.Errorf("failed to write places: %w", err)
	}
	return nil
}
