package place

import (
	"strings"
)

const (
	MinRating = 1
	MaxRating = 5

	// DefaultRating is used when the rating input is empty or not a number.
	DefaultRating = 3

	AnonymousUser = "Anonymous"

	filledStar = "★"
	emptyStar  = "☆"
)

type Review struct {
	ID     int64  `db:"id"     json:"id"`
	User   string `db:"user"   json:"user"`
	Text   string `db:"text"   json:"text"`
	Rating int    `db:"rating" json:"rating"`
}

type Place struct {
	ID          int64    `db:"id"          json:"id"`
	Name        string   `db:"name"        json:"name"`
	Description string   `db:"description" json:"description,omitempty"`
	Reviews     []Review `db:"-"           json:"reviews"`
}

// ReviewInput is what a visitor types in before the review gets an id.
type ReviewInput struct {
	User   string `json:"user"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

type CreatePlaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Preview returns the first review, shown on the list page, or nil.
func (p Place) Preview() *Review {
	if len(p.Reviews) == 0 {
		return nil
	}
	r := p.Reviews[0]
	return &r
}

// Clone returns a copy that shares no review slice with p.
func (p Place) Clone() Place {
	c := p
	if p.Reviews != nil {
		c.Reviews = make([]Review, len(p.Reviews))
		copy(c.Reviews, p.Reviews)
	}
	return c
}

func ClampRating(rating int) int {
	return min(max(rating, MinRating), MaxRating)
}

// Stars renders rating filled stars followed by the remaining empty ones.
func Stars(rating int) string {
	filled := min(max(rating, 0), MaxRating)
	return strings.Repeat(filledStar, filled) + strings.Repeat(emptyStar, MaxRating-filled)
}

// CreateReviewRequest is the API body for a new review. A missing rating
// counts as DefaultRating.
type CreateReviewRequest struct {
	User   string `json:"user"`
	Text   string `json:"text"`
	Rating *int   `json:"rating"`
}

func (r CreateReviewRequest) Input() ReviewInput {
	rating := DefaultRating
	if r.Rating != nil {
		rating = *r.Rating
	}
	return ReviewInput{User: r.User, Text: r.Text, Rating: rating}
}
