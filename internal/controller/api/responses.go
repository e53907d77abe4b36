package api

import (
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

// JSON shapes of the REST resources

type tutorResponse struct {
	ID   int64             `json:"id"`
	User *model.PublicUser `json:"user"`
	Bio  string            `json:"bio"`
}

type courseResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Tutor       *tutorResponse `json:"tutor"`
	PriceCents  int            `json:"price_cents"`
	IsActive    bool           `json:"is_active"`
}

type sessionResponse struct {
	ID          int64           `json:"id"`
	Course      *courseResponse `json:"course"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Capacity    int             `json:"capacity"`
	BookedCount int             `json:"booked_count"`
}

type batchResponse struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

type checkoutResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	PaymentID int64  `json:"payment_id"`
}

func newTutorResponse(t *model.Tutor) *tutorResponse {
	if t == nil {
		return nil
	}
	resp := &tutorResponse{ID: t.ID, Bio: t.Bio}
	if t.User != nil {
		u := t.User.Public()
		resp.User = &u
	}
	return resp
}

func newCourseResponse(c *model.Course) *courseResponse {
	if c == nil {
		return nil
	}
	return &courseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		Tutor:       newTutorResponse(c.Tutor),
		PriceCents:  c.PriceCents,
		IsActive:    c.IsActive,
	}
}

func newSessionResponse(s *model.Session) *sessionResponse {
	return &sessionResponse{
		ID:          s.ID,
		Course:      newCourseResponse(s.Course),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Capacity:    s.Capacity,
		BookedCount: s.BookedCount,
	}
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// orEmpty keeps empty lists as [] instead of null
func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
