package model

import "time"

type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	TutorID     int64     `json:"tutor_id"`
	PriceCents  int       `json:"price_cents"` // в центах
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`

	Tutor *Tutor `json:"-"`
}

// IsFree reports whether enrolling in the course requires no payment
func (c *Course) IsFree() bool {
	return c.PriceCents <= 0
}

type Resource struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course"`
	Title    string `json:"title"`
	File     string `json:"file"`
	URL      string `json:"url"`
}
