package model

import "time"

// Session is a scheduled occurrence of a course with a seat limit
type Session struct {
	ID        int64     `json:"id"`
	CourseID  int64     `json:"course_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Capacity  int       `json:"capacity"`

	// Не из таблицы sessions
	BookedCount int     `json:"booked_count"`
	Course      *Course `json:"-"`
}

// SeatsLeft returns the number of free seats, never negative
func (s *Session) SeatsLeft() int {
	left := s.Capacity - s.BookedCount
	if left < 0 {
		return 0
	}
	return left
}

// IsFull reports whether no more bookings are accepted
func (s *Session) IsFull() bool {
	return s.BookedCount >= s.Capacity
}
