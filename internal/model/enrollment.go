package model

import "time"

type Enrollment struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"-"`
	CourseID  int64     `json:"course"`
	CreatedAt time.Time `json:"created_at"`

	Course  *Course `json:"-"`
	Student *User   `json:"-"`
}
