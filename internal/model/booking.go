package model

import "time"

type Booking struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"-"`
	SessionID int64     `json:"session"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Session       *Session `json:"-"`
	Student       *User    `json:"-"`
	RequestStatus string   `json:"-"` // статус последней заявки на отмену
}
