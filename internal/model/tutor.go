package model

import "time"

type Tutor struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"-"`

	// Заполняется при join с users
	User *User `json:"-"`
}

// Name returns the tutor's display name
func (t *Tutor) Name() string {
	if t.User == nil {
		return ""
	}
	return t.User.DisplayName()
}
