package model

import "time"

// ActionRequest is an administrator-reviewable request raised by a user
type ActionRequest struct {
	ID            int64      `json:"id"`
	RequestType   string     `json:"request_type"`
	Status        string     `json:"status"`
	BookingID     *int64     `json:"booking"`
	RequestedBy   int64      `json:"requested_by"`
	ReviewedBy    *int64     `json:"reviewed_by"`
	ReviewComment string     `json:"review_comment"`
	CreatedAt     time.Time  `json:"created_at"`
	ReviewedAt    *time.Time `json:"reviewed_at"`

	Booking   *Booking `json:"-"`
	Requester *User    `json:"-"`
}

const RequestTypeCancelBooking = "cancel_booking"

// Request status constants
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// IsPending checks if request is pending
func (r *ActionRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsApproved checks if request is approved
func (r *ActionRequest) IsApproved() bool {
	return r.Status == RequestStatusApproved
}

// IsRejected checks if request is rejected
func (r *ActionRequest) IsRejected() bool {
	return r.Status == RequestStatusRejected
}
