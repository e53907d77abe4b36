package service

import (
	"errors"

	"github.com/Freeeeeet/tutor_market/internal/payment"
)

// Общие ошибки бизнес-логики
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTutorNotFound      = errors.New("tutor not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrRequestNotFound    = errors.New("action request not found")
	ErrSessionFull        = errors.New("session is full")
	ErrFreeCourse         = errors.New("course is free")
	ErrAlreadyPaid        = errors.New("enrollment already paid")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrSlugTaken          = errors.New("slug already taken")
	ErrForbidden          = errors.New("permission denied")
	ErrGatewayDisabled    = payment.ErrGatewayDisabled
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "User not found."
	case errors.Is(err, ErrTutorNotFound):
		return "Tutor not found."
	case errors.Is(err, ErrCourseNotFound):
		return "Course not found."
	case errors.Is(err, ErrSessionNotFound):
		return "Session not found."
	case errors.Is(err, ErrEnrollmentNotFound):
		return "Enrollment not found."
	case errors.Is(err, ErrBookingNotFound):
		return "Booking not found."
	case errors.Is(err, ErrPaymentNotFound):
		return "Payment not found."
	case errors.Is(err, ErrResourceNotFound):
		return "Resource not found."
	case errors.Is(err, ErrRequestNotFound):
		return "Request not found."
	case errors.Is(err, ErrSessionFull):
		return "Session is full."
	case errors.Is(err, ErrFreeCourse):
		return "This course is free. No payment required."
	case errors.Is(err, ErrAlreadyPaid):
		return "This enrollment is already paid."
	case errors.Is(err, ErrInvalidPayload):
		return "Invalid payload"
	case errors.Is(err, ErrInvalidCredentials):
		return "Please enter a correct username and password."
	case errors.Is(err, ErrUsernameTaken):
		return "A user with that username already exists."
	case errors.Is(err, ErrSlugTaken):
		return "A course with that slug already exists."
	case errors.Is(err, ErrForbidden):
		return "Admin access required."
	case errors.Is(err, ErrGatewayDisabled):
		return "Online payments are not configured."
	default:
		return "Something went wrong. Please try again."
	}
}

// IsNotFound reports whether err is one of the not-found sentinels
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTutorNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}
