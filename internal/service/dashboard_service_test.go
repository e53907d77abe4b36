package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentDashboard(t *testing.T) {
	env := newTestEnv(payment.Keys{})
	ctx := context.Background()

	course := env.db.AddCourse("Music", "music", 1500, true)
	session := env.db.AddSession(course.ID, 4, time.Now())
	student := env.db.AddUser("student", false)

	enrollment, _, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	booking, _, err := env.bookings.Book(ctx, student.ID, session.ID)
	require.NoError(t, err)
	_, err = env.payments.PayMock(ctx, student.ID, enrollment.ID)
	require.NoError(t, err)
	_, _, err = env.cancellation.RequestCancellation(ctx, student.ID, booking.ID)
	require.NoError(t, err)

	d, err := env.dashboard.Student(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, d.Enrollments, 1)
	require.Len(t, d.Bookings, 1)
	assert.Equal(t, model.RequestStatusPending, d.Bookings[0].RequestStatus)
	assert.True(t, d.PaidEnrollmentIDs[enrollment.ID])
	assert.Len(t, d.Requests, 1)
}

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv(payment.Keys{})
	ctx := context.Background()

	course := env.db.AddCourse("Music", "music", 0, true)
	session := env.db.AddSession(course.ID, 4, time.Now())
	student := env.db.AddUser("student", false)
	admin := env.db.AddUser("admin", true)

	_, _, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	_, _, err = env.bookings.Book(ctx, student.ID, session.ID)
	require.NoError(t, err)

	_, err = env.dashboard.Admin(ctx, student)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Admin access required.", ErrorMessage(err))

	d, err := env.dashboard.Admin(ctx, admin)
	require.NoError(t, err)
	// tutor user + student + admin
	assert.Equal(t, 3, d.Counts.Users)
	assert.Equal(t, 1, d.Counts.Tutors)
	assert.Equal(t, 1, d.Counts.Courses)
	assert.Equal(t, 1, d.Counts.Sessions)
	assert.Equal(t, 1, d.Counts.Enrollments)
	assert.Equal(t, 1, d.Counts.Bookings)
	assert.Zero(t, d.Counts.Payments)
	assert.Len(t, d.RecentBookings, 1)
	assert.Empty(t, d.PendingRequests)
}
