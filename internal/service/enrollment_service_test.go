package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/tutor_market/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollBySlug_Idempotent(t *testing.T) {
	env := newTestEnv(payment.Keys{})
	ctx := context.Background()
	course := env.db.AddCourse("History", "history", 0, true)
	student := env.db.AddUser("student", false)

	first, created, err := env.enrollments.EnrollBySlug(ctx, student.ID, "history")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, course.ID, first.CourseID)

	second, created, err := env.enrollments.EnrollBySlug(ctx, student.ID, "history")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	list, err := env.enrollments.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnrollBySlug_InactiveCourse(t *testing.T) {
	env := newTestEnv(payment.Keys{})
	env.db.AddCourse("Archived", "archived", 0, false)
	student := env.db.AddUser("student", false)

	_, _, err := env.enrollments.EnrollBySlug(context.Background(), student.ID, "archived")
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestUnenroll_ScopedToStudent(t *testing.T) {
	env := newTestEnv(payment.Keys{})
	ctx := context.Background()
	course := env.db.AddCourse("Art", "art", 0, true)
	student := env.db.AddUser("student", false)
	other := env.db.AddUser("other", false)

	enrollment, _, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	_, err = env.enrollments.ForStudent(ctx, other.ID, enrollment.ID)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
	require.ErrorIs(t, env.enrollments.Unenroll(ctx, other.ID, enrollment.ID), ErrEnrollmentNotFound)

	require.NoError(t, env.enrollments.Unenroll(ctx, student.ID, enrollment.ID))
	_, err = env.enrollments.ForStudent(ctx, student.ID, enrollment.ID)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
