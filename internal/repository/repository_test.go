package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/app"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/Freeeeeet/tutor_market/migrations"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Интеграционные тесты запускаются только при заданном TEST_DB_DSN
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Close())

	return pool
}

func newUser(t *testing.T, repo *repository.UserRepository) *model.User {
	t.Helper()
	u := &model.User{Username: "u_" + uuid.NewString()[:12], PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

// seedSession creates a tutor, a course and one session with the given capacity
func seedSession(t *testing.T, pool *pgxpool.Pool, users *repository.UserRepository, capacity int) int64 {
	t.Helper()
	ctx := context.Background()
	tutorUser := newUser(t, users)

	var tutorID, courseID, sessionID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO tutors (user_id) VALUES ($1) RETURNING id`, tutorUser.ID).Scan(&tutorID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO courses (title, slug, tutor_id) VALUES ($1, $2, $3) RETURNING id`,
		"Course", "c-"+uuid.NewString()[:12], tutorID).Scan(&courseID))

	start := time.Now().Add(24 * time.Hour)
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO sessions (course_id, start_time, end_time, capacity) VALUES ($1, $2, $3, $4) RETURNING id`,
		courseID, start, start.Add(time.Hour), capacity).Scan(&sessionID))
	return sessionID
}

func TestBookingRepository_ConcurrentBookingsRespectCapacity(t *testing.T) {
	pool := testPool(t)
	users := repository.NewUserRepository(pool)
	bookings := repository.NewBookingRepository(pool, zap.NewNop())
	sessionID := seedSession(t, pool, users, 3)

	const students = 10
	ids := make([]int64, students)
	for i := range ids {
		ids[i] = newUser(t, users).ID
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for _, studentID := range ids {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, created, err := bookings.CreateWithinCapacity(context.Background(), studentID, sessionID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && created:
				ok++
			case errors.Is(err, repository.ErrCapacityReached):
				full++
			default:
				t.Errorf("unexpected result: created=%v err=%v", created, err)
			}
		}(studentID)
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, students-3, full)
}

func TestBookingRepository_UnknownSession(t *testing.T) {
	pool := testPool(t)
	users := repository.NewUserRepository(pool)
	bookings := repository.NewBookingRepository(pool, zap.NewNop())
	student := newUser(t, users)

	_, _, err := bookings.CreateWithinCapacity(context.Background(), student.ID, -1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestActionRequestRepository_ApproveDeletesBookingOnce(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	bookings := repository.NewBookingRepository(pool, zap.NewNop())
	requests := repository.NewActionRequestRepository(pool)

	sessionID := seedSession(t, pool, users, 1)
	student := newUser(t, users)
	admin := newUser(t, users)

	booking, created, err := bookings.CreateWithinCapacity(ctx, student.ID, sessionID)
	require.NoError(t, err)
	require.True(t, created)

	req, created, err := requests.GetOrCreatePending(ctx, model.RequestTypeCancelBooking, booking.ID, student.ID)
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := requests.GetOrCreatePending(ctx, model.RequestTypeCancelBooking, booking.ID, student.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, req.ID, again.ID)

	approved, err := requests.ApproveCancelBooking(ctx, req.ID, admin.ID, "ok", time.Now())
	require.NoError(t, err)
	assert.True(t, approved)

	gone, err := bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	approved, err = requests.ApproveCancelBooking(ctx, req.ID, admin.ID, "again", time.Now())
	require.NoError(t, err)
	assert.False(t, approved)

	stored, err := requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.RequestStatusApproved, stored.Status)
	require.NotNil(t, stored.BookingID)
	assert.Equal(t, booking.ID, *stored.BookingID)
}

func TestActionRequestRepository_NewRequestAfterReview(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	bookings := repository.NewBookingRepository(pool, zap.NewNop())
	requests := repository.NewActionRequestRepository(pool)

	sessionID := seedSession(t, pool, users, 1)
	student := newUser(t, users)
	admin := newUser(t, users)

	booking, _, err := bookings.CreateWithinCapacity(ctx, student.ID, sessionID)
	require.NoError(t, err)

	first, created, err := requests.GetOrCreatePending(ctx, model.RequestTypeCancelBooking, booking.ID, student.ID)
	require.NoError(t, err)
	require.True(t, created)

	rejected, err := requests.Reject(ctx, first.ID, admin.ID, "no", time.Now())
	require.NoError(t, err)
	require.True(t, rejected)

	second, created, err := requests.GetOrCreatePending(ctx, model.RequestTypeCancelBooking, booking.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.RequestStatusPending, second.Status)
}

// Заявки отклоняются параллельно с повторной подачей: подача никогда не падает
func TestActionRequestRepository_GetOrCreatePendingWhileReviewing(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	bookings := repository.NewBookingRepository(pool, zap.NewNop())
	requests := repository.NewActionRequestRepository(pool)

	sessionID := seedSession(t, pool, users, 1)
	student := newUser(t, users)
	admin := newUser(t, users)

	booking, _, err := bookings.CreateWithinCapacity(ctx, student.ID, sessionID)
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			pending, err := requests.ListByStatus(ctx, model.RequestStatusPending, 50)
			if err != nil {
				t.Errorf("list pending: %v", err)
				return
			}
			for _, req := range pending {
				if req.BookingID != nil && *req.BookingID == booking.ID {
					if _, err := requests.Reject(ctx, req.ID, admin.ID, "", time.Now()); err != nil {
						t.Errorf("reject: %v", err)
						return
					}
				}
			}
		}
	}()

	for range 200 {
		req, _, err := requests.GetOrCreatePending(ctx, model.RequestTypeCancelBooking, booking.ID, student.ID)
		require.NoError(t, err)
		require.NotNil(t, req)
	}
	close(done)
	wg.Wait()
}

func TestSessionsRejectZeroCapacity(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	sessionID := seedSession(t, pool, users, 1)

	_, err := pool.Exec(ctx, `UPDATE sessions SET capacity = 0 WHERE id = $1`, sessionID)
	assert.Error(t, err)
}
