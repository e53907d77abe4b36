package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/auth"
	"github.com/Freeeeeet/tutor_market/internal/controller/middleware"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/payment"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/Freeeeeet/tutor_market/internal/service/servicetest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiEnv struct {
	db      *servicetest.DB
	gateway *servicetest.Gateway
	issuer  *auth.Issuer
	router  *gin.Engine
}

func newAPIEnv(t *testing.T, keys payment.Keys) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := servicetest.NewDB()
	logger := zap.NewNop()
	pub := &servicetest.Publisher{}
	gw := &servicetest.Gateway{}
	issuer := auth.NewIssuer("test-secret-0123456789", 15*time.Minute, time.Hour)

	accounts := service.NewAccountService(db.Users(), issuer, logger)
	h := NewHandler(Deps{
		Catalog:      service.NewCatalogService(db.Courses(), db.Tutors(), db.Sessions(), db.Resources(), logger),
		Enrollments:  service.NewEnrollmentService(db.Courses(), db.Enrollments(), logger),
		Bookings:     service.NewBookingService(db.Bookings(), pub, logger),
		Cancellation: service.NewCancellationService(db.Bookings(), db.Requests(), &servicetest.Notifier{}, pub, logger),
		Payments:     service.NewPaymentService(db.Enrollments(), db.Payments(), db.Settings(), gw, keys, "usd", pub, logger),
		Accounts:     accounts,
	}, logger)

	r := gin.New()
	r.Use(middleware.Authenticate(accounts))
	h.Register(r.Group("/api"))

	return &apiEnv{db: db, gateway: gw, issuer: issuer, router: r}
}

func (e *apiEnv) token(t *testing.T, u *model.User) string {
	t.Helper()
	pair, err := e.issuer.Issue(u.ID, u.IsStaff)
	require.NoError(t, err)
	return pair.Access
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCourses_PublicListAndStaffWrites(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	course := env.db.AddCourse("Algebra", "algebra", 1500, true)
	student := env.db.AddUser("alice", false)
	admin := env.db.AddUser("admin", true)

	w := env.do(t, http.MethodGet, "/api/courses/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []courseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "algebra", list[0].Slug)
	require.NotNil(t, list[0].Tutor)

	w = env.do(t, http.MethodGet, "/api/courses/999/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	payload := map[string]any{"title": "Geometry Basics", "tutor": course.TutorID, "price_cents": 900}

	w = env.do(t, http.MethodPost, "/api/courses/", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/courses/", env.token(t, student), payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/courses/", env.token(t, admin), payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "geometry-basics", created["slug"])
	assert.Equal(t, true, created["is_active"])

	id := int64(created["id"].(float64))
	w = env.do(t, http.MethodDelete, "/api/courses/"+itoa(id)+"/", env.token(t, admin), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCourses_CreateUnknownTutor(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	admin := env.db.AddUser("admin", true)

	w := env.do(t, http.MethodPost, "/api/courses/", env.token(t, admin),
		map[string]any{"title": "Orphan", "tutor": 4242})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestObtainToken(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})

	w := env.do(t, http.MethodPost, "/api/auth/token/", "", map[string]string{"username": "ghost", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No active account found with the given credentials", decode(t, w)["detail"])

	w = env.do(t, http.MethodPost, "/api/auth/token/", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/token/refresh/", "", map[string]string{"refresh": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshToken(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	alice := env.db.AddUser("alice", false)

	pair, err := env.issuer.Issue(alice.ID, false)
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/auth/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["access"])
}

func TestEnrollments_GetOrCreate(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	course := env.db.AddCourse("Algebra", "algebra", 0, true)
	alice := env.db.AddUser("alice", false)
	token := env.token(t, alice)

	w := env.do(t, http.MethodGet, "/api/enrollments/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/enrollments/", token, map[string]any{"course": course.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/enrollments/", token, map[string]any{"course": course.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/enrollments/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = env.do(t, http.MethodPost, "/api/enrollments/", token, map[string]any{"course": 777})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollments_ScopedToCaller(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	course := env.db.AddCourse("Algebra", "algebra", 0, true)
	alice := env.db.AddUser("alice", false)
	bob := env.db.AddUser("bob", false)

	w := env.do(t, http.MethodPost, "/api/enrollments/", env.token(t, alice), map[string]any{"course": course.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decode(t, w)["id"].(float64))

	w = env.do(t, http.MethodGet, "/api/enrollments/"+itoa(id)+"/", env.token(t, bob), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/enrollments/", env.token(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestBookings_FullSessionIsConflict(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	course := env.db.AddCourse("Algebra", "algebra", 0, true)
	session := env.db.AddSession(course.ID, 1, time.Now().Add(time.Hour))
	alice := env.db.AddUser("alice", false)
	bob := env.db.AddUser("bob", false)

	w := env.do(t, http.MethodPost, "/api/bookings/", env.token(t, alice), map[string]any{"session": session.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/bookings/", env.token(t, alice), map[string]any{"session": session.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/bookings/", env.token(t, bob), map[string]any{"session": session.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Session is full.", decode(t, w)["detail"])

	assert.Equal(t, 1, env.db.BookingCount())
}

func TestBookings_DeleteSubmitsCancellation(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	course := env.db.AddCourse("Algebra", "algebra", 0, true)
	session := env.db.AddSession(course.ID, 3, time.Now().Add(time.Hour))
	alice := env.db.AddUser("alice", false)
	bob := env.db.AddUser("bob", false)
	admin := env.db.AddUser("admin", true)

	w := env.do(t, http.MethodPost, "/api/bookings/", env.token(t, alice), map[string]any{"session": session.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	bookingID := int64(decode(t, w)["id"].(float64))
	path := "/api/bookings/" + itoa(bookingID) + "/"

	w = env.do(t, http.MethodDelete, path, env.token(t, bob), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, path, env.token(t, alice), nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	// бронь остаётся до решения администратора
	assert.Equal(t, 1, env.db.BookingCount())

	reqBody := decode(t, w)["request"].(map[string]any)
	reqID := int64(reqBody["id"].(float64))

	w = env.do(t, http.MethodGet, "/api/action-requests/?status=pending", env.token(t, alice), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/action-requests/?status=pending", env.token(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	assert.Len(t, pending, 1)

	w = env.do(t, http.MethodPost, "/api/action-requests/approve/", env.token(t, admin),
		map[string]any{"ids": []int64{reqID, reqID, 9999}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res batchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, batchResponse{Processed: 1, Skipped: 1}, res)
	assert.Equal(t, 0, env.db.BookingCount())

	// повторное одобрение ничего не меняет
	w = env.do(t, http.MethodPost, "/api/action-requests/reject/", env.token(t, admin),
		map[string]any{"ids": []int64{reqID}})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Processed)
}

func TestActionRequests_Validation(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	admin := env.db.AddUser("admin", true)

	w := env.do(t, http.MethodPost, "/api/action-requests/approve/", env.token(t, admin), map[string]any{"ids": []int64{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/action-requests/?status=bogus", env.token(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutSession(t *testing.T) {
	keys := payment.Keys{PublicKey: "pkey_test", SecretKey: "skey_test"}

	setup := func(t *testing.T, keys payment.Keys, price int) (*apiEnv, string, int64) {
		env := newAPIEnv(t, keys)
		course := env.db.AddCourse("Algebra", "algebra", price, true)
		alice := env.db.AddUser("alice", false)
		token := env.token(t, alice)
		w := env.do(t, http.MethodPost, "/api/enrollments/", token, map[string]any{"course": course.ID})
		require.Equal(t, http.StatusCreated, w.Code)
		return env, token, int64(decode(t, w)["id"].(float64))
	}

	t.Run("invalid payload", func(t *testing.T) {
		env, token, enrollmentID := setup(t, keys, 1500)

		for _, body := range []map[string]any{
			{"amount_cents": 1500},
			{"enrollment_id": enrollmentID, "amount_cents": 0},
			{"enrollment_id": "abc"},
		} {
			w := env.do(t, http.MethodPost, "/api/payments/create-checkout-session/", token, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Invalid payload", decode(t, w)["detail"])
		}
		assert.Zero(t, env.gateway.Calls)
	})

	t.Run("creates link", func(t *testing.T) {
		env, token, enrollmentID := setup(t, keys, 1500)

		w := env.do(t, http.MethodPost, "/api/payments/create-checkout-session/", token,
			map[string]any{"enrollment_id": enrollmentID, "amount_cents": 1, "currency": "usd"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var res checkoutResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "link_test_1", res.ID)
		assert.Equal(t, "https://pay.example/link_test_1", res.URL)
		assert.EqualValues(t, 1500, env.gateway.Last.AmountCents)

		w = env.do(t, http.MethodGet, "/api/payments/", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var payments []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payments))
		require.Len(t, payments, 1)
		assert.Equal(t, model.PaymentStatusCreated, payments[0]["status"])
	})

	t.Run("gateway disabled", func(t *testing.T) {
		env, token, enrollmentID := setup(t, payment.Keys{}, 1500)

		w := env.do(t, http.MethodPost, "/api/payments/create-checkout-session/", token,
			map[string]any{"enrollment_id": enrollmentID, "amount_cents": 1500})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Zero(t, env.gateway.Calls)
	})

	t.Run("gateway error", func(t *testing.T) {
		env, token, enrollmentID := setup(t, keys, 1500)
		env.gateway.Err = errors.New("omise: bad request")

		w := env.do(t, http.MethodPost, "/api/payments/create-checkout-session/", token,
			map[string]any{"enrollment_id": enrollmentID, "amount_cents": 1500})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Zero(t, env.db.PaymentCount())
	})

	t.Run("already paid", func(t *testing.T) {
		env, token, enrollmentID := setup(t, keys, 1500)
		_, _, err := env.db.Payments().GetOrCreate(context.Background(), &model.Payment{
			EnrollmentID: enrollmentID,
			AmountCents:  1500,
			Currency:     "usd",
			ExternalRef:  model.MockPaymentRef(enrollmentID),
			Status:       model.PaymentStatusPaid,
		})
		require.NoError(t, err)

		w := env.do(t, http.MethodPost, "/api/payments/create-checkout-session/", token,
			map[string]any{"enrollment_id": enrollmentID, "amount_cents": 1500})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "This enrollment is already paid.", decode(t, w)["detail"])
		assert.Zero(t, env.gateway.Calls)
		assert.Equal(t, 1, env.db.PaymentCount())
	})

	t.Run("free course", func(t *testing.T) {
		env, token, enrollmentID := setup(t, keys, 0)

		w := env.do(t, http.MethodPost, "/api/payments/create-checkout-session/", token,
			map[string]any{"enrollment_id": enrollmentID, "amount_cents": 100})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "This course is free. No payment required.", decode(t, w)["detail"])
	})
}

func TestResourcesRequireAuth(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	course := env.db.AddCourse("Algebra", "algebra", 0, true)
	env.db.AddResource(course.ID, "Syllabus", "https://example.com/syllabus")
	alice := env.db.AddUser("alice", false)

	w := env.do(t, http.MethodGet, "/api/resources/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/resources/", env.token(t, alice), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Syllabus")
}

func TestSessionsExposeBookedCount(t *testing.T) {
	env := newAPIEnv(t, payment.Keys{})
	course := env.db.AddCourse("Algebra", "algebra", 0, true)
	session := env.db.AddSession(course.ID, 2, time.Now().Add(time.Hour))
	alice := env.db.AddUser("alice", false)

	_, _, err := env.db.Bookings().CreateWithinCapacity(context.Background(), alice.ID, session.ID)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/sessions/"+itoa(session.ID)+"/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Capacity)
	assert.Equal(t, 1, resp.BookedCount)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
